package extract

import "testing"

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"slash numeric", "03/15/2025", "2025-03-15", true},
		{"dash numeric", "3-5-2025", "2025-03-05", true},
		{"two digit year below pivot", "06/30/25", "2025-06-30", true},
		{"two digit year above pivot", "06/30/85", "1985-06-30", true},
		{"month name", "MARCH 15, 2025", "2025-03-15", true},
		{"month abbreviation", "Mar 15 2025", "2025-03-15", true},
		{"month abbreviation with period", "Jan. 2, 2024", "2024-01-02", true},
		{"impossible month", "13/01/2025", "", false},
		{"impossible day", "01/32/2025", "", false},
		{"unknown month name", "SMARCH 15, 2025", "", false},
		{"not a date", "hello", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFirstVehicleDate_Precedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"labeled expiry beats earlier bare date",
			"ISSUED 01/01/2024\nEXPIRES: 03/15/2025",
			"03/15/2025",
		},
		{
			"expiration variant",
			"EXPIRATION DATE: 06/30/2026",
			"06/30/2026",
		},
		{
			"valid through",
			"VALID THROUGH 12/31/2025",
			"12/31/2025",
		},
		{
			"renewal",
			"RENEWAL DATE: 04/01/2026",
			"04/01/2026",
		},
		{
			"bare date fallback",
			"registered on 07/04/2024 at the county office",
			"07/04/2024",
		},
		{
			"month name form",
			"EXPIRES MARCH 15, 2025",
			"MARCH 15, 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstVehicleDate(tt.text)
			if !ok || got != tt.want {
				t.Errorf("firstVehicleDate(%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
			}
		})
	}
}

func TestFirstVehicleDate_NoDate(t *testing.T) {
	if got, ok := firstVehicleDate("no dates in here"); ok {
		t.Errorf("firstVehicleDate = %q, want no match", got)
	}
}
