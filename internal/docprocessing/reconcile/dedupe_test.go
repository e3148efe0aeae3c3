package reconcile

import (
	"strings"
	"testing"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

func TestReconcile_DuplicateCollapse(t *testing.T) {
	e := testEngine()

	// Same partial VIN (too short to group by), so the two records land in
	// separate FILE groups and only the dedup pass can collapse them.
	lowConf := &domain.ExtractedVehicleRecord{
		VIN:                  "1HGBH41JXMN1",
		DocumentType:         domain.DocumentTypeRegistration,
		ExtractionConfidence: 0.6,
		SourceFileName:       "old_registration.pdf",
	}
	highConf := &domain.ExtractedVehicleRecord{
		VIN:                  "1HGBH41JXMN1",
		DocumentType:         domain.DocumentTypeRegistration,
		ExtractionConfidence: 0.9,
		SourceFileName:       "new_registration.pdf",
	}

	result := e.Reconcile([]*domain.ExtractedVehicleRecord{lowConf, highConf}, nil)

	if len(result.Vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1 after dedup", len(result.Vehicles))
	}
	kept := result.Vehicles[0]

	if kept.ExtractionConfidence != 0.9 {
		t.Errorf("kept confidence = %v, want the higher-confidence record", kept.ExtractionConfidence)
	}
	if result.Summary.VehicleDuplicatesRemoved != 1 {
		t.Errorf("VehicleDuplicatesRemoved = %d, want 1", result.Summary.VehicleDuplicatesRemoved)
	}

	var removalNote, sourcesNote bool
	for _, note := range kept.ProcessingNotes {
		if note == "Removed 1 duplicate record(s) during deduplication" {
			removalNote = true
		}
		if strings.Contains(note, "old_registration.pdf") {
			sourcesNote = true
		}
	}
	if !removalNote || !sourcesNote {
		t.Errorf("missing dedup provenance notes, got %v", kept.ProcessingNotes)
	}
}

func TestDedupeVehicles_RecencyBreaksConfidenceTie(t *testing.T) {
	e := testEngine()

	stale := domain.ConsolidatedVehicle{
		Key: "FILE:a.pdf",
		ExtractedVehicleRecord: domain.ExtractedVehicleRecord{
			VIN:                  "1HGBH41JXMN1",
			RegistrationExpiry:   "01/15/2020",
			ExtractionConfidence: 0.8,
			SourceFileName:       "a.pdf",
		},
		SourceCount: 1,
	}
	current := domain.ConsolidatedVehicle{
		Key: "FILE:b.pdf",
		ExtractedVehicleRecord: domain.ExtractedVehicleRecord{
			VIN:                  "1HGBH41JXMN1",
			RegistrationExpiry:   "01/15/2027",
			ExtractionConfidence: 0.8,
			SourceFileName:       "b.pdf",
		},
		SourceCount: 1,
	}

	out, removed := e.dedupeVehicles([]domain.ConsolidatedVehicle{stale, current})

	if removed != 1 || len(out) != 1 {
		t.Fatalf("removed = %d, len = %d", removed, len(out))
	}
	if out[0].SourceFileName != "b.pdf" {
		t.Errorf("kept %q, want the record with the current expiry", out[0].SourceFileName)
	}
}

func TestDedupeDrivers_NameAndDOB(t *testing.T) {
	e := testEngine()

	roster := &domain.ExtractedDriverRecord{
		FirstName:            "John",
		LastName:             "Smith",
		DateOfBirth:          "1985-02-11",
		DocumentType:         domain.DocumentTypeCDL,
		ExtractionConfidence: 0.6,
		SourceFileName:       "roster_scan.pdf",
	}
	cdl := &domain.ExtractedDriverRecord{
		FirstName:            "JOHN",
		LastName:             "SMITH",
		DateOfBirth:          "1985-02-11",
		CDLNumber:            "D12345678",
		CDLState:             "CA",
		CDLExpirationDate:    "2031-06-30",
		DocumentType:         domain.DocumentTypeCDL,
		ExtractionConfidence: 0.9,
		SourceFileName:       "cdl_smith.pdf",
	}

	result := e.Reconcile(nil, []*domain.ExtractedDriverRecord{roster, cdl})

	if len(result.Drivers) != 1 {
		t.Fatalf("got %d drivers, want 1: name matching is case-insensitive", len(result.Drivers))
	}
	if result.Drivers[0].CDLNumber != "D12345678" {
		t.Error("the more complete CDL record should win the dedup score")
	}
	if result.Summary.DriverDuplicatesRemoved != 1 {
		t.Errorf("DriverDuplicatesRemoved = %d, want 1", result.Summary.DriverDuplicatesRemoved)
	}
}

func TestDedupeDrivers_DistinctDriversSurvive(t *testing.T) {
	e := testEngine()

	a := &domain.ExtractedDriverRecord{
		FirstName: "John", LastName: "Smith", DateOfBirth: "1985-02-11",
		DocumentType: domain.DocumentTypeCDL, SourceFileName: "a.pdf",
	}
	b := &domain.ExtractedDriverRecord{
		FirstName: "Jane", LastName: "Smith", DateOfBirth: "1982-07-04",
		DocumentType: domain.DocumentTypeMedicalCert, SourceFileName: "b.pdf",
	}

	result := e.Reconcile(nil, []*domain.ExtractedDriverRecord{a, b})

	if len(result.Drivers) != 2 {
		t.Fatalf("got %d drivers, want 2 distinct", len(result.Drivers))
	}
	if result.Summary.DriverDuplicatesRemoved != 0 {
		t.Errorf("DriverDuplicatesRemoved = %d, want 0", result.Summary.DriverDuplicatesRemoved)
	}
}

func TestSourceTrustPoints(t *testing.T) {
	tests := []struct {
		fileName string
		want     float64
	}{
		{"dmv_record_117.pdf", 20},
		{"dot_inspection.pdf", 20},
		{"official_title.pdf", 20},
		{"insurance_cert.pdf", 15},
		{"policy_0449.pdf", 15},
		{"registration_117.pdf", 10},
		{"reg_117.pdf", 10},
		{"scan001.jpg", 5},
	}

	for _, tt := range tests {
		if got := sourceTrustPoints(tt.fileName); got != tt.want {
			t.Errorf("sourceTrustPoints(%q) = %v, want %v", tt.fileName, got, tt.want)
		}
	}
}

func TestRecencyPoints(t *testing.T) {
	e := testEngine() // now pinned to 2026-01-15

	tests := []struct {
		name  string
		dates []string
		want  float64
	}{
		{"future expiry capped at 50", []string{"2030-01-15"}, 50},
		{"no parseable date", []string{"", "garbage"}, 0},
		{"ancient expiry floored at 0", []string{"2015-01-15"}, 0},
		{"first parseable date used", []string{"not a date", "2030-06-01"}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.recencyPoints(tt.dates...); got != tt.want {
				t.Errorf("recencyPoints = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecencyPoints_Decay(t *testing.T) {
	e := testEngine()

	// Expired two years before the pinned clock: 50 - 10*2 = 30, within
	// rounding of the day-based age calculation.
	got := e.recencyPoints("2024-01-15")
	if got < 29 || got > 31 {
		t.Errorf("recencyPoints = %v, want ~30 for a two-year-old expiry", got)
	}
}

func TestVehicleDedupeKeys_Priority(t *testing.T) {
	rec := domain.ExtractedVehicleRecord{
		VIN:                "1HGBH41JXMN109186",
		RegistrationState:  "TX",
		RegistrationNumber: "REG-9911",
		LicensePlate:       "ABC1234",
		PolicyNumber:       "TRK-00449",
	}

	keys := vehicleDedupeKeys(&rec)
	want := []string{
		"vin:1HGBH41JXMN109186",
		"regnum:TX:REG-9911",
		"plate:TX:ABC1234",
		"policy:TRK-00449",
	}

	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestVehicleDedupeKeys_ShortVINIgnored(t *testing.T) {
	rec := domain.ExtractedVehicleRecord{VIN: "1HGBH41"}

	if keys := vehicleDedupeKeys(&rec); len(keys) != 0 {
		t.Errorf("keys = %v, want none for a sub-10-char VIN", keys)
	}
}
