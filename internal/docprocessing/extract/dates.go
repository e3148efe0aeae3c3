package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// datePattern matches the date forms seen in OCR output: numeric
// MM/DD/YYYY and MM-DD-YYYY (2- or 4-digit year) and month-name forms
// like "MARCH 15, 2025".
const datePattern = `\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|` +
	`(?:JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)[A-Za-z]*\.?\s+\d{1,2},?\s+\d{4}`

// vehicleDateRules are the labeled expiry patterns for the vehicle path,
// in precedence order, followed by unlabeled fallbacks. The first rule that
// matches supplies the date; its textual form is preserved unmodified.
var vehicleDateRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bEXPIRES?[\s:.]*(` + datePattern + `)`),
	regexp.MustCompile(`(?i)\bEXPIR\w*(?:\s*DATE)?[\s:.]*(` + datePattern + `)`),
	regexp.MustCompile(`(?i)\bVALID\s+(?:UNTIL|THROUGH|THRU)[\s:.]*(` + datePattern + `)`),
	regexp.MustCompile(`(?i)\bTHROUGH[\s:.]*(` + datePattern + `)`),
	regexp.MustCompile(`(?i)\bRENEWAL(?:\s*DATE)?[\s:.]*(` + datePattern + `)`),
	regexp.MustCompile(`(?i)\bDUE(?:\s*DATE)?[\s:.]*(` + datePattern + `)`),
	regexp.MustCompile(`(?i)(` + datePattern + `)`),
}

// firstVehicleDate returns the first date found by the vehicle-path date
// rules, in rule order, in its raw textual form.
func firstVehicleDate(text string) (string, bool) {
	for _, rule := range vehicleDateRules {
		if m := rule.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

var numericDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
var monthNameDate = regexp.MustCompile(`(?i)^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)

var monthNumbers = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// NormalizeDate converts a raw extracted date to YYYY-MM-DD. Numeric input is
// read month-first (MM/DD/YYYY); two-digit years expand on a 50-year pivot.
// Returns false when the input is not a recognizable or real date.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	if m := numericDate.FindStringSubmatch(raw); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year = expandTwoDigitYear(year)
		}
		return formatDate(year, month, day)
	}

	if m := monthNameDate.FindStringSubmatch(raw); m != nil {
		prefix := strings.ToUpper(m[1])
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		month, ok := monthNumbers[prefix]
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return formatDate(year, month, day)
	}

	return "", false
}

// expandTwoDigitYear maps a 2-digit year to a 4-digit one on a 50-year pivot:
// 00-49 land in the 2000s, 50-99 in the 1900s.
func expandTwoDigitYear(yy int) int {
	if yy < 50 {
		return 2000 + yy
	}
	return 1900 + yy
}

func formatDate(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// extractNormalizedDate finds the first match of re in text and standardizes
// it. Driver-path dates are always standardized on extraction.
func extractNormalizedDate(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return NormalizeDate(m[1])
}
