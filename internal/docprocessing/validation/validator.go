package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

// Issue is a single validation finding on one field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the findings of validating one extracted record.
// Errors reduce extraction confidence and force review; warnings are
// informational only.
type Result struct {
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Failed reports whether the record failed validation.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

func (r *Result) addError(field, message string) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: message})
}

func (r *Result) addWarning(field, message string) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: message})
}

// Validator checks extracted records for internal consistency: field formats,
// plausible date ranges and identifier shapes. It never blocks extraction;
// findings surface as processing notes on the record.
type Validator struct{}

// NewValidator creates a new record validator
func NewValidator() *Validator {
	return &Validator{}
}

var (
	vinShape   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	plateShape = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dotShape   = regexp.MustCompile(`^\d{5,8}$`)
	cdlShape   = regexp.MustCompile(`^[A-Z0-9-]{8,}$`)
	stateAbbr  = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Year bounds for plausible vehicle and document dates.
const (
	minPlausibleYear = 1990
	maxPlausibleYear = 2050
)

// ValidateVehicle validates an extracted vehicle record.
func (v *Validator) ValidateVehicle(rec *domain.ExtractedVehicleRecord) *Result {
	res := &Result{}

	if rec.VIN != "" && !vinShape.MatchString(rec.VIN) {
		res.addError("vin", "must be 17 characters from [A-HJ-NPR-Z0-9]")
	}

	if rec.LicensePlate != "" && !plateShape.MatchString(rec.LicensePlate) {
		res.addError("license_plate", "must be 2-8 alphanumeric characters")
	}

	if rec.Year != 0 {
		maxYear := time.Now().Year() + 1
		if rec.Year <= minPlausibleYear || rec.Year > maxYear {
			res.addWarning("year", fmt.Sprintf("%d is outside the plausible range (%d, %d]", rec.Year, minPlausibleYear, maxYear))
		}
	}

	if rec.DOTNumber != "" && !dotShape.MatchString(rec.DOTNumber) {
		res.addWarning("dot_number", "expected 5-8 digits")
	}

	if rec.RegistrationState != "" && !stateAbbr.MatchString(rec.RegistrationState) {
		res.addError("registration_state", "must be a 2-letter state abbreviation")
	}

	v.checkExpiryDate(res, "registration_expiry", rec.RegistrationExpiry)
	v.checkExpiryDate(res, "insurance_expiry", rec.InsuranceExpiry)

	return res
}

// ValidateDriver validates an extracted driver record.
func (v *Validator) ValidateDriver(rec *domain.ExtractedDriverRecord) *Result {
	res := &Result{}

	if rec.CDLNumber != "" && !cdlShape.MatchString(rec.CDLNumber) {
		res.addError("cdl_number", "must be at least 8 alphanumeric characters")
	}

	if rec.CDLClass != "" && rec.CDLClass != "A" && rec.CDLClass != "B" && rec.CDLClass != "C" {
		res.addError("cdl_class", "must be A, B or C")
	}

	if rec.CDLState != "" && !stateAbbr.MatchString(rec.CDLState) {
		res.addError("cdl_state", "must be a 2-letter state abbreviation")
	}

	v.checkStandardizedDate(res, "date_of_birth", rec.DateOfBirth)
	v.checkStandardizedDate(res, "cdl_issue_date", rec.CDLIssueDate)
	v.checkStandardizedDate(res, "cdl_expiration_date", rec.CDLExpirationDate)
	v.checkStandardizedDate(res, "medical_issue_date", rec.MedicalIssueDate)
	v.checkStandardizedDate(res, "medical_expiration_date", rec.MedicalExpirationDate)

	if rec.DateOfBirth != "" {
		if dob, err := time.Parse("2006-01-02", rec.DateOfBirth); err == nil {
			age := time.Since(dob).Hours() / 24 / 365.25
			if age < 18 || age > 100 {
				res.addWarning("date_of_birth", "implausible age for a commercial driver")
			}
		}
	}

	if rec.MedicalIssueDate != "" && rec.MedicalExpirationDate != "" {
		issue, err1 := time.Parse("2006-01-02", rec.MedicalIssueDate)
		exp, err2 := time.Parse("2006-01-02", rec.MedicalExpirationDate)
		if err1 == nil && err2 == nil && exp.Before(issue) {
			res.addError("medical_expiration_date", "expiration precedes issue date")
		}
	}

	if rec.MedicalExpirationDate != "" {
		if exp, err := time.Parse("2006-01-02", rec.MedicalExpirationDate); err == nil && exp.Before(time.Now()) {
			res.addWarning("medical_expiration_date", "medical certificate is expired")
		}
	}

	return res
}

// checkExpiryDate validates a vehicle-path expiry date. These are kept in
// whatever textual form they were extracted, so unparseable values are a
// warning, not an error.
func (v *Validator) checkExpiryDate(res *Result, field, value string) {
	if value == "" {
		return
	}

	parsed, ok := parseLooseDate(value)
	if !ok {
		res.addWarning(field, "unrecognized date format")
		return
	}

	if parsed.Year() <= minPlausibleYear || parsed.Year() >= maxPlausibleYear {
		res.addError(field, fmt.Sprintf("year %d is outside the plausible range", parsed.Year()))
		return
	}

	if parsed.Before(time.Now()) {
		res.addWarning(field, "document appears to be expired")
	}
}

// checkStandardizedDate validates a driver-path date that must already be in
// YYYY-MM-DD form.
func (v *Validator) checkStandardizedDate(res *Result, field, value string) {
	if value == "" {
		return
	}

	if !isoDate.MatchString(value) {
		res.addError(field, "must be in YYYY-MM-DD format")
		return
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		res.addError(field, "not a real calendar date")
		return
	}

	if parsed.Year() <= 1900 || parsed.Year() >= maxPlausibleYear {
		res.addError(field, fmt.Sprintf("year %d is outside the plausible range", parsed.Year()))
	}
}

var looseDateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// parseLooseDate parses the mixed textual date forms the vehicle path leaves
// unstandardized. OCR text is usually all-caps, so month names are title-cased
// before matching time layouts.
func parseLooseDate(value string) (time.Time, bool) {
	value = titleCaseWords(strings.TrimSpace(value))
	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 1 && w[0] >= 'A' && w[0] <= 'Z' {
			words[i] = string(w[0]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
