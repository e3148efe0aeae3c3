package extract

import (
	"fmt"
	"strings"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

const (
	deltaName        = 0.2
	deltaDOB         = 0.1
	deltaEmployeeID  = 0.05
	deltaMedCertNum  = 0.2
	deltaMedIssue    = 0.1
	deltaMedExpiry   = 0.2
	deltaExaminer    = 0.1
	deltaNatRegistry = 0.1
	deltaCDLNumber   = 0.25
	deltaCDLClass    = 0.1
	deltaCDLState    = 0.1
	deltaCDLIssue    = 0.1
	deltaCDLExpiry   = 0.15
	deltaEndorsement = 0.1
	deltaRestriction = 0.05
)

// ExtractDriver extracts a structured driver record from CDL or DOT medical
// certificate text. The same no-throw contract as the vehicle path applies.
func (e *Extractor) ExtractDriver(text string, docType domain.DocumentType, sourceFileName string) *domain.ExtractedDriverRecord {
	rec := &domain.ExtractedDriverRecord{
		DocumentType:         docType,
		ExtractionConfidence: baseConfidence,
		SourceFileName:       sourceFileName,
		ProcessingNotes:      []string{},
	}

	rec.ExtractionConfidence += extractName(text, rec)
	rec.ExtractionConfidence += extractDOB(text, rec)
	rec.ExtractionConfidence += extractEmployeeID(text, rec)

	switch docType {
	case domain.DocumentTypeMedicalCert:
		rec.ExtractionConfidence += extractMedicalFields(text, rec)
	case domain.DocumentTypeCDL:
		rec.ExtractionConfidence += extractCDLFields(text, rec)
	}

	result := e.validator.ValidateDriver(rec)
	for _, issue := range result.Errors {
		rec.ProcessingNotes = append(rec.ProcessingNotes, fmt.Sprintf("Validation error - %s: %s", issue.Field, issue.Message))
	}
	if result.Failed() {
		rec.ExtractionConfidence *= validationPenalty
	}
	for _, issue := range result.Warnings {
		rec.ProcessingNotes = append(rec.ProcessingNotes, fmt.Sprintf("Warning - %s: %s", issue.Field, issue.Message))
	}

	noName := rec.FirstName == "" || rec.LastName == ""
	rec.NeedsReview = rec.ExtractionConfidence < reviewThreshold || noName || result.Failed()
	if rec.NeedsReview {
		rec.ProcessingNotes = append(rec.ProcessingNotes, reviewNote)
	}

	return rec
}

// extractName tries the name rules in order; the first match that splits into
// at least two tokens becomes firstName + lastName (remainder joined).
func extractName(text string, rec *domain.ExtractedDriverRecord) float64 {
	for _, rule := range nameRules {
		m := rule.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		tokens := strings.Fields(strings.TrimSpace(m[1]))
		if len(tokens) < 2 {
			continue
		}

		rec.FirstName = tokens[0]
		rec.LastName = strings.Join(tokens[1:], " ")
		return deltaName
	}

	return 0
}

func extractDOB(text string, rec *domain.ExtractedDriverRecord) float64 {
	date, ok := extractNormalizedDate(dobPattern, text)
	if !ok {
		return 0
	}
	rec.DateOfBirth = date
	return deltaDOB
}

func extractEmployeeID(text string, rec *domain.ExtractedDriverRecord) float64 {
	m := employeeIDPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	rec.EmployeeID = strings.ToUpper(m[1])
	return deltaEmployeeID
}

func extractMedicalFields(text string, rec *domain.ExtractedDriverRecord) float64 {
	var delta float64

	if m := medCertNumber.FindStringSubmatch(text); m != nil {
		rec.MedicalCertNumber = strings.ToUpper(m[1])
		delta += deltaMedCertNum
	}

	if date, ok := extractNormalizedDate(medIssueDate, text); ok {
		rec.MedicalIssueDate = date
		delta += deltaMedIssue
	}

	if date, ok := extractNormalizedDate(medExpiryDate, text); ok {
		rec.MedicalExpirationDate = date
		delta += deltaMedExpiry
	}

	if m := examinerName.FindStringSubmatch(text); m != nil {
		rec.ExaminerName = strings.TrimRight(strings.TrimSpace(m[1]), ".,")
		delta += deltaExaminer
	}

	if m := nationalReg.FindStringSubmatch(text); m != nil {
		rec.ExaminerNationalRegistry = m[1]
		delta += deltaNatRegistry
	}

	if restrictions, found := extractRestrictions(text); found {
		rec.MedicalRestrictions = restrictions
		delta += deltaRestriction
	}

	return delta
}

func extractCDLFields(text string, rec *domain.ExtractedDriverRecord) float64 {
	var delta float64

	if m := cdlNumberLabeled.FindStringSubmatch(text); m != nil {
		rec.CDLNumber = strings.ToUpper(m[1])
		delta += deltaCDLNumber
	}

	if m := cdlClassLabeled.FindStringSubmatch(text); m != nil {
		rec.CDLClass = strings.ToUpper(m[1])
		delta += deltaCDLClass
	}

	if state, ok := extractCDLState(text); ok {
		rec.CDLState = state
		delta += deltaCDLState
	}

	if date, ok := extractNormalizedDate(cdlIssueDate, text); ok {
		rec.CDLIssueDate = date
		delta += deltaCDLIssue
	}

	if date, ok := extractNormalizedDate(cdlExpiryDate, text); ok {
		rec.CDLExpirationDate = date
		delta += deltaCDLExpiry
	}

	if endorsements := extractEndorsements(text); len(endorsements) > 0 {
		rec.CDLEndorsements = endorsements
		delta += deltaEndorsement
	}

	if restrictions, found := extractRestrictions(text); found {
		rec.CDLRestrictions = restrictions
		delta += deltaRestriction
	}

	return delta
}

func extractCDLState(text string) (string, bool) {
	if m := stateLabeled.FindStringSubmatch(text); m != nil {
		abbr := strings.ToUpper(m[1])
		if isStateAbbr(abbr) {
			return abbr, true
		}
	}

	if m := cdlStateDMV.FindStringSubmatch(strings.ToUpper(text)); m != nil {
		if isStateAbbr(m[1]) {
			return m[1], true
		}
	}

	return "", false
}

// extractEndorsements parses the structured ENDORSEMENTS section first:
// "LETTER - description" lines restricted to the valid endorsement set.
// Without a structured section it falls back to a compact letter list.
// Order is preserved, duplicates removed.
func extractEndorsements(text string) []string {
	loc := endorsementSection.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	section := text[loc[1]:]

	var out []string
	seen := make(map[string]bool)

	for _, m := range endorsementLine.FindAllStringSubmatch(section, -1) {
		letter := m[1]
		if !validEndorsements[letter] || seen[letter] {
			continue
		}
		seen[letter] = true
		out = append(out, letter)
	}

	if len(out) > 0 {
		return out
	}

	// Compact form: "ENDORSEMENTS: H, N"
	if m := endorsementCompact.FindStringSubmatch(text); m != nil {
		for _, tok := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ' ' }) {
			letter := strings.ToUpper(strings.TrimSpace(tok))
			if len(letter) != 1 || !validEndorsements[letter] || seen[letter] {
				continue
			}
			seen[letter] = true
			out = append(out, letter)
		}
	}

	return out
}

// extractRestrictions collects all restriction-line matches. An explicit
// "NONE" counts as found but yields no entries.
func extractRestrictions(text string) ([]string, bool) {
	matches := restrictionRow.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, false
	}

	var out []string
	for _, m := range matches {
		value := strings.TrimSpace(m[1])
		if strings.EqualFold(value, "NONE") {
			continue
		}
		out = append(out, value)
	}

	return out, true
}
