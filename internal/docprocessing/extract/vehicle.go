package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/identity"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/trucknum"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/validation"
)

// Confidence starts at the baseline and moves by a fixed delta per matched
// field; a failed validation multiplies the total once. Centralizing the
// deltas keeps the final score auditable.
const (
	baseConfidence = 0.5

	deltaVIN         = 0.25
	deltaPlate       = 0.15
	deltaExpiryDate  = 0.2
	deltaYear        = 0.1
	deltaDOTNumber   = 0.1
	deltaMake        = 0.15
	deltaModel       = 0.1
	deltaRegNumber   = 0.1
	deltaRegState    = 0.05
	deltaOwner       = 0.1
	deltaCarrier     = 0.1
	deltaPolicy      = 0.1
	deltaCoverage    = 0.05
	deltaTruckText   = 0.15
	deltaTruckDerive = 0.1

	validationPenalty = 0.8
	reviewThreshold   = 0.7
)

const reviewNote = "Low extraction quality - manual review recommended"

// Extractor turns raw OCR text into structured vehicle and driver records.
// It never fails: fields whose patterns find nothing stay absent and the
// confidence score simply is not incremented.
type Extractor struct {
	validator *validation.Validator
}

// New creates a field extractor
func New() *Extractor {
	return &Extractor{validator: validation.NewValidator()}
}

// vehicleStep is one ordered extraction step. Steps run in sequence; each
// returns the confidence delta it earned (0 when its patterns missed).
type vehicleStep func(text string, rec *domain.ExtractedVehicleRecord) float64

// ExtractVehicle extracts a structured vehicle record from document text.
// docType should be registration, insurance or unknown.
func (e *Extractor) ExtractVehicle(text string, docType domain.DocumentType, sourceFileName string) *domain.ExtractedVehicleRecord {
	rec := &domain.ExtractedVehicleRecord{
		DocumentType:         docType,
		ExtractionConfidence: baseConfidence,
		SourceFileName:       sourceFileName,
		ProcessingNotes:      []string{},
	}

	steps := []vehicleStep{
		extractVIN,
		extractPlate,
		extractExpiryDate,
		extractYear,
		extractDOTNumber,
		extractMake,
		extractModel,
		e.extractTypeSpecific,
		e.extractTruckNumber,
	}

	for _, step := range steps {
		rec.ExtractionConfidence += step(text, rec)
	}

	result := e.validator.ValidateVehicle(rec)
	for _, issue := range result.Errors {
		rec.ProcessingNotes = append(rec.ProcessingNotes, fmt.Sprintf("Validation error - %s: %s", issue.Field, issue.Message))
	}
	if result.Failed() {
		rec.ExtractionConfidence *= validationPenalty
	}
	for _, issue := range result.Warnings {
		rec.ProcessingNotes = append(rec.ProcessingNotes, fmt.Sprintf("Warning - %s: %s", issue.Field, issue.Message))
	}

	rec.NeedsReview = rec.ExtractionConfidence < reviewThreshold || rec.VIN == "" || result.Failed()
	if rec.NeedsReview {
		rec.ProcessingNotes = append(rec.ProcessingNotes, reviewNote)
	}

	return rec
}

func extractVIN(text string, rec *domain.ExtractedVehicleRecord) float64 {
	if m := vinLabeled.FindStringSubmatch(text); m != nil {
		if vin := identity.NormalizeVIN(m[1]); identity.IsValidVIN(vin) {
			rec.VIN = vin
			return deltaVIN
		}
	}

	for _, candidate := range vinBare.FindAllString(text, -1) {
		if vin := identity.NormalizeVIN(candidate); identity.IsValidVIN(vin) {
			rec.VIN = vin
			return deltaVIN
		}
	}

	return 0
}

func extractPlate(text string, rec *domain.ExtractedVehicleRecord) float64 {
	if m := plateLabeled.FindStringSubmatch(strings.ToUpper(text)); m != nil {
		if plate := identity.NormalizePlate(m[1]); plateAcceptable(plate, rec.VIN) {
			rec.LicensePlate = plate
			return deltaPlate
		}
	}

	upper := strings.ToUpper(text)
	for _, shape := range plateShapes {
		for _, candidate := range shape.FindAllString(upper, -1) {
			plate := identity.NormalizePlate(candidate)
			if plateAcceptable(plate, rec.VIN) {
				rec.LicensePlate = plate
				return deltaPlate
			}
		}
	}

	return 0
}

// plateAcceptable rejects implausible lengths and candidates that are really
// a fragment of the already-extracted VIN.
func plateAcceptable(plate, vin string) bool {
	if len(plate) < 2 || len(plate) > 8 {
		return false
	}
	if vin != "" && strings.Contains(vin, plate) {
		return false
	}
	return true
}

// extractExpiryDate assigns the first date found to the expiry field matching
// the document type. The textual form is preserved as matched; vehicle-path
// dates are not standardized.
func extractExpiryDate(text string, rec *domain.ExtractedVehicleRecord) float64 {
	date, ok := firstVehicleDate(text)
	if !ok {
		return 0
	}

	if rec.DocumentType == domain.DocumentTypeInsurance {
		rec.InsuranceExpiry = date
	} else {
		rec.RegistrationExpiry = date
	}
	return deltaExpiryDate
}

func extractYear(text string, rec *domain.ExtractedVehicleRecord) float64 {
	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	rec.Year = year
	return deltaYear
}

func extractDOTNumber(text string, rec *domain.ExtractedVehicleRecord) float64 {
	m := dotPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	rec.DOTNumber = m[1]
	return deltaDOTNumber
}

func extractMake(text string, rec *domain.ExtractedVehicleRecord) float64 {
	if m := makeLabeled.FindStringSubmatch(text); m != nil {
		name := strings.ToUpper(strings.TrimSpace(m[1]))
		if canonical, ok := makeAliases[name]; ok {
			name = canonical
		}
		rec.Make = name
		return deltaMake
	}

	upper := strings.ToUpper(text)
	for _, name := range truckMakes {
		if strings.Contains(upper, name) {
			rec.Make = name
			return deltaMake
		}
	}
	for _, alias := range makeAliasOrder {
		if strings.Contains(upper, alias) {
			rec.Make = makeAliases[alias]
			return deltaMake
		}
	}

	return 0
}

// extractModel only runs when a make was found; a model name without a
// manufacturer is too likely a false positive.
func extractModel(text string, rec *domain.ExtractedVehicleRecord) float64 {
	if rec.Make == "" {
		return 0
	}

	if m := modelLabeled.FindStringSubmatch(text); m != nil {
		rec.Model = strings.ToUpper(strings.TrimSpace(m[1]))
		return deltaModel
	}

	upper := strings.ToUpper(text)
	for _, model := range truckModels {
		if strings.Contains(upper, model) {
			rec.Model = model
			return deltaModel
		}
	}

	return 0
}

func (e *Extractor) extractTypeSpecific(text string, rec *domain.ExtractedVehicleRecord) float64 {
	switch rec.DocumentType {
	case domain.DocumentTypeRegistration:
		return extractRegistrationFields(text, rec)
	case domain.DocumentTypeInsurance:
		return extractInsuranceFields(text, rec)
	}
	return 0
}

func extractRegistrationFields(text string, rec *domain.ExtractedVehicleRecord) float64 {
	var delta float64

	if m := regNumberLabeled.FindStringSubmatch(text); m != nil {
		rec.RegistrationNumber = strings.ToUpper(m[1])
		delta += deltaRegNumber
	} else if m := regNumberShape.FindString(strings.ToUpper(text)); m != "" {
		candidate := identity.NormalizePlate(m)
		if candidate != rec.LicensePlate && !strings.Contains(rec.VIN, candidate) {
			rec.RegistrationNumber = candidate
			delta += deltaRegNumber
		}
	}

	if state, ok := extractState(text); ok {
		rec.RegistrationState = state
		delta += deltaRegState
	}

	if m := ownerLabeled.FindStringSubmatch(text); m != nil {
		rec.RegisteredOwner = strings.TrimRight(strings.TrimSpace(m[1]), ".,")
		delta += deltaOwner
	}

	return delta
}

func extractInsuranceFields(text string, rec *domain.ExtractedVehicleRecord) float64 {
	var delta float64

	if m := carrierLabeled.FindStringSubmatch(text); m != nil {
		rec.InsuranceCarrier = strings.TrimRight(strings.TrimSpace(m[1]), ".,")
		delta += deltaCarrier
	} else {
		upper := strings.ToUpper(text)
		for _, carrier := range insuranceCarriers {
			if strings.Contains(upper, carrier) {
				rec.InsuranceCarrier = carrier
				delta += deltaCarrier
				break
			}
		}
	}

	if m := policyLabeled.FindStringSubmatch(text); m != nil {
		rec.PolicyNumber = strings.ToUpper(m[1])
		delta += deltaPolicy
	}

	if m := coverageAmount.FindString(text); m != "" {
		rec.CoverageAmount = m
		delta += deltaCoverage
	}

	return delta
}

// extractState finds a registration state via a labeled 2-letter abbreviation
// or a full state name anywhere in the text.
func extractState(text string) (string, bool) {
	if m := stateLabeled.FindStringSubmatch(text); m != nil {
		abbr := strings.ToUpper(m[1])
		if isStateAbbr(abbr) {
			return abbr, true
		}
	}

	upper := strings.ToUpper(text)
	for _, name := range stateNameOrder {
		if strings.Contains(upper, name) {
			return stateNames[name], true
		}
	}

	return "", false
}

func isStateAbbr(abbr string) bool {
	for _, a := range stateNames {
		if a == abbr {
			return true
		}
	}
	return false
}

// extractTruckNumber resolves the fleet unit number: labeled document text
// first, then a derivation from the extracted identifiers as a fallback.
func (e *Extractor) extractTruckNumber(text string, rec *domain.ExtractedVehicleRecord) float64 {
	candidates := trucknum.ParseFromDocumentText(text)
	if best, ok := trucknum.Best(candidates); ok {
		rec.TruckNumber = best.TruckNumber
		rec.ProcessingNotes = append(rec.ProcessingNotes,
			fmt.Sprintf("Truck number %s parsed from document text (%s)", best.TruckNumber, best.Source))
		return deltaTruckText
	}

	if rec.VIN == "" || rec.LicensePlate == "" {
		return 0
	}

	derived := trucknum.ParseFromIdentifiers(rec.VIN, rec.LicensePlate, rec.RegistrationNumber)
	if derived.Confidence == trucknum.ConfidenceLow {
		return 0
	}

	rec.TruckNumber = derived.TruckNumber
	if derived.NeedsReview {
		rec.ProcessingNotes = append(rec.ProcessingNotes,
			fmt.Sprintf("Truck number %s derived from %s - needs review", derived.TruckNumber, derived.Source))
	}
	return deltaTruckDerive
}
