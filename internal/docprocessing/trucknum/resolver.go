package trucknum

import (
	"regexp"
	"strings"
)

// Confidence tiers for a resolved truck number. Callers accept high and
// medium results; low results are advisory only.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Candidate is one possible fleet unit number found in document text.
type Candidate struct {
	TruckNumber   string     `json:"truck_number"`
	Confidence    Confidence `json:"confidence"`
	Source        string     `json:"source"`
	OriginalValue string     `json:"original_value"`
}

// Result is a truck number derived from structured identifiers rather than
// labeled document text. Derived numbers always need review.
type Result struct {
	Candidate
	NeedsReview bool `json:"needs_review"`
}

// labelRule binds a labeled pattern to the confidence tier its matches earn.
// Rules run in order and every match becomes a candidate.
type labelRule struct {
	re         *regexp.Regexp
	source     string
	confidence Confidence
}

var labelRules = []labelRule{
	{regexp.MustCompile(`(?i)TRUCK\s*(?:#|NO\.?|NUMBER)?\s*[:=]?\s*([A-Z]?\d{1,5})\b`), "truck_label", ConfidenceHigh},
	{regexp.MustCompile(`(?i)UNIT\s*(?:#|NO\.?|NUMBER)?\s*[:=]?\s*([A-Z]?\d{1,5})\b`), "unit_label", ConfidenceHigh},
	{regexp.MustCompile(`(?i)FLEET\s*(?:#|NO\.?|NUMBER|ID)?\s*[:=]?\s*([A-Z]?\d{1,5})\b`), "fleet_label", ConfidenceMedium},
	{regexp.MustCompile(`(?i)VEHICLE\s*(?:#|NO\.?)\s*[:=]?\s*([A-Z]?\d{1,5})\b`), "vehicle_label", ConfidenceMedium},
	{regexp.MustCompile(`#\s*(\d{1,4})\b`), "bare_hash", ConfidenceLow},
}

var digitRun = regexp.MustCompile(`\d{2,4}`)

// ParseFromDocumentText scans free text for labeled fleet unit numbers and
// returns every candidate found, in rule order. Duplicate numbers are
// collapsed, keeping the first (highest-ranked) occurrence.
func ParseFromDocumentText(text string) []Candidate {
	var out []Candidate
	seen := make(map[string]bool)

	for _, rule := range labelRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			num := strings.ToUpper(strings.TrimLeft(m[1], "0"))
			if num == "" {
				num = "0"
			}
			if seen[num] {
				continue
			}
			seen[num] = true
			out = append(out, Candidate{
				TruckNumber:   num,
				Confidence:    rule.confidence,
				Source:        rule.source,
				OriginalValue: strings.TrimSpace(m[0]),
			})
		}
	}

	return out
}

// Best selects the preferred candidate: any high-confidence result first,
// otherwise the first non-low candidate. ok is false when nothing usable
// was found.
func Best(candidates []Candidate) (Candidate, bool) {
	for _, c := range candidates {
		if c.Confidence == ConfidenceHigh {
			return c, true
		}
	}
	for _, c := range candidates {
		if c.Confidence != ConfidenceLow {
			return c, true
		}
	}
	return Candidate{}, false
}

// ParseFromIdentifiers derives a unit number from already-extracted vehicle
// identifiers when no labeled number appears in the text. Fleet operators
// commonly assign unit numbers from plate digits or the VIN tail, so the
// derivation is useful but unverified: NeedsReview is always true.
func ParseFromIdentifiers(vin, licensePlate, registrationNumber string) Result {
	if licensePlate != "" {
		if run := digitRun.FindString(licensePlate); run != "" {
			return Result{
				Candidate: Candidate{
					TruckNumber:   strings.TrimLeft(run, "0"),
					Confidence:    ConfidenceMedium,
					Source:        "license_plate_digits",
					OriginalValue: licensePlate,
				},
				NeedsReview: true,
			}
		}
	}

	if len(vin) >= 17 {
		tail := vin[len(vin)-4:]
		if digits := digitRun.FindString(tail); digits != "" {
			return Result{
				Candidate: Candidate{
					TruckNumber:   strings.TrimLeft(digits, "0"),
					Confidence:    ConfidenceMedium,
					Source:        "vin_tail",
					OriginalValue: vin,
				},
				NeedsReview: true,
			}
		}
	}

	if registrationNumber != "" {
		if run := digitRun.FindString(registrationNumber); run != "" {
			return Result{
				Candidate: Candidate{
					TruckNumber:   strings.TrimLeft(run, "0"),
					Confidence:    ConfidenceLow,
					Source:        "registration_number_digits",
					OriginalValue: registrationNumber,
				},
				NeedsReview: true,
			}
		}
	}

	return Result{
		Candidate:   Candidate{Confidence: ConfidenceLow, Source: "none"},
		NeedsReview: true,
	}
}
