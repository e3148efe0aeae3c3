package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/extract"
)

// The deduplication pass catches records that describe the same vehicle or
// driver but survived grouping under different identity keys, e.g. a
// registration grouped by VIN and an insurance certificate for the same
// vehicle grouped by plate because its VIN failed to extract.

// vehicleDedupeKeys lists a vehicle's duplicate-detection keys, strongest
// first. VIN fragments of 10+ characters are trusted even when the full
// 17-character VIN did not survive OCR.
func vehicleDedupeKeys(rec *domain.ExtractedVehicleRecord) []string {
	var keys []string

	if len(rec.VIN) >= 10 {
		keys = append(keys, "vin:"+rec.VIN)
	}
	if rec.RegistrationState != "" && rec.RegistrationNumber != "" {
		keys = append(keys, "regnum:"+rec.RegistrationState+":"+rec.RegistrationNumber)
	}
	if rec.RegistrationState != "" && rec.LicensePlate != "" {
		keys = append(keys, "plate:"+rec.RegistrationState+":"+rec.LicensePlate)
	}
	if rec.PolicyNumber != "" {
		keys = append(keys, "policy:"+rec.PolicyNumber)
	}

	return keys
}

func driverDedupeKeys(rec *domain.ExtractedDriverRecord) []string {
	var keys []string

	if rec.CDLState != "" && rec.CDLNumber != "" {
		keys = append(keys, "cdl:"+rec.CDLState+":"+rec.CDLNumber)
	}
	if rec.MedicalCertNumber != "" {
		keys = append(keys, "med:"+rec.MedicalCertNumber)
	}
	if rec.EmployeeID != "" {
		keys = append(keys, "emp:"+rec.EmployeeID)
	}
	if rec.FirstName != "" && rec.LastName != "" && rec.DateOfBirth != "" {
		keys = append(keys, "name:"+strings.ToLower(rec.FirstName+" "+rec.LastName)+":"+rec.DateOfBirth)
	}

	return keys
}

// assignBuckets groups record indices by duplicate-detection key. A record
// joins the first of its keys that already has a bucket; otherwise it opens
// a new bucket under its first key. Records with no keys stay singletons.
// Bucket order follows first appearance, so output order is deterministic.
func assignBuckets(n int, keysOf func(int) []string) [][]int {
	var buckets [][]int
	byKey := make(map[string]int)

	for i := 0; i < n; i++ {
		keys := keysOf(i)

		assigned := false
		for _, key := range keys {
			if b, ok := byKey[key]; ok {
				buckets[b] = append(buckets[b], i)
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}

		buckets = append(buckets, []int{i})
		if len(keys) > 0 {
			byKey[keys[0]] = len(buckets) - 1
		}
	}

	return buckets
}

func (e *Engine) dedupeVehicles(records []domain.ConsolidatedVehicle) ([]domain.ConsolidatedVehicle, int) {
	buckets := assignBuckets(len(records), func(i int) []string {
		return vehicleDedupeKeys(&records[i].ExtractedVehicleRecord)
	})

	out := make([]domain.ConsolidatedVehicle, 0, len(buckets))
	removed := 0

	for _, bucket := range buckets {
		if len(bucket) == 1 {
			out = append(out, records[bucket[0]])
			continue
		}

		best := bucket[0]
		bestScore := e.vehicleScore(&records[best])
		for _, i := range bucket[1:] {
			if score := e.vehicleScore(&records[i]); score > bestScore {
				best, bestScore = i, score
			}
		}

		winner := records[best]
		var losers []string
		for _, i := range bucket {
			if i != best {
				losers = append(losers, records[i].SourceFileName)
			}
		}
		winner.ProcessingNotes = append(winner.ProcessingNotes,
			fmt.Sprintf("Removed %d duplicate record(s) during deduplication", len(losers)),
			"Duplicate sources: "+strings.Join(losers, ", "))

		out = append(out, winner)
		removed += len(losers)
	}

	return out, removed
}

func (e *Engine) dedupeDrivers(records []domain.ConsolidatedDriver) ([]domain.ConsolidatedDriver, int) {
	buckets := assignBuckets(len(records), func(i int) []string {
		return driverDedupeKeys(&records[i].ExtractedDriverRecord)
	})

	out := make([]domain.ConsolidatedDriver, 0, len(buckets))
	removed := 0

	for _, bucket := range buckets {
		if len(bucket) == 1 {
			out = append(out, records[bucket[0]])
			continue
		}

		best := bucket[0]
		bestScore := e.driverScore(&records[best])
		for _, i := range bucket[1:] {
			if score := e.driverScore(&records[i]); score > bestScore {
				best, bestScore = i, score
			}
		}

		winner := records[best]
		var losers []string
		for _, i := range bucket {
			if i != best {
				losers = append(losers, records[i].SourceFileName)
			}
		}
		winner.ProcessingNotes = append(winner.ProcessingNotes,
			fmt.Sprintf("Removed %d duplicate record(s) during deduplication", len(losers)),
			"Duplicate sources: "+strings.Join(losers, ", "))

		out = append(out, winner)
		removed += len(losers)
	}

	return out, removed
}

// Best-record scoring: 100x confidence, up to 50 recency points, up to 30
// completeness points, up to 20 source-trust points.

func (e *Engine) vehicleScore(rec *domain.ConsolidatedVehicle) float64 {
	score := 100 * rec.ExtractionConfidence
	score += e.recencyPoints(rec.RegistrationExpiry, rec.InsuranceExpiry)
	score += completenessPoints(
		rec.VIN != "",
		rec.LicensePlate != "",
		rec.Year != 0,
		rec.Make != "",
		rec.RegistrationExpiry != "",
		rec.InsuranceExpiry != "",
	)
	score += sourceTrustPoints(rec.SourceFileName)
	return score
}

func (e *Engine) driverScore(rec *domain.ConsolidatedDriver) float64 {
	score := 100 * rec.ExtractionConfidence
	score += e.recencyPoints(rec.MedicalExpirationDate, rec.CDLExpirationDate)
	score += completenessPoints(
		rec.FirstName != "",
		rec.LastName != "",
		rec.DateOfBirth != "",
		rec.CDLNumber != "",
		rec.CDLExpirationDate != "",
		rec.MedicalExpirationDate != "",
	)
	score += sourceTrustPoints(rec.SourceFileName)
	return score
}

// recencyPoints rewards recently-valid documents: 50 points for an expiry
// now or in the future, decaying 10 points per year of age, floored at 0.
// The first parseable date of the given candidates is used.
func (e *Engine) recencyPoints(dates ...string) float64 {
	for _, raw := range dates {
		t, ok := parseAnyDate(raw)
		if !ok {
			continue
		}

		ageYears := e.now().Sub(t).Hours() / (24 * 365.25)
		points := 50 - 10*ageYears
		if points < 0 {
			return 0
		}
		if points > 50 {
			return 50
		}
		return points
	}
	return 0
}

func completenessPoints(present ...bool) float64 {
	found := 0
	for _, p := range present {
		if p {
			found++
		}
	}
	return 30 * float64(found) / float64(len(present))
}

// sourceTrustRules rank filename provenance. First matching tier wins.
var sourceTrustRules = []struct {
	tokens []string
	points float64
}{
	{[]string{"dmv", "dot", "official"}, 20},
	{[]string{"insurance", "policy"}, 15},
	{[]string{"registration", "reg"}, 10},
}

func sourceTrustPoints(fileName string) float64 {
	lower := strings.ToLower(fileName)
	for _, rule := range sourceTrustRules {
		for _, token := range rule.tokens {
			if strings.Contains(lower, token) {
				return rule.points
			}
		}
	}
	return 5
}

// parseAnyDate reads an ISO date or any raw textual form the extractor
// preserves on vehicle expiry fields.
func parseAnyDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	iso, ok := extract.NormalizeDate(raw)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
