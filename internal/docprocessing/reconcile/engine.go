package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

// Options tunes the engine's fallback behavior. The filename-derived PATTERN
// key can conflate distinct vehicles that share a numbering convention, so
// operators with collision-prone filenames can turn it off and accept more
// unmerged groups instead.
type Options struct {
	FilenamePatternKeys bool
}

// DefaultOptions enables the filename pattern fallback.
func DefaultOptions() Options {
	return Options{FilenamePatternKeys: true}
}

// Engine reconciles per-document extraction results into consolidated
// vehicle and driver records: grouping by identity key, field-level merge,
// then a deduplication pass. It is a whole-batch operation over in-memory
// records with no shared state; separate batches may run in parallel.
type Engine struct {
	opts Options
	now  func() time.Time
}

// NewEngine creates a reconciliation engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts, now: time.Now}
}

// Reconcile consumes a batch of extraction results and produces consolidated
// records. Input order matters for field precedence: when two records in the
// same group both carry a valid value, the later one wins, so callers should
// pass records in upload order.
func (e *Engine) Reconcile(vehicles []*domain.ExtractedVehicleRecord, drivers []*domain.ExtractedDriverRecord) *domain.ReconcileResult {
	summary := domain.ReconcileSummary{
		VehiclesIn: len(vehicles),
		DriversIn:  len(drivers),
	}

	groups := e.groupVehicles(vehicles, &summary)
	groups, removed := e.dedupeVehicles(groups)
	summary.VehicleDuplicatesRemoved = removed

	consolidated := e.wrapDrivers(drivers)
	consolidated, removed = e.dedupeDrivers(consolidated)
	summary.DriverDuplicatesRemoved = removed

	return &domain.ReconcileResult{
		Vehicles: groups,
		Drivers:  consolidated,
		Summary:  summary,
	}
}

// groupVehicles assigns every record to exactly one group by identity key.
// A record whose key is unseen opens a new group; otherwise it merges into
// the existing one.
func (e *Engine) groupVehicles(records []*domain.ExtractedVehicleRecord, summary *domain.ReconcileSummary) []domain.ConsolidatedVehicle {
	groups := make([]domain.ConsolidatedVehicle, 0, len(records))
	index := make(map[string]int, len(records))

	for _, rec := range records {
		key := e.vehicleKey(rec)
		if i, ok := index[key]; ok {
			e.mergeVehicle(&groups[i], rec)
			summary.Merged++
			continue
		}

		index[key] = len(groups)
		groups = append(groups, newVehicleGroup(key, rec))
		summary.NewGroups++
	}

	return groups
}

// newVehicleGroup copies the record into a fresh group; input records are
// never mutated.
func newVehicleGroup(key string, rec *domain.ExtractedVehicleRecord) domain.ConsolidatedVehicle {
	group := domain.ConsolidatedVehicle{
		Key:                    key,
		ExtractedVehicleRecord: *rec,
		SourceCount:            1,
	}
	group.ProcessingNotes = append([]string{}, rec.ProcessingNotes...)
	return group
}

// mergeVehicle folds an incoming record into an existing group field by
// field. A field-specific validity predicate decides precedence: a valid
// incoming value wins, a valid existing value survives an invalid incoming
// one, and merely non-empty beats empty.
func (e *Engine) mergeVehicle(group *domain.ConsolidatedVehicle, incoming *domain.ExtractedVehicleRecord) {
	group.VIN = pick(group.VIN, incoming.VIN, validVIN)
	group.LicensePlate = pick(group.LicensePlate, incoming.LicensePlate, validPlate)
	group.Year = pickYear(group.Year, incoming.Year, e.now())
	group.Make = pick(group.Make, incoming.Make, nonEmpty)
	group.Model = pick(group.Model, incoming.Model, nonEmpty)
	group.TruckNumber = pick(group.TruckNumber, incoming.TruckNumber, nonEmpty)
	group.DOTNumber = pick(group.DOTNumber, incoming.DOTNumber, nonEmpty)
	group.RegistrationNumber = pick(group.RegistrationNumber, incoming.RegistrationNumber, nonEmpty)
	group.RegistrationState = pick(group.RegistrationState, incoming.RegistrationState, nonEmpty)
	group.RegistrationExpiry = pick(group.RegistrationExpiry, incoming.RegistrationExpiry, validDate)
	group.RegisteredOwner = pick(group.RegisteredOwner, incoming.RegisteredOwner, nonEmpty)
	group.InsuranceCarrier = pick(group.InsuranceCarrier, incoming.InsuranceCarrier, nonEmpty)
	group.PolicyNumber = pick(group.PolicyNumber, incoming.PolicyNumber, nonEmpty)
	group.InsuranceExpiry = pick(group.InsuranceExpiry, incoming.InsuranceExpiry, validDate)
	group.CoverageAmount = pick(group.CoverageAmount, incoming.CoverageAmount, nonEmpty)

	group.DocumentType = combineDocumentTypes(group.DocumentType, incoming.DocumentType)
	group.SourceFileName = group.SourceFileName + ", " + incoming.SourceFileName

	group.ProcessingNotes = append(group.ProcessingNotes, incoming.ProcessingNotes...)
	group.ProcessingNotes = append(group.ProcessingNotes,
		fmt.Sprintf("Merged data from %s document: %s", incoming.DocumentType, incoming.SourceFileName))

	if incoming.ExtractionConfidence > group.ExtractionConfidence {
		group.ExtractionConfidence = incoming.ExtractionConfidence
	}
	group.NeedsReview = group.NeedsReview || incoming.NeedsReview
	group.SourceCount++
}

// wrapDrivers lifts each driver record into a consolidated entry. Driver
// reconciliation has no merge step: the dedup pass that follows removes
// near-identical records, keeping the best one.
func (e *Engine) wrapDrivers(records []*domain.ExtractedDriverRecord) []domain.ConsolidatedDriver {
	out := make([]domain.ConsolidatedDriver, 0, len(records))
	for _, rec := range records {
		entry := domain.ConsolidatedDriver{
			ExtractedDriverRecord: *rec,
			SourceCount:           1,
		}
		entry.ProcessingNotes = append([]string{}, rec.ProcessingNotes...)

		if keys := driverDedupeKeys(rec); len(keys) > 0 {
			entry.Key = keys[0]
		} else {
			entry.Key = keyPrefixFile + rec.SourceFileName
		}
		out = append(out, entry)
	}
	return out
}

// pick resolves a scalar merge: valid incoming > valid existing > non-empty
// incoming > existing.
func pick(existing, incoming string, valid func(string) bool) string {
	if valid(incoming) {
		return incoming
	}
	if valid(existing) {
		return existing
	}
	if incoming != "" {
		return incoming
	}
	return existing
}

func pickYear(existing, incoming int, now time.Time) int {
	valid := func(y int) bool { return y > 1990 && y <= now.Year()+1 }
	if valid(incoming) {
		return incoming
	}
	if valid(existing) {
		return existing
	}
	if incoming != 0 {
		return incoming
	}
	return existing
}

func validVIN(s string) bool   { return len(s) == 17 }
func validPlate(s string) bool { return len(s) >= 2 }
func nonEmpty(s string) bool   { return s != "" }

// validDate accepts a date string whose year falls in (1990, 2050). Vehicle
// expiry dates keep their raw textual form, so both ISO and unstandardized
// inputs must parse.
func validDate(s string) bool {
	year, ok := dateYear(s)
	return ok && year > 1990 && year < 2050
}

// dateYear extracts the year from an ISO or raw textual date.
func dateYear(s string) (int, bool) {
	t, ok := parseAnyDate(s)
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

// combineDocumentTypes unions the "+"-separated parts of both values and
// joins them sorted, so merge order never changes the combined type.
func combineDocumentTypes(a, b domain.DocumentType) domain.DocumentType {
	if a == b {
		return a
	}

	seen := make(map[string]bool)
	var parts []string
	for _, v := range []domain.DocumentType{a, b} {
		for _, part := range strings.Split(string(v), "+") {
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			parts = append(parts, part)
		}
	}
	sort.Strings(parts)
	return domain.DocumentType(strings.Join(parts, "+"))
}
