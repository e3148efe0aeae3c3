package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/identity"
)

// Identity key prefixes, strongest first. The prefix is part of the storage
// contract: persisted consolidated records are indexed by the full key.
const (
	keyPrefixVIN     = "VIN:"
	keyPrefixPlate   = "PLATE:"
	keyPrefixPattern = "PATTERN:"
	keyPrefixVehicle = "VEHICLE:"
	keyPrefixFile    = "FILE:"
)

// filenamePatterns extract a grouping token from the source filename when no
// real identifier was found on the document. Ordered, first match wins.
var filenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{3}`),
	regexp.MustCompile(`(?i)[A-Z]{2,3}\d{3,4}`),
	regexp.MustCompile(`(?i)MTS[-_]?\d+`),
	regexp.MustCompile(`(?i)(?:TRUCK|VEHICLE)[-_]?\d+`),
}

// vehicleKey derives the identity key a record groups under, in strict
// priority order: normalized VIN, normalized plate, filename pattern,
// make/model/year triple, raw filename. The filename fallbacks guarantee
// every record gets a key and is never dropped.
//
// Records are normalized defensively here: callers usually pass already
// normalized identifiers, but the key must not depend on that.
func (e *Engine) vehicleKey(rec *domain.ExtractedVehicleRecord) string {
	if vin := identity.NormalizeVIN(rec.VIN); len(vin) == 17 {
		return keyPrefixVIN + vin
	}

	if plate := identity.NormalizePlate(rec.LicensePlate); len(plate) >= 2 {
		return keyPrefixPlate + plate
	}

	if e.opts.FilenamePatternKeys {
		if token, ok := filenameToken(rec.SourceFileName); ok {
			return keyPrefixPattern + token
		}
	}

	if rec.Make != "" && rec.Model != "" && rec.Year != 0 {
		return fmt.Sprintf("%s%s_%s_%d", keyPrefixVehicle, rec.Make, rec.Model, rec.Year)
	}

	return keyPrefixFile + rec.SourceFileName
}

func filenameToken(fileName string) (string, bool) {
	for _, re := range filenamePatterns {
		if m := re.FindString(fileName); m != "" {
			return strings.ToUpper(m), true
		}
	}
	return "", false
}
