package extract

import (
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

// Output bundles the result of extracting one document. Exactly one of
// Vehicle/Driver is set.
type Output struct {
	Vehicle *domain.ExtractedVehicleRecord
	Driver  *domain.ExtractedDriverRecord
}

// Extract dispatches to the vehicle or driver path based on the classified
// document type. Unknown documents take the vehicle path, which degrades
// gracefully to a mostly-empty record flagged for review.
func (e *Extractor) Extract(text string, docType domain.DocumentType, sourceFileName string) Output {
	if docType.IsDriverType() {
		return Output{Driver: e.ExtractDriver(text, docType, sourceFileName)}
	}
	return Output{Vehicle: e.ExtractVehicle(text, docType, sourceFileName)}
}
