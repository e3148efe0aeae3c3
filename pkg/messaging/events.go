package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Document events
	EventDocumentReceived  = "document.received"
	EventDocumentProcessed = "document.processed"
	EventDocumentFailed    = "document.failed"

	// Reconciliation events
	EventBatchReconciled     = "batch.reconciled"
	EventVehicleConsolidated = "fleet.vehicle.consolidated"
	EventDriverConsolidated  = "fleet.driver.consolidated"

	// Compliance events
	EventComplianceReviewNeeded = "compliance.review.needed"
)

// Exchange names
const (
	ExchangeDocumentEvents = "document.events"
	ExchangeFleetEvents    = "fleet.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Document Events

// DocumentReceivedEvent is published when a document's text arrives for
// extraction, before processing starts.
type DocumentReceivedEvent struct {
	JobID        string `json:"job_id,omitempty"`
	FileName     string `json:"file_name"`
	Text         string `json:"text"`
	DocumentType string `json:"document_type,omitempty"` // caller-declared hint, may be empty
}

// DocumentProcessedEvent is published when extraction of one document completes
type DocumentProcessedEvent struct {
	JobID                string  `json:"job_id"`
	FileName             string  `json:"file_name"`
	DocumentType         string  `json:"document_type"`
	ClassifierConfidence float64 `json:"classifier_confidence"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
	NeedsReview          bool    `json:"needs_review"`
}

// DocumentFailedEvent is published when a document cannot be processed
type DocumentFailedEvent struct {
	JobID    string `json:"job_id"`
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// Reconciliation Events

// BatchReconciledEvent is published after a reconciliation run over a batch
// of extraction results.
type BatchReconciledEvent struct {
	BatchID                  string `json:"batch_id"`
	VehiclesIn               int    `json:"vehicles_in"`
	DriversIn                int    `json:"drivers_in"`
	ConsolidatedVehicles     int    `json:"consolidated_vehicles"`
	ConsolidatedDrivers      int    `json:"consolidated_drivers"`
	NewGroups                int    `json:"new_groups"`
	Merged                   int    `json:"merged"`
	VehicleDuplicatesRemoved int    `json:"vehicle_duplicates_removed"`
	DriverDuplicatesRemoved  int    `json:"driver_duplicates_removed"`
}

// VehicleConsolidatedEvent is published per consolidated vehicle written to
// storage, so downstream compliance dashboards can refresh incrementally.
type VehicleConsolidatedEvent struct {
	IdentityKey string `json:"identity_key"`
	VIN         string `json:"vin,omitempty"`
	TruckNumber string `json:"truck_number,omitempty"`
	SourceCount int    `json:"source_count"`
	NeedsReview bool   `json:"needs_review"`
}

// DriverConsolidatedEvent is the driver-side counterpart
type DriverConsolidatedEvent struct {
	IdentityKey string `json:"identity_key"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	SourceCount int    `json:"source_count"`
	NeedsReview bool   `json:"needs_review"`
}

// Compliance Events

// ComplianceReviewNeededEvent is published when an extracted or consolidated
// record is flagged for manual review.
type ComplianceReviewNeededEvent struct {
	RecordKind  string   `json:"record_kind"` // vehicle or driver
	IdentityKey string   `json:"identity_key,omitempty"`
	FileName    string   `json:"file_name"`
	Notes       []string `json:"notes,omitempty"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
