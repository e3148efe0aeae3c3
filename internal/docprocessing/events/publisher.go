package events

import (
	"context"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
	"github.com/fleetdocs/fleetdocs-backend/pkg/messaging"
)

// DocumentEventPublisher publishes document processing events
type DocumentEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewDocumentEventPublisher creates a new document event publisher
func NewDocumentEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*DocumentEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeDocumentEvents, "docproc-service", log)
	if err != nil {
		return nil, err
	}

	return &DocumentEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishDocumentProcessed publishes a document processed event
func (p *DocumentEventPublisher) PublishDocumentProcessed(ctx context.Context, job *domain.ExtractionJob) {
	data := messaging.DocumentProcessedEvent{
		JobID: job.JobID,
	}
	if job.Classification != nil {
		data.DocumentType = string(job.Classification.Type)
		data.ClassifierConfidence = job.Classification.Confidence
	}
	switch {
	case job.Vehicle != nil:
		data.FileName = job.Vehicle.SourceFileName
		data.ExtractionConfidence = job.Vehicle.ExtractionConfidence
		data.NeedsReview = job.Vehicle.NeedsReview
	case job.Driver != nil:
		data.FileName = job.Driver.SourceFileName
		data.ExtractionConfidence = job.Driver.ExtractionConfidence
		data.NeedsReview = job.Driver.NeedsReview
	}

	if err := p.publisher.Publish(ctx, messaging.EventDocumentProcessed, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.JobID).Msg("failed to publish document processed event")
	}
}

// PublishDocumentFailed publishes a document failed event
func (p *DocumentEventPublisher) PublishDocumentFailed(ctx context.Context, jobID, fileName, errMsg string) {
	data := messaging.DocumentFailedEvent{
		JobID:    jobID,
		FileName: fileName,
		Error:    errMsg,
	}

	if err := p.publisher.Publish(ctx, messaging.EventDocumentFailed, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to publish document failed event")
	}
}

// PublishBatchReconciled publishes a batch reconciled event
func (p *DocumentEventPublisher) PublishBatchReconciled(ctx context.Context, batchID string, result *domain.ReconcileResult) {
	data := messaging.BatchReconciledEvent{
		BatchID:                  batchID,
		VehiclesIn:               result.Summary.VehiclesIn,
		DriversIn:                result.Summary.DriversIn,
		ConsolidatedVehicles:     len(result.Vehicles),
		ConsolidatedDrivers:      len(result.Drivers),
		NewGroups:                result.Summary.NewGroups,
		Merged:                   result.Summary.Merged,
		VehicleDuplicatesRemoved: result.Summary.VehicleDuplicatesRemoved,
		DriverDuplicatesRemoved:  result.Summary.DriverDuplicatesRemoved,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchReconciled, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", batchID).Msg("failed to publish batch reconciled event")
	}
}

// PublishDriverConsolidated publishes one consolidated driver
func (p *DocumentEventPublisher) PublishDriverConsolidated(ctx context.Context, d *domain.ConsolidatedDriver) {
	data := messaging.DriverConsolidatedEvent{
		IdentityKey: d.Key,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		SourceCount: d.SourceCount,
		NeedsReview: d.NeedsReview,
	}

	if err := p.publisher.Publish(ctx, messaging.EventDriverConsolidated, data); err != nil {
		p.logger.Error().Err(err).Str("identity_key", d.Key).Msg("failed to publish driver consolidated event")
	}
}

// PublishComplianceReviewNeeded flags a consolidated record for manual review
func (p *DocumentEventPublisher) PublishComplianceReviewNeeded(ctx context.Context, recordKind, identityKey, fileName string, notes []string) {
	data := messaging.ComplianceReviewNeededEvent{
		RecordKind:  recordKind,
		IdentityKey: identityKey,
		FileName:    fileName,
		Notes:       notes,
	}

	if err := p.publisher.Publish(ctx, messaging.EventComplianceReviewNeeded, data); err != nil {
		p.logger.Error().Err(err).Str("identity_key", identityKey).Msg("failed to publish compliance review event")
	}
}

// PublishVehicleConsolidated publishes one consolidated vehicle
func (p *DocumentEventPublisher) PublishVehicleConsolidated(ctx context.Context, v *domain.ConsolidatedVehicle) {
	data := messaging.VehicleConsolidatedEvent{
		IdentityKey: v.Key,
		VIN:         v.VIN,
		TruckNumber: v.TruckNumber,
		SourceCount: v.SourceCount,
		NeedsReview: v.NeedsReview,
	}

	if err := p.publisher.Publish(ctx, messaging.EventVehicleConsolidated, data); err != nil {
		p.logger.Error().Err(err).Str("identity_key", v.Key).Msg("failed to publish vehicle consolidated event")
	}
}
