package consumers

import (
	"context"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/service"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
	"github.com/fleetdocs/fleetdocs-backend/pkg/messaging"
)

// DocumentEventConsumer consumes inbound document events. Upstream scanner
// and OCR services publish document.received with the extracted text; this
// consumer feeds them through the same extraction pipeline the HTTP API uses.
type DocumentEventConsumer struct {
	consumer *messaging.Consumer
	service  *service.Service
	logger   *logger.Logger
}

// NewDocumentEventConsumer creates a new document event consumer
func NewDocumentEventConsumer(rmq *messaging.RabbitMQ, svc *service.Service, log *logger.Logger) (*DocumentEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "docproc-service.document-events", log)
	if err != nil {
		return nil, err
	}

	// Subscribe to inbound document events
	if err := consumer.Subscribe(messaging.ExchangeDocumentEvents, messaging.EventDocumentReceived); err != nil {
		return nil, err
	}

	c := &DocumentEventConsumer{
		consumer: consumer,
		service:  svc,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventDocumentReceived, c.handleDocumentReceived)

	return c, nil
}

// Start starts consuming messages
func (c *DocumentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *DocumentEventConsumer) handleDocumentReceived(ctx context.Context, event *messaging.Event) error {
	var data messaging.DocumentReceivedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("file_name", data.FileName).
		Str("declared_type", data.DocumentType).
		Msg("received document for extraction")

	job, err := c.service.StartExtraction(ctx, data.Text, data.FileName, domain.DocumentType(data.DocumentType))
	if err != nil {
		c.logger.Error().Err(err).
			Str("file_name", data.FileName).
			Msg("failed to start extraction for received document")
		// Bad payloads are not retryable; ack and move on
		return nil
	}

	c.logger.Info().
		Str("job_id", job.JobID).
		Str("file_name", data.FileName).
		Msg("extraction job started from document event")

	return nil
}
