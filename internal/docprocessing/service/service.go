package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/classifier"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/events"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/extract"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/reconcile"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/repository"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/storage"
	"github.com/fleetdocs/fleetdocs-backend/pkg/database"
	"github.com/fleetdocs/fleetdocs-backend/pkg/errors"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
)

// Service orchestrates document processing: classify → extract → reconcile.
type Service struct {
	extractor *extract.Extractor
	engine    *reconcile.Engine
	storage   *storage.TempStorage
	repo      *repository.ConsolidatedRepository
	events    *events.DocumentEventPublisher
	log       *logger.Logger
}

// NewService creates a new document processing service. repo and publisher
// may be nil; persistence and event publishing are then skipped.
func NewService(extractor *extract.Extractor, engine *reconcile.Engine, store *storage.TempStorage, repo *repository.ConsolidatedRepository, publisher *events.DocumentEventPublisher, log *logger.Logger) *Service {
	return &Service{
		extractor: extractor,
		engine:    engine,
		storage:   store,
		repo:      repo,
		events:    publisher,
		log:       log,
	}
}

// StartExtraction creates a new extraction job and processes the document
// text asynchronously. Returns the job immediately so the caller can poll
// for results.
func (s *Service) StartExtraction(ctx context.Context, text, fileName string, declaredType domain.DocumentType) (*domain.ExtractionJob, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("document text is empty")
	}

	jobID := storage.GenerateJobID()

	job := &domain.ExtractionJob{
		JobID:     jobID,
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now(),
	}
	s.storage.StoreJob(job)

	// Process asynchronously and return the job ID immediately for polling
	go s.processAsync(jobID, text, fileName, declaredType)

	return s.storage.GetJob(jobID), nil
}

// processAsync runs classification and extraction in a background goroutine.
func (s *Service) processAsync(jobID, text, fileName string, declaredType domain.DocumentType) {
	// Use a detached context so request cancellation doesn't kill processing
	bgCtx := context.Background()

	class := s.classify(fileName, text, declaredType)

	s.log.Info().
		Str("job_id", jobID).
		Str("file_name", fileName).
		Str("doc_type", string(class.Type)).
		Float64("classifier_confidence", class.Confidence).
		Msg("extracting document fields")

	out := s.extractor.Extract(text, class.Type, fileName)

	s.storage.UpdateJob(jobID, func(j *domain.ExtractionJob) {
		j.Status = domain.StatusCompleted
		j.Classification = &class
		j.Vehicle = out.Vehicle
		j.Driver = out.Driver
	})

	if s.events != nil {
		s.events.PublishDocumentProcessed(bgCtx, s.storage.GetJob(jobID))
	}

	s.log.Info().
		Str("job_id", jobID).
		Str("file_name", fileName).
		Bool("is_vehicle", out.Vehicle != nil).
		Msg("document extraction completed")
}

// classify resolves the document type. A declared type from the caller wins;
// otherwise the filename/content classifier decides.
func (s *Service) classify(fileName, text string, declaredType domain.DocumentType) domain.Classification {
	switch declaredType {
	case domain.DocumentTypeRegistration, domain.DocumentTypeInsurance,
		domain.DocumentTypeMedicalCert, domain.DocumentTypeCDL:
		return domain.Classification{Type: declaredType, Confidence: 1.0}
	}
	return classifier.Classify(fileName, text)
}

// GetJob retrieves an extraction job by ID
func (s *Service) GetJob(jobID string) (*domain.ExtractionJob, error) {
	job := s.storage.GetJob(jobID)
	if job == nil {
		return nil, errors.NotFound("extraction job")
	}
	return job, nil
}

// ReconcileBatch consolidates extracted records into per-vehicle and
// per-driver groups. Records come from completed extraction jobs referenced
// by ID, from the inline record slices, or both.
func (s *Service) ReconcileBatch(ctx context.Context, jobIDs []string, vehicles []*domain.ExtractedVehicleRecord, drivers []*domain.ExtractedDriverRecord) (*domain.ReconcileResult, error) {
	for _, id := range jobIDs {
		job := s.storage.GetJob(id)
		if job == nil {
			return nil, errors.NotFound("extraction job " + id)
		}
		if job.Status != domain.StatusCompleted {
			return nil, errors.BadRequest("extraction job " + id + " is not completed")
		}
		if job.Vehicle != nil {
			vehicles = append(vehicles, job.Vehicle)
		}
		if job.Driver != nil {
			drivers = append(drivers, job.Driver)
		}
	}

	if len(vehicles) == 0 && len(drivers) == 0 {
		return nil, errors.BadRequest("no records to reconcile")
	}

	result := s.engine.Reconcile(vehicles, drivers)

	if s.repo != nil {
		if err := s.repo.SaveBatch(ctx, result); err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return nil, appErr
			}
			return nil, errors.Wrap(err, "INTERNAL_ERROR", "failed to persist consolidated records", http.StatusInternalServerError)
		}
	}

	if s.events != nil {
		batchID := uuid.NewString()
		s.events.PublishBatchReconciled(ctx, batchID, result)
		for i := range result.Vehicles {
			v := &result.Vehicles[i]
			s.events.PublishVehicleConsolidated(ctx, v)
			if v.NeedsReview {
				s.events.PublishComplianceReviewNeeded(ctx, "vehicle", v.Key, v.SourceFileName, v.ProcessingNotes)
			}
		}
		for i := range result.Drivers {
			d := &result.Drivers[i]
			s.events.PublishDriverConsolidated(ctx, d)
			if d.NeedsReview {
				s.events.PublishComplianceReviewNeeded(ctx, "driver", d.Key, d.SourceFileName, d.ProcessingNotes)
			}
		}
	}

	s.log.Info().
		Int("vehicles_in", result.Summary.VehiclesIn).
		Int("drivers_in", result.Summary.DriversIn).
		Int("consolidated_vehicles", len(result.Vehicles)).
		Int("consolidated_drivers", len(result.Drivers)).
		Int("merged", result.Summary.Merged).
		Msg("batch reconciliation completed")

	return result, nil
}

// VehiclesNeedingReview lists persisted consolidated vehicles flagged for
// manual review.
func (s *Service) VehiclesNeedingReview(ctx context.Context, limit, offset int) ([]*domain.ConsolidatedVehicle, error) {
	if s.repo == nil {
		return nil, errors.Internal("persistence is not configured")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListVehiclesNeedingReview(ctx, limit, offset)
}
