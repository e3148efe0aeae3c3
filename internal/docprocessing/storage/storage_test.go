package storage

import (
	"testing"
	"time"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

func TestTempStorage_StoreAndGet(t *testing.T) {
	s := NewTempStorage(time.Minute)

	job := &domain.ExtractionJob{
		JobID:     GenerateJobID(),
		Status:    domain.StatusProcessing,
		CreatedAt: time.Now(),
	}
	s.StoreJob(job)

	got := s.GetJob(job.JobID)
	if got == nil {
		t.Fatal("expected job, got nil")
	}
	if got.Status != domain.StatusProcessing {
		t.Errorf("Status = %v, want processing", got.Status)
	}

	if s.GetJob("missing") != nil {
		t.Error("expected nil for unknown job ID")
	}
}

func TestTempStorage_UpdateJob(t *testing.T) {
	s := NewTempStorage(time.Minute)

	job := &domain.ExtractionJob{JobID: "job-1", Status: domain.StatusProcessing, CreatedAt: time.Now()}
	s.StoreJob(job)

	s.UpdateJob("job-1", func(j *domain.ExtractionJob) {
		j.Status = domain.StatusCompleted
	})

	if got := s.GetJob("job-1"); got.Status != domain.StatusCompleted {
		t.Errorf("Status = %v, want completed", got.Status)
	}
}

func TestTempStorage_GetReturnsSnapshot(t *testing.T) {
	s := NewTempStorage(time.Minute)

	s.StoreJob(&domain.ExtractionJob{JobID: "job-1", Status: domain.StatusProcessing, CreatedAt: time.Now()})

	snapshot := s.GetJob("job-1")
	s.UpdateJob("job-1", func(j *domain.ExtractionJob) {
		j.Status = domain.StatusFailed
	})

	if snapshot.Status != domain.StatusProcessing {
		t.Error("snapshot should not reflect later updates")
	}
}

func TestTempStorage_Cleanup(t *testing.T) {
	s := NewTempStorage(time.Minute)

	s.StoreJob(&domain.ExtractionJob{JobID: "old", CreatedAt: time.Now().Add(-2 * time.Minute)})
	s.StoreJob(&domain.ExtractionJob{JobID: "fresh", CreatedAt: time.Now()})

	s.cleanup()

	if s.GetJob("old") != nil {
		t.Error("expired job should be removed")
	}
	if s.GetJob("fresh") == nil {
		t.Error("fresh job should survive cleanup")
	}
}

func TestTempStorage_DeleteJob(t *testing.T) {
	s := NewTempStorage(time.Minute)

	s.StoreJob(&domain.ExtractionJob{JobID: "job-1", CreatedAt: time.Now()})
	s.DeleteJob("job-1")

	if s.GetJob("job-1") != nil {
		t.Error("deleted job should be gone")
	}
}
