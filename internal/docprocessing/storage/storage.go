package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/domain"
)

// TempStorage provides in-memory storage for extraction jobs. Document text
// lives in RAM only for the duration of processing; jobs are cleaned up
// automatically after a TTL, so callers must poll within that window.
type TempStorage struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ExtractionJob
	ttl  time.Duration
}

// NewTempStorage creates a new in-memory temp storage with the given TTL
func NewTempStorage(ttl time.Duration) *TempStorage {
	s := &TempStorage{
		jobs: make(map[string]*domain.ExtractionJob),
		ttl:  ttl,
	}
	go s.cleanupLoop()
	return s
}

// GenerateJobID creates a random job ID
func GenerateJobID() string {
	return uuid.NewString()
}

// StoreJob stores an extraction job
func (s *TempStorage) StoreJob(job *domain.ExtractionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
}

// GetJob retrieves a snapshot of an extraction job by ID. Returning a copy
// keeps callers from observing concurrent updates mid-write.
func (s *TempStorage) GetJob(jobID string) *domain.ExtractionJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil
	}
	snapshot := *job
	return &snapshot
}

// UpdateJob updates an existing extraction job
func (s *TempStorage) UpdateJob(jobID string, update func(*domain.ExtractionJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		update(job)
	}
}

// DeleteJob removes a job from storage
func (s *TempStorage) DeleteJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// cleanupLoop periodically removes expired jobs
func (s *TempStorage) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *TempStorage) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
