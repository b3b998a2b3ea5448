// Package storage persists job and artifact records and generated media.
// Record writes are insert/update-by-id with last-writer-wins semantics;
// nothing here requires cross-record transactions.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"content-pipeline/internal/models"
)

// RecordStore is the persistence contract the pipeline needs: upserts by id,
// reads by project, and the stale-generating sweep the reconciler runs.
type RecordStore interface {
	SaveJob(ctx context.Context, job *models.JobRecord) error
	UpdateJob(ctx context.Context, job *models.JobRecord) error
	SaveArtifact(ctx context.Context, artifact *models.ContentArtifact) error
	UpdateArtifact(ctx context.Context, artifact *models.ContentArtifact) error
	GetArtifactsByProject(ctx context.Context, projectID string) ([]*models.ContentArtifact, error)
	// SweepStaleGenerating moves artifacts stuck in 'generating' longer than
	// threshold back to 'draft' so an abandoned run becomes retryable. It
	// returns how many artifacts were reset.
	SweepStaleGenerating(ctx context.Context, threshold time.Duration) (int, error)
}

// MemoryStore is the in-process RecordStore used in tests and single-node
// runs without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	jobs      map[string]*models.JobRecord
	artifacts map[string]*models.ContentArtifact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[string]*models.JobRecord),
		artifacts: make(map[string]*models.ContentArtifact),
	}
}

func (s *MemoryStore) SaveJob(ctx context.Context, job *models.JobRecord) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateJob(ctx context.Context, job *models.JobRecord) error {
	return s.SaveJob(ctx, job)
}

// GetJob returns a copy of the job record, or nil when absent.
func (s *MemoryStore) GetJob(id string) *models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil
	}
	cp := *j
	return &cp
}

// JobForProject returns a copy of the most recently updated job for a
// project, or nil when the project has none.
func (s *MemoryStore) JobForProject(projectID string) *models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.JobRecord
	for _, j := range s.jobs {
		if j.ProjectID != projectID {
			continue
		}
		if latest == nil || j.UpdatedAt.After(latest.UpdatedAt) {
			latest = j
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

func (s *MemoryStore) SaveArtifact(ctx context.Context, artifact *models.ContentArtifact) error {
	if artifact.ID == "" {
		return fmt.Errorf("artifact id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *artifact
	s.artifacts[artifact.ID] = &cp
	return nil
}

func (s *MemoryStore) UpdateArtifact(ctx context.Context, artifact *models.ContentArtifact) error {
	return s.SaveArtifact(ctx, artifact)
}

func (s *MemoryStore) GetArtifactsByProject(ctx context.Context, projectID string) ([]*models.ContentArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.ContentArtifact
	for _, a := range s.artifacts {
		if a.ProjectID == projectID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) SweepStaleGenerating(ctx context.Context, threshold time.Duration) (int, error) {
	cutoff := time.Now().Add(-threshold)
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for _, a := range s.artifacts {
		if a.Status == models.StatusGenerating && a.UpdatedAt.Before(cutoff) {
			a.Status = models.StatusDraft
			a.UpdatedAt = time.Now()
			swept++
		}
	}
	return swept, nil
}
