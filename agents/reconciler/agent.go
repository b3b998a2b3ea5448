// Package reconciler sweeps artifacts stuck in 'generating' back to 'draft'
// so abandoned runs become retryable. A run that dies mid-generation leaves
// its artifacts in 'generating' forever; nothing else in the system touches
// them again without this sweep.
package reconciler

import (
	"context"
	"fmt"
	"log"
	"time"

	"content-pipeline/shared/config"
	"content-pipeline/shared/scheduler"
	"content-pipeline/shared/storage"
)

// SweepMetrics represents the metrics collected during one reconciler sweep
type SweepMetrics struct {
	ArtifactsReset int `json:"artifacts_reset"`
}

// GetSummary implements the scheduler.Metrics interface
func (m SweepMetrics) GetSummary() string {
	if m.ArtifactsReset == 0 {
		return "no stale artifacts found"
	}
	return fmt.Sprintf("reset %d stale artifact(s) to draft", m.ArtifactsReset)
}

// ReconcilerAgent implements the scheduler.Agent interface
type ReconcilerAgent struct {
	config *config.Config
	store  storage.RecordStore
}

// NewReconcilerAgent builds the agent. store may be nil, in which case
// Initialize connects to postgres from the configuration.
func NewReconcilerAgent(cfg *config.Config, store storage.RecordStore) *ReconcilerAgent {
	return &ReconcilerAgent{
		config: cfg,
		store:  store,
	}
}

func (r *ReconcilerAgent) Name() string {
	return "Artifact Reconciler Agent"
}

func (r *ReconcilerAgent) Initialize() error {
	log.Printf("Initializing %s...", r.Name())

	if r.config.Pipeline.StaleGeneratingMinutes <= 0 {
		return fmt.Errorf("stale-generating threshold must be positive (stale_generating_minutes)")
	}

	if r.store == nil {
		if r.config.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres connection string must be configured (postgres_url)")
		}
		store, err := storage.NewPostgresStore(context.Background(), &r.config.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect record store: %w", err)
		}
		r.store = store
		log.Println("Record store initialized")
	}

	log.Printf("Configured with stale threshold of %v", r.config.Pipeline.StaleThreshold())
	return nil
}

func (r *ReconcilerAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()

	log.Println("Sweeping stale generating artifacts...")
	reset, err := r.store.SweepStaleGenerating(ctx, r.config.Pipeline.StaleThreshold())
	if err != nil {
		if events != nil && events.OnCriticalFailure != nil {
			events.OnCriticalFailure(fmt.Errorf("failed to sweep stale artifacts: %w", err), time.Since(startTime))
		}
		return fmt.Errorf("failed to sweep stale artifacts: %w", err)
	}

	metrics := SweepMetrics{ArtifactsReset: reset}
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}

	log.Printf("Sweep complete: %d artifact(s) reset", reset)
	return nil
}
