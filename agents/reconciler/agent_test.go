package reconciler

import (
	"context"
	"testing"
	"time"

	"content-pipeline/internal/models"
	"content-pipeline/shared/config"
	"content-pipeline/shared/scheduler"
	"content-pipeline/shared/storage"
)

func TestSweepMetricsGetSummary(t *testing.T) {
	tests := []struct {
		name     string
		metrics  SweepMetrics
		expected string
	}{
		{
			name:     "Nothing stale",
			metrics:  SweepMetrics{ArtifactsReset: 0},
			expected: "no stale artifacts found",
		},
		{
			name:     "Stale artifacts reset",
			metrics:  SweepMetrics{ArtifactsReset: 3},
			expected: "reset 3 stale artifact(s) to draft",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.metrics.GetSummary()
			if result != tt.expected {
				t.Errorf("Expected summary '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestReconcilerAgentInitialize(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		expectErr bool
	}{
		{
			name: "Valid configuration",
			cfg: &config.Config{
				Pipeline: config.PipelineConfig{StaleGeneratingMinutes: 30},
			},
			expectErr: false,
		},
		{
			name: "Missing threshold",
			cfg: &config.Config{
				Pipeline: config.PipelineConfig{StaleGeneratingMinutes: 0},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := NewReconcilerAgent(tt.cfg, storage.NewMemoryStore())
			err := agent.Initialize()
			if tt.expectErr && err == nil {
				t.Error("Expected initialization error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Unexpected initialization error: %v", err)
			}
		})
	}
}

func TestReconcilerRunOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	stale := &models.ContentArtifact{
		ID:        "stale-1",
		ProjectID: "p1",
		Type:      models.ContentQuote,
		Status:    models.StatusGenerating,
		UpdatedAt: time.Now().Add(-2 * time.Hour),
	}
	fresh := &models.ContentArtifact{
		ID:        "fresh-1",
		ProjectID: "p1",
		Type:      models.ContentHook,
		Status:    models.StatusGenerating,
		UpdatedAt: time.Now(),
	}
	if err := store.SaveArtifact(ctx, stale); err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if err := store.SaveArtifact(ctx, fresh); err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}

	cfg := &config.Config{
		Pipeline: config.PipelineConfig{StaleGeneratingMinutes: 30},
	}
	agent := NewReconcilerAgent(cfg, store)
	if err := agent.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var gotSummary string
	events := &scheduler.AgentEvents{
		OnSuccess: func(m scheduler.Metrics, _ time.Duration) {
			gotSummary = m.GetSummary()
		},
	}

	if err := agent.RunOnce(ctx, events); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if gotSummary != "reset 1 stale artifact(s) to draft" {
		t.Errorf("Unexpected success summary: %q", gotSummary)
	}

	artifacts, err := store.GetArtifactsByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetArtifactsByProject: %v", err)
	}
	for _, a := range artifacts {
		switch a.ID {
		case "stale-1":
			if a.Status != models.StatusDraft {
				t.Errorf("stale artifact status = %s, want draft", a.Status)
			}
		case "fresh-1":
			if a.Status != models.StatusGenerating {
				t.Errorf("fresh artifact status = %s, want generating", a.Status)
			}
		}
	}
}
