package storage

import (
	"context"
	"testing"
	"time"

	"content-pipeline/internal/models"
)

func TestMemoryStoreArtifacts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := &models.ContentArtifact{
		ID:        "a1",
		ProjectID: "p1",
		Type:      models.ContentQuote,
		Status:    models.StatusDraft,
		Quote:     "the quote",
	}
	if err := store.SaveArtifact(ctx, a); err != nil {
		t.Fatalf("SaveArtifact() error: %v", err)
	}

	// Last writer wins on update-by-id.
	a.Status = models.StatusReady
	if err := store.UpdateArtifact(ctx, a); err != nil {
		t.Fatalf("UpdateArtifact() error: %v", err)
	}

	got, err := store.GetArtifactsByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetArtifactsByProject() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(got))
	}
	if got[0].Status != models.StatusReady {
		t.Errorf("status = %s, want ready", got[0].Status)
	}

	other, err := store.GetArtifactsByProject(ctx, "p2")
	if err != nil {
		t.Fatalf("GetArtifactsByProject() error: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("project p2 has %d artifacts, want 0", len(other))
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.SaveArtifact(ctx, &models.ContentArtifact{}); err == nil {
		t.Error("SaveArtifact accepted an empty id")
	}
	if err := store.SaveJob(ctx, &models.JobRecord{}); err == nil {
		t.Error("SaveJob accepted an empty id")
	}
}

func TestSweepStaleGenerating(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	stale := &models.ContentArtifact{
		ID:        "stale",
		ProjectID: "p1",
		Status:    models.StatusGenerating,
		UpdatedAt: time.Now().Add(-2 * time.Hour),
	}
	fresh := &models.ContentArtifact{
		ID:        "fresh",
		ProjectID: "p1",
		Status:    models.StatusGenerating,
		UpdatedAt: time.Now(),
	}
	done := &models.ContentArtifact{
		ID:        "done",
		ProjectID: "p1",
		Status:    models.StatusReady,
		UpdatedAt: time.Now().Add(-2 * time.Hour),
	}
	for _, a := range []*models.ContentArtifact{stale, fresh, done} {
		if err := store.SaveArtifact(ctx, a); err != nil {
			t.Fatalf("SaveArtifact(%s) error: %v", a.ID, err)
		}
	}

	swept, err := store.SweepStaleGenerating(ctx, 30*time.Minute)
	if err != nil {
		t.Fatalf("SweepStaleGenerating() error: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	got, _ := store.GetArtifactsByProject(ctx, "p1")
	statuses := make(map[string]models.ArtifactStatus)
	for _, a := range got {
		statuses[a.ID] = a.Status
	}
	if statuses["stale"] != models.StatusDraft {
		t.Errorf("stale artifact status = %s, want draft (retryable)", statuses["stale"])
	}
	if statuses["fresh"] != models.StatusGenerating {
		t.Errorf("fresh artifact status = %s, want generating", statuses["fresh"])
	}
	if statuses["done"] != models.StatusReady {
		t.Errorf("ready artifact status = %s, want ready", statuses["done"])
	}
}

func TestMediaKey(t *testing.T) {
	key := MediaKey("proj1", models.ContentCarousel, "art1")
	if key == "" {
		t.Fatal("empty media key")
	}
	// Path must be keyed project/type/artifact.
	want := "proj1/carousel/art1_"
	if len(key) <= len(want) || key[:len(want)] != want {
		t.Errorf("MediaKey = %s, want prefix %s", key, want)
	}
}
