// Package pipeline wires the full run: normalize brand materials, analyze the
// transcript, plan artifacts, generate images and copy, and track the job
// record through it. Analysis and planning errors fail the job; generation
// errors degrade individual items only.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"content-pipeline/internal/generator"
	"content-pipeline/internal/models"
	"content-pipeline/internal/normalize"
	"content-pipeline/shared/storage"
)

// Analyzer is the deep-analysis dependency.
type Analyzer interface {
	Analyze(ctx context.Context, input *models.AnalysisInput) (*models.DeepAnalysis, error)
}

// ArtifactPlanner turns an analysis into draft artifacts.
type ArtifactPlanner interface {
	Plan(ctx context.Context, projectID string, analysis *models.DeepAnalysis, contentTypes []models.ContentType) ([]*models.ContentArtifact, error)
}

// ArtifactGenerator fills one artifact with images and platform copy.
type ArtifactGenerator interface {
	Process(ctx context.Context, artifact *models.ContentArtifact, opts generator.Options) []*generator.GenerationError
}

// RunRequest describes one pipeline invocation. RawBrand carries the brand
// materials as uploaded, in whichever of the supported shapes; it is
// normalized before analysis. Progress, when set, is called after each
// artifact finishes.
type RunRequest struct {
	ProjectID   string
	Title       string
	Description string
	Transcript  string
	RawBrand    map[string]any
	Persona     *models.PersonaRef

	ContentTypes   []models.ContentType
	Platforms      []models.Platform
	GenerateImages bool
	AspectRatio    models.AspectRatio
	Quality        string

	Progress func(completed, total int)
}

// RunResult is everything one run produced. ItemErrors lists the tolerated
// per-item generation failures; a non-empty list still means a completed job.
type RunResult struct {
	JobID      string
	Analysis   *models.DeepAnalysis
	Artifacts  []*models.ContentArtifact
	Readiness  map[string][]models.PlatformReadiness
	ItemErrors []*generator.GenerationError
}

type Pipeline struct {
	analyzer  Analyzer
	planner   ArtifactPlanner
	generator ArtifactGenerator
	records   storage.RecordStore
}

// New builds a pipeline from its injected stages. records may be nil when no
// persistence is wanted (tests, dry runs).
func New(analyzer Analyzer, planner ArtifactPlanner, gen ArtifactGenerator, records storage.RecordStore) *Pipeline {
	return &Pipeline{analyzer: analyzer, planner: planner, generator: gen, records: records}
}

// Run executes the whole pipeline for one piece of source content.
func (p *Pipeline) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	if req.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	if req.Transcript == "" {
		return nil, fmt.Errorf("transcript is required")
	}
	for _, platform := range req.Platforms {
		if !models.IsKnownPlatform(platform) {
			return nil, fmt.Errorf("unknown platform %q", platform)
		}
	}

	contentTypes := req.ContentTypes
	if len(contentTypes) == 0 {
		contentTypes = []models.ContentType{models.ContentCarousel, models.ContentQuote, models.ContentHook}
	}
	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = models.AdaptationPlatforms
	}
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = models.DefaultAspectRatio(platforms[0])
	}

	job := &models.JobRecord{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Status:    models.JobRunning,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	p.saveJob(ctx, job, true)

	input := &models.AnalysisInput{
		TranscriptText: req.Transcript,
		Title:          req.Title,
		Description:    req.Description,
		Persona:        req.Persona,
	}
	if req.RawBrand != nil {
		input.Brand = normalize.Brand(req.RawBrand)
	}

	log.Printf("Analyzing content for project %s...", req.ProjectID)
	analysis, err := p.analyzer.Analyze(ctx, input)
	if err != nil {
		p.failJob(ctx, job, fmt.Errorf("analysis failed: %w", err))
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	log.Printf("Planning artifacts (types: %v)...", contentTypes)
	artifacts, err := p.planner.Plan(ctx, req.ProjectID, analysis, contentTypes)
	if err != nil {
		p.failJob(ctx, job, fmt.Errorf("planning failed: %w", err))
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	job.TotalItems = len(artifacts)
	p.saveJob(ctx, job, false)

	opts := generator.Options{
		GenerateImages: req.GenerateImages,
		Platforms:      platforms,
		Persona:        req.Persona,
		Brand:          input.Brand,
		AspectRatio:    aspect,
		Quality:        req.Quality,
	}

	result := &RunResult{
		JobID:     job.ID,
		Analysis:  analysis,
		Artifacts: artifacts,
		Readiness: make(map[string][]models.PlatformReadiness, len(artifacts)),
	}

	for i, artifact := range artifacts {
		log.Printf("Generating artifact %d of %d (%s)...", i+1, len(artifacts), artifact.Type)

		artifact.Status = models.StatusGenerating
		artifact.UpdatedAt = time.Now()
		p.saveArtifact(ctx, artifact, true)

		itemErrs := p.generator.Process(ctx, artifact, opts)
		result.ItemErrors = append(result.ItemErrors, itemErrs...)

		for _, platform := range platforms {
			result.Readiness[artifact.ID] = append(result.Readiness[artifact.ID],
				generator.EvaluateReadiness(artifact, platform, req.GenerateImages))
		}

		artifact.UpdatedAt = time.Now()
		p.saveArtifact(ctx, artifact, false)

		job.CompletedItems = i + 1
		p.saveJob(ctx, job, false)
		log.Printf("Artifact %d of %d complete (%.0f%%)", i+1, len(artifacts), job.Progress()*100)
		if req.Progress != nil {
			req.Progress(i+1, len(artifacts))
		}
	}

	job.Status = models.JobCompleted
	p.saveJob(ctx, job, false)

	log.Printf("Run %s complete: %d artifacts, %d item errors", job.ID, len(artifacts), len(result.ItemErrors))
	return result, nil
}

func (p *Pipeline) failJob(ctx context.Context, job *models.JobRecord, cause error) {
	job.Status = models.JobFailed
	job.Error = cause.Error()
	p.saveJob(ctx, job, false)
}

// saveJob persists the job record. Tracking failures are logged and tolerated;
// the run itself is worth more than its bookkeeping.
func (p *Pipeline) saveJob(ctx context.Context, job *models.JobRecord, create bool) {
	if p.records == nil {
		return
	}
	job.UpdatedAt = time.Now()
	var err error
	if create {
		err = p.records.SaveJob(ctx, job)
	} else {
		err = p.records.UpdateJob(ctx, job)
	}
	if err != nil {
		log.Printf("Warning: failed to persist job %s: %v", job.ID, err)
	}
}

func (p *Pipeline) saveArtifact(ctx context.Context, artifact *models.ContentArtifact, create bool) {
	if p.records == nil {
		return
	}
	var err error
	if create {
		err = p.records.SaveArtifact(ctx, artifact)
	} else {
		err = p.records.UpdateArtifact(ctx, artifact)
	}
	if err != nil {
		log.Printf("Warning: failed to persist artifact %s: %v", artifact.ID, err)
	}
}
