// Package generator produces images and per-platform copy for planned
// artifacts and classifies per-platform readiness. All failures here are
// per-item: an artifact survives with a partial image set or a missing copy
// variant, it is never failed outright.
package generator

import (
	"context"
	"fmt"
	"log"
	"sync"

	"content-pipeline/internal/models"
	"content-pipeline/shared/ai"
	"content-pipeline/shared/storage"
)

// GenerationError records one failed item (slide image, artifact image or
// copy variant). Recoverable by design: the surrounding run continues.
type GenerationError struct {
	ArtifactID string
	Item       string
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation error for artifact %s (%s): %v", e.ArtifactID, e.Item, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ImageClient is the image-generation dependency.
type ImageClient interface {
	GenerateImage(ctx context.Context, req ai.ImageRequest) (*ai.GeneratedImage, error)
}

// CopyClient writes platform copy for an artifact.
type CopyClient interface {
	GenerateCopy(ctx context.Context, artifact *models.ContentArtifact, platform models.Platform) (*models.CopyVariant, error)
}

// Options carries the per-run generation settings.
type Options struct {
	GenerateImages bool
	Platforms      []models.Platform
	Persona        *models.PersonaRef
	Brand          *models.BrandContext
	AspectRatio    models.AspectRatio
	Quality        string
}

type Generator struct {
	images    ImageClient
	copywrite CopyClient
	media     storage.MediaStore
	batchSize int
}

// New builds a generator. media may be nil, in which case only provider URLs
// are used. batchSize limits concurrent image requests per artifact.
func New(images ImageClient, copywrite CopyClient, media storage.MediaStore, batchSize int) *Generator {
	if batchSize < 1 {
		batchSize = 2
	}
	return &Generator{images: images, copywrite: copywrite, media: media, batchSize: batchSize}
}

// Process generates images and copy for one artifact in place and settles its
// status. The returned errors are the tolerated per-item failures.
func (g *Generator) Process(ctx context.Context, artifact *models.ContentArtifact, opts Options) []*GenerationError {
	if opts.AspectRatio == "" {
		opts.AspectRatio = models.AspectPortrait
	}

	var itemErrs []*GenerationError

	if opts.GenerateImages && g.images != nil {
		itemErrs = append(itemErrs, g.generateImages(ctx, artifact, opts)...)
	}

	if g.copywrite != nil {
		for _, platform := range opts.Platforms {
			variant, err := g.copywrite.GenerateCopy(ctx, artifact, platform)
			if err != nil {
				log.Printf("Warning: copy generation failed for artifact %s on %s: %v", artifact.ID, platform, err)
				itemErrs = append(itemErrs, &GenerationError{ArtifactID: artifact.ID, Item: string(platform) + " copy", Err: err})
				continue
			}
			artifact.SetVariant(platform, ClampCopy(variant, platform))
		}
	}

	// Image generation promotes to ready; a skipped or entirely failed
	// generation leaves the artifact in draft.
	if opts.GenerateImages && artifact.ImageCount() >= artifact.RequiredImageCount() {
		artifact.Status = models.StatusReady
	} else {
		artifact.Status = models.StatusDraft
	}

	return itemErrs
}

func (g *Generator) generateImages(ctx context.Context, artifact *models.ContentArtifact, opts Options) []*GenerationError {
	if artifact.Type != models.ContentCarousel {
		prompt := buildArtifactPrompt(artifact, opts)
		url, err := g.generateOne(ctx, artifact, prompt, opts)
		if err != nil {
			log.Printf("Warning: image generation failed for artifact %s: %v", artifact.ID, err)
			return []*GenerationError{{ArtifactID: artifact.ID, Item: "image", Err: err}}
		}
		artifact.ImageURL = url
		return nil
	}

	// Slide prompts depend only on each slide's own index and the total
	// count, never on prior slide results, so slides generate concurrently
	// under the batch limit.
	var (
		mu       sync.Mutex
		itemErrs []*GenerationError
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, g.batchSize)

	for i := range artifact.Slides {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			slide := artifact.Slides[idx]
			prompt := buildSlidePrompt(artifact, slide, len(artifact.Slides), opts)
			url, err := g.generateOne(ctx, artifact, prompt, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Warning: image generation failed for slide %d of artifact %s: %v", slide.Number, artifact.ID, err)
				itemErrs = append(itemErrs, &GenerationError{
					ArtifactID: artifact.ID,
					Item:       fmt.Sprintf("slide %d image", slide.Number),
					Err:        err,
				})
				return
			}
			artifact.Slides[idx].ImageURL = url
		}(i)
	}
	wg.Wait()

	return itemErrs
}

// generateOne runs a single generation call and stores the result durably,
// falling back to the provider's (possibly ephemeral) URL when the upload
// fails.
func (g *Generator) generateOne(ctx context.Context, artifact *models.ContentArtifact, prompt string, opts Options) (string, error) {
	req := ai.ImageRequest{
		Prompt:          prompt,
		ReferenceImages: opts.Persona.GenerationReferences(),
		AspectRatio:     opts.AspectRatio,
		Quality:         opts.Quality,
		OutputFormat:    "png",
	}

	img, err := g.images.GenerateImage(ctx, req)
	if err != nil {
		return "", err
	}

	if g.media != nil && len(img.Data) > 0 {
		key := storage.MediaKey(artifact.ProjectID, artifact.Type, artifact.ID)
		url, err := g.media.Store(ctx, key, img.Data, img.MIMEType)
		if err == nil {
			return url, nil
		}
		log.Printf("Warning: durable upload failed for artifact %s, using provider URL: %v", artifact.ID, err)
	}

	if img.ProviderURL != "" {
		return img.ProviderURL, nil
	}
	if len(img.Data) > 0 {
		return "", fmt.Errorf("image bytes could not be stored and provider returned no URL")
	}
	return "", fmt.Errorf("provider returned neither image bytes nor a URL")
}
