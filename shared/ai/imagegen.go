package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"content-pipeline/internal/models"
	"content-pipeline/shared/config"

	"google.golang.org/genai"
)

// ImageRequest describes one image generation call. When reference images are
// present the call is reference-conditioned: the provider is asked to keep
// the depicted person consistent with them.
type ImageRequest struct {
	Prompt          string
	ReferenceImages []string
	AspectRatio     models.AspectRatio
	Quality         string
	OutputFormat    string
}

// GeneratedImage is the provider result before durable storage. Inline bytes
// are the normal case; ProviderURL is set when the provider returned a file
// reference instead and serves as the fallback URL if the upload fails.
type GeneratedImage struct {
	Data        []byte
	MIMEType    string
	ProviderURL string
}

// ImageGenerator drives the image model.
type ImageGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewImageGenerator(cfg *config.Config) (*ImageGenerator, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.AI.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create image client: %w", err)
	}

	return &ImageGenerator{
		client:  client,
		model:   cfg.AI.ImageModel,
		timeout: cfg.AI.CallTimeout(),
	}, nil
}

// GenerateImage runs one generation call. At most 4 reference images are
// attached; extras are dropped, not an error.
func (g *ImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*GeneratedImage, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("image prompt is required")
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}

	refs := req.ReferenceImages
	if len(refs) > models.MaxPersonaReferenceImages {
		refs = refs[:models.MaxPersonaReferenceImages]
	}
	for _, url := range refs {
		parts = append(parts, genai.NewPartFromURI(url, "image/png"))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(callCtx, g.model, contents, cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("image generation timed out: %w", err)
		}
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	img := extractImage(result)
	if img == nil {
		return nil, fmt.Errorf("no image in provider response")
	}
	return img, nil
}

// extractImage pulls the first image part out of a response, either inline
// bytes or a file reference.
func extractImage(result *genai.GenerateContentResponse) *GeneratedImage {
	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &GeneratedImage{
					Data:     part.InlineData.Data,
					MIMEType: part.InlineData.MIMEType,
				}
			}
			if part.FileData != nil && part.FileData.FileURI != "" {
				return &GeneratedImage{
					ProviderURL: part.FileData.FileURI,
					MIMEType:    part.FileData.MIMEType,
				}
			}
		}
	}
	return nil
}
