package models

import "time"

// ContentType tags what kind of content unit an artifact is.
type ContentType string

const (
	ContentCarousel ContentType = "carousel"
	ContentQuote    ContentType = "quote"
	ContentHook     ContentType = "hook"
)

// ArtifactStatus is the lifecycle state of a content artifact.
//
// draft → ready on successful image generation (stays draft when generation
// is skipped or fails entirely), ready/draft → approved by user action
// (terminal here), → failed only on an unrecoverable planning error.
type ArtifactStatus string

const (
	StatusDraft      ArtifactStatus = "draft"
	StatusGenerating ArtifactStatus = "generating"
	StatusReady      ArtifactStatus = "ready"
	StatusApproved   ArtifactStatus = "approved"
	StatusFailed     ArtifactStatus = "failed"
)

// Slide is one carousel slide. Slide numbers run 1..N with no gaps; the first
// slide carries the hook requirement and the last the CTA requirement (a
// single-slide carousel carries both).
type Slide struct {
	Number   int    `json:"number"`
	Heading  string `json:"heading"`
	Body     string `json:"body"`
	IsHook   bool   `json:"is_hook"`
	IsCTA    bool   `json:"is_cta"`
	ImageURL string `json:"image_url,omitempty"`
}

// CopyVariant is per-platform copy for an artifact, clamped to the owning
// platform's limits before persistence.
type CopyVariant struct {
	Caption     string   `json:"caption"`
	Hashtags    []string `json:"hashtags"`
	CTA         string   `json:"cta,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ContentArtifact is a planned content unit: a carousel with ordered slides,
// a quote graphic, or a hook. It is the unit the UI layer edits, approves and
// deletes.
type ContentArtifact struct {
	ID           string                    `json:"id"`
	ProjectID    string                    `json:"project_id"`
	Type         ContentType               `json:"type"`
	Title        string                    `json:"title"`
	Status       ArtifactStatus            `json:"status"`
	Slides       []Slide                   `json:"slides,omitempty"`
	Quote        string                    `json:"quote,omitempty"`
	Attribution  string                    `json:"attribution,omitempty"`
	Hook         string                    `json:"hook,omitempty"`
	ImageURL     string                    `json:"image_url,omitempty"`
	CopyVariants map[Platform]*CopyVariant `json:"copy_variants"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// ImageCount returns how many images the artifact currently has.
func (a *ContentArtifact) ImageCount() int {
	if a.Type == ContentCarousel {
		n := 0
		for _, s := range a.Slides {
			if s.ImageURL != "" {
				n++
			}
		}
		return n
	}
	if a.ImageURL != "" {
		return 1
	}
	return 0
}

// RequiredImageCount is the minimum image count a platform expects from this
// artifact type: at least one slide image for carousels, the single image for
// quotes and hooks.
func (a *ContentArtifact) RequiredImageCount() int {
	return 1
}

// Variant returns the copy variant for a platform, or nil when none exists.
func (a *ContentArtifact) Variant(p Platform) *CopyVariant {
	if a.CopyVariants == nil {
		return nil
	}
	return a.CopyVariants[p]
}

// SetVariant stores a copy variant for a platform, allocating the map on
// first use.
func (a *ContentArtifact) SetVariant(p Platform, v *CopyVariant) {
	if a.CopyVariants == nil {
		a.CopyVariants = make(map[Platform]*CopyVariant)
	}
	a.CopyVariants[p] = v
}

// PlatformReadiness is the derived per-(artifact, platform) readiness
// classification. It is recomputed from artifact fields whenever copy or
// images change, never stored independently.
type PlatformReadiness struct {
	Platform         Platform `json:"platform"`
	IsReady          bool     `json:"is_ready"`
	MissingElements  []string `json:"missing_elements"`
	OptimizationTips []string `json:"optimization_tips"`
}
