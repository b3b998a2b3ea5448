// Package planner turns a deep analysis into concrete draft artifacts:
// carousels with numbered slides, quote graphics and hooks. No images are
// produced here; everything stays text-only.
package planner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"content-pipeline/internal/models"
)

// PlanningError means the analysis is missing a section planning cannot
// proceed without. It is fatal for the run; the caller retries by re-invoking
// the whole pipeline.
type PlanningError struct {
	Section string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning error: analysis is missing required section %q", e.Section)
}

// SlideRefiner improves carousel slide copy. A refinement failure is never
// fatal: the planner falls back to the slide content already present in the
// analysis.
type SlideRefiner interface {
	RefineSlides(ctx context.Context, analysis *models.DeepAnalysis, draft *models.ContentArtifact) ([]models.SlideIdea, error)
}

type Planner struct {
	refiner           SlideRefiner
	defaultSlideCount int
	maxQuotes         int
	maxHooks          int
}

// New builds a planner. refiner may be nil, in which case slides are used as
// the analysis proposed them.
func New(refiner SlideRefiner, defaultSlideCount int) *Planner {
	if defaultSlideCount < 1 {
		defaultSlideCount = 5
	}
	return &Planner{
		refiner:           refiner,
		defaultSlideCount: defaultSlideCount,
		maxQuotes:         3,
		maxHooks:          3,
	}
}

// Plan derives draft artifacts for the requested content types.
func (p *Planner) Plan(ctx context.Context, projectID string, analysis *models.DeepAnalysis, contentTypes []models.ContentType) ([]*models.ContentArtifact, error) {
	if analysis == nil {
		return nil, &PlanningError{Section: "analysis"}
	}
	if analysis.CoreMessage == "" {
		return nil, &PlanningError{Section: "core_message"}
	}
	if analysis.KeyMoments == nil || analysis.SocialStrategy.Hooks == nil {
		// EnsureDefaults was skipped somewhere upstream.
		return nil, &PlanningError{Section: "social_strategy"}
	}

	var artifacts []*models.ContentArtifact
	for _, ct := range contentTypes {
		switch ct {
		case models.ContentCarousel:
			if a := p.planCarousel(ctx, projectID, analysis); a != nil {
				artifacts = append(artifacts, a)
			}
		case models.ContentQuote:
			artifacts = append(artifacts, p.planQuotes(projectID, analysis)...)
		case models.ContentHook:
			artifacts = append(artifacts, p.planHooks(projectID, analysis)...)
		default:
			log.Printf("Warning: unknown content type %q requested, skipping", ct)
		}
	}
	return artifacts, nil
}

// planCarousel builds the carousel draft. Slide numbers run 1..N; the first
// slide carries the hook requirement and the last the CTA requirement. This
// asymmetric treatment of the endpoints is deliberate policy: the first slide
// has to stop the scroll and the last has to convert.
func (p *Planner) planCarousel(ctx context.Context, projectID string, analysis *models.DeepAnalysis) *models.ContentArtifact {
	ideas := analysis.SocialStrategy.Carousel.Slides
	if len(ideas) == 0 {
		ideas = slidesFromKeyMoments(analysis.KeyMoments, p.defaultSlideCount)
	}
	if len(ideas) == 0 {
		log.Printf("Warning: no carousel slide material in analysis, skipping carousel")
		return nil
	}

	title := analysis.SocialStrategy.Carousel.Title
	if title == "" {
		title = analysis.CoreMessage
	}

	artifact := newArtifact(projectID, models.ContentCarousel, title)
	artifact.Slides = numberSlides(ideas)

	if p.refiner != nil {
		refined, err := p.refiner.RefineSlides(ctx, analysis, artifact)
		if err != nil {
			log.Printf("Warning: slide refinement failed, keeping analysis slides: %v", err)
		} else if len(refined) == len(artifact.Slides) {
			for i := range artifact.Slides {
				artifact.Slides[i].Heading = refined[i].Heading
				artifact.Slides[i].Body = refined[i].Body
			}
		} else if len(refined) > 0 {
			artifact.Slides = numberSlides(refined)
		}
	}

	return artifact
}

// numberSlides assigns the 1..N sequence and the endpoint flags. A one-slide
// carousel carries both flags.
func numberSlides(ideas []models.SlideIdea) []models.Slide {
	slides := make([]models.Slide, len(ideas))
	for i, idea := range ideas {
		slides[i] = models.Slide{
			Number:  i + 1,
			Heading: idea.Heading,
			Body:    idea.Body,
			IsHook:  i == 0,
			IsCTA:   i == len(ideas)-1,
		}
	}
	return slides
}

func slidesFromKeyMoments(moments []models.KeyMoment, limit int) []models.SlideIdea {
	var ideas []models.SlideIdea
	for _, m := range moments {
		if !m.HasUse(models.UseCarouselSlide) {
			continue
		}
		body := m.Quote
		if body == "" {
			body = m.Moment
		}
		ideas = append(ideas, models.SlideIdea{Heading: m.Moment, Body: body})
		if len(ideas) == limit {
			break
		}
	}
	return ideas
}

// planQuotes selects quote moments, preferring high emotional weight when
// there are more candidates than needed, falling back to the social
// strategy's quote list when no key moment is tagged for quote graphics.
func (p *Planner) planQuotes(projectID string, analysis *models.DeepAnalysis) []*models.ContentArtifact {
	candidates := quoteCandidates(analysis.KeyMoments)
	if len(candidates) > p.maxQuotes {
		candidates = candidates[:p.maxQuotes]
	}

	var artifacts []*models.ContentArtifact
	for _, m := range candidates {
		text := m.Quote
		if text == "" {
			text = m.Moment
		}
		a := newArtifact(projectID, models.ContentQuote, analysis.CoreMessage)
		a.Quote = text
		artifacts = append(artifacts, a)
	}

	if len(artifacts) == 0 {
		for i, q := range analysis.SocialStrategy.Quotes {
			if i == p.maxQuotes {
				break
			}
			a := newArtifact(projectID, models.ContentQuote, analysis.CoreMessage)
			a.Quote = q.Text
			a.Attribution = q.Attribution
			artifacts = append(artifacts, a)
		}
	}
	return artifacts
}

// quoteCandidates filters key moments tagged for quote graphics, ordered by
// emotional weight, stable within a weight class.
func quoteCandidates(moments []models.KeyMoment) []models.KeyMoment {
	var out []models.KeyMoment
	for _, m := range moments {
		if m.HasUse(models.UseQuoteGraphic) && (m.Quote != "" || m.Moment != "") {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return weightRank(out[i].EmotionalWeight) > weightRank(out[j].EmotionalWeight)
	})
	return out
}

func weightRank(w models.EmotionalWeight) int {
	switch w {
	case models.WeightHigh:
		return 3
	case models.WeightMedium:
		return 2
	case models.WeightLow:
		return 1
	}
	return 0
}

func (p *Planner) planHooks(projectID string, analysis *models.DeepAnalysis) []*models.ContentArtifact {
	var artifacts []*models.ContentArtifact
	for i, hook := range analysis.SocialStrategy.Hooks {
		if i == p.maxHooks {
			break
		}
		a := newArtifact(projectID, models.ContentHook, analysis.CoreMessage)
		a.Hook = hook
		artifacts = append(artifacts, a)
	}
	return artifacts
}

func newArtifact(projectID string, ct models.ContentType, title string) *models.ContentArtifact {
	now := time.Now()
	return &models.ContentArtifact{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Type:      ct,
		Title:     title,
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
