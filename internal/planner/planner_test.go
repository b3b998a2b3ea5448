package planner

import (
	"context"
	"errors"
	"testing"

	"content-pipeline/internal/models"
)

func baseAnalysis() *models.DeepAnalysis {
	a := &models.DeepAnalysis{
		CoreMessage: "consistency beats intensity",
		KeyMoments: []models.KeyMoment{
			{Moment: "opening story", Quote: "I almost quit", EmotionalWeight: models.WeightMedium, BestFor: []string{"quote_graphic", "hook"}},
			{Moment: "the turn", Quote: "systems saved me", EmotionalWeight: models.WeightHigh, BestFor: []string{"quote_graphic", "carousel_slide"}},
			{Moment: "aside", Quote: "", EmotionalWeight: models.WeightLow, BestFor: []string{"carousel_slide"}},
			{Moment: "the result", Quote: "we doubled revenue", EmotionalWeight: models.WeightHigh, BestFor: []string{"quote_graphic", "cta"}},
		},
		SocialStrategy: models.SocialStrategy{
			Carousel: models.CarouselNarrative{
				Title: "5 systems that doubled our revenue",
				Slides: []models.SlideIdea{
					{Heading: "Stop guessing", Body: "Most founders guess."},
					{Heading: "Write it down", Body: "A system is a written decision."},
					{Heading: "Review weekly", Body: "Weekly beats daily."},
					{Heading: "Do this now", Body: "Pick one process today."},
				},
			},
			Hooks: []string{"I almost quit in March.", "Nobody tells you this about revenue."},
		},
	}
	a.EnsureDefaults()
	return a
}

type stubRefiner struct {
	slides []models.SlideIdea
	err    error
	called bool
}

func (s *stubRefiner) RefineSlides(ctx context.Context, analysis *models.DeepAnalysis, draft *models.ContentArtifact) ([]models.SlideIdea, error) {
	s.called = true
	return s.slides, s.err
}

func TestCarouselSlideNumbering(t *testing.T) {
	p := New(nil, 5)

	artifacts, err := p.Plan(context.Background(), "p1", baseAnalysis(), []models.ContentType{models.ContentCarousel})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1 carousel", len(artifacts))
	}

	slides := artifacts[0].Slides
	if len(slides) != 4 {
		t.Fatalf("got %d slides, want 4", len(slides))
	}
	for i, s := range slides {
		if s.Number != i+1 {
			t.Errorf("slide %d has number %d, want %d", i, s.Number, i+1)
		}
		wantHook := i == 0
		wantCTA := i == len(slides)-1
		if s.IsHook != wantHook {
			t.Errorf("slide %d IsHook = %t, want %t", s.Number, s.IsHook, wantHook)
		}
		if s.IsCTA != wantCTA {
			t.Errorf("slide %d IsCTA = %t, want %t", s.Number, s.IsCTA, wantCTA)
		}
	}
}

func TestSingleSlideCarriesBothFlags(t *testing.T) {
	slides := numberSlides([]models.SlideIdea{{Heading: "only", Body: "slide"}})
	if len(slides) != 1 {
		t.Fatalf("got %d slides, want 1", len(slides))
	}
	if !slides[0].IsHook || !slides[0].IsCTA {
		t.Errorf("single slide IsHook=%t IsCTA=%t, want both true", slides[0].IsHook, slides[0].IsCTA)
	}
}

func TestRefinementFallback(t *testing.T) {
	refiner := &stubRefiner{err: errors.New("model unavailable")}
	p := New(refiner, 5)

	artifacts, err := p.Plan(context.Background(), "p1", baseAnalysis(), []models.ContentType{models.ContentCarousel})
	if err != nil {
		t.Fatalf("Plan() error: %v (refinement failure must not fail planning)", err)
	}
	if !refiner.called {
		t.Fatal("refiner was never called")
	}
	if artifacts[0].Slides[0].Heading != "Stop guessing" {
		t.Errorf("fallback did not keep analysis slides, got heading %q", artifacts[0].Slides[0].Heading)
	}
}

func TestRefinementReplacesSlideCopy(t *testing.T) {
	refiner := &stubRefiner{slides: []models.SlideIdea{
		{Heading: "R1", Body: "b1"},
		{Heading: "R2", Body: "b2"},
		{Heading: "R3", Body: "b3"},
		{Heading: "R4", Body: "b4"},
	}}
	p := New(refiner, 5)

	artifacts, err := p.Plan(context.Background(), "p1", baseAnalysis(), []models.ContentType{models.ContentCarousel})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	slides := artifacts[0].Slides
	if slides[0].Heading != "R1" {
		t.Errorf("refined heading not applied, got %q", slides[0].Heading)
	}
	// Numbering and flags survive refinement.
	if slides[0].Number != 1 || !slides[0].IsHook || !slides[3].IsCTA {
		t.Error("slide numbering or endpoint flags lost during refinement")
	}
}

func TestQuoteSelectionPrefersHighWeight(t *testing.T) {
	p := New(nil, 5)
	p.maxQuotes = 2

	artifacts, err := p.Plan(context.Background(), "p1", baseAnalysis(), []models.ContentType{models.ContentQuote})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("got %d quote artifacts, want 2", len(artifacts))
	}
	// Both high-weight moments win over the medium one.
	got := map[string]bool{artifacts[0].Quote: true, artifacts[1].Quote: true}
	if !got["systems saved me"] || !got["we doubled revenue"] {
		t.Errorf("quote selection = %v, want the two high-weight quotes", got)
	}
}

func TestQuoteFallbackToSocialStrategy(t *testing.T) {
	a := baseAnalysis()
	for i := range a.KeyMoments {
		a.KeyMoments[i].BestFor = []string{"hook"}
	}
	a.SocialStrategy.Quotes = []models.QuoteIdea{{Text: "from the plan", Attribution: "Sam"}}

	p := New(nil, 5)
	artifacts, err := p.Plan(context.Background(), "p1", a, []models.ContentType{models.ContentQuote})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Quote != "from the plan" {
		t.Errorf("fallback quotes not used, got %v", artifacts)
	}
	if artifacts[0].Attribution != "Sam" {
		t.Errorf("attribution = %q, want Sam", artifacts[0].Attribution)
	}
}

func TestHookArtifacts(t *testing.T) {
	p := New(nil, 5)

	artifacts, err := p.Plan(context.Background(), "p1", baseAnalysis(), []models.ContentType{models.ContentHook})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("got %d hook artifacts, want 2", len(artifacts))
	}
	for _, a := range artifacts {
		if a.Hook == "" {
			t.Error("hook artifact with empty hook")
		}
		if a.Status != models.StatusDraft {
			t.Errorf("planned artifact status = %s, want draft", a.Status)
		}
	}
}

func TestPlanRejectsMalformedAnalysis(t *testing.T) {
	p := New(nil, 5)

	_, err := p.Plan(context.Background(), "p1", nil, []models.ContentType{models.ContentQuote})
	var perr *PlanningError
	if !errors.As(err, &perr) {
		t.Fatalf("Plan(nil) error = %v, want *PlanningError", err)
	}

	_, err = p.Plan(context.Background(), "p1", &models.DeepAnalysis{}, []models.ContentType{models.ContentQuote})
	if !errors.As(err, &perr) {
		t.Fatalf("Plan(empty) error = %v, want *PlanningError", err)
	}
}
