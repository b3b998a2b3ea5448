package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"content-pipeline/internal/models"
	"content-pipeline/shared/ai"
)

type fakeImages struct {
	mu      sync.Mutex
	calls   int
	failIf  func(prompt string) bool
	noBytes bool
}

func (f *fakeImages) GenerateImage(ctx context.Context, req ai.ImageRequest) (*ai.GeneratedImage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failIf != nil && f.failIf(req.Prompt) {
		return nil, errors.New("provider rejected request")
	}
	if f.noBytes {
		return &ai.GeneratedImage{ProviderURL: "https://provider.example/tmp.png"}, nil
	}
	return &ai.GeneratedImage{Data: []byte{0x89, 0x50}, MIMEType: "image/png"}, nil
}

type fakeCopy struct {
	caption  string
	hashtags []string
	err      error
}

func (f *fakeCopy) GenerateCopy(ctx context.Context, artifact *models.ContentArtifact, platform models.Platform) (*models.CopyVariant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CopyVariant{Caption: f.caption, Hashtags: f.hashtags}, nil
}

type fakeMedia struct {
	fail bool
}

func (f *fakeMedia) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	return "https://cdn.example/" + key, nil
}

func carouselArtifact(n int) *models.ContentArtifact {
	a := &models.ContentArtifact{
		ID:        "car1",
		ProjectID: "p1",
		Type:      models.ContentCarousel,
		Title:     "Five systems",
		Status:    models.StatusDraft,
	}
	for i := 1; i <= n; i++ {
		a.Slides = append(a.Slides, models.Slide{
			Number:  i,
			Heading: fmt.Sprintf("Slide %d", i),
			Body:    "body",
			IsHook:  i == 1,
			IsCTA:   i == n,
		})
	}
	return a
}

func TestPartialGenerationResilience(t *testing.T) {
	images := &fakeImages{failIf: func(prompt string) bool {
		return strings.Contains(prompt, "slide 3 of 5")
	}}
	g := New(images, &fakeCopy{caption: "ok", hashtags: []string{"a"}}, &fakeMedia{}, 2)

	artifact := carouselArtifact(5)
	itemErrs := g.Process(context.Background(), artifact, Options{
		GenerateImages: true,
		Platforms:      []models.Platform{models.PlatformInstagram},
	})

	if len(itemErrs) != 1 {
		t.Fatalf("got %d item errors, want 1", len(itemErrs))
	}
	if artifact.ImageCount() != 4 {
		t.Errorf("ImageCount = %d, want 4", artifact.ImageCount())
	}
	if artifact.Slides[2].ImageURL != "" {
		t.Errorf("failed slide 3 has image URL %q, want empty", artifact.Slides[2].ImageURL)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if artifact.Slides[i].ImageURL == "" {
			t.Errorf("slide %d has no image URL", i+1)
		}
	}
	if artifact.Status == models.StatusFailed {
		t.Error("artifact marked failed on partial generation")
	}
	if artifact.Status != models.StatusReady {
		t.Errorf("status = %s, want ready (4 of 5 images present)", artifact.Status)
	}
}

func TestTotalGenerationFailureLeavesDraft(t *testing.T) {
	images := &fakeImages{failIf: func(string) bool { return true }}
	g := New(images, &fakeCopy{caption: "ok"}, &fakeMedia{}, 2)

	artifact := carouselArtifact(3)
	itemErrs := g.Process(context.Background(), artifact, Options{
		GenerateImages: true,
		Platforms:      []models.Platform{models.PlatformTwitter},
	})

	if len(itemErrs) != 3 {
		t.Errorf("got %d item errors, want 3", len(itemErrs))
	}
	if artifact.Status != models.StatusDraft {
		t.Errorf("status = %s, want draft after total generation failure", artifact.Status)
	}
}

func TestSkippedImagesLeaveDraft(t *testing.T) {
	g := New(&fakeImages{}, &fakeCopy{caption: "ok"}, &fakeMedia{}, 2)

	artifact := carouselArtifact(2)
	g.Process(context.Background(), artifact, Options{
		GenerateImages: false,
		Platforms:      []models.Platform{models.PlatformInstagram},
	})

	if artifact.Status != models.StatusDraft {
		t.Errorf("status = %s, want draft when generation skipped", artifact.Status)
	}
}

func TestUploadFailureFallsBackToProviderURL(t *testing.T) {
	images := &fakeImages{noBytes: true}
	g := New(images, nil, &fakeMedia{fail: true}, 2)

	artifact := &models.ContentArtifact{ID: "q1", ProjectID: "p1", Type: models.ContentQuote, Quote: "q"}
	itemErrs := g.Process(context.Background(), artifact, Options{GenerateImages: true})

	if len(itemErrs) != 0 {
		t.Fatalf("unexpected item errors: %v", itemErrs)
	}
	if artifact.ImageURL != "https://provider.example/tmp.png" {
		t.Errorf("ImageURL = %q, want provider fallback URL", artifact.ImageURL)
	}
}

func TestCopyClampedBeforePersistence(t *testing.T) {
	long := strings.Repeat("word ", 200) // ~1000 chars
	tags := make([]string, 40)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag%d", i)
	}
	g := New(nil, &fakeCopy{caption: long, hashtags: tags}, nil, 2)

	artifact := &models.ContentArtifact{ID: "h1", Type: models.ContentHook, Hook: "hook"}
	g.Process(context.Background(), artifact, Options{
		Platforms: []models.Platform{models.PlatformTwitter, models.PlatformInstagram},
	})

	tw := artifact.Variant(models.PlatformTwitter)
	if tw == nil {
		t.Fatal("twitter variant missing")
	}
	if n := len([]rune(tw.Caption)); n > 280 {
		t.Errorf("twitter caption length %d exceeds 280", n)
	}
	if len(tw.Hashtags) > 5 {
		t.Errorf("twitter hashtag count %d exceeds 5", len(tw.Hashtags))
	}

	ig := artifact.Variant(models.PlatformInstagram)
	if ig == nil {
		t.Fatal("instagram variant missing")
	}
	if len(ig.Hashtags) != 30 {
		t.Errorf("instagram hashtag count = %d, want clamped to 30", len(ig.Hashtags))
	}
}

func TestClampIdempotence(t *testing.T) {
	v := &models.CopyVariant{
		Caption:  strings.Repeat("alpha beta ", 50), // 550 chars
		Hashtags: []string{"one", "two", "three", "four", "five", "six", "seven"},
	}

	once := ClampCopy(v, models.PlatformTwitter)
	twice := ClampCopy(once, models.PlatformTwitter)

	if once.Caption != twice.Caption {
		t.Errorf("caption clamp not idempotent: %q vs %q", once.Caption, twice.Caption)
	}
	if len(once.Hashtags) != len(twice.Hashtags) {
		t.Errorf("hashtag clamp not idempotent: %d vs %d", len(once.Hashtags), len(twice.Hashtags))
	}
	if n := len([]rune(once.Caption)); n > 280 {
		t.Errorf("clamped caption length %d exceeds 280", n)
	}
	// Word-boundary safety: the clamped caption must not end mid-word.
	if strings.HasSuffix(once.Caption, "alph") || strings.HasSuffix(once.Caption, "bet") {
		t.Errorf("caption cut mid-word: %q", once.Caption[len(once.Caption)-10:])
	}
}

func TestBatchLimitRespected(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	images := &fakeImages{}
	tracker := imageFunc(func(ctx context.Context, req ai.ImageRequest) (*ai.GeneratedImage, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
		return images.GenerateImage(ctx, req)
	})

	g := New(tracker, nil, &fakeMedia{}, 2)
	artifact := carouselArtifact(8)
	g.Process(context.Background(), artifact, Options{GenerateImages: true})

	if peak > 2 {
		t.Errorf("peak concurrent image requests = %d, want at most 2", peak)
	}
	if artifact.ImageCount() != 8 {
		t.Errorf("ImageCount = %d, want 8", artifact.ImageCount())
	}
}

type imageFunc func(ctx context.Context, req ai.ImageRequest) (*ai.GeneratedImage, error)

func (f imageFunc) GenerateImage(ctx context.Context, req ai.ImageRequest) (*ai.GeneratedImage, error) {
	return f(ctx, req)
}

func TestReadinessClassification(t *testing.T) {
	artifact := &models.ContentArtifact{
		ID:       "q1",
		Type:     models.ContentQuote,
		Quote:    "the quote",
		ImageURL: "https://cdn.example/q1.png",
	}
	artifact.SetVariant(models.PlatformInstagram, &models.CopyVariant{Caption: "fine", Hashtags: []string{"a", "b"}})
	artifact.SetVariant(models.PlatformTwitter, &models.CopyVariant{Caption: "fine", Hashtags: []string{"a"}})

	r := EvaluateReadiness(artifact, models.PlatformInstagram, true)
	if !r.IsReady {
		t.Errorf("IsReady = false, want true; missing = %v", r.MissingElements)
	}
	if len(r.MissingElements) != 0 {
		t.Errorf("MissingElements = %v, want empty", r.MissingElements)
	}

	// Removing the image flips only the image element, on every platform
	// independently.
	artifact.ImageURL = ""
	r = EvaluateReadiness(artifact, models.PlatformInstagram, true)
	if r.IsReady {
		t.Error("IsReady = true without image")
	}
	if len(r.MissingElements) != 1 || r.MissingElements[0] != MissingImage {
		t.Errorf("MissingElements = %v, want exactly [image]", r.MissingElements)
	}

	rt := EvaluateReadiness(artifact, models.PlatformTwitter, true)
	if len(rt.MissingElements) != 1 || rt.MissingElements[0] != MissingImage {
		t.Errorf("twitter MissingElements = %v, want exactly [image]", rt.MissingElements)
	}
}

func TestReadinessWithoutImagesRequested(t *testing.T) {
	artifact := &models.ContentArtifact{ID: "h1", Type: models.ContentHook, Hook: "h"}
	artifact.SetVariant(models.PlatformTwitter, &models.CopyVariant{Caption: "short", Hashtags: []string{}})

	r := EvaluateReadiness(artifact, models.PlatformTwitter, false)
	if !r.IsReady {
		t.Errorf("text-only run counted missing image against readiness: %v", r.MissingElements)
	}
}

func TestReadinessMissingCopy(t *testing.T) {
	artifact := &models.ContentArtifact{ID: "q1", Type: models.ContentQuote, ImageURL: "u"}

	r := EvaluateReadiness(artifact, models.PlatformLinkedIn, true)
	if r.IsReady {
		t.Error("ready without any copy variant")
	}
	if len(r.MissingElements) != 1 || r.MissingElements[0] != MissingCaption {
		t.Errorf("MissingElements = %v, want [caption]", r.MissingElements)
	}
}

func TestPromptBlockOrder(t *testing.T) {
	artifact := carouselArtifact(3)
	opts := Options{
		AspectRatio: models.AspectPortrait,
		Persona:     &models.PersonaRef{Name: "Alex", ReferenceImages: []string{"u1"}},
		Brand:       &models.BrandContext{Voice: "bold", Colors: models.BrandColors{Primary: []string{"#112233"}}},
	}

	first := buildSlidePrompt(artifact, artifact.Slides[0], 3, opts)
	mid := buildSlidePrompt(artifact, artifact.Slides[1], 3, opts)
	last := buildSlidePrompt(artifact, artifact.Slides[2], 3, opts)

	if !strings.Contains(first, "HOOK SLIDE REQUIREMENTS") || strings.Contains(first, "CTA SLIDE REQUIREMENTS") {
		t.Error("first slide must carry the hook block only")
	}
	if strings.Contains(mid, "HOOK SLIDE") || strings.Contains(mid, "CTA SLIDE") {
		t.Error("middle slide must carry no position block")
	}
	if !strings.Contains(last, "CTA SLIDE REQUIREMENTS") || strings.Contains(last, "HOOK SLIDE REQUIREMENTS") {
		t.Error("last slide must carry the CTA block only")
	}

	// Fixed block order: position < persona < brand < technical.
	pos := strings.Index(first, "HOOK SLIDE REQUIREMENTS")
	persona := strings.Index(first, "PERSONA:")
	brand := strings.Index(first, "BRAND:")
	tech := strings.Index(first, "FORMAT:")
	if !(pos < persona && persona < brand && brand < tech) {
		t.Errorf("block order wrong: pos=%d persona=%d brand=%d tech=%d", pos, persona, brand, tech)
	}

	// Persona and brand blocks are conditional.
	bare := buildSlidePrompt(artifact, artifact.Slides[1], 3, Options{AspectRatio: models.AspectPortrait})
	if strings.Contains(bare, "PERSONA:") || strings.Contains(bare, "BRAND:") {
		t.Error("persona/brand blocks appended without persona/brand")
	}
}
