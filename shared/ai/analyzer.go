package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"content-pipeline/internal/models"
	"content-pipeline/shared/config"

	"google.golang.org/genai"
)

// TruncationMarker is inserted where transcript text was cut. Truncation
// keeps a prefix and a suffix: closing context (CTA, conclusion) matters as
// much as the opening hook, so a tail-only cut would lose half the signal.
const TruncationMarker = "\n[...truncated...]\n"

// contextCacheTTL bounds how long a recorded continuity id stays usable.
const contextCacheTTL = 30 * time.Minute

// generateContentFunc matches the genai client's Models.GenerateContent.
type generateContentFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// createCacheFunc matches the genai client's Caches.Create.
type createCacheFunc func(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error)

// Analyzer obtains structured analyses and refinements from the reasoning
// model. All responses are schema-constrained JSON validated against closed
// Go types. The provider calls are held as function fields so tests can
// substitute them.
type Analyzer struct {
	generateContent generateContentFunc
	createCache     createCacheFunc
	model           string
	timeout         time.Duration
	maxOutputTokens int32
	thinkingBudget  *int32
	maxTranscript   int
}

func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.AI.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Analyzer{
		generateContent: client.Models.GenerateContent,
		createCache:     client.Caches.Create,
		model:           cfg.AI.AnalysisModel,
		timeout:         cfg.AI.CallTimeout(),
		maxOutputTokens: int32(cfg.AI.MaxOutputTokens),
		thinkingBudget:  thinkingBudgetFor(cfg.AI.ReasoningEffort),
		maxTranscript:   cfg.AI.MaxTranscriptChars,
	}, nil
}

// thinkingBudgetFor maps the reasoning-effort enum onto a thinking token
// budget. "none" disables thinking entirely.
func thinkingBudgetFor(effort string) *int32 {
	var budget int32
	switch effort {
	case "none":
		budget = 0
	case "low":
		budget = 1024
	case "medium":
		budget = 4096
	case "high":
		budget = 16384
	case "xhigh":
		budget = 32768
	default:
		return nil
	}
	return &budget
}

// TruncateTranscript enforces the transcript ceiling, keeping roughly 60% of
// the budget from the head and 40% from the tail with an explicit marker at
// the gap. The ceiling counts runes; cuts never split a multibyte character.
func TruncateTranscript(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	budget := maxChars - len(TruncationMarker)
	if budget < 2 {
		return string(runes[:maxChars])
	}
	head := budget * 6 / 10
	tail := budget - head
	return string(runes[:head]) + TruncationMarker + string(runes[len(runes)-tail:])
}

const analysisSystemPrompt = `You are a content strategist who analyzes long-form content and produces a structured deep analysis: the core message, the emotional journey, key moments worth repurposing, audience psychology, a thumbnail strategy, a social content strategy, and per-platform adaptations. Ground every field in the transcript you are given. Respond with JSON matching the required schema exactly.`

const refinementSystemPrompt = `You refine one slice of an existing content analysis. Stay consistent with the analysis you were given earlier. Respond with JSON matching the required schema exactly.`

// analysisPayload is the closed wire shape of an analysis response. Unknown
// fields are rejected at decode time, which is what lets every downstream
// stage assume completeness instead of defensively checking optional paths.
type analysisPayload struct {
	CoreMessage         string                     `json:"core_message"`
	EmotionalJourney    models.EmotionalJourney    `json:"emotional_journey"`
	KeyMoments          []models.KeyMoment         `json:"key_moments"`
	AudiencePsychology  models.AudiencePsychology  `json:"audience_psychology"`
	ThumbnailStrategy   models.ThumbnailStrategy   `json:"thumbnail_strategy"`
	SocialStrategy      models.SocialStrategy      `json:"social_strategy"`
	PlatformAdaptations models.PlatformAdaptations `json:"platform_adaptations"`
	BrandAlignment      models.BrandAlignment      `json:"brand_alignment"`
	ConfidenceScore     float64                    `json:"confidence_score"`
}

// Analyze runs the deep analysis call. The transcript context is cached with
// the provider when possible and the cache name recorded as the analysis
// continuity id; when caching is unavailable the full context rides along
// with the request and the call still succeeds.
func (a *Analyzer) Analyze(ctx context.Context, input *models.AnalysisInput) (*models.DeepAnalysis, error) {
	if input == nil {
		return nil, fmt.Errorf("analysis input cannot be nil")
	}
	if input.TranscriptText == "" {
		return nil, fmt.Errorf("transcript text is required")
	}

	userContext := buildAnalysisContext(input, TruncateTranscript(input.TranscriptText, a.maxTranscript))
	cacheName := a.createContextCache(ctx, analysisSystemPrompt, userContext)

	instruction := "Produce the deep analysis of the content above."
	var contents []*genai.Content
	if cacheName != "" {
		contents = []*genai.Content{genai.NewContentFromText(instruction, genai.RoleUser)}
	} else {
		contents = []*genai.Content{genai.NewContentFromText(userContext+"\n\n"+instruction, genai.RoleUser)}
	}

	cfg, err := a.responseConfig(SchemaAnalysisV1, analysisSystemPrompt, cacheName)
	if err != nil {
		return nil, err
	}

	text, err := a.generate(ctx, contents, cfg)
	if err != nil {
		return nil, err
	}

	var payload analysisPayload
	if err := parseStrictJSON(text, &payload); err != nil {
		return nil, err
	}
	if payload.CoreMessage == "" {
		return nil, &AnalysisError{Kind: ErrKindSchema, Err: errors.New("analysis is missing core_message")}
	}

	analysis := &models.DeepAnalysis{
		CoreMessage:         payload.CoreMessage,
		EmotionalJourney:    payload.EmotionalJourney,
		KeyMoments:          payload.KeyMoments,
		AudiencePsychology:  payload.AudiencePsychology,
		ThumbnailStrategy:   payload.ThumbnailStrategy,
		SocialStrategy:      payload.SocialStrategy,
		PlatformAdaptations: payload.PlatformAdaptations,
		BrandAlignment:      payload.BrandAlignment,
		Metadata: models.AnalysisMetadata{
			ExternalResponseID: cacheName,
			Depth:              "deep",
			ConfidenceScore:    payload.ConfidenceScore,
		},
	}
	analysis.EnsureDefaults()
	return analysis, nil
}

// PlanThumbnails re-derives the thumbnail strategy from the recorded context.
func (a *Analyzer) PlanThumbnails(ctx context.Context, analysis *models.DeepAnalysis) (*models.ThumbnailStrategy, error) {
	prompt := "Propose refined thumbnail concepts for this content. Favor concepts built around the highest-weight key moments."
	var out models.ThumbnailStrategy
	if err := a.refine(ctx, analysis, SchemaThumbnailV1, prompt, &out); err != nil {
		return nil, err
	}
	if out.Concepts == nil {
		out.Concepts = []models.ThumbnailConcept{}
	}
	return &out, nil
}

// PlanSocial re-derives the social strategy from the recorded context.
func (a *Analyzer) PlanSocial(ctx context.Context, analysis *models.DeepAnalysis) (*models.SocialStrategy, error) {
	prompt := "Propose a refined social content plan: the carousel narrative, quote candidates, hooks and thread ideas."
	var out models.SocialStrategy
	if err := a.refine(ctx, analysis, SchemaSocialPlanV1, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefineSlides asks the model to tighten carousel slide copy. Callers fall
// back to the slides already present in the analysis when this fails.
func (a *Analyzer) RefineSlides(ctx context.Context, analysis *models.DeepAnalysis, draft *models.ContentArtifact) ([]models.SlideIdea, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Tighten the copy of this %d-slide carousel titled %q. Slide 1 must stop the scroll; the final slide must carry a clear call to action. Keep one idea per slide.\n", len(draft.Slides), draft.Title)
	for _, s := range draft.Slides {
		fmt.Fprintf(&b, "Slide %d: %s — %s\n", s.Number, s.Heading, s.Body)
	}

	var out struct {
		Slides []models.SlideIdea `json:"slides"`
	}
	if err := a.refine(ctx, analysis, SchemaSlideDeckV1, b.String(), &out); err != nil {
		return nil, err
	}
	return out.Slides, nil
}

// GenerateCopy produces a platform copy variant for an artifact. The result
// is not clamped here; the generation stage clamps to platform limits before
// persistence.
func (a *Analyzer) GenerateCopy(ctx context.Context, artifact *models.ContentArtifact, platform models.Platform) (*models.CopyVariant, error) {
	limits := models.LimitsFor(platform)

	var b strings.Builder
	fmt.Fprintf(&b, "Write %s copy for the following %s.\n", platform, artifact.Type)
	fmt.Fprintf(&b, "Aim for well under %d characters and at most %d hashtags.\n\n", limits.MaxCaptionChars, limits.MaxHashtags)
	fmt.Fprintf(&b, "Title: %s\n", artifact.Title)
	switch artifact.Type {
	case models.ContentCarousel:
		for _, s := range artifact.Slides {
			fmt.Fprintf(&b, "Slide %d: %s — %s\n", s.Number, s.Heading, s.Body)
		}
	case models.ContentQuote:
		fmt.Fprintf(&b, "Quote: %q", artifact.Quote)
		if artifact.Attribution != "" {
			fmt.Fprintf(&b, " — %s", artifact.Attribution)
		}
		b.WriteString("\n")
	case models.ContentHook:
		fmt.Fprintf(&b, "Hook: %s\n", artifact.Hook)
	}

	cfg, err := a.responseConfig(SchemaCopyVariantV1, refinementSystemPrompt, "")
	if err != nil {
		return nil, err
	}
	contents := []*genai.Content{genai.NewContentFromText(b.String(), genai.RoleUser)}

	text, err := a.generate(ctx, contents, cfg)
	if err != nil {
		return nil, err
	}

	var variant models.CopyVariant
	if err := parseStrictJSON(text, &variant); err != nil {
		return nil, err
	}
	if variant.Hashtags == nil {
		variant.Hashtags = []string{}
	}
	return &variant, nil
}

// refine runs a schema-constrained refinement call. It prefers the analysis
// continuity id; if the provider rejects it (expired cache) the call retries
// once with the serialized analysis as full context.
func (a *Analyzer) refine(ctx context.Context, analysis *models.DeepAnalysis, schemaID, prompt string, dst any) error {
	if analysis == nil {
		return fmt.Errorf("analysis cannot be nil")
	}

	cacheName := analysis.Metadata.ExternalResponseID
	if cacheName != "" {
		cfg, err := a.responseConfig(schemaID, refinementSystemPrompt, cacheName)
		if err != nil {
			return err
		}
		contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
		text, err := a.generate(ctx, contents, cfg)
		if err == nil {
			return parseStrictJSON(text, dst)
		}
		var aerr *AnalysisError
		if errors.As(err, &aerr) && aerr.Kind == ErrKindProvider {
			log.Printf("Warning: continuity id rejected, re-supplying full context: %v", err)
		} else {
			return err
		}
	}

	serialized, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis for refinement: %w", err)
	}

	cfg, err := a.responseConfig(schemaID, refinementSystemPrompt, "")
	if err != nil {
		return err
	}
	full := fmt.Sprintf("Here is the content analysis:\n%s\n\n%s", serialized, prompt)
	contents := []*genai.Content{genai.NewContentFromText(full, genai.RoleUser)}

	text, err := a.generate(ctx, contents, cfg)
	if err != nil {
		return err
	}
	return parseStrictJSON(text, dst)
}

// createContextCache stores the system prompt and transcript context with the
// provider. A failure here is never fatal: the caller just re-sends full
// context and the continuity id stays empty.
func (a *Analyzer) createContextCache(ctx context.Context, system, userContext string) string {
	cached, err := a.createCache(ctx, a.model, &genai.CreateCachedContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Contents:          []*genai.Content{genai.NewContentFromText(userContext, genai.RoleUser)},
		TTL:               contextCacheTTL,
	})
	if err != nil {
		log.Printf("Warning: context cache unavailable, sending full context inline: %v", err)
		return ""
	}
	return cached.Name
}

func (a *Analyzer) responseConfig(schemaID, system, cacheName string) (*genai.GenerateContentConfig, error) {
	schema, err := SchemaByID(schemaID)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		MaxOutputTokens:  a.maxOutputTokens,
	}
	if cacheName != "" {
		// The cache already carries the system instruction.
		cfg.CachedContent = cacheName
	} else if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if a.thinkingBudget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: a.thinkingBudget}
	}
	return cfg, nil
}

// generate performs one provider call under the configured timeout and
// extracts the response text.
func (a *Analyzer) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.generateContent(callCtx, a.model, contents, cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return "", &AnalysisError{Kind: ErrKindTimeout, Err: err}
		}
		return "", &AnalysisError{Kind: ErrKindProvider, Err: err}
	}

	text := result.Text()
	if text == "" {
		return "", &AnalysisError{Kind: ErrKindParse, Err: errors.New("no extractable text in provider response")}
	}
	return text, nil
}

// parseStrictJSON extracts the JSON object from a response and decodes it
// with unknown fields rejected. Syntactically broken output is a parse error;
// valid JSON that does not fit the closed shape is a schema error.
func parseStrictJSON(response string, dst any) error {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return &AnalysisError{Kind: ErrKindParse, Err: fmt.Errorf("no JSON object found in response")}
	}

	raw := []byte(response[startIdx : endIdx+1])
	if !json.Valid(raw) {
		return &AnalysisError{Kind: ErrKindParse, Err: fmt.Errorf("response is not valid JSON")}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &AnalysisError{Kind: ErrKindSchema, Err: err}
	}
	return nil
}

func buildAnalysisContext(input *models.AnalysisInput, transcript string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TITLE: %s\n", input.Title)
	if input.Description != "" {
		fmt.Fprintf(&b, "DESCRIPTION: %s\n", input.Description)
	}

	if input.Brand != nil {
		fmt.Fprintf(&b, "\nBRAND CONTEXT:\n")
		if input.Brand.Name != "" {
			fmt.Fprintf(&b, "Brand: %s\n", input.Brand.Name)
		}
		fmt.Fprintf(&b, "Voice: %s\n", input.Brand.VoiceOrDefault())
		if input.Brand.TargetAudience != "" {
			fmt.Fprintf(&b, "Target audience: %s\n", input.Brand.TargetAudience)
		}
		if len(input.Brand.ContentGoals) > 0 {
			fmt.Fprintf(&b, "Content goals: %s\n", strings.Join(input.Brand.ContentGoals, ", "))
		}
	}

	if input.Persona != nil {
		fmt.Fprintf(&b, "\nPERSONA: %s", input.Persona.Name)
		if input.Persona.Description != "" {
			fmt.Fprintf(&b, " (%s)", input.Persona.Description)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nTRANSCRIPT:\n%s\n", transcript)
	return b.String()
}
