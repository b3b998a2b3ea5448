package models

// AnalysisInput is the canonical input to the deep analysis stage. It is
// consumed once and not retained; the resulting DeepAnalysis is the long-lived
// artifact later stages reference.
type AnalysisInput struct {
	TranscriptText string        `json:"transcript_text"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Persona        *PersonaRef   `json:"persona,omitempty"`
	Brand          *BrandContext `json:"brand,omitempty"`
}

// PersonaRef points at a persona whose appearance generated images should
// stay consistent with. Image URLs are read-only pointers into external
// object storage; at most 4 are passed to the image provider.
type PersonaRef struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	ReferenceImages []string `json:"reference_images,omitempty"`
}

// MaxPersonaReferenceImages caps how many persona reference images are sent
// with a reference-conditioned generation call.
const MaxPersonaReferenceImages = 4

// GenerationReferences returns the reference image URLs usable for a
// generation call, capped at the provider maximum.
func (p *PersonaRef) GenerationReferences() []string {
	if p == nil || len(p.ReferenceImages) == 0 {
		return nil
	}
	refs := p.ReferenceImages
	if len(refs) > MaxPersonaReferenceImages {
		refs = refs[:MaxPersonaReferenceImages]
	}
	return refs
}

// BrandColors holds hex color lists per brand role. Legacy payloads carried a
// single hex string per role; normalization lifts those into one-element lists.
type BrandColors struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Accent    []string `json:"accent"`
}

// BrandContext is the brand-identity side of the canonical input. All fields
// are optional; absence falls back to neutral defaults instead of failing.
type BrandContext struct {
	Name           string      `json:"name"`
	Voice          string      `json:"voice"`
	Colors         BrandColors `json:"colors"`
	TargetAudience string      `json:"target_audience"`
	ContentGoals   []string    `json:"content_goals"`
}

// DefaultBrandVoice is used whenever no brand voice was captured.
const DefaultBrandVoice = "professional and engaging"

// VoiceOrDefault returns the brand voice, falling back to the neutral default.
func (b *BrandContext) VoiceOrDefault() string {
	if b == nil || b.Voice == "" {
		return DefaultBrandVoice
	}
	return b.Voice
}

// EmotionalWeight tags how strongly a key moment lands.
type EmotionalWeight string

const (
	WeightHigh   EmotionalWeight = "high"
	WeightMedium EmotionalWeight = "medium"
	WeightLow    EmotionalWeight = "low"
)

// Intended uses a key moment can be tagged with.
const (
	UseThumbnail     = "thumbnail"
	UseQuoteGraphic  = "quote_graphic"
	UseCarouselSlide = "carousel_slide"
	UseHook          = "hook"
	UseCTA           = "cta"
)

// KeyMoment is one notable beat of the source content.
type KeyMoment struct {
	Timestamp       string          `json:"timestamp"`
	Moment          string          `json:"moment"`
	Quote           string          `json:"quote"`
	EmotionalWeight EmotionalWeight `json:"emotional_weight"`
	BestFor         []string        `json:"best_for"`
}

// HasUse reports whether the moment is tagged for the given use.
func (k *KeyMoment) HasUse(use string) bool {
	for _, u := range k.BestFor {
		if u == use {
			return true
		}
	}
	return false
}

// EmotionalJourney describes the arc of the content.
type EmotionalJourney struct {
	Opening    string   `json:"opening"`
	Peak       string   `json:"peak"`
	Resolution string   `json:"resolution"`
	Arc        []string `json:"arc"`
}

// AudiencePsychology captures who the content speaks to and how.
type AudiencePsychology struct {
	PainPoints []string `json:"pain_points"`
	Desires    []string `json:"desires"`
	Objections []string `json:"objections"`
	Vocabulary []string `json:"vocabulary"`
}

// ThumbnailConcept is one proposed thumbnail treatment.
type ThumbnailConcept struct {
	Description string `json:"description"`
	TextOverlay string `json:"text_overlay"`
	Style       string `json:"style"`
}

// ThumbnailStrategy holds the thumbnail plan for the content.
type ThumbnailStrategy struct {
	Concepts []ThumbnailConcept `json:"concepts"`
}

// SlideIdea is one carousel slide as proposed by the analysis.
type SlideIdea struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// CarouselNarrative is the analysis-level carousel proposal.
type CarouselNarrative struct {
	Title  string      `json:"title"`
	Slides []SlideIdea `json:"slides"`
}

// QuoteIdea is a quotable line pulled from the content.
type QuoteIdea struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution"`
	Context     string `json:"context"`
}

// ThreadIdea is a multi-post thread proposal.
type ThreadIdea struct {
	Topic string   `json:"topic"`
	Posts []string `json:"posts"`
}

// SocialStrategy gathers the text-only content proposals from the analysis.
type SocialStrategy struct {
	Carousel    CarouselNarrative `json:"carousel"`
	Quotes      []QuoteIdea       `json:"quotes"`
	Hooks       []string          `json:"hooks"`
	ThreadIdeas []ThreadIdea      `json:"thread_ideas"`
}

// PlatformAdaptation describes how to angle the content for one platform.
type PlatformAdaptation struct {
	Angle  string   `json:"angle"`
	Format string   `json:"format"`
	Tips   []string `json:"tips"`
}

// PlatformAdaptations covers the fixed five-platform adaptation set.
type PlatformAdaptations struct {
	Instagram PlatformAdaptation `json:"instagram"`
	Twitter   PlatformAdaptation `json:"twitter"`
	LinkedIn  PlatformAdaptation `json:"linkedin"`
	YouTube   PlatformAdaptation `json:"youtube"`
	TikTok    PlatformAdaptation `json:"tiktok"`
}

// For returns the adaptation for a platform; the zero value for platforms
// outside the adaptation set.
func (pa *PlatformAdaptations) For(p Platform) PlatformAdaptation {
	switch p {
	case PlatformInstagram:
		return pa.Instagram
	case PlatformTwitter:
		return pa.Twitter
	case PlatformLinkedIn:
		return pa.LinkedIn
	case PlatformYouTube:
		return pa.YouTube
	case PlatformTikTok:
		return pa.TikTok
	}
	return PlatformAdaptation{}
}

// BrandAlignment relates the content to the captured brand identity.
type BrandAlignment struct {
	VoiceMatch    string   `json:"voice_match"`
	Opportunities []string `json:"opportunities"`
	Cautions      []string `json:"cautions"`
}

// AnalysisMetadata records provenance of one analysis call.
type AnalysisMetadata struct {
	// ExternalResponseID is the opaque provider continuity token. Refinement
	// calls pass it back so the provider reuses prior context; when empty or
	// expired the full context is re-sent instead.
	ExternalResponseID string  `json:"external_response_id"`
	Depth              string  `json:"depth"`
	ConfidenceScore    float64 `json:"confidence_score"`
}

// DeepAnalysis is the canonical structured result of the deep analysis stage.
// After EnsureDefaults every array field is non-nil, so downstream stages
// never branch on absence vs empty.
type DeepAnalysis struct {
	CoreMessage         string              `json:"core_message"`
	EmotionalJourney    EmotionalJourney    `json:"emotional_journey"`
	KeyMoments          []KeyMoment         `json:"key_moments"`
	AudiencePsychology  AudiencePsychology  `json:"audience_psychology"`
	ThumbnailStrategy   ThumbnailStrategy   `json:"thumbnail_strategy"`
	SocialStrategy      SocialStrategy      `json:"social_strategy"`
	PlatformAdaptations PlatformAdaptations `json:"platform_adaptations"`
	BrandAlignment      BrandAlignment      `json:"brand_alignment"`
	Metadata            AnalysisMetadata    `json:"metadata"`
}

// EnsureDefaults replaces every nil slice reachable through the analysis with
// an empty one and clamps the confidence score to [0,1].
func (d *DeepAnalysis) EnsureDefaults() {
	if d.KeyMoments == nil {
		d.KeyMoments = []KeyMoment{}
	}
	for i := range d.KeyMoments {
		if d.KeyMoments[i].BestFor == nil {
			d.KeyMoments[i].BestFor = []string{}
		}
	}
	if d.EmotionalJourney.Arc == nil {
		d.EmotionalJourney.Arc = []string{}
	}
	if d.AudiencePsychology.PainPoints == nil {
		d.AudiencePsychology.PainPoints = []string{}
	}
	if d.AudiencePsychology.Desires == nil {
		d.AudiencePsychology.Desires = []string{}
	}
	if d.AudiencePsychology.Objections == nil {
		d.AudiencePsychology.Objections = []string{}
	}
	if d.AudiencePsychology.Vocabulary == nil {
		d.AudiencePsychology.Vocabulary = []string{}
	}
	if d.ThumbnailStrategy.Concepts == nil {
		d.ThumbnailStrategy.Concepts = []ThumbnailConcept{}
	}
	if d.SocialStrategy.Carousel.Slides == nil {
		d.SocialStrategy.Carousel.Slides = []SlideIdea{}
	}
	if d.SocialStrategy.Quotes == nil {
		d.SocialStrategy.Quotes = []QuoteIdea{}
	}
	if d.SocialStrategy.Hooks == nil {
		d.SocialStrategy.Hooks = []string{}
	}
	if d.SocialStrategy.ThreadIdeas == nil {
		d.SocialStrategy.ThreadIdeas = []ThreadIdea{}
	}
	for i := range d.SocialStrategy.ThreadIdeas {
		if d.SocialStrategy.ThreadIdeas[i].Posts == nil {
			d.SocialStrategy.ThreadIdeas[i].Posts = []string{}
		}
	}
	for _, a := range []*PlatformAdaptation{
		&d.PlatformAdaptations.Instagram,
		&d.PlatformAdaptations.Twitter,
		&d.PlatformAdaptations.LinkedIn,
		&d.PlatformAdaptations.YouTube,
		&d.PlatformAdaptations.TikTok,
	} {
		if a.Tips == nil {
			a.Tips = []string{}
		}
	}
	if d.BrandAlignment.Opportunities == nil {
		d.BrandAlignment.Opportunities = []string{}
	}
	if d.BrandAlignment.Cautions == nil {
		d.BrandAlignment.Cautions = []string{}
	}
	if d.Metadata.ConfidenceScore < 0 {
		d.Metadata.ConfidenceScore = 0
	} else if d.Metadata.ConfidenceScore > 1 {
		d.Metadata.ConfidenceScore = 1
	}
}
