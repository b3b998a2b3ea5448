package ai

import (
	"fmt"

	"google.golang.org/genai"
)

// Response schemas are defined once, named and versioned, and referenced by
// id at call sites. Each call type instructs the model with exactly one of
// these; the prompt never carries its own ad hoc structure description, so
// the prompt and the validator cannot drift apart.
const (
	SchemaAnalysisV1    = "analysis.v1"
	SchemaThumbnailV1   = "thumbnail_plan.v1"
	SchemaSocialPlanV1  = "social_plan.v1"
	SchemaSlideDeckV1   = "slide_deck.v1"
	SchemaCopyVariantV1 = "copy_variant.v1"
)

var schemaRegistry = map[string]*genai.Schema{
	SchemaAnalysisV1:    analysisSchema,
	SchemaThumbnailV1:   thumbnailPlanSchema,
	SchemaSocialPlanV1:  socialPlanSchema,
	SchemaSlideDeckV1:   slideDeckSchema,
	SchemaCopyVariantV1: copyVariantSchema,
}

// SchemaByID returns the registered response schema for id.
func SchemaByID(id string) (*genai.Schema, error) {
	s, ok := schemaRegistry[id]
	if !ok {
		return nil, fmt.Errorf("unknown response schema %q", id)
	}
	return s, nil
}

func stringField(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func stringList(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: desc,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

var keyMomentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"timestamp": stringField("approximate position in the source, e.g. 02:15 or 'midway'"),
		"moment":    stringField("what happens at this moment"),
		"quote":     stringField("the verbatim or lightly cleaned quotable line"),
		"emotional_weight": {
			Type: genai.TypeString,
			Enum: []string{"high", "medium", "low"},
		},
		"best_for": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Enum: []string{"thumbnail", "quote_graphic", "carousel_slide", "hook", "cta"}},
		},
	},
	Required: []string{"moment", "emotional_weight", "best_for"},
}

var platformAdaptationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"angle":  stringField("how to angle the content for this platform"),
		"format": stringField("the native format to use, e.g. reel, thread, article"),
		"tips":   stringList("platform-specific tips"),
	},
	Required: []string{"angle", "format"},
}

var slideIdeaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"heading": stringField("short slide heading"),
		"body":    stringField("slide body copy, one or two sentences"),
	},
	Required: []string{"heading", "body"},
}

var carouselSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":  stringField("carousel working title"),
		"slides": {Type: genai.TypeArray, Items: slideIdeaSchema},
	},
	Required: []string{"title", "slides"},
}

var quoteIdeaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"text":        stringField("the quote text"),
		"attribution": stringField("who said it"),
		"context":     stringField("one line of context for the quote"),
	},
	Required: []string{"text"},
}

var threadIdeaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"topic": stringField("thread topic"),
		"posts": stringList("ordered post texts"),
	},
	Required: []string{"topic", "posts"},
}

var socialStrategySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"carousel":     carouselSchema,
		"quotes":       {Type: genai.TypeArray, Items: quoteIdeaSchema},
		"hooks":        stringList("scroll-stopping opening lines"),
		"thread_ideas": {Type: genai.TypeArray, Items: threadIdeaSchema},
	},
	Required: []string{"carousel", "quotes", "hooks", "thread_ideas"},
}

var thumbnailConceptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"description":  stringField("the visual concept"),
		"text_overlay": stringField("overlay text, a few words at most"),
		"style":        stringField("visual style notes"),
	},
	Required: []string{"description", "text_overlay"},
}

// analysisSchema mirrors models.DeepAnalysis minus the metadata block, which
// the integration fills itself.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"core_message": stringField("the single central message of the content"),
		"emotional_journey": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"opening":    stringField("emotional state at the opening"),
				"peak":       stringField("the emotional peak"),
				"resolution": stringField("how the content resolves"),
				"arc":        stringList("the arc as ordered beats"),
			},
			Required: []string{"opening", "peak", "resolution"},
		},
		"key_moments": {Type: genai.TypeArray, Items: keyMomentSchema},
		"audience_psychology": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"pain_points": stringList("audience pain points the content touches"),
				"desires":     stringList("audience desires the content speaks to"),
				"objections":  stringList("likely objections"),
				"vocabulary":  stringList("words and phrases the audience uses"),
			},
			Required: []string{"pain_points", "desires"},
		},
		"thumbnail_strategy": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"concepts": {Type: genai.TypeArray, Items: thumbnailConceptSchema},
			},
			Required: []string{"concepts"},
		},
		"social_strategy": socialStrategySchema,
		"platform_adaptations": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"instagram": platformAdaptationSchema,
				"twitter":   platformAdaptationSchema,
				"linkedin":  platformAdaptationSchema,
				"youtube":   platformAdaptationSchema,
				"tiktok":    platformAdaptationSchema,
			},
			Required: []string{"instagram", "twitter", "linkedin", "youtube", "tiktok"},
		},
		"brand_alignment": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"voice_match":   stringField("how well the content matches the brand voice"),
				"opportunities": stringList("brand opportunities in this content"),
				"cautions":      stringList("things to avoid"),
			},
			Required: []string{"voice_match"},
		},
		"confidence_score": {
			Type:        genai.TypeNumber,
			Description: "confidence in this analysis, 0 to 1",
		},
	},
	Required: []string{
		"core_message", "emotional_journey", "key_moments", "audience_psychology",
		"thumbnail_strategy", "social_strategy", "platform_adaptations",
		"brand_alignment", "confidence_score",
	},
}

var thumbnailPlanSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"concepts": {Type: genai.TypeArray, Items: thumbnailConceptSchema},
	},
	Required: []string{"concepts"},
}

var socialPlanSchema = socialStrategySchema

var slideDeckSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"slides": {Type: genai.TypeArray, Items: slideIdeaSchema},
	},
	Required: []string{"slides"},
}

var copyVariantSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"caption":     stringField("the post caption"),
		"hashtags":    stringList("hashtags without the # prefix"),
		"cta":         stringField("call to action line"),
		"title":       stringField("title, for platforms that use one"),
		"description": stringField("description, for platforms that use one"),
	},
	Required: []string{"caption", "hashtags"},
}
