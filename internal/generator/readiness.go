package generator

import "content-pipeline/internal/models"

// Missing element names used in readiness classification.
const (
	MissingImage    = "image"
	MissingCaption  = "caption"
	MissingHashtags = "hashtags"
)

var platformTips = map[models.Platform][]string{
	models.PlatformInstagram: {"Put the hook in the first line of the caption", "Use niche hashtags over broad ones"},
	models.PlatformTwitter:   {"Front-load the key claim", "Threads outperform single long posts"},
	models.PlatformLinkedIn:  {"Open with a one-line story beat", "Break the caption into short paragraphs"},
	models.PlatformFacebook:  {"Questions drive comments", "Shorter captions travel further"},
	models.PlatformYouTube:   {"Match the title to the thumbnail promise"},
	models.PlatformTikTok:    {"The first second decides everything"},
}

// EvaluateReadiness classifies one (artifact, platform) pair. It is derived
// purely from the artifact's own fields and recomputed whenever copy or
// images change; nothing is stored. imagesRequested reflects whether this run
// asked for images at all: a text-only run does not count a missing image
// against readiness.
func EvaluateReadiness(artifact *models.ContentArtifact, platform models.Platform, imagesRequested bool) models.PlatformReadiness {
	r := models.PlatformReadiness{
		Platform:         platform,
		MissingElements:  []string{},
		OptimizationTips: []string{},
	}

	if imagesRequested && artifact.ImageCount() < artifact.RequiredImageCount() {
		r.MissingElements = append(r.MissingElements, MissingImage)
	}

	limits := models.LimitsFor(platform)
	variant := artifact.Variant(platform)
	switch {
	case variant == nil || variant.Caption == "":
		r.MissingElements = append(r.MissingElements, MissingCaption)
	case len([]rune(variant.Caption)) > limits.MaxCaptionChars:
		r.MissingElements = append(r.MissingElements, MissingCaption)
	}
	if variant != nil && len(variant.Hashtags) > limits.MaxHashtags {
		r.MissingElements = append(r.MissingElements, MissingHashtags)
	}

	r.IsReady = len(r.MissingElements) == 0
	if tips, ok := platformTips[platform]; ok {
		r.OptimizationTips = append(r.OptimizationTips, tips...)
	}
	return r
}
