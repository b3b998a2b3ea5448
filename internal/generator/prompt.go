package generator

import (
	"fmt"
	"strings"

	"content-pipeline/internal/models"
)

// Prompt assembly is additive and ordered: base prompt, then the
// slide-position block, then persona, then brand, then the technical block.
// Blocks are only appended, never reordered, so identical inputs always
// produce identical prompts.

func buildSlidePrompt(artifact *models.ContentArtifact, slide models.Slide, total int, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a social media carousel slide graphic, slide %d of %d.\n", slide.Number, total)
	fmt.Fprintf(&b, "Heading: %s\n", slide.Heading)
	if slide.Body != "" {
		fmt.Fprintf(&b, "Body: %s\n", slide.Body)
	}

	appendPositionBlock(&b, slide)
	appendPersonaBlock(&b, opts.Persona)
	appendBrandBlock(&b, opts.Brand)
	appendTechnicalBlock(&b, opts)

	return b.String()
}

func buildArtifactPrompt(artifact *models.ContentArtifact, opts Options) string {
	var b strings.Builder

	switch artifact.Type {
	case models.ContentQuote:
		fmt.Fprintf(&b, "Create a quote graphic for social media.\nQuote: %q\n", artifact.Quote)
		if artifact.Attribution != "" {
			fmt.Fprintf(&b, "Attribution: %s\n", artifact.Attribution)
		}
	case models.ContentHook:
		fmt.Fprintf(&b, "Create a bold text-forward social media graphic.\nText: %q\n", artifact.Hook)
	default:
		fmt.Fprintf(&b, "Create a social media graphic.\nTitle: %s\n", artifact.Title)
	}

	appendPersonaBlock(&b, opts.Persona)
	appendBrandBlock(&b, opts.Brand)
	appendTechnicalBlock(&b, opts)

	return b.String()
}

// appendPositionBlock adds the endpoint requirements. The first and last
// slide get different treatment from the middle slides: the opener has to
// stop the scroll, the closer has to convert.
func appendPositionBlock(b *strings.Builder, slide models.Slide) {
	if slide.IsHook {
		b.WriteString("\nHOOK SLIDE REQUIREMENTS:\nThis is the first slide. It must stop the scroll: large high-contrast headline, minimal body text, strong visual tension.\n")
	}
	if slide.IsCTA {
		b.WriteString("\nCTA SLIDE REQUIREMENTS:\nThis is the final slide. It must carry a clear call to action: tell the viewer exactly what to do next, visually distinct from the content slides.\n")
	}
}

func appendPersonaBlock(b *strings.Builder, persona *models.PersonaRef) {
	if persona == nil {
		return
	}
	fmt.Fprintf(b, "\nPERSONA:\nFeature %s in the image.", persona.Name)
	if persona.Description != "" {
		fmt.Fprintf(b, " %s.", persona.Description)
	}
	if len(persona.GenerationReferences()) > 0 {
		b.WriteString(" Maintain consistent appearance with the attached reference images.")
	}
	b.WriteString("\n")
}

func appendBrandBlock(b *strings.Builder, brand *models.BrandContext) {
	if brand == nil {
		return
	}
	wroteHeader := false
	header := func() {
		if !wroteHeader {
			b.WriteString("\nBRAND:\n")
			wroteHeader = true
		}
	}
	if len(brand.Colors.Primary) > 0 {
		header()
		fmt.Fprintf(b, "Primary colors: %s\n", strings.Join(brand.Colors.Primary, ", "))
	}
	if len(brand.Colors.Accent) > 0 {
		header()
		fmt.Fprintf(b, "Accent colors: %s\n", strings.Join(brand.Colors.Accent, ", "))
	}
	if brand.Voice != "" {
		header()
		fmt.Fprintf(b, "Tone: %s\n", brand.Voice)
	}
}

func appendTechnicalBlock(b *strings.Builder, opts Options) {
	fmt.Fprintf(b, "\nFORMAT:\nAspect ratio %s.", opts.AspectRatio)
	if opts.Quality != "" {
		fmt.Fprintf(b, " Quality: %s.", opts.Quality)
	}
	b.WriteString(" Text must be legible at feed size. No watermarks.\n")
}
