package generator

import (
	"strings"
	"unicode"

	"content-pipeline/internal/models"
)

// ClampCopy enforces the platform's caption and hashtag limits on generated
// copy. Clamping happens here, after generation, because model output length
// is not reliably bounded by prompting alone. The operation is idempotent:
// clamping already-clamped copy is a no-op.
func ClampCopy(v *models.CopyVariant, platform models.Platform) *models.CopyVariant {
	if v == nil {
		return nil
	}
	limits := models.LimitsFor(platform)

	out := *v
	out.Caption = clampCaption(v.Caption, limits.MaxCaptionChars)
	out.Hashtags = clampHashtags(v.Hashtags, limits.MaxHashtags)
	return &out
}

// clampCaption truncates to at most max runes, backing up to the previous
// word boundary so the cut never lands mid-word. Captions with no boundary in
// range are cut hard.
func clampCaption(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}

	cut := runes[:max]
	boundary := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if unicode.IsSpace(cut[i]) {
			boundary = i
			break
		}
	}
	if boundary > 0 {
		cut = cut[:boundary]
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

// clampHashtags drops empty entries and cuts the list at the platform's
// maximum, preserving order.
func clampHashtags(tags []string, max int) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}
