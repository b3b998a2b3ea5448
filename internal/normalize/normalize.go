// Package normalize turns arbitrarily-shaped brand/onboarding payloads into
// the canonical BrandContext. It is total by design: any JSON-shaped input
// produces a fully-defaulted value, never an error or panic.
package normalize

import (
	"content-pipeline/internal/models"
)

// fieldRule is one row of the normalization table: a canonical target, the
// new-format path, the legacy flat path and the coercion to apply. The table
// form keeps precedence auditable: new format wins whenever it is present,
// even when its value cannot be coerced (uncoercible values degrade to the
// default, they do not fall through to legacy).
type fieldRule struct {
	target  string
	primary []string
	legacy  []string
	list    bool
}

var brandRules = []fieldRule{
	{target: "name", primary: []string{"identity", "name"}, legacy: []string{"name"}},
	{target: "voice", primary: []string{"voice", "description"}, legacy: []string{"voice"}},
	{target: "target_audience", primary: []string{"audience", "description"}, legacy: []string{"targetAudience"}},
	{target: "content_goals", primary: []string{"goals", "items"}, legacy: []string{"contentGoals"}, list: true},
	{target: "colors.primary", primary: []string{"colors", "primary", "hex"}, legacy: []string{"colors", "primary"}, list: true},
	{target: "colors.secondary", primary: []string{"colors", "secondary", "hex"}, legacy: []string{"colors", "secondary"}, list: true},
	{target: "colors.accent", primary: []string{"colors", "accent", "hex"}, legacy: []string{"colors", "accent"}, list: true},
}

// Brand normalizes a raw brand payload. Nil input yields the zero context
// with all lists empty.
func Brand(raw map[string]any) *models.BrandContext {
	ctx := &models.BrandContext{
		Colors:       models.BrandColors{Primary: []string{}, Secondary: []string{}, Accent: []string{}},
		ContentGoals: []string{},
	}

	for _, r := range brandRules {
		if r.list {
			assignList(ctx, r.target, resolveList(raw, r))
		} else {
			assignString(ctx, r.target, resolveString(raw, r))
		}
	}

	return ctx
}

func assignString(ctx *models.BrandContext, target, v string) {
	switch target {
	case "name":
		ctx.Name = v
	case "voice":
		ctx.Voice = v
	case "target_audience":
		ctx.TargetAudience = v
	}
}

func assignList(ctx *models.BrandContext, target string, v []string) {
	switch target {
	case "content_goals":
		ctx.ContentGoals = v
	case "colors.primary":
		ctx.Colors.Primary = v
	case "colors.secondary":
		ctx.Colors.Secondary = v
	case "colors.accent":
		ctx.Colors.Accent = v
	}
}

func resolveString(raw map[string]any, r fieldRule) string {
	if v, ok := lookup(raw, r.primary); ok {
		s, _ := coerceString(v)
		return s
	}
	if v, ok := lookup(raw, r.legacy); ok {
		s, _ := coerceString(v)
		return s
	}
	return ""
}

func resolveList(raw map[string]any, r fieldRule) []string {
	if v, ok := lookup(raw, r.primary); ok {
		return coerceStringList(v)
	}
	if v, ok := lookup(raw, r.legacy); ok {
		return coerceStringList(v)
	}
	return []string{}
}

// lookup walks a nested map by path. Intermediate non-map values terminate
// the walk. The final colors legacy paths alias the primary prefix, so a
// present new-format object counts as "primary present" and shadows legacy.
func lookup(m map[string]any, path []string) (any, bool) {
	if m == nil || len(path) == 0 {
		return nil, false
	}
	cur := any(m)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// coerceStringList accepts a list of strings, a single scalar string (one
// element list) or anything else (empty list). Non-string list members are
// dropped.
func coerceStringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	case []string:
		out := make([]string, 0, len(t))
		out = append(out, t...)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
