package guidance

import "strings"

// MaxAnswerHelpers caps how many reply scaffolds a turn may carry; the UI
// renders them as tappable chips and has room for three.
const MaxAnswerHelpers = 3

// helperSources lists every field, flat or nested, that backend variants have
// used for reply scaffolds. Harvesting takes the union of all of them, not
// the first non-empty one, to keep recall across backend versions.
var helperSources = []struct {
	parent string // "" = top level
	key    string
}{
	{"", "answer_helpers"},
	{"", "answer_scaffolds"},
	{"", "answer_templates"},
	{"", "helpers"},
	{"", "chips"},
	{"", "answers"},
	{"flow", "answer_helpers"},
	{"flow", "helpers"},
	{"ui", "answer_helpers"},
	{"ui", "chips"},
}

// ExtractAnswerHelpers harvests reply-scaffold strings from every known alias
// field of a turn mapping, filters out questions, normalizes trailing
// punctuation, and deduplicates case-insensitively in encounter order,
// keeping at most MaxAnswerHelpers.
func ExtractAnswerHelpers(m map[string]any) []string {
	if m == nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool, MaxAnswerHelpers)
	for _, src := range helperSources {
		holder := m
		if src.parent != "" {
			nested, ok := mapValue(m[src.parent])
			if !ok {
				continue
			}
			holder = nested
		}
		for _, cand := range stringList(holder[src.key]) {
			if strings.HasSuffix(cand, "?") {
				continue
			}
			cand = normalizeHelper(cand)
			if cand == "" {
				continue
			}
			key := strings.ToLower(cand)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, cand)
			if len(out) == MaxAnswerHelpers {
				return out
			}
		}
	}
	return out
}

// normalizeHelper strips one trailing colon (ASCII or fullwidth) and any run
// of trailing periods (ASCII or ideographic), then re-trims.
func normalizeHelper(s string) string {
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSuffix(s, "：")
	for strings.HasSuffix(s, ".") || strings.HasSuffix(s, "。") {
		s = strings.TrimSuffix(s, ".")
		s = strings.TrimSuffix(s, "。")
	}
	return strings.TrimSpace(s)
}
