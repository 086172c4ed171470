// Package guidance normalizes loosely structured backend guidance payloads
// into the canonical records the app consumes. Decoders are tolerant: a wrong
// type or a missing key degrades to a default, never to an error. Input is an
// already-materialized generic JSON value (map/slice/string/float64/bool/nil);
// this package performs no I/O.
package guidance

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// mapValue returns v as a JSON object, or false for anything else.
func mapValue(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// stringValue returns the trimmed string form of v, or false when v is not a
// string or trims to empty.
func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// intValue accepts any JSON numeric representation and truncates to int.
// Non-numeric values are skipped, never coerced.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// boolValue returns v only when it is an explicit JSON boolean.
func boolValue(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// stringify renders a scalar leaf as text. Containers and null yield "".
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case bool:
		return strconv.FormatBool(s)
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1e15 {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// splitPattern breaks a single free-text value into candidate items: newlines,
// bullet markers followed by whitespace, or semicolons followed by whitespace.
var splitPattern = regexp.MustCompile(`\r?\n|[\x{2022}\x{2011}\x{2013}\x{2014}]\s+|;\s+`)

// firstBullet finds a bullet marker with trailing whitespace; the text before
// the first bullet in a value like "Try this: • Name one feeling" is an intro
// label, not an item, and is discarded during splitting.
var firstBullet = regexp.MustCompile(`[\x{2022}\x{2011}\x{2013}\x{2014}]\s+`)

// stringList extracts an ordered list of non-empty strings from an arbitrary
// value. A list stringifies each non-null element; a single string is split on
// newlines, bullets, and semicolons (keeping the whole string when splitting
// yields nothing); anything else yields nil.
func stringList(v any) []string {
	switch raw := v.(type) {
	case []any:
		out := make([]string, 0, len(raw))
		for _, e := range raw {
			if s := stringify(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(raw)
		if s == "" {
			return nil
		}
		body := s
		if loc := firstBullet.FindStringIndex(s); loc != nil {
			body = s[loc[0]:]
		}
		var out []string
		for _, part := range splitPattern.Split(body, -1) {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return []string{s}
		}
		return out
	default:
		return nil
	}
}
