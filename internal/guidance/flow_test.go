package guidance_test

import (
	"testing"

	"zen-guidance-backend/internal/guidance"
)

func TestDecodeFlowFlags(t *testing.T) {
	in := map[string]any{
		"recommend_end": true,
		"break":         true,
		"risk_notice":   "  reach out  ",
		"session_turn":  float64(2),
		"talk_only":     true,
		"mood_prompt":   true,
	}
	f, ok := guidance.DecodeFlow(in)
	if !ok {
		t.Fatalf("DecodeFlow reported not found")
	}
	if !f.RecommendEnd || !f.SuggestBreak || !f.TalkOnly || !f.MoodPrompt {
		t.Fatalf("expected all flags set, got %+v", f)
	}
	if f.RiskNotice != "reach out" {
		t.Fatalf("RiskNotice = %q", f.RiskNotice)
	}
	if f.SessionTurn == nil || *f.SessionTurn != 2 {
		t.Fatalf("SessionTurn = %v", f.SessionTurn)
	}
	if !f.AllowReflect {
		t.Fatalf("AllowReflect should default true")
	}
}

func TestDecodeFlowAllowReflect(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want bool
	}{
		{"absent means true", map[string]any{}, true},
		{"explicit false", map[string]any{"allow_reflect": false}, false},
		{"explicit true", map[string]any{"allow_reflect": true}, true},
		{"non-bool stays true", map[string]any{"allow_reflect": "no"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, _ := guidance.DecodeFlow(tc.in)
			if f.AllowReflect != tc.want {
				t.Fatalf("AllowReflect = %v, want %v", f.AllowReflect, tc.want)
			}
		})
	}
}

func TestDecodeFlowTruthyStringsIgnored(t *testing.T) {
	f, _ := guidance.DecodeFlow(map[string]any{
		"recommend_end": "true",
		"suggest_break": float64(1),
		"mood_prompt":   "yes",
	})
	if f.RecommendEnd || f.SuggestBreak || f.MoodPrompt {
		t.Fatalf("non-boolean values must not trip flags: %+v", f)
	}
}

func TestDecodeFlowMoodPromptAlias(t *testing.T) {
	f, _ := guidance.DecodeFlow(map[string]any{"moodPrompt": true})
	if !f.MoodPrompt {
		t.Fatalf("moodPrompt alias not honored")
	}
}

func TestDecodeFlowStringifiedNotice(t *testing.T) {
	f, _ := guidance.DecodeFlow(map[string]any{"risk_notice": float64(7)})
	if f.RiskNotice != "7" {
		t.Fatalf("RiskNotice = %q, want stringified number", f.RiskNotice)
	}
}

func TestDecodeFlowNonMapping(t *testing.T) {
	f, ok := guidance.DecodeFlow("nope")
	if ok {
		t.Fatalf("DecodeFlow reported found for a string")
	}
	if f != guidance.DefaultFlow() {
		t.Fatalf("expected default flow, got %+v", f)
	}
}
