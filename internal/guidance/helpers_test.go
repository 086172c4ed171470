package guidance_test

import (
	"reflect"
	"testing"

	"zen-guidance-backend/internal/guidance"
)

func TestExtractAnswerHelpersBulletString(t *testing.T) {
	m := map[string]any{
		"answer_helpers": "Try this: • Name one feeling; • Name one need.",
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"Name one feeling", "Name one need"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractAnswerHelpers = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersUnionAcrossAliases(t *testing.T) {
	m := map[string]any{
		"answer_helpers": []any{"I feel calm when"},
		"chips":          []any{"One thing I need is"},
		"flow": map[string]any{
			"helpers": []any{"Today I noticed"},
		},
		"ui": map[string]any{
			"chips": []any{"Never reached, cap hit"},
		},
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"I feel calm when", "One thing I need is", "Today I noticed"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("union extraction = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersDedupeKeepsFirstPosition(t *testing.T) {
	m := map[string]any{
		"answer_helpers": []any{"I feel", "Right now"},
		"helpers":        []any{"i FEEL.", "Something new"},
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"I feel", "Right now", "Something new"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupe = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersDropsQuestions(t *testing.T) {
	m := map[string]any{
		"answer_helpers": []any{"How are you?", "I am grateful for", "What changed?"},
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"I am grateful for"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("question filter = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersNormalization(t *testing.T) {
	m := map[string]any{
		"answer_helpers": []any{"Complete this:", "One small step...", "试一试：", "安静下来。"},
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"Complete this", "One small step", "试一试", "安静下来"}
	// cap applies after normalization
	if !reflect.DeepEqual(got, want[:3]) {
		t.Fatalf("normalization = %v, want %v", got, want[:3])
	}
}

func TestExtractAnswerHelpersCapAtThree(t *testing.T) {
	m := map[string]any{
		"answer_helpers": []any{"a1", "a2"},
		"answers":        []any{"a3", "a4", "a5"},
	}
	got := guidance.ExtractAnswerHelpers(m)
	if len(got) != 3 {
		t.Fatalf("cap = %d entries (%v), want 3", len(got), got)
	}
	want := []string{"a1", "a2", "a3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cap order = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersSemicolonAndNewlineSplit(t *testing.T) {
	m := map[string]any{
		"helpers": "First thing; Second thing\nThird thing",
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"First thing", "Second thing", "Third thing"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("split = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersWholeStringKeptWhenNoDelimiter(t *testing.T) {
	m := map[string]any{"helpers": "  Just one scaffold  "}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"Just one scaffold"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("single = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersTolerantOfJunk(t *testing.T) {
	m := map[string]any{
		"answer_helpers": float64(12),
		"helpers":        map[string]any{"oops": true},
		"chips":          []any{nil, "", "  ", "Keep me"},
		"flow":           "not a map",
	}
	got := guidance.ExtractAnswerHelpers(m)
	want := []string{"Keep me"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tolerant = %v, want %v", got, want)
	}
}

func TestExtractAnswerHelpersNilMap(t *testing.T) {
	if got := guidance.ExtractAnswerHelpers(nil); len(got) != 0 {
		t.Fatalf("nil map = %v, want empty", got)
	}
}
