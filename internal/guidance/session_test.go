package guidance_test

import (
	"testing"

	"zen-guidance-backend/internal/guidance"
)

func TestDecodeSessionAliases(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want guidance.ReflectionSession
	}{
		{
			name: "canonical keys",
			in:   map[string]any{"id": "t1", "turn": float64(2), "max_turns": float64(5)},
			want: guidance.ReflectionSession{ID: "t1", Turn: 2, MaxTurns: 5},
		},
		{
			name: "id beats thread_id",
			in:   map[string]any{"thread_id": "a", "id": "b"},
			want: guidance.ReflectionSession{ID: "b", MaxTurns: 3},
		},
		{
			name: "legacy thread_id and turn_index",
			in:   map[string]any{"thread_id": "a", "turn_index": float64(4)},
			want: guidance.ReflectionSession{ID: "a", Turn: 4, MaxTurns: 3},
		},
		{
			name: "camelCase fallbacks",
			in:   map[string]any{"threadId": "c", "turnIndex": float64(1), "maxTurns": float64(7)},
			want: guidance.ReflectionSession{ID: "c", Turn: 1, MaxTurns: 7},
		},
		{
			name: "wrong types are skipped not coerced",
			in:   map[string]any{"id": float64(9), "thread_id": "a", "turn": "2", "turn_index": float64(6)},
			want: guidance.ReflectionSession{ID: "a", Turn: 6, MaxTurns: 3},
		},
		{
			name: "negative turn clamps to zero",
			in:   map[string]any{"turn": float64(-3)},
			want: guidance.ReflectionSession{Turn: 0, MaxTurns: 3},
		},
		{
			name: "empty mapping yields defaults",
			in:   map[string]any{},
			want: guidance.ReflectionSession{MaxTurns: 3},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := guidance.DecodeSession(tc.in)
			if !ok {
				t.Fatalf("DecodeSession reported not found")
			}
			if got != tc.want {
				t.Fatalf("DecodeSession = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeSessionNonMapping(t *testing.T) {
	for _, in := range []any{nil, "x", float64(3), []any{"id"}, true} {
		got, ok := guidance.DecodeSession(in)
		if ok {
			t.Fatalf("DecodeSession(%v) reported found", in)
		}
		if got != guidance.DefaultSession() {
			t.Fatalf("DecodeSession(%v) = %+v, want defaults", in, got)
		}
	}
}
