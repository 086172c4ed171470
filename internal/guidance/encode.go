package guidance

// EncodeTurn serializes a ReflectionTurn into the canonical wire/storage
// shape. Empty optionals and collections are omitted; flow degrades to a
// minimal stub when absent; session is always present. The fallback hint is
// never written out, so a degraded turn cannot persist placeholder text as
// real content.
func EncodeTurn(t ReflectionTurn) map[string]any {
	out := make(map[string]any, 12)
	if t.OutputText != "" && !IsFallbackHint(t.OutputText) {
		out["output_text"] = t.OutputText
	}
	if q, ok := t.PrimaryQuestion(); ok {
		out["question"] = q
	}
	if t.Mirror != "" {
		out["mirror"] = t.Mirror
	}
	putList(out, "context", t.Context)
	putList(out, "followups", t.Followups)
	putList(out, "answer_helpers", t.AnswerHelpers)
	out["flow"] = encodeFlow(t.Flow)
	out["session"] = map[string]any{
		"id":        t.Session.ID,
		"turn":      t.Session.Turn,
		"max_turns": t.Session.MaxTurns,
	}
	putList(out, "tags", t.Tags)
	out["risk_level"] = t.Risk.Label()
	putList(out, "questions", t.Questions)
	putList(out, "talk", t.Talk)
	return out
}

func encodeFlow(f *ReflectionFlow) map[string]any {
	if f == nil {
		return map[string]any{
			"recommend_end": false,
			"suggest_break": false,
		}
	}
	out := map[string]any{
		"recommend_end": f.RecommendEnd,
		"suggest_break": f.SuggestBreak,
		"allow_reflect": f.AllowReflect,
	}
	if f.RiskNotice != "" {
		out["risk_notice"] = f.RiskNotice
	}
	if f.SessionTurn != nil {
		out["session_turn"] = *f.SessionTurn
	}
	if f.TalkOnly {
		out["talk_only"] = true
	}
	if f.MoodPrompt {
		out["mood_prompt"] = true
	}
	return out
}

func putList(m map[string]any, key string, values []string) {
	if len(values) == 0 {
		return
	}
	items := make([]any, len(values))
	for i, v := range values {
		items[i] = v
	}
	m[key] = items
}
