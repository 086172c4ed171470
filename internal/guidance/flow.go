package guidance

// ReflectionFlow holds the session-control flags the backend attaches to a
// turn: whether to wind the conversation down, offer a break, surface a risk
// notice, or prompt for a mood check-in.
type ReflectionFlow struct {
	RecommendEnd bool
	SuggestBreak bool
	RiskNotice   string // "" = none
	SessionTurn  *int
	TalkOnly     bool
	AllowReflect bool
	MoodPrompt   bool
}

// DefaultFlow returns the flag set assumed when the backend sends no flow
// block: nothing recommended, reflection allowed.
func DefaultFlow() ReflectionFlow {
	return ReflectionFlow{AllowReflect: true}
}

// DecodeFlow reads control flags from an arbitrary value. Non-mapping input
// reports not-found. Flags only trip on an explicit boolean true; AllowReflect
// only clears on an explicit boolean false.
func DecodeFlow(v any) (ReflectionFlow, bool) {
	m, ok := mapValue(v)
	if !ok {
		return DefaultFlow(), false
	}
	f := DefaultFlow()
	f.RecommendEnd = trueFlag(m, "recommend_end") || trueFlag(m, "end")
	f.SuggestBreak = trueFlag(m, "suggest_break") || trueFlag(m, "break")
	if notice := stringify(m["risk_notice"]); notice != "" {
		f.RiskNotice = notice
	}
	if n, ok := intValue(m["session_turn"]); ok {
		f.SessionTurn = &n
	}
	f.TalkOnly = trueFlag(m, "talk_only")
	if b, ok := boolValue(m["allow_reflect"]); ok && !b {
		f.AllowReflect = false
	}
	f.MoodPrompt = trueFlag(m, "mood_prompt") || trueFlag(m, "moodPrompt")
	return f, true
}

func trueFlag(m map[string]any, key string) bool {
	b, ok := boolValue(m[key])
	return ok && b
}
