package guidance

// The remaining payload kinds are simpler value records that follow the same
// convention as ReflectionTurn: every field individually defaulted on decode,
// every empty optional omitted on encode, no decode ever failing.

// Analysis summarizes a journal entry.
type Analysis struct {
	Summary   string
	Themes    []string
	Sentiment string
	Intensity *int
}

// MiniChallenge is a small, timed exercise suggested after an analysis.
type MiniChallenge struct {
	Title   string
	Steps   []string
	Minutes int
	Focus   string
}

// DefaultChallengeMinutes applies when the backend sends no duration.
const DefaultChallengeMinutes = 5

// AnalyzeResult is the full response to an analyze request.
type AnalyzeResult struct {
	Analysis  Analysis
	Challenge *MiniChallenge
	Risk      RiskLevel
}

// StructuredThoughtResult is a guided thought record (situation, automatic
// thought, evidence, reframe) reshaped from a free-form payload.
type StructuredThoughtResult struct {
	Situation        string
	AutomaticThought string
	Feeling          string
	EvidenceFor      string
	EvidenceAgainst  string
	Reframe          string
	Helpers          []string
}

// JourneyEntry is one persisted point on the user's timeline.
type JourneyEntry struct {
	ID   string
	Date string
	Mood string
	Note string
	Tags []string
}

// JourneyInsights aggregates the timeline for the overview screen.
type JourneyInsights struct {
	EntryCount int
	StreakDays int
	TopTags    []string
	MoodTrend  string
}

// MoodResponse acknowledges a mood check-in.
type MoodResponse struct {
	Acknowledgement string
	Mood            string
	Prompt          string
}

// StoryResult is a generated wind-down story.
type StoryResult struct {
	Title   string
	Story   string
	VoiceID string
}

// DecodeAnalysis reads an analysis block, tolerating any shape.
func DecodeAnalysis(v any) Analysis {
	m, ok := mapValue(v)
	if !ok {
		return Analysis{}
	}
	var a Analysis
	if s, ok := stringValue(m["summary"]); ok {
		a.Summary = s
	} else if s, ok := stringValue(m["text"]); ok {
		a.Summary = s
	}
	a.Themes = stringList(m["themes"])
	if len(a.Themes) == 0 {
		a.Themes = stringList(m["topics"])
	}
	if s, ok := stringValue(m["sentiment"]); ok {
		a.Sentiment = s
	}
	if n, ok := intValue(m["intensity"]); ok {
		a.Intensity = &n
	}
	return a
}

// DecodeMiniChallenge reads a challenge block; reports not-found for
// non-mapping input so callers can keep the field optional.
func DecodeMiniChallenge(v any) (MiniChallenge, bool) {
	m, ok := mapValue(v)
	if !ok {
		return MiniChallenge{}, false
	}
	c := MiniChallenge{Minutes: DefaultChallengeMinutes}
	if s, ok := stringValue(m["title"]); ok {
		c.Title = s
	} else if s, ok := stringValue(m["name"]); ok {
		c.Title = s
	}
	c.Steps = stringList(m["steps"])
	if n, ok := intValue(m["minutes"]); ok && n > 0 {
		c.Minutes = n
	} else if n, ok := intValue(m["duration_minutes"]); ok && n > 0 {
		c.Minutes = n
	}
	if s, ok := stringValue(m["focus"]); ok {
		c.Focus = s
	}
	return c, true
}

// DecodeAnalyzeResult normalizes an analyze payload.
func DecodeAnalyzeResult(v any) AnalyzeResult {
	m, ok := mapValue(v)
	if !ok {
		return AnalyzeResult{}
	}
	var r AnalyzeResult
	if inner, ok := mapValue(m["analysis"]); ok {
		r.Analysis = DecodeAnalysis(inner)
	} else {
		r.Analysis = DecodeAnalysis(v)
	}
	if c, ok := DecodeMiniChallenge(m["challenge"]); ok {
		r.Challenge = &c
	} else if c, ok := DecodeMiniChallenge(m["mini_challenge"]); ok {
		r.Challenge = &c
	}
	r.Risk = decodeRisk(m)
	return r
}

// structuredThoughtKeys maps each thought-record field to its alias chain.
var structuredThoughtKeys = map[string][]string{
	"situation": {"situation", "context"},
	"thought":   {"automatic_thought", "thought"},
	"feeling":   {"feeling", "emotion"},
	"for":       {"evidence_for", "supporting"},
	"against":   {"evidence_against", "contradicting"},
	"reframe":   {"reframe", "balanced_thought", "alternative"},
}

// DecodeStructuredThought normalizes a thought-record payload.
func DecodeStructuredThought(v any) StructuredThoughtResult {
	m, ok := mapValue(v)
	if !ok {
		return StructuredThoughtResult{}
	}
	pick := func(field string) string {
		for _, k := range structuredThoughtKeys[field] {
			if s, ok := stringValue(m[k]); ok {
				return s
			}
		}
		return ""
	}
	return StructuredThoughtResult{
		Situation:        pick("situation"),
		AutomaticThought: pick("thought"),
		Feeling:          pick("feeling"),
		EvidenceFor:      pick("for"),
		EvidenceAgainst:  pick("against"),
		Reframe:          pick("reframe"),
		Helpers:          ExtractAnswerHelpers(m),
	}
}

// DecodeJourneyEntry normalizes one timeline entry.
func DecodeJourneyEntry(v any) JourneyEntry {
	m, ok := mapValue(v)
	if !ok {
		return JourneyEntry{}
	}
	var e JourneyEntry
	if s, ok := stringValue(m["id"]); ok {
		e.ID = s
	}
	if s, ok := stringValue(m["date"]); ok {
		e.Date = s
	} else if s, ok := stringValue(m["created_at"]); ok {
		e.Date = s
	}
	if s, ok := stringValue(m["mood"]); ok {
		e.Mood = s
	}
	if s, ok := stringValue(m["note"]); ok {
		e.Note = s
	} else if s, ok := stringValue(m["text"]); ok {
		e.Note = s
	}
	e.Tags = stringList(m["tags"])
	return e
}

// DecodeMoodResponse normalizes a mood check-in reply.
func DecodeMoodResponse(v any) MoodResponse {
	m, ok := mapValue(v)
	if !ok {
		return MoodResponse{}
	}
	var r MoodResponse
	if s, ok := stringValue(m["acknowledgement"]); ok {
		r.Acknowledgement = s
	} else if s, ok := stringValue(m["ack"]); ok {
		r.Acknowledgement = s
	} else if s, ok := stringValue(m["output_text"]); ok {
		r.Acknowledgement = s
	}
	if s, ok := stringValue(m["mood"]); ok {
		r.Mood = s
	}
	if s, ok := stringValue(m["prompt"]); ok {
		r.Prompt = s
	}
	return r
}

// DecodeStoryResult normalizes a generated story payload.
func DecodeStoryResult(v any) StoryResult {
	m, ok := mapValue(v)
	if !ok {
		return StoryResult{}
	}
	var r StoryResult
	if s, ok := stringValue(m["title"]); ok {
		r.Title = s
	}
	if s, ok := stringValue(m["story"]); ok {
		r.Story = s
	} else if s, ok := stringValue(m["text"]); ok {
		r.Story = s
	} else if s, ok := stringValue(m["output_text"]); ok {
		r.Story = s
	}
	if s, ok := stringValue(m["voice_id"]); ok {
		r.VoiceID = s
	}
	return r
}

// EncodeAnalyzeResult serializes an AnalyzeResult, omitting empty optionals.
func EncodeAnalyzeResult(r AnalyzeResult) map[string]any {
	out := make(map[string]any, 4)
	analysis := make(map[string]any, 4)
	if r.Analysis.Summary != "" {
		analysis["summary"] = r.Analysis.Summary
	}
	putList(analysis, "themes", r.Analysis.Themes)
	if r.Analysis.Sentiment != "" {
		analysis["sentiment"] = r.Analysis.Sentiment
	}
	if r.Analysis.Intensity != nil {
		analysis["intensity"] = *r.Analysis.Intensity
	}
	out["analysis"] = analysis
	if r.Challenge != nil {
		out["challenge"] = EncodeMiniChallenge(*r.Challenge)
	}
	out["risk_level"] = r.Risk.Label()
	return out
}

// EncodeMiniChallenge serializes a MiniChallenge, omitting empty optionals.
func EncodeMiniChallenge(c MiniChallenge) map[string]any {
	out := make(map[string]any, 4)
	if c.Title != "" {
		out["title"] = c.Title
	}
	putList(out, "steps", c.Steps)
	out["minutes"] = c.Minutes
	if c.Focus != "" {
		out["focus"] = c.Focus
	}
	return out
}

// EncodeStructuredThought serializes a thought record, omitting empty fields.
func EncodeStructuredThought(r StructuredThoughtResult) map[string]any {
	out := make(map[string]any, 7)
	put := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	put("situation", r.Situation)
	put("automatic_thought", r.AutomaticThought)
	put("feeling", r.Feeling)
	put("evidence_for", r.EvidenceFor)
	put("evidence_against", r.EvidenceAgainst)
	put("reframe", r.Reframe)
	putList(out, "answer_helpers", r.Helpers)
	return out
}

// EncodeJourneyEntry serializes a timeline entry, omitting empty fields.
func EncodeJourneyEntry(e JourneyEntry) map[string]any {
	out := make(map[string]any, 5)
	put := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	put("id", e.ID)
	put("date", e.Date)
	put("mood", e.Mood)
	put("note", e.Note)
	putList(out, "tags", e.Tags)
	return out
}

// EncodeJourneyInsights serializes timeline aggregates.
func EncodeJourneyInsights(i JourneyInsights) map[string]any {
	out := map[string]any{
		"entry_count": i.EntryCount,
		"streak_days": i.StreakDays,
	}
	putList(out, "top_tags", i.TopTags)
	if i.MoodTrend != "" {
		out["mood_trend"] = i.MoodTrend
	}
	return out
}

// EncodeMoodResponse serializes a mood acknowledgement.
func EncodeMoodResponse(r MoodResponse) map[string]any {
	out := make(map[string]any, 3)
	if r.Acknowledgement != "" {
		out["acknowledgement"] = r.Acknowledgement
	}
	if r.Mood != "" {
		out["mood"] = r.Mood
	}
	if r.Prompt != "" {
		out["prompt"] = r.Prompt
	}
	return out
}

// EncodeStoryResult serializes a story.
func EncodeStoryResult(r StoryResult) map[string]any {
	out := make(map[string]any, 3)
	if r.Title != "" {
		out["title"] = r.Title
	}
	if r.Story != "" {
		out["story"] = r.Story
	}
	if r.VoiceID != "" {
		out["voice_id"] = r.VoiceID
	}
	return out
}
