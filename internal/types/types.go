package types

type ReflectRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ReflectResponse wraps the canonical turn shape produced by the guidance
// encoder; clients read only the canonical fields inside Turn.
type ReflectResponse struct {
	SessionID  string         `json:"sessionId"`
	Transcript string         `json:"transcript,omitempty"`
	Turn       map[string]any `json:"turn"`
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type ThoughtRequest struct {
	Text string `json:"text"`
}

type MoodRequest struct {
	Mood string `json:"mood"`
	Note string `json:"note,omitempty"`
}

type StoryRequest struct {
	Theme   string `json:"theme,omitempty"`
	Minutes int    `json:"minutes,omitempty"`
}

type StoryAudioRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
