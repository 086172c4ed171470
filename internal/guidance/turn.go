package guidance

import "strings"

// FallbackHint is the sentinel shown when a payload carries no usable output
// text. Callers that need to detect a fully degraded turn compare against it
// through IsFallbackHint rather than scattering string equality checks.
const FallbackHint = "Take a moment. What feels most present for you right now?"

// IsFallbackHint reports whether s is the degraded-turn placeholder.
func IsFallbackHint(s string) bool {
	return s == FallbackHint
}

// ReflectionTurn is the canonical record for one guidance exchange. It is
// built fresh per decode, never mutated, and owns its slices.
type ReflectionTurn struct {
	OutputText    string
	Mirror        string // "" = none
	Context       []string
	Followups     []string
	AnswerHelpers []string
	Tags          []string
	Questions     []string
	Talk          []string
	Risk          RiskLevel
	Flow          *ReflectionFlow
	Session       ReflectionSession
}

// DefaultTurn is the record substituted for input nothing could be read from.
func DefaultTurn() ReflectionTurn {
	return ReflectionTurn{
		OutputText: FallbackHint,
		Session:    DefaultSession(),
	}
}

// outputTextKeys is the alias precedence for the main message body.
var outputTextKeys = []string{"output_text", "outputText", "question", "primary_question"}

// questionKeys are unioned, not first-wins, when collecting posed questions.
var questionKeys = []string{"questions", "qs", "multi_questions"}

// DecodeTurn normalizes an arbitrary payload value into a ReflectionTurn. It
// never fails: every structurally wrong or partially shaped input degrades
// field by field to the documented defaults, so an evolving backend contract
// can never crash the conversational UI.
func DecodeTurn(v any) ReflectionTurn {
	m, ok := mapValue(v)
	if !ok {
		return DefaultTurn()
	}

	t := ReflectionTurn{Session: DefaultSession()}

	for _, k := range outputTextKeys {
		if s, ok := stringValue(m[k]); ok {
			t.OutputText = s
			break
		}
	}
	if t.OutputText == "" {
		t.OutputText = FallbackHint
	}

	if s, ok := stringValue(m["mirror"]); ok {
		t.Mirror = s
	}

	for _, k := range questionKeys {
		t.Questions = append(t.Questions, stringList(m[k])...)
	}
	t.Context = stringList(m["context"])
	t.Followups = stringList(m["followups"])
	t.Talk = stringList(m["talk"])
	t.Tags = stringList(m["tags"])

	t.AnswerHelpers = ExtractAnswerHelpers(m)
	t.Risk = decodeRisk(m)
	if flow, ok := DecodeFlow(m["flow"]); ok {
		t.Flow = &flow
	}
	if sess, ok := DecodeSession(m["session"]); ok {
		t.Session = sess
	}
	return t
}

// PrimaryQuestion derives the single question the UI should pose: the first
// collected question (question-marked if it was not already), else the output
// text when it is itself a real question. It is computed, never stored.
func (t ReflectionTurn) PrimaryQuestion() (string, bool) {
	if len(t.Questions) > 0 {
		q := strings.TrimSpace(t.Questions[0])
		if q != "" {
			if !strings.HasSuffix(q, "?") {
				q += "?"
			}
			return q, true
		}
	}
	if t.OutputText != "" && strings.HasSuffix(t.OutputText, "?") && !IsFallbackHint(t.OutputText) {
		return t.OutputText, true
	}
	return "", false
}
