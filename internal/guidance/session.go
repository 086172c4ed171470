package guidance

// ReflectionSession carries the thread identity and turn limit of one
// reflection conversation. A zero ID means no session has been opened yet.
type ReflectionSession struct {
	ID       string
	Turn     int
	MaxTurns int
}

// DefaultMaxTurns is the turn limit applied when the backend sends none.
const DefaultMaxTurns = 3

// DefaultSession is the record substituted when nothing usable decodes.
func DefaultSession() ReflectionSession {
	return ReflectionSession{MaxTurns: DefaultMaxTurns}
}

// sessionIDKeys, sessionTurnKeys and sessionMaxKeys are the per-field alias
// precedence tables; the first present, correctly typed value wins per field.
var (
	sessionIDKeys   = []string{"id", "thread_id", "threadId"}
	sessionTurnKeys = []string{"turn", "turn_index", "turnIndex"}
	sessionMaxKeys  = []string{"max_turns", "maxTurns"}
)

// DecodeSession reads session metadata from an arbitrary value. Anything that
// is not a mapping reports not-found; within a mapping every field resolves
// independently, skipping wrong-typed values rather than coercing them.
func DecodeSession(v any) (ReflectionSession, bool) {
	m, ok := mapValue(v)
	if !ok {
		return DefaultSession(), false
	}
	sess := DefaultSession()
	for _, k := range sessionIDKeys {
		if s, ok := stringValue(m[k]); ok {
			sess.ID = s
			break
		}
	}
	for _, k := range sessionTurnKeys {
		if n, ok := intValue(m[k]); ok {
			if n < 0 {
				n = 0
			}
			sess.Turn = n
			break
		}
	}
	for _, k := range sessionMaxKeys {
		if n, ok := intValue(m[k]); ok {
			sess.MaxTurns = n
			break
		}
	}
	return sess, true
}
