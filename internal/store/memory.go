package store

import (
	"sync"
	"time"

	"zen-guidance-backend/internal/guidance"
)

type Message struct {
	Role    string
	Content string
}

// MemoryStore keeps per-session conversational state: transcript, reflection
// session progress, cached last turn, journey entries when no database is
// configured, and OAuth state for the account-sync flow.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string][]Message
	maxMessages int
	// Reflection session progress per client session
	sessionBySID map[string]guidance.ReflectionSession
	// Last decoded turn cache for re-render without a model round trip
	lastTurnBySID map[string]turnCache
	// Journey entries, newest last (memory fallback when DB_URL is unset)
	journeyBySID map[string][]guidance.JourneyEntry
	// OAuth state mapping per session (for CSRF protection)
	oauthStateBySession map[string]string
	// Reverse mapping: state -> sessionID to resolve callbacks
	sessionByOAuthState map[string]string
	// Linked account name after a completed sync flow
	accountBySession map[string]string
}

type turnCache struct {
	Turn      guidance.ReflectionTurn
	UpdatedAt time.Time
}

var lastTurnTTL = 7 * time.Minute

func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{
		transcripts:         make(map[string][]Message),
		maxMessages:         maxMessages,
		sessionBySID:        make(map[string]guidance.ReflectionSession),
		lastTurnBySID:       make(map[string]turnCache),
		journeyBySID:        make(map[string][]guidance.JourneyEntry),
		oauthStateBySession: make(map[string]string),
		sessionByOAuthState: make(map[string]string),
		accountBySession:    make(map[string]string),
	}
}

func (m *MemoryStore) Append(sessionID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts[sessionID] = append(m.transcripts[sessionID], msg)
	m.trimLocked(sessionID)
}

func (m *MemoryStore) Get(sessionID string) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.transcripts[sessionID]
	copyMsgs := make([]Message, len(msgs))
	copy(copyMsgs, msgs)
	return copyMsgs
}

func (m *MemoryStore) trimLocked(sessionID string) {
	if m.maxMessages <= 0 {
		return
	}
	msgs := m.transcripts[sessionID]
	if len(msgs) > m.maxMessages {
		m.transcripts[sessionID] = msgs[len(msgs)-m.maxMessages:]
	}
}

// Session returns the stored reflection session for a client session, or a
// default one when the conversation has not started yet.
func (m *MemoryStore) Session(sessionID string) guidance.ReflectionSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessionBySID[sessionID]; ok {
		return s
	}
	return guidance.DefaultSession()
}

func (m *MemoryStore) SetSession(sessionID string, s guidance.ReflectionSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionBySID[sessionID] = s
}

// SetLastTurn caches the most recent decoded turn for a session.
func (m *MemoryStore) SetLastTurn(sessionID string, t guidance.ReflectionTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTurnBySID[sessionID] = turnCache{Turn: t, UpdatedAt: time.Now()}
}

// LastTurn returns the cached turn if within TTL.
func (m *MemoryStore) LastTurn(sessionID string) (guidance.ReflectionTurn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.lastTurnBySID[sessionID]
	if !ok {
		return guidance.ReflectionTurn{}, false
	}
	if time.Since(c.UpdatedAt) > lastTurnTTL {
		delete(m.lastTurnBySID, sessionID)
		return guidance.ReflectionTurn{}, false
	}
	return c.Turn, true
}

// AddJourneyEntry appends to the in-memory timeline.
func (m *MemoryStore) AddJourneyEntry(sessionID string, e guidance.JourneyEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journeyBySID[sessionID] = append(m.journeyBySID[sessionID], e)
}

// JourneyEntries returns a copy of the in-memory timeline, newest last.
func (m *MemoryStore) JourneyEntries(sessionID string) []guidance.JourneyEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.journeyBySID[sessionID]
	out := make([]guidance.JourneyEntry, len(entries))
	copy(out, entries)
	return out
}

// OAuth helpers

func (m *MemoryStore) SetOAuthState(sessionID, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauthStateBySession[sessionID] = state
	m.sessionByOAuthState[state] = sessionID
}

func (m *MemoryStore) GetOAuthState(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oauthStateBySession[sessionID]
}

func (m *MemoryStore) ClearOAuthState(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.oauthStateBySession[sessionID]; ok {
		delete(m.sessionByOAuthState, st)
		delete(m.oauthStateBySession, sessionID)
	}
}

func (m *MemoryStore) GetSessionByOAuthState(state string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionByOAuthState[state]
}

func (m *MemoryStore) SetAccount(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountBySession[sessionID] = account
}

func (m *MemoryStore) GetAccount(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accountBySession[sessionID]
}

func (m *MemoryStore) ClearAccount(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accountBySession, sessionID)
}
