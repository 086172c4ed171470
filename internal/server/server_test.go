package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	openai "github.com/sashabaranov/go-openai"

	"zen-guidance-backend/internal/config"
	"zen-guidance-backend/internal/store"
)

type stubGuide struct {
	reflect map[string]any
	analyze map[string]any
	mood    map[string]any
	err     error
}

func (g *stubGuide) Reflect(ctx context.Context, chat []openai.ChatCompletionMessage) (map[string]any, error) {
	return g.reflect, g.err
}
func (g *stubGuide) Analyze(ctx context.Context, text string) (map[string]any, error) {
	return g.analyze, g.err
}
func (g *stubGuide) Thought(ctx context.Context, text string) (map[string]any, error) {
	return nil, g.err
}
func (g *stubGuide) Mood(ctx context.Context, mood, note string) (map[string]any, error) {
	return g.mood, g.err
}
func (g *stubGuide) Story(ctx context.Context, theme string, minutes int) (map[string]any, error) {
	return nil, g.err
}

func newTestServer(g Guide) *Server {
	s := &Server{
		router: chi.NewRouter(),
		store:  store.NewMemoryStore(40),
		cfg:    config.Config{MaxSessionTurns: 3},
		guide:  g,
	}
	s.routes()
	return s
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleReflectReturnsCanonicalTurn(t *testing.T) {
	g := &stubGuide{reflect: map[string]any{
		"output_text":    "That sounds like a full day.",
		"questions":      []any{"what stayed with you"},
		"answer_helpers": "• I keep thinking about; • I want to let go of.",
		"risk_level":     "none",
	}}
	s := newTestServer(g)

	rec := postJSON(t, s, "/api/reflect", map[string]string{"message": "long day"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SessionID string         `json:"sessionId"`
		Turn      map[string]any `json:"turn"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatalf("missing session id")
	}
	if resp.Turn["output_text"] != "That sounds like a full day." {
		t.Fatalf("output_text = %v", resp.Turn["output_text"])
	}
	if resp.Turn["question"] != "what stayed with you?" {
		t.Fatalf("question = %v", resp.Turn["question"])
	}
	helpers, _ := resp.Turn["answer_helpers"].([]any)
	if len(helpers) != 2 || helpers[0] != "I keep thinking about" {
		t.Fatalf("answer_helpers = %v", resp.Turn["answer_helpers"])
	}
	sess, _ := resp.Turn["session"].(map[string]any)
	if sess == nil || sess["id"] == "" {
		t.Fatalf("session not minted: %v", resp.Turn["session"])
	}
	if sess["turn"] != float64(1) {
		t.Fatalf("turn index = %v, want 1", sess["turn"])
	}
}

func TestHandleReflectDegradesOnGuideError(t *testing.T) {
	s := newTestServer(&stubGuide{err: context.DeadlineExceeded})

	rec := postJSON(t, s, "/api/reflect", map[string]string{"message": "hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded turn should still be 200, got %d", rec.Code)
	}
	var resp struct {
		Turn map[string]any `json:"turn"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := resp.Turn["output_text"]; ok {
		t.Fatalf("fallback hint must not be serialized: %v", resp.Turn["output_text"])
	}
	if resp.Turn["risk_level"] != "none" {
		t.Fatalf("risk_level = %v", resp.Turn["risk_level"])
	}
	if _, ok := resp.Turn["flow"].(map[string]any); !ok {
		t.Fatalf("flow stub missing: %v", resp.Turn["flow"])
	}
}

func TestHandleReflectRequiresMessage(t *testing.T) {
	s := newTestServer(&stubGuide{})
	rec := postJSON(t, s, "/api/reflect", map[string]string{"message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleReflectAdvancesTurnIndex(t *testing.T) {
	s := newTestServer(&stubGuide{reflect: map[string]any{"output_text": "ok"}})

	first := postJSON(t, s, "/api/reflect", map[string]string{"message": "one"})
	sid := first.Header().Get("X-Session-Id")
	if sid == "" {
		t.Fatalf("missing X-Session-Id header")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/reflect", bytes.NewReader([]byte(`{"message":"two"}`)))
	req.Header.Set("X-Session-Id", sid)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp struct {
		Turn map[string]any `json:"turn"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sess, _ := resp.Turn["session"].(map[string]any)
	if sess["turn"] != float64(2) {
		t.Fatalf("turn index = %v, want 2", sess["turn"])
	}
}

func TestHandleAnalyze(t *testing.T) {
	g := &stubGuide{analyze: map[string]any{
		"analysis":   map[string]any{"summary": "tired but hopeful", "themes": []any{"rest"}},
		"risk_level": "mild",
	}}
	s := newTestServer(g)

	rec := postJSON(t, s, "/api/analyze", map[string]string{"text": "journal entry"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["risk_level"] != "mild" {
		t.Fatalf("risk_level = %v", resp["risk_level"])
	}
	analysis, _ := resp["analysis"].(map[string]any)
	if analysis["summary"] != "tired but hopeful" {
		t.Fatalf("analysis = %v", resp["analysis"])
	}
}

func TestMoodCheckInFeedsJourney(t *testing.T) {
	g := &stubGuide{mood: map[string]any{"acknowledgement": "Thanks for checking in.", "mood": "calm"}}
	s := newTestServer(g)

	rec := postJSON(t, s, "/api/mood", map[string]string{"mood": "calm", "note": "slow evening"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	sid := rec.Header().Get("X-Session-Id")

	req := httptest.NewRequest(http.MethodGet, "/api/journey", nil)
	req.Header.Set("X-Session-Id", sid)
	jr := httptest.NewRecorder()
	s.router.ServeHTTP(jr, req)

	var journey struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(jr.Body.Bytes(), &journey); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(journey.Entries) != 1 {
		t.Fatalf("entries = %v", journey.Entries)
	}
	if journey.Entries[0]["mood"] != "calm" || journey.Entries[0]["note"] != "slow evening" {
		t.Fatalf("entry = %v", journey.Entries[0])
	}
}
