package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/oauth2"

	"zen-guidance-backend/internal/coach"
	"zen-guidance-backend/internal/config"
	"zen-guidance-backend/internal/db"
	"zen-guidance-backend/internal/guidance"
	"zen-guidance-backend/internal/store"
	"zen-guidance-backend/internal/types"
)

// Guide produces raw guidance payloads; internal/coach is the production
// implementation, tests substitute a stub.
type Guide interface {
	Reflect(ctx context.Context, chat []openai.ChatCompletionMessage) (map[string]any, error)
	Analyze(ctx context.Context, text string) (map[string]any, error)
	Thought(ctx context.Context, text string) (map[string]any, error)
	Mood(ctx context.Context, mood, note string) (map[string]any, error)
	Story(ctx context.Context, theme string, minutes int) (map[string]any, error)
}

type Server struct {
	router        *chi.Mux
	store         *store.MemoryStore
	client        *openai.Client
	cfg           config.Config
	oauthCfg      *oauth2.Config
	tokenStore    *store.FileTokenStore
	database      *db.DB
	databaseStore *store.DatabaseStore
	guide         Guide
}

func NewServer(cfg config.Config) (*Server, error) {
	client := openai.NewClient(cfg.OpenAIAPIKey)
	ms := store.NewMemoryStore(40)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// OAuth2 config for account sync (may be partially empty; handlers check)
	oCfg := &oauth2.Config{
		ClientID:     cfg.SyncClientID,
		ClientSecret: cfg.SyncClientSecret,
		RedirectURL:  cfg.SyncRedirectURL,
		Scopes:       cfg.SyncScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.SyncAuthURL,
			TokenURL: cfg.SyncTokenURL,
		},
	}
	ts := store.NewFileTokenStore(cfg.SyncTokenFile)

	var database *db.DB
	var databaseStore *store.DatabaseStore
	if cfg.DatabaseURL != "" {
		var err error
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Println("database connection established")
		if err := database.RunMigrations("./migrations"); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		databaseStore = store.NewDatabaseStore(database)
	} else {
		log.Println("warning: DB_URL not provided, journey entries stay in memory")
	}

	guide, err := coach.LoadCoach(cfg.PromptPath, client, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load guidance prompts: %w", err)
	}

	s := &Server{
		router:        r,
		store:         ms,
		client:        client,
		cfg:           cfg,
		oauthCfg:      oCfg,
		tokenStore:    ts,
		database:      database,
		databaseStore: databaseStore,
		guide:         guide,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/reflect", s.handleReflect)
	s.router.Post("/api/voice", s.handleVoice)
	s.router.Post("/api/analyze", s.handleAnalyze)
	s.router.Post("/api/thought", s.handleThought)
	s.router.Post("/api/mood", s.handleMood)
	s.router.Post("/api/story", s.handleStory)
	s.router.Post("/api/story/audio", s.handleStoryAudio)
	s.router.Get("/api/journey", s.handleJourney)
	s.router.Get("/api/journey/insights", s.handleJourneyInsights)
	// Account sync OAuth
	s.router.Get("/api/sync/status", s.handleSyncStatus)
	s.router.Get("/api/sync/auth", s.handleSyncAuth)
	s.router.Get("/api/sync/callback", s.handleSyncCallback)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := map[string]string{"status": "ok"}
	if s.database != nil {
		if err := s.database.HealthCheck(); err != nil {
			status["database"] = "down"
		} else {
			status["database"] = "ok"
		}
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (s *Server) handleReflect(w http.ResponseWriter, r *http.Request) {
	var req types.ReflectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := getOrCreateSessionID(r, w)
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	resp := s.runReflection(ctx, sid, req.Message)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(resp)
}

// runReflection is the shared text/voice path: advances the transcript, asks
// the model for a raw payload, normalizes it, tracks thread progress, and
// returns the canonical turn. A model failure degrades to the default turn
// instead of an error response, so the client always has something to render.
func (s *Server) runReflection(ctx context.Context, sid, message string) types.ReflectResponse {
	s.store.Append(sid, store.Message{Role: "user", Content: message})

	var turn guidance.ReflectionTurn
	raw, err := s.guide.Reflect(ctx, s.convertMessages(s.store.Get(sid)))
	if err != nil {
		log.Printf("[reflect] guidance call failed for session %s: %v", sid, err)
		turn = guidance.DefaultTurn()
	} else {
		turn = guidance.DecodeTurn(raw)
	}

	turn.Session = s.advanceSession(sid, turn.Session)

	s.store.Append(sid, store.Message{Role: "assistant", Content: turn.OutputText})
	s.store.SetLastTurn(sid, turn)
	if s.databaseStore != nil {
		if err := s.databaseStore.SaveTurn(sid, turn); err != nil {
			log.Printf("[reflect] persist failed for session %s: %v", sid, err)
		}
	}
	return types.ReflectResponse{SessionID: sid, Turn: guidance.EncodeTurn(turn)}
}

// advanceSession reconciles the backend-reported session with locally tracked
// progress: a missing thread id is filled from (or minted into) local state,
// and a missing turn index continues the local count.
func (s *Server) advanceSession(sid string, decoded guidance.ReflectionSession) guidance.ReflectionSession {
	stored := s.store.Session(sid)
	sameThread := decoded.ID == "" || decoded.ID == stored.ID
	if sameThread && decoded.Turn == 0 {
		decoded.Turn = stored.Turn + 1
	}
	if decoded.ID == "" {
		if stored.ID != "" {
			decoded.ID = stored.ID
		} else {
			decoded.ID = fmt.Sprintf("th_%d", time.Now().UnixNano())
		}
	}
	if decoded.MaxTurns == guidance.DefaultMaxTurns && s.cfg.MaxSessionTurns > 0 {
		decoded.MaxTurns = s.cfg.MaxSessionTurns
	}
	s.store.SetSession(sid, decoded)
	return decoded
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	sid := getOrCreateSessionID(r, w)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "audio file is required (field 'file')")
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 180*time.Second)
	defer cancel()

	tr, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.STTModel,
		Reader:   file,
		FilePath: header.Filename,
	})
	if err != nil {
		log.Println("transcription error:", err)
		s.writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}
	transcribed := strings.TrimSpace(tr.Text)
	if transcribed == "" {
		s.writeError(w, http.StatusBadGateway, "empty transcription")
		return
	}

	resp := s.runReflection(ctx, sid, transcribed)
	resp.Transcript = transcribed

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	raw, err := s.guide.Analyze(ctx, req.Text)
	if err != nil {
		log.Printf("[analyze] guidance call failed: %v", err)
		raw = nil
	}
	result := guidance.DecodeAnalyzeResult(rawValue(raw))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guidance.EncodeAnalyzeResult(result))
}

func (s *Server) handleThought(w http.ResponseWriter, r *http.Request) {
	var req types.ThoughtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	raw, err := s.guide.Thought(ctx, req.Text)
	if err != nil {
		log.Printf("[thought] guidance call failed: %v", err)
		raw = nil
	}
	result := guidance.DecodeStructuredThought(rawValue(raw))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guidance.EncodeStructuredThought(result))
}

func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	var req types.MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Mood) == "" {
		s.writeError(w, http.StatusBadRequest, "mood is required")
		return
	}
	sid := getOrCreateSessionID(r, w)
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	raw, err := s.guide.Mood(ctx, req.Mood, req.Note)
	if err != nil {
		log.Printf("[mood] guidance call failed: %v", err)
		raw = nil
	}
	result := guidance.DecodeMoodResponse(rawValue(raw))
	if result.Mood == "" {
		result.Mood = strings.TrimSpace(req.Mood)
	}

	entry := guidance.JourneyEntry{
		ID:   fmt.Sprintf("m_%d", time.Now().UnixNano()),
		Date: time.Now().Format("2006-01-02"),
		Mood: result.Mood,
		Note: strings.TrimSpace(req.Note),
	}
	s.recordJourneyEntry(sid, entry)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(guidance.EncodeMoodResponse(result))
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	var req types.StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()
	raw, err := s.guide.Story(ctx, req.Theme, req.Minutes)
	if err != nil {
		log.Printf("[story] guidance call failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "story generation failed")
		return
	}
	result := guidance.DecodeStoryResult(raw)
	if result.Story == "" {
		s.writeError(w, http.StatusBadGateway, "story generation failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(guidance.EncodeStoryResult(result))
}

func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	sid := getOrCreateSessionID(r, w)
	entries := s.journeyEntries(sid)
	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, guidance.EncodeJourneyEntry(e))
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(map[string]any{"entries": items})
}

func (s *Server) handleJourneyInsights(w http.ResponseWriter, r *http.Request) {
	sid := getOrCreateSessionID(r, w)
	insights := guidance.ComputeJourneyInsights(s.journeyEntries(sid))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(guidance.EncodeJourneyInsights(insights))
}

func (s *Server) journeyEntries(sid string) []guidance.JourneyEntry {
	if s.databaseStore != nil {
		entries, err := s.databaseStore.JourneyEntries(sid, 0)
		if err == nil {
			return entries
		}
		log.Printf("[journey] database listing failed for session %s: %v", sid, err)
	}
	return s.store.JourneyEntries(sid)
}

func (s *Server) recordJourneyEntry(sid string, e guidance.JourneyEntry) {
	if s.databaseStore != nil {
		err := s.databaseStore.SaveJourneyEntry(sid, e)
		if err == nil {
			return
		}
		log.Printf("[journey] persist failed for session %s: %v", sid, err)
	}
	s.store.AddJourneyEntry(sid, e)
}

func (s *Server) convertMessages(msgs []store.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := m.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

// rawValue hands the payload to the decoders as a generic value; a nil map
// from a failed call decodes as not-found.
func rawValue(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

func newSessionID() string {
	return fmt.Sprintf("s_%d", time.Now().UnixNano())
}

// getSessionID retrieves the session ID from cookie, header, or query
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets the existing session ID or creates a new one, setting the cookie
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		SetSessionCookie(w, sid)
	}
	return sid
}
