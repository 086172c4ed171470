package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	OpenAIAPIKey  string
	AllowedOrigin string
	Model         string
	STTModel      string
	PromptPath    string
	// Narration (ElevenLabs proxy for story audio)
	ElevenAPIKey  string
	ElevenVoiceID string
	ElevenModel   string
	// Database
	DatabaseURL string
	// Account sync OAuth (generic provider)
	SyncClientID     string
	SyncClientSecret string
	SyncAuthURL      string
	SyncTokenURL     string
	SyncRedirectURL  string
	SyncScopes       []string
	SyncTokenFile    string
	// Session defaults
	MaxSessionTurns int
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:             getEnvDefault("PORT", "8080"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AllowedOrigin:    getEnvDefault("ALLOWED_ORIGIN", "*"),
		Model:            getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		STTModel:         getEnvDefault("OPENAI_STT_MODEL", "whisper-1"),
		PromptPath:       getEnvDefault("GUIDANCE_PROMPT_FILE", "./prompts/reflect.yaml"),
		ElevenAPIKey:     os.Getenv("ELEVEN_API_KEY"),
		ElevenVoiceID:    os.Getenv("ELEVEN_VOICE_ID"),
		ElevenModel:      getEnvDefault("ELEVEN_MODEL_ID", "eleven_multilingual_v2"),
		DatabaseURL:      os.Getenv("DB_URL"),
		SyncClientID:     os.Getenv("SYNC_CLIENT_ID"),
		SyncClientSecret: os.Getenv("SYNC_CLIENT_SECRET"),
		SyncAuthURL:      os.Getenv("SYNC_AUTH_URL"),
		SyncTokenURL:     os.Getenv("SYNC_TOKEN_URL"),
		SyncRedirectURL:  getEnvDefault("SYNC_REDIRECT_URL", "http://localhost:8080/api/sync/callback"),
		SyncScopes:       getEnvListDefault("SYNC_OAUTH_SCOPES", []string{"profile", "journal.sync"}),
		SyncTokenFile:    getEnvDefault("SYNC_TOKEN_FILE", "data/sync_token.json"),
		MaxSessionTurns:  getEnvIntDefault("MAX_SESSION_TURNS", 3),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; guidance calls will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}
