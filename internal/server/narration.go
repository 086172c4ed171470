package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"zen-guidance-backend/internal/types"
)

// ElevenLabs narration proxy: JSON { text, voiceId? } -> audio/mpeg.
// Used to read a generated wind-down story aloud.
func (s *Server) handleStoryAudio(w http.ResponseWriter, r *http.Request) {
	var body types.StoryAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "invalid text body")
		return
	}
	if s.cfg.ElevenAPIKey == "" {
		s.writeError(w, http.StatusBadRequest, "narration not configured")
		return
	}

	voiceID := s.cfg.ElevenVoiceID
	if strings.TrimSpace(body.VoiceID) != "" {
		voiceID = body.VoiceID
	}
	if strings.TrimSpace(voiceID) == "" {
		s.writeError(w, http.StatusBadRequest, "no narration voice configured or provided")
		return
	}
	url := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s/stream", voiceID)
	payload := map[string]any{
		"text":     body.Text,
		"model_id": s.cfg.ElevenModel,
		"voice_settings": map[string]any{
			"stability":         0.6,
			"similarity_boost":  0.7,
			"style":             0.1,
			"use_speaker_boost": true,
		},
		"optimize_streaming_latency": 4,
		"output_format":              "mp3_44100_128",
	}
	b, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(r.Context(), "POST", url, bytes.NewReader(b))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "narration request build failed")
		return
	}
	req.Header.Set("xi-api-key", s.cfg.ElevenAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "narration request failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bb, _ := io.ReadAll(resp.Body)
		log.Println("elevenlabs error:", string(bb))
		s.writeError(w, http.StatusBadGateway, "narration error")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, resp.Body)
}
