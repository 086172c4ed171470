package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"zen-guidance-backend/internal/store"
)

// GET /api/sync/status
// Returns { linked: bool, account?: string }
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	sid := getSessionID(r)

	var linked bool
	var account string

	if s.databaseStore != nil && sid != "" {
		acc, err := s.databaseStore.GetSyncAccount(sid)
		if err == nil && acc != nil {
			linked = true
			account = acc.Account
		}
	} else {
		tok, _ := s.tokenStore.Read()
		linked = tok != nil
		if sid != "" {
			account = s.store.GetAccount(sid)
		}
	}

	resp := map[string]any{"linked": linked}
	if account != "" {
		resp["account"] = account
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GET /api/sync/auth
// Initiates the OAuth flow and returns { url } to open in the system browser
func (s *Server) handleSyncAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil || s.oauthCfg.ClientID == "" || s.oauthCfg.Endpoint.AuthURL == "" {
		s.writeError(w, http.StatusBadRequest, "account sync not configured")
		return
	}
	sid := getOrCreateSessionID(r, w)
	state := randomState()
	s.store.SetOAuthState(sid, state)
	url := s.oauthCfg.AuthCodeURL(state)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(map[string]string{"url": url, "sessionId": sid})
}

// GET /api/sync/callback?code=...&state=...
// Exchanges the code for a token and persists it for the session
func (s *Server) handleSyncCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauthCfg == nil || s.oauthCfg.Endpoint.TokenURL == "" {
		s.writeError(w, http.StatusBadRequest, "account sync not configured")
		return
	}
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		s.writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	sid := s.store.GetSessionByOAuthState(state)
	if sid == "" || s.store.GetOAuthState(sid) != state {
		s.writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	tok, err := s.oauthCfg.Exchange(r.Context(), code)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	account := strings.TrimSpace(tokenAccount(tok.Extra("account")))

	if s.databaseStore != nil {
		if err := s.databaseStore.SaveSyncAccount(sid, account, tok.AccessToken); err != nil {
			s.writeError(w, http.StatusInternalServerError, "failed to save sync account")
			return
		}
	} else {
		if err := s.tokenStore.Write(&store.SyncToken{AccessToken: tok.AccessToken, TokenType: tok.TokenType}); err != nil {
			s.writeError(w, http.StatusInternalServerError, "token persist failed")
			return
		}
	}

	if account != "" {
		s.store.SetAccount(sid, account)
	}
	s.store.ClearOAuthState(sid)

	// Cookie so the callback window and the app share the session
	SetSessionCookie(w, sid)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"linked": true, "sessionId": sid})
}

func tokenAccount(v any) string {
	s, _ := v.(string)
	return s
}

func randomState() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
