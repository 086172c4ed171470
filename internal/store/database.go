package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"zen-guidance-backend/internal/db"
	"zen-guidance-backend/internal/guidance"
)

// DatabaseStore persists journey entries and a log of canonical turns in
// PostgreSQL. Turns are stored in their canonical encoded shape, so whatever
// variant the backend sent, only the normalized form ever reaches disk.
type DatabaseStore struct {
	db *db.DB
}

func NewDatabaseStore(database *db.DB) *DatabaseStore {
	return &DatabaseStore{db: database}
}

// SaveTurn appends the canonical encoding of a turn to the reflection log.
func (ds *DatabaseStore) SaveTurn(sessionID string, t guidance.ReflectionTurn) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	payload, err := json.Marshal(guidance.EncodeTurn(t))
	if err != nil {
		return fmt.Errorf("failed to encode turn: %w", err)
	}
	query := `
		INSERT INTO reflection_turns (session_id, thread_id, turn_index, risk_level, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	if _, err := ds.db.Exec(query, sessionID, t.Session.ID, t.Session.Turn, t.Risk.Label(), payload); err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// SaveJourneyEntry inserts or updates one timeline entry.
func (ds *DatabaseStore) SaveJourneyEntry(sessionID string, e guidance.JourneyEntry) error {
	if sessionID == "" || e.ID == "" {
		return fmt.Errorf("session_id and entry id are required")
	}
	payload, err := json.Marshal(guidance.EncodeJourneyEntry(e))
	if err != nil {
		return fmt.Errorf("failed to encode journey entry: %w", err)
	}
	query := `
		INSERT INTO journey_entries (session_id, entry_id, entry_date, mood, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (session_id, entry_id)
		DO UPDATE SET
			entry_date = EXCLUDED.entry_date,
			mood = EXCLUDED.mood,
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`
	if _, err := ds.db.Exec(query, sessionID, e.ID, e.Date, e.Mood, payload); err != nil {
		return fmt.Errorf("failed to save journey entry: %w", err)
	}
	return nil
}

// JourneyEntries returns the timeline for a session, oldest first. Rows whose
// payload no longer parses are skipped rather than failing the listing.
func (ds *DatabaseStore) JourneyEntries(sessionID string, limit int) ([]guidance.JourneyEntry, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT payload
		FROM journey_entries
		WHERE session_id = $1
		ORDER BY entry_date ASC, created_at ASC
		LIMIT $2
	`
	rows, err := ds.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journey entries: %w", err)
	}
	defer rows.Close()

	var out []guidance.JourneyEntry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan journey entry: %w", err)
		}
		var raw any
		if err := json.Unmarshal(payload, &raw); err != nil {
			continue
		}
		out = append(out, guidance.DecodeJourneyEntry(raw))
	}
	return out, rows.Err()
}

// SyncAccount represents a linked account row.
type SyncAccount struct {
	SessionID string
	Account   string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveSyncAccount saves or updates the linked account for a session.
func (ds *DatabaseStore) SaveSyncAccount(sessionID, account, token string) error {
	if sessionID == "" || token == "" {
		return fmt.Errorf("session_id and token are required")
	}
	query := `
		INSERT INTO sync_accounts (session_id, account, token, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (session_id)
		DO UPDATE SET
			account = EXCLUDED.account,
			token = EXCLUDED.token,
			updated_at = NOW()
	`
	if _, err := ds.db.Exec(query, sessionID, account, token); err != nil {
		return fmt.Errorf("failed to save sync account: %w", err)
	}
	return nil
}

// GetSyncAccount retrieves the linked account for a session, nil when none.
func (ds *DatabaseStore) GetSyncAccount(sessionID string) (*SyncAccount, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	var acc SyncAccount
	query := `
		SELECT session_id, account, token, created_at, updated_at
		FROM sync_accounts
		WHERE session_id = $1
	`
	err := ds.db.QueryRow(query, sessionID).Scan(
		&acc.SessionID,
		&acc.Account,
		&acc.Token,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync account: %w", err)
	}
	return &acc, nil
}

// DeleteSyncAccount unlinks the account for a session.
func (ds *DatabaseStore) DeleteSyncAccount(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if _, err := ds.db.Exec(`DELETE FROM sync_accounts WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete sync account: %w", err)
	}
	return nil
}
