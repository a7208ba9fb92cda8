// Package journal keeps an append-only audit trail of resolved turns.
// It is written for inspection only and never read back into selection.
package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS turn_log (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    turn_id      TEXT NOT NULL UNIQUE,
    session_id   TEXT NOT NULL,
    turn         INTEGER NOT NULL,
    source       TEXT NOT NULL,
    situation_id TEXT,
    domain       TEXT,
    title        TEXT NOT NULL,
    wildcard     INTEGER NOT NULL DEFAULT 0,
    choice_index INTEGER NOT NULL,
    choice_text  TEXT NOT NULL,
    risk         INTEGER NOT NULL,
    success      INTEGER NOT NULL,
    delta_json   TEXT NOT NULL,
    attempts     INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turn_log_session ON turn_log(session_id, seq);
`

// EnsureSchema creates the turn_log table if needed.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate journal: %w", err)
	}
	return nil
}
// #endregion schema

// #region log-turn
// LogTurn appends entry to turn_log. A missing TurnID or CreatedAt is filled in.
func LogTurn(db *sqlx.DB, entry Entry) (Entry, error) {
	if entry.TurnID == "" {
		entry.TurnID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO turn_log (turn_id, session_id, turn, source, situation_id, domain, title,
		 wildcard, choice_index, choice_text, risk, success, delta_json, attempts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TurnID,
		entry.SessionID,
		entry.Turn,
		entry.Source,
		nullIfEmpty(entry.SituationID),
		nullIfEmpty(entry.Domain),
		entry.Title,
		entry.Wildcard,
		entry.ChoiceIndex,
		entry.ChoiceText,
		entry.Risk,
		entry.Success,
		entry.DeltaJSON,
		entry.Attempts,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("log turn: %w", err)
	}
	return entry, nil
}
// #endregion log-turn

// #region list-turns
type row struct {
	Entry
	CreatedAt string `db:"created_at"`
}

// ListTurns returns the last limit turns, oldest first. An empty session lists
// every session; limit <= 0 means no limit.
func ListTurns(db *sqlx.DB, session string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT turn_id, session_id, turn, source,
		COALESCE(situation_id, '') AS situation_id, COALESCE(domain, '') AS domain, title, wildcard,
		choice_index, choice_text, risk, success, delta_json, attempts, created_at
		FROM turn_log
		WHERE (? = '' OR session_id = ?)
		ORDER BY seq DESC
		LIMIT ?`

	var rows []row
	if err := db.Select(&rows, query, session, session, limit); err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}

	out := make([]Entry, len(rows))
	for i, r := range rows {
		e := r.Entry
		if ts, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			e.CreatedAt = ts
		}
		out[len(rows)-1-i] = e
	}
	return out, nil
}

// Sessions returns every session ID, most recently active first.
func Sessions(db *sqlx.DB) ([]string, error) {
	var ids []string
	err := db.Select(&ids, `SELECT session_id FROM turn_log GROUP BY session_id ORDER BY MAX(seq) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}
// #endregion list-turns

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
