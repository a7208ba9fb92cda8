package catalog

// #region imports
import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielpatrickdp/lotus-engine/internal/rng"
)

// #endregion

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS static_events (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL,
    min_tier     INTEGER NOT NULL,
    max_tier     INTEGER NOT NULL,
    is_generic   INTEGER NOT NULL DEFAULT 0,
    life_stage   INTEGER NOT NULL,
    options_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_static_events_tier
ON static_events(min_tier, max_tier);
`

// #endregion

// #region store-struct

// Store indexes static events by tier and life stage in SQLite.
type Store struct {
	db *sqlx.DB
}

type eventRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	MinTier     int    `db:"min_tier"`
	MaxTier     int    `db:"max_tier"`
	IsGeneric   bool   `db:"is_generic"`
	LifeStage   int    `db:"life_stage"`
	OptionsJSON string `db:"options_json"`
}

func (r eventRow) event() (Event, error) {
	e := Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		MinTier:     r.MinTier,
		MaxTier:     r.MaxTier,
		IsGeneric:   r.IsGeneric,
		LifeStage:   r.LifeStage,
	}
	if err := json.Unmarshal([]byte(r.OptionsJSON), &e.Options); err != nil {
		return Event{}, fmt.Errorf("decode options for event %d: %w", r.ID, err)
	}
	return e, nil
}

// NewStore creates the static_events table if needed.
func NewStore(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion

// #region import

// Import replaces the whole catalog with events in one transaction.
func (s *Store) Import(events []Event) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM static_events"); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO static_events
		(title, description, min_tier, max_tier, is_generic, life_stage, options_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		opts, err := json.Marshal(e.Options)
		if err != nil {
			return fmt.Errorf("encode options for %q: %w", e.Title, err)
		}
		if _, err := stmt.Exec(e.Title, e.Description, e.MinTier, e.MaxTier, e.IsGeneric, e.LifeStage, string(opts)); err != nil {
			return fmt.Errorf("insert %q: %w", e.Title, err)
		}
	}
	return tx.Commit()
}

// #endregion

// #region lookup

// Candidates returns every event covering tier that either matches stage
// exactly or is generic, in insertion order.
func (s *Store) Candidates(tier, stage int) ([]Event, error) {
	var rows []eventRow
	err := s.db.Select(&rows, `
		SELECT id, title, description, min_tier, max_tier, is_generic, life_stage, options_json
		FROM static_events
		WHERE min_tier <= ? AND max_tier >= ? AND (life_stage = ? OR is_generic = 1)
		ORDER BY id`,
		tier, tier, stage,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}

	events := make([]Event, 0, len(rows))
	for _, r := range rows {
		e, err := r.event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// Lookup draws one candidate uniformly. ok is false when nothing fits.
func (s *Store) Lookup(tier, stage int, src rng.Source) (Event, bool, error) {
	events, err := s.Candidates(tier, stage)
	if err != nil {
		return Event{}, false, err
	}
	e, ok := rng.Pick(src, events)
	return e, ok, nil
}

// Count returns the number of stored events.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM static_events"); err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return n, nil
}

// #endregion
