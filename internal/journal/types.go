package journal

import "time"

// #region entry
// Entry is a single row in the turn_log table.
type Entry struct {
	TurnID      string    `db:"turn_id" json:"turn_id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	Turn        int       `db:"turn" json:"turn"`
	Source      string    `db:"source" json:"source"` // "procedural" | "static"
	SituationID string    `db:"situation_id" json:"situation_id,omitempty"`
	Domain      string    `db:"domain" json:"domain,omitempty"`
	Title       string    `db:"title" json:"title"`
	Wildcard    bool      `db:"wildcard" json:"wildcard"`
	ChoiceIndex int       `db:"choice_index" json:"choice_index"`
	ChoiceText  string    `db:"choice_text" json:"choice_text"`
	Risk        int       `db:"risk" json:"risk"`
	Success     bool      `db:"success" json:"success"`
	DeltaJSON   string    `db:"delta_json" json:"delta"`
	Attempts    int       `db:"attempts" json:"attempts"`
	CreatedAt   time.Time `db:"-" json:"created_at"`
}
// #endregion entry
