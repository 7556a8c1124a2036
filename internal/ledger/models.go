package ledger

import "time"

// Transfer actions recorded in the ledger.
const (
	ActionHired    = "hired"
	ActionReleased = "released"
	ActionLeft     = "left"
)

// Record is an immutable audit entry for a completed transfer. Records are
// created exactly once per resolved transfer and never updated or deleted.
type Record struct {
	ID                string    `json:"id"`
	PlayerID          string    `json:"playerId"`
	PlayerDisplayName string    `json:"playerDisplayName"`
	TeamName          string    `json:"teamName"`
	Action            string    `json:"action"`
	InitiatorID       *string   `json:"initiatorId"`
	Timestamp         time.Time `json:"timestamp"`
}
