package offer

import "time"

// Offer represents a pending invitation for a user to join a team. Offers are
// immutable once created; resolution or expiry removes them from the registry.
type Offer struct {
	TargetUserID     string    `json:"target_user_id"`
	RepresentativeID string    `json:"representative_id"`
	TeamRoleID       string    `json:"team_role_id"`
	TeamName         string    `json:"team_name"`
	CreatedAt        time.Time `json:"created_at"`
}
