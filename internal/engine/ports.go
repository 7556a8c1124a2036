package engine

import "context"

// The engine talks to the chat platform through these narrow interfaces. The
// production implementation lives in internal/platform; tests use fakes.

// MemberSource provides read-only queries over members and role holders.
type MemberSource interface {
	// Roles returns the role IDs currently held by the member.
	Roles(ctx context.Context, memberID string) ([]string, error)
	// CountHolders returns the number of members currently holding roleID.
	CountHolders(ctx context.Context, roleID string) (int, error)
	// DisplayName returns the member's human-readable name.
	DisplayName(ctx context.Context, memberID string) (string, error)
}

// MembershipMutator changes role membership on the platform.
type MembershipMutator interface {
	GrantRole(ctx context.Context, memberID, roleID, reason string) error
	RevokeRole(ctx context.Context, memberID, roleID, reason string) error
}

// PromptDelivery sends the interactive accept/decline offer prompt to a
// member. Resolution arrives later as a ResolveOffer call from the platform
// adapter; delivery itself enforces no timeout.
type PromptDelivery interface {
	SendOfferPrompt(ctx context.Context, memberID, teamName string) error
}

// AnnouncementChannel posts a message to a channel. Best-effort: the engine
// logs failures and moves on.
type AnnouncementChannel interface {
	Post(ctx context.Context, channelID, text string) error
}

// Notifier sends a direct message to a member. Best-effort.
type Notifier interface {
	Notify(ctx context.Context, memberID, text string) error
}
