// Package engine implements the transfer state machine: offer lifecycle,
// role-consistency enforcement, transfer announcements, and audit logging.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/marceloprado/transferdesk/internal/ledger"
	"github.com/marceloprado/transferdesk/internal/metrics"
	"github.com/marceloprado/transferdesk/internal/offer"
	"github.com/marceloprado/transferdesk/internal/roster"
)

// Decision is the binary resolution of an offer.
type Decision string

// Offer decisions.
const (
	DecisionAccept  Decision = "accept"
	DecisionDecline Decision = "decline"
)

// Config holds the engine's runtime policy.
type Config struct {
	// BotUserID is the automation account; it can never be hired.
	BotUserID string
	// TransferChannelID is where transfer notices are posted.
	TransferChannelID string
	// PingRoleID is mentioned at the bottom of every notice.
	PingRoleID string
	// TeamCapacity is the roster cap shown in notices.
	TeamCapacity int
	// RequireRepresentativeMembership, when set, additionally requires a
	// representative to hold the team role of the team they act for.
	RequireRepresentativeMembership bool
}

// Deps holds the engine's collaborators.
type Deps struct {
	Directory *roster.Directory
	Offers    *offer.Registry
	Ledger    ledger.Ledger
	Members   MemberSource
	Mutator   MembershipMutator
	Prompts   PromptDelivery
	Announcer AnnouncementChannel
	Notifier  Notifier
	Metrics   *metrics.Metrics
}

// Engine orchestrates transfers. All operations touching the same target are
// serialized by a per-target lock; operations on different targets proceed
// concurrently.
type Engine struct {
	directory *roster.Directory
	offers    *offer.Registry
	ledger    ledger.Ledger
	members   MemberSource
	mutator   MembershipMutator
	prompts   PromptDelivery
	announcer AnnouncementChannel
	notifier  Notifier
	metrics   *metrics.Metrics
	cfg       Config
	locks     *targetLocks
	now       func() time.Time // injectable clock for testing
	newID     func() string
}

// New creates a transfer engine.
func New(deps Deps, cfg Config) *Engine {
	if cfg.TeamCapacity <= 0 {
		cfg.TeamCapacity = 20
	}
	return &Engine{
		directory: deps.Directory,
		offers:    deps.Offers,
		ledger:    deps.Ledger,
		members:   deps.Members,
		mutator:   deps.Mutator,
		prompts:   deps.Prompts,
		announcer: deps.Announcer,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		cfg:       cfg,
		locks:     newTargetLocks(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ProposeOffer validates the representative and target, stores a pending
// offer, and delivers the accept/decline prompt. A failed delivery rolls the
// offer back so the registry never holds an offer nobody was asked about.
func (e *Engine) ProposeOffer(ctx context.Context, representativeID, targetID string) (offer.Offer, error) {
	if targetID == e.cfg.BotUserID {
		return offer.Offer{}, ErrTargetIsBot
	}

	unlock := e.locks.lock(targetID)
	defer unlock()

	team, err := e.representedTeam(ctx, representativeID)
	if err != nil {
		return offer.Offer{}, err
	}

	targetRoles, err := e.members.Roles(ctx, targetID)
	if err != nil {
		return offer.Offer{}, fmt.Errorf("looking up roles for %s: %w", targetID, err)
	}
	if _, employed := e.directory.TeamHeldBy(targetRoles); employed {
		return offer.Offer{}, ErrAlreadyEmployed
	}

	o := offer.Offer{
		TargetUserID:     targetID,
		RepresentativeID: representativeID,
		TeamRoleID:       team.RoleID,
		TeamName:         team.Name,
		CreatedAt:        e.now(),
	}
	if err := e.offers.Put(o); err != nil {
		return offer.Offer{}, err
	}

	if err := e.prompts.SendOfferPrompt(ctx, targetID, team.Name); err != nil {
		e.offers.Remove(targetID)
		e.metrics.OffersActive.Set(float64(e.offers.Len()))
		return offer.Offer{}, &DeliveryError{MemberID: targetID, Err: err}
	}

	e.metrics.OfferOutcomesTotal.WithLabelValues("proposed").Inc()
	e.metrics.OffersActive.Set(float64(e.offers.Len()))
	slog.Info("offer proposed",
		"representative_id", representativeID,
		"target_id", targetID,
		"team", team.Name,
	)
	return o, nil
}

// ResolveOffer settles a pending offer. Only the invited user may resolve it.
// Acceptance re-validates the FREE precondition at commit time under the
// target's lock, so a user who picked up a team role between prompt and click
// fails with ErrAlreadyEmployed and keeps their existing employment. The
// returned record is nil for a decline.
func (e *Engine) ResolveOffer(ctx context.Context, targetID string, decision Decision, actorID string) (*ledger.Record, error) {
	if actorID != targetID {
		return nil, ErrNotOfferTarget
	}

	unlock := e.locks.lock(targetID)
	defer unlock()

	o, err := e.offers.Get(targetID)
	if err != nil {
		return nil, err
	}

	if decision == DecisionDecline {
		e.offers.Remove(targetID)
		e.metrics.OfferOutcomesTotal.WithLabelValues("declined").Inc()
		e.metrics.OffersActive.Set(float64(e.offers.Len()))

		name := e.displayName(ctx, targetID)
		e.notify(ctx, o.RepresentativeID, fmt.Sprintf("%s declined the offer to join %s.", name, o.TeamName))
		slog.Info("offer declined", "target_id", targetID, "team", o.TeamName)
		return nil, nil
	}

	// Race guard: the target may have become employed since the prompt was
	// sent. Re-check before granting, inside the per-target lock.
	targetRoles, err := e.members.Roles(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("looking up roles for %s: %w", targetID, err)
	}
	if _, employed := e.directory.TeamHeldBy(targetRoles); employed {
		return nil, ErrAlreadyEmployed
	}

	repName := e.displayName(ctx, o.RepresentativeID)
	if err := e.mutator.GrantRole(ctx, targetID, o.TeamRoleID, "Hired by "+repName); err != nil {
		return nil, &MutationError{Op: "grant", MemberID: targetID, RoleID: o.TeamRoleID, Err: err}
	}

	rec := ledger.Record{
		ID:                e.newID(),
		PlayerID:          targetID,
		PlayerDisplayName: e.displayName(ctx, targetID),
		TeamName:          o.TeamName,
		Action:            ledger.ActionHired,
		InitiatorID:       &o.RepresentativeID,
		Timestamp:         e.now().UTC(),
	}
	if err := e.ledger.Append(ctx, rec); err != nil {
		// Role grant and ledger append are one logical step: compensate the
		// grant so the audit trail and the roster cannot diverge.
		if rerr := e.mutator.RevokeRole(ctx, targetID, o.TeamRoleID, "Reverting hire: audit write failed"); rerr != nil {
			slog.Error("failed to revert role grant after ledger failure",
				"member_id", targetID, "role_id", o.TeamRoleID, "error", rerr)
		}
		return nil, &PersistenceError{Err: err}
	}

	e.offers.Remove(targetID)
	e.metrics.TransfersTotal.WithLabelValues(ledger.ActionHired).Inc()
	e.metrics.OfferOutcomesTotal.WithLabelValues("accepted").Inc()
	e.metrics.OffersActive.Set(float64(e.offers.Len()))

	team, _ := e.directory.TeamByRole(o.TeamRoleID)
	e.announce(ctx, team, directionJoin(o.TeamName), targetID)
	e.notify(ctx, o.RepresentativeID, fmt.Sprintf("%s accepted the offer to join %s.", rec.PlayerDisplayName, o.TeamName))

	slog.Info("offer accepted", "target_id", targetID, "team", o.TeamName, "record_id", rec.ID)
	return &rec, nil
}

// DismissMember removes the target from the representative's team.
func (e *Engine) DismissMember(ctx context.Context, representativeID, targetID string) (*ledger.Record, error) {
	unlock := e.locks.lock(targetID)
	defer unlock()

	team, err := e.representedTeam(ctx, representativeID)
	if err != nil {
		return nil, err
	}

	targetRoles, err := e.members.Roles(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("looking up roles for %s: %w", targetID, err)
	}
	if !holdsRole(targetRoles, team.RoleID) {
		return nil, ErrNotTeamMember
	}

	repName := e.displayName(ctx, representativeID)
	if err := e.mutator.RevokeRole(ctx, targetID, team.RoleID, "Dismissed by "+repName); err != nil {
		return nil, &MutationError{Op: "revoke", MemberID: targetID, RoleID: team.RoleID, Err: err}
	}

	rec := ledger.Record{
		ID:                e.newID(),
		PlayerID:          targetID,
		PlayerDisplayName: e.displayName(ctx, targetID),
		TeamName:          team.Name,
		Action:            ledger.ActionReleased,
		InitiatorID:       &representativeID,
		Timestamp:         e.now().UTC(),
	}
	if err := e.ledger.Append(ctx, rec); err != nil {
		if gerr := e.mutator.GrantRole(ctx, targetID, team.RoleID, "Reverting dismissal: audit write failed"); gerr != nil {
			slog.Error("failed to revert role revoke after ledger failure",
				"member_id", targetID, "role_id", team.RoleID, "error", gerr)
		}
		return nil, &PersistenceError{Err: err}
	}

	e.metrics.TransfersTotal.WithLabelValues(ledger.ActionReleased).Inc()
	e.announce(ctx, team, directionLeave(team.Name), targetID)
	e.notify(ctx, targetID, fmt.Sprintf("You have been released from team %s.", team.Name))

	slog.Info("member dismissed",
		"representative_id", representativeID,
		"target_id", targetID,
		"team", team.Name,
		"record_id", rec.ID,
	)
	return &rec, nil
}

// SelfRelease removes the member from whatever team they currently play for.
func (e *Engine) SelfRelease(ctx context.Context, memberID string) (*ledger.Record, error) {
	unlock := e.locks.lock(memberID)
	defer unlock()

	memberRoles, err := e.members.Roles(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("looking up roles for %s: %w", memberID, err)
	}
	team, ok := e.directory.TeamHeldBy(memberRoles)
	if !ok {
		return nil, ErrNotEmployed
	}

	if err := e.mutator.RevokeRole(ctx, memberID, team.RoleID, "Left the team"); err != nil {
		return nil, &MutationError{Op: "revoke", MemberID: memberID, RoleID: team.RoleID, Err: err}
	}

	rec := ledger.Record{
		ID:                e.newID(),
		PlayerID:          memberID,
		PlayerDisplayName: e.displayName(ctx, memberID),
		TeamName:          team.Name,
		Action:            ledger.ActionLeft,
		InitiatorID:       nil,
		Timestamp:         e.now().UTC(),
	}
	if err := e.ledger.Append(ctx, rec); err != nil {
		if gerr := e.mutator.GrantRole(ctx, memberID, team.RoleID, "Reverting departure: audit write failed"); gerr != nil {
			slog.Error("failed to revert role revoke after ledger failure",
				"member_id", memberID, "role_id", team.RoleID, "error", gerr)
		}
		return nil, &PersistenceError{Err: err}
	}

	e.metrics.TransfersTotal.WithLabelValues(ledger.ActionLeft).Inc()
	e.announce(ctx, team, directionLeave(team.Name), memberID)

	slog.Info("member left team", "member_id", memberID, "team", team.Name, "record_id", rec.ID)
	return &rec, nil
}

// History returns the recorded transfers in append order.
func (e *Engine) History(ctx context.Context) ([]ledger.Record, error) {
	return e.ledger.All(ctx)
}

// representedTeam resolves the team the caller represents, applying the
// optional membership policy.
func (e *Engine) representedTeam(ctx context.Context, representativeID string) (roster.Team, error) {
	repRoles, err := e.members.Roles(ctx, representativeID)
	if err != nil {
		return roster.Team{}, fmt.Errorf("looking up roles for %s: %w", representativeID, err)
	}
	team, ok := e.directory.RepresentedTeam(repRoles)
	if !ok {
		return roster.Team{}, ErrNotRepresentative
	}
	if e.cfg.RequireRepresentativeMembership && !holdsRole(repRoles, team.RoleID) {
		return roster.Team{}, ErrRepresentativeNotOnTeam
	}
	return team, nil
}

// announce posts the transfer notice with a fresh roster count. Failures are
// counted and logged, never returned: the transition is already committed.
func (e *Engine) announce(ctx context.Context, team roster.Team, direction, playerID string) {
	count, err := e.members.CountHolders(ctx, team.RoleID)
	if err != nil {
		slog.Warn("failed to count role holders for notice", "role_id", team.RoleID, "error", err)
	}

	text := formatNotice(team.Name, direction, Mention(playerID), count, e.cfg.TeamCapacity, e.cfg.PingRoleID, e.now())
	if err := e.announcer.Post(ctx, e.cfg.TransferChannelID, text); err != nil {
		e.metrics.AnnounceFailuresTotal.Inc()
		slog.Warn("failed to post transfer notice", "channel_id", e.cfg.TransferChannelID, "error", err)
	}
}

// notify sends a best-effort direct message.
func (e *Engine) notify(ctx context.Context, memberID, text string) {
	if err := e.notifier.Notify(ctx, memberID, text); err != nil {
		e.metrics.NotifyFailuresTotal.Inc()
		slog.Warn("failed to notify member", "member_id", memberID, "error", err)
	}
}

// displayName resolves a member's name, falling back to the raw ID when the
// platform lookup fails. Name resolution never blocks a transfer.
func (e *Engine) displayName(ctx context.Context, memberID string) string {
	name, err := e.members.DisplayName(ctx, memberID)
	if err != nil || name == "" {
		return memberID
	}
	return name
}

func holdsRole(roleIDs []string, roleID string) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
