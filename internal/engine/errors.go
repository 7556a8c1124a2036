package engine

import (
	"errors"
	"fmt"
)

// Precondition errors. These are reported to the invoking actor and leave the
// state machine, the registry, and the ledger untouched.
var (
	// ErrNotRepresentative indicates the caller holds no configured
	// representative role.
	ErrNotRepresentative = errors.New("caller does not hold a representative role")
	// ErrRepresentativeNotOnTeam indicates the policy requiring
	// representatives to hold their own team role rejected the caller.
	ErrRepresentativeNotOnTeam = errors.New("representative does not hold the team role")
	// ErrTargetIsBot indicates an attempt to hire the automation account.
	ErrTargetIsBot = errors.New("the bot cannot be hired")
	// ErrAlreadyEmployed indicates the target already holds a team role. On
	// accept it signals the commit-time race guard fired.
	ErrAlreadyEmployed = errors.New("user already holds a team role")
	// ErrNotTeamMember indicates the dismissal target does not hold the
	// representative's team role.
	ErrNotTeamMember = errors.New("user is not a member of this team")
	// ErrNotEmployed indicates a self-release by a user with no team role.
	ErrNotEmployed = errors.New("user holds no team role")
	// ErrNotOfferTarget indicates someone other than the invited user tried
	// to resolve the offer.
	ErrNotOfferTarget = errors.New("only the invited user may resolve this offer")
)

// MutationError wraps a failed role grant or revoke on the platform. The
// operation is aborted and no ledger record is written.
type MutationError struct {
	Op       string // "grant" or "revoke"
	MemberID string
	RoleID   string
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s role %s for member %s: %v", e.Op, e.RoleID, e.MemberID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// DeliveryError wraps a failed offer prompt delivery. The offer created for
// the proposal is rolled back so no offer exists without a delivered prompt.
type DeliveryError struct {
	MemberID string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivering prompt to member %s: %v", e.MemberID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed ledger append. The role mutation that
// preceded it is compensated so the transition either fully commits or fully
// aborts.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("appending transfer record: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
