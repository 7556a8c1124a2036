// Package ledger provides the durable, append-only store of transfer records.
package ledger

import "context"

// Ledger persists transfer records in append order.
type Ledger interface {
	// Append durably persists the record. A write failure must propagate to
	// the caller; silently dropping an audit entry is not acceptable.
	Append(ctx context.Context, rec Record) error
	// All returns the stored records in append order.
	All(ctx context.Context) ([]Record, error)
}
