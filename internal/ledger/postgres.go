package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger stores records in an append-only transfers table. It is the
// backend for deployments that want the history queryable; the file backend
// remains the default.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a ledger backed by the given connection pool.
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

// Append inserts the record.
func (l *PostgresLedger) Append(ctx context.Context, rec Record) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO transfers (id, player_id, player_display_name, team_name, action, initiator_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.PlayerID, rec.PlayerDisplayName, rec.TeamName, rec.Action, rec.InitiatorID, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting transfer record: %w", err)
	}
	return nil
}

// All returns the stored records in append order.
func (l *PostgresLedger) All(ctx context.Context) ([]Record, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, player_id, player_display_name, team_name, action, initiator_id, created_at
		 FROM transfers
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transfer records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.PlayerDisplayName, &rec.TeamName, &rec.Action, &rec.InitiatorID, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning transfer row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfer rows: %w", err)
	}
	return records, nil
}
