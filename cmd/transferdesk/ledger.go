package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marceloprado/transferdesk/internal/config"
	"github.com/marceloprado/transferdesk/internal/ledger"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the transfer ledger",
}

var ledgerDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print all transfer records as JSON",
	RunE:  runLedgerDump,
}

func init() {
	ledgerCmd.AddCommand(ledgerDumpCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerDump(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var book ledger.Ledger
	switch cfg.Ledger.Backend {
	case config.LedgerBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Ledger.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		book = ledger.NewPostgresLedger(pool)
	default:
		book = ledger.NewFileLedger(cfg.Ledger.Path)
	}

	records, err := book.All(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d records\n", len(records))
	return nil
}
