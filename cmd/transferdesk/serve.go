package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marceloprado/transferdesk/internal/api"
	"github.com/marceloprado/transferdesk/internal/auth"
	"github.com/marceloprado/transferdesk/internal/config"
	"github.com/marceloprado/transferdesk/internal/engine"
	"github.com/marceloprado/transferdesk/internal/ledger"
	"github.com/marceloprado/transferdesk/internal/metrics"
	"github.com/marceloprado/transferdesk/internal/modfilter"
	"github.com/marceloprado/transferdesk/internal/offer"
	"github.com/marceloprado/transferdesk/internal/platform"
	"github.com/marceloprado/transferdesk/internal/ratelimit"
	"github.com/marceloprado/transferdesk/internal/roster"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transferdesk server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	book, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	directory, err := roster.NewDirectory(cfg.Teams)
	if err != nil {
		return err
	}

	client := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.Timeout)
	m := metrics.New()

	eng := engine.New(engine.Deps{
		Directory: directory,
		Offers:    offer.NewRegistry(cfg.Transfers.OfferTTL),
		Ledger:    book,
		Members:   client,
		Mutator:   client,
		Prompts:   client,
		Announcer: client,
		Notifier:  client,
		Metrics:   m,
	}, engine.Config{
		BotUserID:                       cfg.Transfers.BotUserID,
		TransferChannelID:               cfg.Transfers.ChannelID,
		PingRoleID:                      cfg.Transfers.PingRoleID,
		TeamCapacity:                    cfg.Transfers.TeamCapacity,
		RequireRepresentativeMembership: cfg.Transfers.RequireRepresentativeMembership,
	})

	router := api.NewRouter(api.RouterDeps{
		Transfers: eng,
		Filter:    modfilter.New(),
		Limiter:   ratelimit.New(cfg.RateLimit.Default, cfg.RateLimit.Window),
		Verifier:  auth.NewVerifier(cfg.Auth.ServiceTokenHash),
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "ledger_backend", cfg.Ledger.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

// openLedger builds the configured ledger backend. The returned close func is
// a no-op for the file backend.
func openLedger(ctx context.Context, cfg *config.Config) (ledger.Ledger, func(), error) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Ledger.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("connected to database")
		return ledger.NewPostgresLedger(pool), pool.Close, nil
	default:
		return ledger.NewFileLedger(cfg.Ledger.Path), func() {}, nil
	}
}
