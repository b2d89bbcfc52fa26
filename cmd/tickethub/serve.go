// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tickethub/tickethub/internal/auth"
	authpg "github.com/tickethub/tickethub/internal/auth/postgres"
	"github.com/tickethub/tickethub/internal/config"
	"github.com/tickethub/tickethub/internal/httpapi"
	"github.com/tickethub/tickethub/internal/logging"
	"github.com/tickethub/tickethub/internal/observability"
	"github.com/tickethub/tickethub/internal/store"
	"github.com/tickethub/tickethub/internal/ticket"
	ticketpg "github.com/tickethub/tickethub/internal/ticket/postgres"
	"github.com/tickethub/tickethub/pkg/errutil"
)

// sessionSweepInterval is how often expired sessions are purged.
const sessionSweepInterval = time.Hour

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the TicketHub API server",
		Long: `Start the TicketHub API server, serving the REST API and the
observability endpoints until interrupted.`,
		RunE: runServe,
	}

	def := config.Default()
	cmd.Flags().String("http.addr", def.HTTP.Addr, "API listen address")
	cmd.Flags().String("database.url", def.Database.URL, "PostgreSQL connection URL")
	cmd.Flags().String("log.level", def.Log.Level, "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", def.Log.Format, "log format (json, text)")
	cmd.Flags().String("observability.addr", def.Observability.Addr, "metrics and health listen address")
	cmd.Flags().Duration("auth.session_ttl", def.Auth.SessionTTL, "session lifetime")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("tickethub", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	subjectRepo := authpg.NewSubjectRepository(pool)
	sessionRepo := authpg.NewSessionRepository(pool)
	transactor := authpg.NewTransactor(pool)
	ticketRepo := ticketpg.NewTicketRepository(pool)
	stateRepo := ticketpg.NewStateRepository(pool)

	hasher := auth.NewArgon2idHasher()

	authSvc, err := auth.NewServiceWithLogger(subjectRepo, sessionRepo, hasher, transactor, logger)
	if err != nil {
		return err
	}
	authSvc.WithSessionTTL(cfg.Auth.SessionTTL)

	subjectSvc, err := auth.NewSubjectService(subjectRepo, sessionRepo, hasher, transactor)
	if err != nil {
		return err
	}
	subjectSvc.WithLogger(logger)

	guard, err := auth.NewGuard(subjectRepo, sessionRepo)
	if err != nil {
		return err
	}

	ticketSvc, err := ticket.NewService(ticketRepo, stateRepo, subjectRepo)
	if err != nil {
		return err
	}
	stateSvc, err := ticket.NewStateService(stateRepo)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Observability.Addr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}

	api := httpapi.New(authSvc, subjectSvc, guard, ticketSvc, stateSvc,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(obs.Metrics()),
	)

	router := chi.NewRouter()
	router.Mount("/api/v1", api.Router())

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Expired sessions are purged in the background so the sessions table
	// doesn't accumulate dead rows.
	go sweepSessions(ctx, sessionRepo, logger)

	serveErrCh := make(chan error, 1)
	go func() {
		logger.Info("api server started", "addr", cfg.HTTP.Addr)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr := <-serveErrCh:
		errutil.LogError(logger, "api server failed", serveErr)
		return oops.Code("SERVER_FAILED").Wrap(serveErr)
	case obsErr := <-obsErrCh:
		errutil.LogError(logger, "observability server failed", obsErr)
		return oops.Code("SERVER_FAILED").Wrap(obsErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(logger, "api server shutdown failed", err)
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "observability server shutdown failed", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// sweepSessions periodically deletes expired sessions until ctx is canceled.
func sweepSessions(ctx context.Context, sessions auth.SessionRepository, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.DeleteExpired(ctx)
			if err != nil {
				errutil.LogError(logger, "session sweep failed", err)
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
		}
	}
}
