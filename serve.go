package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coreybb/mylist/api"
	"github.com/coreybb/mylist/auth"
	"github.com/coreybb/mylist/datastore"
	rh "github.com/coreybb/mylist/route-handlers"
	"github.com/coreybb/mylist/scheduler"
)

func newServeCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg := a.cfg
	if err := cfg.ValidateServer(); err != nil {
		return a.fail("Invalid server configuration", err)
	}
	if cfg.SchedulerToken != "" {
		if err := cfg.ValidateNotifier(); err != nil {
			return a.fail("Invalid notifier configuration for /scheduler/tick", err)
		}
	}

	db, err := a.openDatabase(ctx)
	if err != nil {
		return a.fail("Database setup failed", err)
	}
	defer db.Close()

	if migrate {
		if err := datastore.EnsureSchema(ctx, db); err != nil {
			return a.fail("Schema migration failed", err)
		}
	}

	userRepo := datastore.NewUserRepository(db)
	taskRepo := datastore.NewTaskRepository(db)

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	gate := auth.NewGate(tokens, userRepo, a.logger)

	var reminderScheduler *scheduler.Scheduler
	if cfg.SchedulerToken != "" {
		if reminderScheduler, err = a.newScheduler(db); err != nil {
			return a.fail("Scheduler setup failed", err)
		}
	}

	router := api.SetupRoutes(api.Dependencies{
		Users:          rh.NewUserHandler(userRepo, tokens, cfg.BcryptCost, a.logger),
		Tasks:          rh.NewTaskHandler(taskRepo, a.logger),
		Gate:           gate,
		DB:             db,
		Scheduler:      reminderScheduler,
		SchedulerToken: cfg.SchedulerToken,
		Logger:         a.logger,
		RequestTimeout: cfg.RequestTimeout,
	})

	return a.startServer(ctx, router)
}

func (a *app) startServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:    ":" + a.cfg.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", zap.String("port", a.cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return a.fail("Server error", err)
		}
		return nil
	case <-ctx.Done(): // Block until signal received
	}
	a.logger.Info("Shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return a.fail("Graceful shutdown failed", err)
	}

	a.logger.Info("Server gracefully stopped")
	return nil
}
