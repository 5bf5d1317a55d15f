package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/plbot/internal/bot"
	"github.com/desertthunder/plbot/internal/dialogue"
	"github.com/desertthunder/plbot/internal/repositories"
	"github.com/desertthunder/plbot/internal/server"
	"github.com/desertthunder/plbot/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// sweepInterval is how often the in-memory dialogue store drops expired sessions.
const sweepInterval = time.Minute

// Serve runs the webhook server until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, db, err := r.openRepository(ctx, config)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, closeSessions, err := r.sessionStore(ctx, config)
	if err != nil {
		return err
	}
	defer closeSessions()

	router := r.newRouter(config, repo, sessions)

	addr := net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	srv := server.NewHTTPServer(addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.logger.Info("listening", "addr", addr, "sessions", config.Session.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		r.logger.Info("shutting down", "timeout", config.Server.ShutdownTimeout())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if mem, ok := sessions.(*dialogue.MemoryStore); ok {
		g.Go(func() error { return mem.Run(gctx, sweepInterval) })
	}

	return g.Wait()
}

// sessionStore builds the configured dialogue store and a func releasing its resources.
func (r *Runner) sessionStore(ctx context.Context, config *shared.Config) (dialogue.Store, func(), error) {
	ttl := config.Bot.DialogueTTL()

	switch config.Session.Backend {
	case "redis":
		client, err := dialogue.NewRedisClient(ctx, config.Session.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				r.logger.Warn("failed to close redis client", "err", err)
			}
		}
		return dialogue.NewRedisStore(client, config.Session.Redis.KeyPrefix, ttl), closeFn, nil
	default:
		return dialogue.NewMemoryStore(ttl), func() {}, nil
	}
}

// newRouter wires the bot handler into the webhook and health endpoints.
func (r *Runner) newRouter(config *shared.Config, repo *repositories.Repository, sessions dialogue.Store) *server.BasicRouter {
	handler := bot.NewHandler(bot.Options{
		Repository:    repo,
		Sessions:      sessions,
		Logger:        shared.WithLogger(r.logger, "component", "bot"),
		RatePerSecond: config.Bot.RatePerSecond,
		Burst:         config.Bot.Burst,
	})

	return server.NewRouter(
		shared.WithLogger(r.logger, "component", "http"),
		server.NewWebhookHandler(handler, config.Server.WebhookSecret, shared.WithLogger(r.logger, "component", "webhook")),
		server.NewHealthHandler(repo),
	)
}
