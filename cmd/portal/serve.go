package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/99minutos/service-portal/internal/api"
	"github.com/99minutos/service-portal/internal/api/handler"
	"github.com/99minutos/service-portal/internal/api/middleware"
	"github.com/99minutos/service-portal/internal/core/ports"
	"github.com/99minutos/service-portal/internal/core/service"
	"github.com/99minutos/service-portal/internal/infrastructure/backend"
	"github.com/99minutos/service-portal/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/service-portal/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/service-portal/internal/infrastructure/db/redis"
	"github.com/99minutos/service-portal/internal/pkg/config"
	"github.com/99minutos/service-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

// storage is the session store and submit guard chosen by SESSION_BACKEND.
type storage struct {
	store ports.SessionStore
	guard ports.SubmitGuard
	close func(context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return &storage{
			store: redisstore.NewSessionStore(rdb, cfg.Session.TTL),
			guard: redisstore.NewSubmitGuard(rdb, cfg.Session.SubmitWindow),
			close: func(context.Context) error { return rdb.Close() },
		}, nil

	case config.SessionBackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		store := mongostore.NewSessionStore(db, cfg.Session.TTL)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		// Duplicate submissions are only guarded per process with this backend.
		return &storage{
			store: store,
			guard: memory.NewSubmitGuard(cfg.Session.SubmitWindow),
			close: client.Disconnect,
		}, nil

	default:
		log.Warn().Msg("sessions are kept in memory and lost on restart")
		return &storage{
			store: memory.NewSessionStore(cfg.Session.TTL),
			guard: memory.NewSubmitGuard(cfg.Session.SubmitWindow),
			close: func(context.Context) error { return nil },
		}, nil
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "service-portal",
	})

	st, err := openStorage(ctx, cfg, logger.Component("storage"))
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing session store")
		}
	}()

	client := backend.New(backend.Config{
		BaseURL:          cfg.Backend.BaseURL,
		Timeout:          cfg.Backend.Timeout,
		FailureThreshold: cfg.Backend.FailureThreshold,
		OpenTimeout:      cfg.Backend.OpenTimeout,
		Interval:         cfg.Backend.Interval,
		MaxRequests:      cfg.Backend.MaxRequests,
	}, logger.Component("backend"))

	e := api.NewRouter(api.Deps{
		Sessions: service.NewSessionService(client, st.store, logger.Component("session")),
		Orders:   service.NewOrderService(client, st.guard, logger.Component("orders")),
		Store:    st.store,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		Ready: map[string]handler.Pinger{
			"session_store": st.store,
			"ordering_api":  client,
		},
		Logger: logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("session_backend", cfg.Session.Backend).
			Str("backend_url", cfg.Backend.BaseURL).
			Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
