package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/pathfinder/internal/api"
	"github.com/terra-clan/pathfinder/internal/captcha"
	"github.com/terra-clan/pathfinder/internal/catalog"
	"github.com/terra-clan/pathfinder/internal/chat"
	"github.com/terra-clan/pathfinder/internal/cleanup"
	"github.com/terra-clan/pathfinder/internal/config"
	"github.com/terra-clan/pathfinder/internal/filter"
	"github.com/terra-clan/pathfinder/internal/services"
	"github.com/terra-clan/pathfinder/internal/session"
	"github.com/terra-clan/pathfinder/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// closer collects resources to release on shutdown, closed in reverse order
type closer []func() error

func (c *closer) add(fn func() error) { *c = append(*c, fn) }

func (c closer) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			slog.Error("close error", "error", err)
		}
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	slog.Info("starting pathfinder",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"backend", cfg.Database.Backend,
		"redis", cfg.Redis.Enabled,
	)
	if cfg.Auth.TokenSecret == "pathfinder-dev-secret" {
		slog.Warn("using the development token secret; set AUTH_TOKEN_SECRET")
	}

	var closers closer
	defer closers.closeAll()

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(parent, 30*time.Second)
	defer initCancel()

	health := services.NewRegistry()

	repo, err := openRepository(initCtx, cfg, health, &closers)
	if err != nil {
		return err
	}
	health.Register(services.NewFuncChecker("storage", repo.Ping))

	challengeStore, err := openChallengeStore(initCtx, cfg, health, &closers)
	if err != nil {
		return err
	}

	loader := catalog.NewLoader()
	if cfg.Catalog.Dir != "" {
		if err := loader.LoadFromDir(cfg.Catalog.Dir); err != nil {
			slog.Warn("failed to load catalog from dir, using built-in catalog", "dir", cfg.Catalog.Dir, "error", err)
		}
	}
	slog.Info("catalog ready", "learning_paths", len(loader.LearningPaths()), "careers", len(loader.Careers()))

	captchas := captcha.NewService(challengeStore, captcha.Config{
		Length:        cfg.Captcha.Length,
		TTL:           cfg.Captcha.TTL,
		SpeechEnabled: cfg.Captcha.SpeechEnabled,
	})

	sessions := session.NewManager(repo, captchas, session.NewTokenIssuer(cfg.Auth.TokenSecret), session.Config{
		TTL:          cfg.Auth.TokenTTL,
		DemoPassword: cfg.Auth.DemoPassword,
		LoginDelay:   cfg.Auth.LoginDelay,
		SaveDelay:    cfg.Auth.SaveDelay,
	})

	filters := filter.NewStore()
	chats := chat.NewService(repo, cfg.Chat.ReplyDelay)
	closers.add(func() error { chats.Close(); return nil })

	// Session teardown releases per-session state
	sessions.OnEnd(filters.Delete)
	sessions.OnEnd(chats.EndSession)

	cleaner := cleanup.NewCleaner(sessions, captchas, cfg.Cleanup.Interval)

	server := api.NewServer(cfg.Server, api.Deps{
		Catalog:  loader,
		Captcha:  captchas,
		Sessions: sessions,
		Filters:  filters,
		Chat:     chats,
		Health:   health,
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return cleaner.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("pathfinder stopped with error", "error", err)
		return err
	}

	slog.Info("pathfinder stopped")
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config, health *services.Registry, closers *closer) (storage.Repository, error) {
	if cfg.Database.Backend == config.BackendMemory {
		slog.Info("using in-memory storage")
		return storage.NewMemoryRepository(), nil
	}

	if cfg.Database.AutoMigrate {
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if _, err := storage.MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create database repository: %w", err)
	}
	closers.add(repo.Close)
	slog.Info("database connected successfully")

	checker, err := services.NewPostgresChecker(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	closers.add(checker.Close)
	health.Register(checker)

	return repo, nil
}

func openChallengeStore(ctx context.Context, cfg *config.Config, health *services.Registry, closers *closer) (captcha.Store, error) {
	if !cfg.Redis.Enabled {
		return captcha.NewMemoryStore(), nil
	}

	client, err := services.NewRedisClient(ctx, services.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	closers.add(client.Close)
	health.Register(services.NewRedisChecker(client))

	return captcha.NewRedisStore(client), nil
}
