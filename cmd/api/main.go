package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conciergerie_backend/internal/adapters"
	"conciergerie_backend/internal/auth"
	"conciergerie_backend/internal/chat"
	"conciergerie_backend/internal/chat/llm"
	apphttp "conciergerie_backend/internal/http"
	"conciergerie_backend/internal/http/router"
	"conciergerie_backend/internal/notify"
	"conciergerie_backend/internal/quotes"
	"conciergerie_backend/internal/render"
	"conciergerie_backend/internal/requests"
	"conciergerie_backend/internal/storage"
	"conciergerie_backend/migrations"
	"conciergerie_backend/platform/cache"
	"conciergerie_backend/platform/config"
	"conciergerie_backend/platform/db"
	"conciergerie_backend/platform/logger"
	"conciergerie_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	views, err := cache.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize cache", "error", err)
		panic("failed to initialize cache: " + err.Error())
	}
	defer views.Close()
	if cfg.IsRedisEnabled() {
		log.Info("redis cache initialized")
	} else {
		log.Warn("REDIS_URL not configured; using in-process idempotency only")
	}

	val := validator.New()

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure documents bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketDocuments())
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketDocuments())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "documentsBucket", cfg.GetMinioBucketDocuments())

	renderer, err := newRenderer(cfg, log)
	if err != nil {
		log.Error("failed to initialize PDF renderer", "error", err)
		panic("failed to initialize PDF renderer: " + err.Error())
	}

	provider, err := llm.New(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize LLM provider", "error", err)
		panic("failed to initialize LLM provider: " + err.Error())
	}
	log.Info("LLM provider initialized", "provider", cfg.LLMProvider)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(cfg, log)
	requestsModule := requests.NewModule(pool, val, views, log)

	if notifier := notify.New(cfg, log); notifier != nil {
		requestsModule.Service().SetNotifier(notifier)
		log.Info("staff email notifications enabled", "notify", cfg.NotifyAddress)
	}

	quotesModule := quotes.NewModule(pool, requestsModule.Service(), renderer, storageSvc, cfg.GetMinioBucketDocuments(), val, log)

	submitter := adapters.NewChatSubmitter(requestsModule.Service())
	chatModule := chat.NewModule(provider, submitter, views, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:           cfg,
		Logger:           log,
		Health:           db.NewPoolAdapter(pool),
		PortalMiddleware: authModule.Sessions().Middleware(),
		Modules: []apphttp.Module{
			authModule,
			requestsModule,
			quotesModule,
			chatModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// newRenderer picks the PDF engine: Gotenberg when configured, otherwise a
// local Chromium binary. A missing Chromium install is a startup error
// because every finalization depends on it.
func newRenderer(cfg *config.Config, log *logger.Logger) (*render.Renderer, error) {
	if cfg.IsGotenbergEnabled() {
		log.Info("gotenberg PDF engine initialized", "url", cfg.GetGotenbergURL())
		return render.New(render.NewGotenbergEngine(cfg)), nil
	}

	engine, err := render.NewChromiumEngine(cfg)
	if err != nil {
		if errors.Is(err, render.ErrChromiumNotFound) {
			log.Error("no chromium installation found; set CHROMIUM_PATH or configure GOTENBERG_URL")
		}
		return nil, err
	}
	log.Info("chromium PDF engine initialized", "path", engine.ExecPath())
	return render.New(engine), nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
