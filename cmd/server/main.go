package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/auth-backend/internal/config"
	"github.com/iliyamo/auth-backend/internal/database"
	"github.com/iliyamo/auth-backend/internal/handler"
	"github.com/iliyamo/auth-backend/internal/logging"
	"github.com/iliyamo/auth-backend/internal/queue"
	"github.com/iliyamo/auth-backend/internal/repository"
	"github.com/iliyamo/auth-backend/internal/router"
	"github.com/iliyamo/auth-backend/internal/service"
	"github.com/iliyamo/auth-backend/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogMode).With("service", cfg.ProjectName)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Redis is optional: without it the user cache and rate limiter are off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; caching and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	users = repository.NewCachedUserStore(users, rdb, config.LoadCacheConfig())

	codec, err := utils.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Algorithm)
	if err != nil {
		return err
	}

	var events service.EventPublisher
	if cfg.RabbitMQURL != "" {
		events = service.NewAMQPPublisher(cfg.RabbitMQURL)
		audit := &queue.AuditConsumer{URL: cfg.RabbitMQURL, Dir: "logs", Log: log}
		go func() {
			if err := audit.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	auth := service.NewAuthService(cfg.JWT, users, utils.NewBcryptHasher(cfg.BcryptCost), codec, events, log)

	e := router.New(router.Deps{
		Auth:      handler.NewAuthHandler(auth, log),
		Resolver:  auth,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Origins:   cfg.CORSOrigins,
		Log:       log,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the MySQL user store, or an in-memory one when running
// in dev with DB_IN_MEMORY set.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.UserStore, func(), error) {
	if cfg.IsDev() && cfg.DB.InMemory {
		log.Warn("using in-memory user store; data is lost on exit")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return repository.NewUserRepo(db), func() { _ = db.Close() }, nil
}
