package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/artem13815/taskboard/docs"

	// internal imports
	"github.com/artem13815/taskboard/api/http"
	"github.com/artem13815/taskboard/api/http/handlers"
	"github.com/artem13815/taskboard/api/http/schema"
	"github.com/artem13815/taskboard/pkg/auth"
	"github.com/artem13815/taskboard/pkg/config"
	"github.com/artem13815/taskboard/pkg/health"
	"github.com/artem13815/taskboard/pkg/health/checkers"
	docrepo "github.com/artem13815/taskboard/pkg/repository/document"
	"github.com/artem13815/taskboard/pkg/security/jwt"
	"github.com/artem13815/taskboard/pkg/storage/document"
	"github.com/artem13815/taskboard/pkg/storage/file"
	"github.com/artem13815/taskboard/pkg/storage/postgres"
	"github.com/artem13815/taskboard/pkg/task"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default command)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Storage backend and the document engine on top of it
	backend, readiness, cleanup, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := document.Open(ctx, backend, document.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	logger.Info("store opened", "backend", engine.BackendName())
	readiness = append(readiness, checkers.NewStoreChecker(engine))

	// Token revocation: shared through Redis when configured
	var revoker jwt.Revoker = jwt.NewMemoryRevoker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		revoker = jwt.NewRedisRevoker(rdb, "")
		readiness = append(readiness, checkers.NewRedisChecker(rdb))
		logger.Info("token revocation backed by redis", "addr", cfg.RedisAddr)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("JWT_SECRET is not set: using a random secret, tokens will not survive a restart")
	}
	tokens := jwt.NewService(secret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute, revoker)

	// Wire dependencies (Clean Architecture)
	userRepo := docrepo.NewUserRepository(engine)
	taskRepo := docrepo.NewTaskRepository(engine)
	authUC := auth.NewAuthService(userRepo, tokens, cfg.BcryptCost)
	taskUC := task.NewService(taskRepo)

	schemas, err := schema.New()
	if err != nil {
		return fmt.Errorf("compile request schemas: %w", err)
	}

	authHandler := handlers.NewAuthHandler(authUC, tokens, schemas, logger)
	taskHandler := handlers.NewTaskHandler(taskUC, schemas, logger)
	healthHandler := handlers.NewHealthHandler(health.NewService(readiness...))

	app := fiber.New(fiber.Config{
		AppName:               "taskboard",
		ErrorHandler:          http.ErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(http.RequestLogger(logger))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// Register routes
	http.Register(app, authHandler, taskHandler, healthHandler, jwt.NewAuthMiddleware(tokens))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// openBackend builds the configured storage backend together with the
// readiness checks it contributes and a cleanup func.
func openBackend(ctx context.Context, cfg config.Config, logger *log.Logger) (document.Backend, []health.Checker, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("memory backend selected: data is lost on exit")
		return document.NewMemoryBackend(), nil, func() {}, nil
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
		if err != nil {
			return nil, nil, nil, err
		}
		n, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		if n > 0 {
			logger.Info("migrations applied", "count", n)
		}
		return postgres.NewBackend(pool, cfg.DocumentName),
			[]health.Checker{checkers.NewPostgresChecker(pool)},
			pool.Close, nil
	default:
		logger.Info("using file store", "path", cfg.StorePath)
		return file.NewBackend(cfg.StorePath), nil, func() {}, nil
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
