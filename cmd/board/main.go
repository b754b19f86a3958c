package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	board "github.com/goliatone/go-board"
	"github.com/goliatone/go-board/activitymap"
	"github.com/goliatone/go-board/comments"
	"github.com/goliatone/go-board/config"
	"github.com/goliatone/go-board/middleware/jwtware"
	"github.com/goliatone/go-board/posts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("board exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *board.SlogLogger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrate {
		if err := board.Migrate(ctx, db.DB, cfg.DBDriver); err != nil {
			return err
		}
		logger.Info("migrations applied", "driver", cfg.DBDriver)
	}

	app, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(cfg *config.Config, db *bun.DB, logger *board.SlogLogger) (*fiber.App, error) {
	repo := board.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		return nil, err
	}

	tokens, err := board.NewTokenService(cfg, board.WithTokenLogger(logger.With("component", "tokens")))
	if err != nil {
		return nil, err
	}

	authService := board.NewAuthService(
		repo.Users(),
		board.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		board.WithServiceLogger(logger.With("component", "auth")),
		board.WithActivitySink(activitymap.LoggingSink(logger.With("component", "activity"))),
		board.WithStoreTimeout(cfg.StoreTimeout),
	)

	postService := posts.NewService(
		posts.NewRepository(db),
		posts.WithLogger(logger.With("component", "posts")),
		posts.WithStoreTimeout(cfg.StoreTimeout),
	)

	commentService := comments.NewService(
		comments.NewRepository(db),
		postService,
		comments.WithLogger(logger.With("component", "comments")),
		comments.WithStoreTimeout(cfg.StoreTimeout),
	)

	app := fiber.New(fiber.Config{
		AppName:      "board",
		ErrorHandler: board.NewErrorHandler(logger.With("component", "http")),
	})

	guard := jwtware.New(jwtware.Config{
		TokenValidator: tokens,
		ContextKey:     board.DefaultContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return err
		},
	})

	app.Get("/health", board.HealthHandler)

	api := app.Group("/api")

	board.RegisterAuthRoutes(api.Group("/auth"), board.NewAuthController(
		authService,
		board.WithControllerLogger(logger.With("component", "auth.http")),
	), guard)

	posts.NewController(postService, board.DefaultContextKey).
		RegisterRoutes(api.Group("/posts"), guard)

	comments.NewController(commentService, board.DefaultContextKey).
		RegisterRoutes(api.Group("/comments"), guard)

	board.NewPresenceChannel(authService, tokens,
		board.WithPresenceLogger(logger.With("component", "presence")),
	).Register(app, "/ws/presence")

	return app, nil
}

func openDB(cfg *config.Config) (*bun.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		sqldb, err := sql.Open("pgx", cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

func newLogger(cfg *config.Config) *board.SlogLogger {
	opts := &slog.HandlerOptions{Level: board.ParseLogLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return board.NewSlogLogger(slog.New(handler))
}
