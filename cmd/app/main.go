package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kiosk/cmd"
	"kiosk/internal/adapters/out/memory"
	"kiosk/internal/adapters/out/objectstore"
	"kiosk/internal/adapters/out/postgres/orderrepo"
	"kiosk/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "kiosk:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine: the environment may be set by the supervisor.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := newLogger(config)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := objectstore.NewFileStore(config.AssetsDir)
	if err != nil {
		return err
	}

	app := cmd.NewCompositionRoot(config, repo, store, logger)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(ctx); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e := newEcho(config)
	if err := app.CreateHTTPServer().Register(e); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", config.HTTPPort)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newLogger(config cmd.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.LogLevel}
	if config.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newEcho(config cmd.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	switch {
	case config.LogLevel <= slog.LevelDebug:
		e.Logger.SetLevel(log.DEBUG)
	case config.LogLevel <= slog.LevelInfo:
		e.Logger.SetLevel(log.INFO)
	case config.LogLevel <= slog.LevelWarn:
		e.Logger.SetLevel(log.WARN)
	default:
		e.Logger.SetLevel(log.ERROR)
	}
	return e
}

func openRepository(ctx context.Context, config cmd.Config, logger *slog.Logger) (ports.OrderRepository, func(), error) {
	if config.StorageDriver == cmd.StorageDriverMemory {
		logger.Warn("Using in-memory storage: orders are lost on restart")
		return memory.NewOrderRepository(), func() {}, nil
	}

	db, err := gorm.Open(postgresdriver.Open(config.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	repo := orderrepo.NewGormOrderRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}

	return repo, func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("Closing database failed", "error", err)
		}
	}, nil
}
