package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	log, err := NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// 1) DB
	db, err := OpenDB(cfg.Database, log)
	if err != nil {
		log.Error("open db", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		return 1
	}
	defer func() { _ = CloseDB(db) }()
	if err := AutoMigrate(db); err != nil {
		log.Error("migrate", zap.Error(err))
		return 1
	}

	// 2) Seed (if empty)
	if isEmpty, err := IsQuestionTableEmpty(db); err != nil {
		log.Error("count questions", zap.Error(err))
		return 1
	} else if isEmpty {
		path := cfg.Seed.Path
		if _, err := os.Stat(path); err == nil {
			stats, err := SeedFromFile(db, path)
			if err != nil {
				log.Error("seed", zap.String("path", path), zap.Error(err))
				return 1
			}
			log.Info("seeded database",
				zap.String("path", path),
				zap.Int("categories", stats.Categories),
				zap.Int("questions", stats.Questions),
			)
		} else {
			log.Warn("no seed file; running with empty DB", zap.String("path", path))
		}
	}

	// 3) Router
	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(cfg, NewGormStore(db), log)

	// 4) Server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("driver", cfg.Database.Driver),
		zap.Strings("cors_origins", cfg.CORS.AllowOrigins),
	)
	if err := serve(ctx, cfg.Server, router); err != nil {
		log.Error("server", zap.Error(err))
		return 1
	}
	log.Info("server stopped")
	return 0
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within cfg.ShutdownTimeout.
func serve(ctx context.Context, cfg ServerConfig, handler http.Handler) error {
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}
		return err
	}
}
