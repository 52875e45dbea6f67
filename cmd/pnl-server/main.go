package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/pnl-analysis/internal/cache"
	"github.com/iwvelando/pnl-analysis/internal/logging"
	"github.com/iwvelando/pnl-analysis/internal/report"
	"github.com/iwvelando/pnl-analysis/internal/server"
	"github.com/iwvelando/pnl-analysis/internal/store"
	"github.com/iwvelando/pnl-analysis/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	addressFlag := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// .env is loaded first so its values reach the config overrides
	envErr := godotenv.Load()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *addressFlag != "" {
		cfg.Address = *addressFlag
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to load .env file",
			zap.String("op", "main"),
			zap.Error(envErr),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := server.Options{
		Logger:         logger,
		MaxUploadSize:  cfg.UploadSizeBytes(),
		Version:        version,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	if cfg.Database.DSN != "" {
		db, err := store.Open(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to connect to database",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		defer func() {
			_ = db.Close()
		}()

		pg := store.NewPostgres(db, logger)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal("failed to migrate database",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		opts.Store = pg
	} else {
		logger.Info("no database configured; persistence routes disabled",
			zap.String("op", "main"),
		)
	}

	if cfg.Cache.Addr != "" {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		client := cache.NewClient(cache.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      ttl,
		})
		defer func() {
			_ = client.Close()
		}()
		var analyzer report.Analyzer = cache.NewRedis(client, ttl, logger)
		opts.Analyzer = analyzer
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	<-done
	logger.Info("shutting down", zap.String("op", "main"))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
