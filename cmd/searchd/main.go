// Package main is the search service entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ateliernoir/search/internal/config"
	"github.com/ateliernoir/search/internal/query"
	"github.com/ateliernoir/search/internal/search"
	"github.com/ateliernoir/search/internal/server"
	"github.com/ateliernoir/search/internal/storage"
	"github.com/ateliernoir/search/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ateliernoir/search.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if that
// exists it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func openStore(ctx context.Context, cfg *config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return storage.NewPostgresStore(ctx, cfg.DSN)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "config file path")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("debug", debugMode),
	)

	ctx := context.Background()
	store, err := openStore(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	synonyms := query.NewSynonymTable(cfg.Synonyms.Groups, cfg.Synonyms.Exclusions)
	logger.Debug("synonym table built", zap.Int("terms", synonyms.Len()))

	service := search.NewService(store, synonyms, &cfg.Search, logger)
	srv := server.NewServer(service, store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}
