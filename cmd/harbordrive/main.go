package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harborfs/harbordrive/internal/logger"
	"github.com/harborfs/harbordrive/pkg/access"
	"github.com/harborfs/harbordrive/pkg/blob"
	"github.com/harborfs/harbordrive/pkg/config"
	"github.com/harborfs/harbordrive/pkg/service"
	"github.com/harborfs/harbordrive/pkg/store"
)

// application holds the wired-up drive core. A transport layer embeds
// this and exposes Files and Shares over whatever protocol it speaks.
type application struct {
	Files  *service.FileService
	Shares *service.ShareService

	registry store.Store
	blobs    blob.Store
}

// newApplication constructs every component explicitly, leaf-first:
// backends, then the resolver, then the services.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	blobs, err := config.CreateBlobStore(ctx, &cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob backend: %w", err)
	}

	registry, err := config.CreateStore(ctx, &cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	users := config.CreateDirectory(cfg.Users)
	resolver := access.NewResolver(registry, registry)

	return &application{
		Files:    service.NewFileService(registry, blobs, resolver),
		Shares:   service.NewShareService(registry, registry, resolver, users, cfg.Share.LinkBaseURL),
		registry: registry,
		blobs:    blobs,
	}, nil
}

// close releases the application's backends, honoring timeout.
func (a *application) close(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.registry.Close(); err != nil {
			logger.Error("Registry close error: %v", err)
		}
	}()

	select {
	case <-done:
		logger.Info("Registry closed cleanly")
	case <-time.After(timeout):
		logger.Warn("Registry close timed out after %s", timeout)
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	fmt.Println("HarborDrive - multi-user file storage")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Blob backend: %s", cfg.Blob.Type)
	logger.Info("Registry backend: %s", cfg.Registry.Type)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	if len(cfg.Users) > 0 {
		logger.Info("Seeded %d users into the directory", len(cfg.Users))
	}
	logger.Info("Drive core ready (file and share services initialized). Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received, closing backends...")
	cancel()
	app.close(cfg.Server.ShutdownTimeout)
	logger.Info("Shutdown complete")
}
