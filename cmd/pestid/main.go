// Pestid is the garden pest and disease identification daemon.
//
// It serves the JSON API for image identification, treatment tracking,
// the farming chat assistant and location lookup.
//
// Configuration is read from ~/.config/pestid/config.yaml (or -config) and
// PESTID_* environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults (Gemini, SQLite tracking store)
//	PESTID_AI_API_KEY=... pestid
//
//	# Use an OpenAI-compatible vision endpoint
//	PESTID_AI_PROVIDER=openai PESTID_AI_MODEL=llava PESTID_AI_BASE_URL=http://localhost:11434/v1 pestid
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

	"github.com/fyrsmithlabs/pestid/internal/ai"
	"github.com/fyrsmithlabs/pestid/internal/chat"
	"github.com/fyrsmithlabs/pestid/internal/config"
	"github.com/fyrsmithlabs/pestid/internal/events"
	httpapi "github.com/fyrsmithlabs/pestid/internal/http"
	"github.com/fyrsmithlabs/pestid/internal/identify"
	"github.com/fyrsmithlabs/pestid/internal/location"
	"github.com/fyrsmithlabs/pestid/internal/logging"
	"github.com/fyrsmithlabs/pestid/internal/secrets"
	"github.com/fyrsmithlabs/pestid/internal/telemetry"
	"github.com/fyrsmithlabs/pestid/internal/tracking"
	"go.uber.org/zap"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/pestid/config.yaml)")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  pestid [-config path]   Start the pestid daemon\n")
			fmt.Fprintf(os.Stderr, "  pestid version          Show version information\n")
			os.Exit(1)
		}
	}

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pestid: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pestid: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("pestid by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	logCfg, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability, version), nil)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	logCfg.Output.OTEL = tel.LoggerProvider() != nil
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zl := logger.Underlying()

	logger.Info(ctx, "starting pestid",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("telemetry", tel.IsEnabled()),
	)

	deps, cleanup, err := initServices(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := httpapi.NewServer(deps, logger, &httpapi.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		BodyLimit: cfg.Server.BodyLimit,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info(shutdownCtx, "pestid stopped")
	return nil
}

// initServices builds the API dependencies. cleanup releases the store and
// event connection.
func initServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (httpapi.Deps, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (httpapi.Deps, func(), error) {
		cleanup()
		return httpapi.Deps{}, func() {}, err
	}

	model, err := ai.New(ctx, cfg.AI, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to create model: %w", err))
	}

	storePath := cfg.Store.Path
	if cfg.Store.Driver == config.DriverSQLite {
		if storePath, err = cfg.ResolvedStorePath(); err != nil {
			return fail(err)
		}
	}
	store, err := tracking.OpenStore(cfg.Store.Driver, storePath)
	if err != nil {
		return fail(fmt.Errorf("failed to open tracking store: %w", err))
	}
	closers = append(closers, func() { _ = store.Close() })
	logger.Info("tracking store opened", zap.String("driver", cfg.Store.Driver), zap.String("path", storePath))

	publisher, err := events.New(cfg.Events, logger)
	if err != nil {
		// Events are optional; identification and tracking work without them.
		logger.Warn("event publisher unavailable", zap.Error(err))
		publisher = events.Nop{}
	}
	closers = append(closers, func() { _ = publisher.Close() })

	scrubber, err := secrets.New(secrets.DefaultConfig())
	if err != nil {
		return fail(fmt.Errorf("failed to create scrubber: %w", err))
	}

	identifySvc, err := identify.NewService(model, publisher, logger.Named("identify"))
	if err != nil {
		return fail(err)
	}
	trackingSvc, err := tracking.NewService(store, scrubber, publisher, logger.Named("tracking"), tracking.ServiceConfig{
		FallbackToSamples: cfg.Tracking.FallbackToSamples,
	})
	if err != nil {
		return fail(err)
	}
	chatSvc, err := chat.NewService(model, scrubber, logger.Named("chat"))
	if err != nil {
		return fail(err)
	}
	locator := location.NewClient(location.Config{
		Endpoint: cfg.Location.Endpoint,
		Timeout:  cfg.Location.Timeout.Duration(),
	}, logger.Named("location"))

	return httpapi.Deps{
		Identify: identifySvc,
		Tracking: trackingSvc,
		Chat:     chatSvc,
		Location: locator,
	}, cleanup, nil
}
