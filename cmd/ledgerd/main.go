package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"assetledger/config"
	"assetledger/core"
	"assetledger/observability"
	"assetledger/observability/logging"
	telemetry "assetledger/observability/otel"
	"assetledger/rpc"
	"assetledger/rpc/middleware"
	"assetledger/storage"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./ledger.toml", "path to ledger configuration (TOML or YAML)")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "ledgerd: %v\n", err)
		os.Exit(1)
	}
}

// run starts the daemon and blocks until a signal arrives or the server
// fails. Deferred cleanup always runs before it returns.
func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Telemetry.Environment)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("path", cfgPath), slog.Any("error", err))
		return err
	}

	insecure := cfg.Telemetry.Insecure
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    insecure,
		Headers:     telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
	})
	if err != nil {
		logger.Error("failed to initialise telemetry", slog.Any("error", err))
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("open storage", slog.String("backend", cfg.Storage), slog.Any("error", err))
		return err
	}
	defer db.Close()

	node := core.NewNodeWithDatabase(db, cfg.Administrator, observability.NewLogEmitter(logger))
	node.SetLogger(logger)

	server := rpc.NewServer(node, rpc.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Auth: middleware.AuthConfig{
			Enabled:    cfg.RPC.AuthEnabled,
			HMACSecret: cfg.RPC.HMACSecret,
			Issuer:     cfg.RPC.Issuer,
			Audience:   cfg.RPC.Audience,
			ClockSkew:  cfg.RPC.ClockSkew(),
		},
		RateLimit: middleware.RateLimit{
			RatePerSecond:     cfg.RPC.RatePerSecond,
			Burst:             cfg.RPC.Burst,
			TrustProxyHeaders: cfg.RPC.TrustProxyHeaders,
		},
		LogRequests: true,
	}, logger)

	if !cfg.RPC.AuthEnabled {
		logger.Warn("rpc authentication disabled; callers are taken from the X-Caller header")
	}

	readTimeout, writeTimeout, idleTimeout := cfg.RPC.Timeouts()
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		logger.Error("listen", slog.String("address", cfg.ListenAddress), slog.Any("error", err))
		return err
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("ledger listening",
			slog.String("address", listener.Addr().String()),
			slog.String("storage", cfg.Storage),
			logging.MaskPrincipal("administrator", node.Administrator()))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			logger.Error("serve", slog.Any("error", err))
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("ledger stopped")
	return runErr
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemDB(), nil
	case config.StorageLevelDB:
		path := filepath.Join(cfg.DataDir, "state")
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := storage.NewLevelDB(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
