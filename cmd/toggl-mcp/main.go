package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	togglmcp "github.com/wolkwork/toggl-mcp"
	"github.com/wolkwork/toggl-mcp/internal/config"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the config file")
	flag.Parse()

	// Bootstrap logging before config is available; stdout carries the
	// MCP stdio framing, so logs go to stderr.
	logger := setupLogging(nil)

	logger.Info("Toggl MCP server starting")

	cfg, err := config.LoadWithPath(*configPath)
	if err != nil {
		errortypes.LogError(logger, err)
		logger.Error("Failed to load configuration")
		os.Exit(1)
	}

	logger = setupLogging(cfg)
	slog.SetDefault(logger)

	srv, err := togglmcp.NewServer(togglmcp.ServerOptions{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		errortypes.LogError(logger, err)
		logger.Error("Failed to initialize server")
		os.Exit(1)
	}

	setupSignalHandler(srv, logger)

	if err := srv.Start(); err != nil {
		errortypes.LogError(logger, err)
		logger.Error("Server terminated with error")
		os.Exit(1)
	}

	if err := srv.Stop(); err != nil {
		errortypes.LogError(logger, err)
	}
	logger.Info("Server stopped gracefully")
}

// setupLogging builds the process logger. With a nil config it returns a
// conservative text logger for the bootstrap phase.
func setupLogging(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if cfg == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	opts.Level = cfg.LogLevel()
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// setupSignalHandler terminates gracefully on SIGINT/SIGTERM.
func setupSignalHandler(srv *togglmcp.Server, logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Received shutdown signal, terminating")
		if err := srv.Stop(); err != nil {
			errortypes.LogError(logger, err)
		}
		os.Exit(0)
	}()
}
