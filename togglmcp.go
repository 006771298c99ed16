// Package togglmcp provides an embeddable Toggl MCP server: a protocol
// adapter exposing the Toggl Track API's read operations as addressable
// resources and invocable tools.
package togglmcp

import (
	"log/slog"

	"github.com/wolkwork/toggl-mcp/internal/config"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/server"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

// Config is the server configuration.
type Config = config.Config

// Server is an initialized Toggl MCP server ready to run over stdio.
type Server struct {
	config     *config.Config
	toolServer *server.TogglToolServer
	logger     *slog.Logger
}

// ServerOptions configures NewServer.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. If empty, the default path and environment are used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates and initializes a Toggl MCP server. Configuration is
// taken from opts.Config when set, otherwise loaded from opts.ConfigPath
// (or the default path) layered with TOGGL environment variables. A
// missing API token fails here, at startup, never per request.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	switch {
	case opts.Config != nil:
		cfg = opts.Config
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
	case opts.ConfigPath != "":
		cfg, err = config.LoadWithPath(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	default:
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}

	toolServer := server.NewTogglToolServer(cfg, logger)
	if err := toolServer.Initialize(); err != nil {
		errortypes.LogError(logger, err)
		return nil, err
	}

	logger.Info("Toggl MCP server ready")
	return &Server{
		config:     cfg,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// Start runs the server over stdio, blocking until it terminates.
func (s *Server) Start() error {
	return s.toolServer.Start()
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	return s.toolServer.Stop()
}

// Metrics exposes the server's metrics collector, mainly for embedding
// hosts that report their own telemetry.
func (s *Server) Metrics() *telemetry.MetricsCollector {
	return s.toolServer.Metrics()
}
