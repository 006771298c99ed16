// Package server wires the Toggl MCP components together and runs the
// MCP server over stdio. No business logic lives here, only composition.
package server

import (
	"errors"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wolkwork/toggl-mcp/internal/config"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/prompts"
	"github.com/wolkwork/toggl-mcp/internal/resources"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
	"github.com/wolkwork/toggl-mcp/internal/toggl"
	"github.com/wolkwork/toggl-mcp/internal/tools"
)

// Name and Version identify the server to MCP hosts.
const (
	Name    = "toggl-mcp"
	Version = "1.0.0"
)

// TogglToolServer exposes the Toggl API as MCP resources, tools and
// prompts over stdio.
type TogglToolServer struct {
	cfg       *config.Config
	metrics   *telemetry.MetricsCollector
	log       *slog.Logger
	mcpServer *mcpserver.MCPServer
}

// NewTogglToolServer creates a server over the given configuration.
func NewTogglToolServer(cfg *config.Config, log *slog.Logger) *TogglToolServer {
	if log == nil {
		log = slog.Default()
	}
	return &TogglToolServer{
		cfg:     cfg,
		metrics: telemetry.NewMetricsCollector(),
		log:     log,
	}
}

// Metrics exposes the server's metrics collector.
func (s *TogglToolServer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// Initialize builds the upstream call chain and registers the resource,
// tool and prompt surface.
func (s *TogglToolServer) Initialize() error {
	if s.cfg == nil {
		return errortypes.ConfigError(errors.New("nil configuration"), "server initialization failed")
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	s.log.Info("Initializing Toggl MCP server")

	endpoints := toggl.Endpoints{
		Track:    s.cfg.Toggl.BaseURL,
		Reports:  s.cfg.Toggl.ReportsURL,
		Webhooks: s.cfg.Toggl.WebhooksURL,
	}

	// Decorator chain, inside out: client → retrier → pacer. Pacing sits
	// outermost so retries are paced too.
	var caller toggl.Caller = toggl.NewClient(s.cfg.Toggl.APIToken,
		toggl.WithLogger(s.log),
		toggl.WithMetrics(s.metrics))
	caller = toggl.NewRetrier(caller, s.cfg.Upstream.MaxRetries,
		toggl.WithRetrierMetrics(s.metrics))
	caller = toggl.NewPacer(caller, s.cfg.Upstream.RequestsPerSecond, s.metrics)

	srv := mcpserver.NewMCPServer(Name, Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
	)

	resolver := resources.NewResolver(caller, endpoints, s.metrics, s.log)
	resources.Register(srv, resolver)

	dispatcher := tools.NewDispatcher(caller, endpoints,
		s.cfg.Toggl.UserAgent, s.cfg.Insights.CostRate, s.metrics, s.log)
	tools.Register(srv, dispatcher)

	prompts.Register(srv)

	s.mcpServer = srv
	s.log.Info("Toggl MCP server initialized", "tool_count", 7, "resource_count", 14, "prompt_count", 2)
	return nil
}

// Start runs the MCP server on stdio. It blocks until stdin closes or the
// transport fails.
func (s *TogglToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(errors.New("server not initialized"), "cannot start server")
	}

	s.log.Info("Starting Toggl MCP server on stdio")
	return mcpserver.ServeStdio(s.mcpServer)
}

// Stop logs a metrics snapshot on shutdown. The stdio server itself exits
// when stdin closes.
func (s *TogglToolServer) Stop() error {
	args := make([]any, 0)
	for name, value := range s.metrics.Snapshot() {
		args = append(args, name, value)
	}
	s.log.Info("Stopping Toggl MCP server", args...)
	return nil
}
