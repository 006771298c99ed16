package server

import (
	"testing"

	"github.com/wolkwork/toggl-mcp/internal/config"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Toggl.APIToken = "test-token"
	return cfg
}

func TestInitialize(t *testing.T) {
	srv := NewTogglToolServer(testConfig(), nil)

	if err := srv.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if srv.mcpServer == nil {
		t.Error("mcpServer = nil after Initialize")
	}
	if srv.Metrics() == nil {
		t.Error("Metrics() = nil")
	}
}

func TestInitializeNilConfig(t *testing.T) {
	srv := NewTogglToolServer(nil, nil)

	err := srv.Initialize()
	if errortypes.KindOf(err) != errortypes.KindConfig {
		t.Errorf("Initialize() error = %v, want config failure", err)
	}
}

func TestInitializeMissingToken(t *testing.T) {
	cfg := config.New()
	srv := NewTogglToolServer(cfg, nil)

	err := srv.Initialize()
	if errortypes.KindOf(err) != errortypes.KindConfig {
		t.Errorf("Initialize() error = %v, want config failure", err)
	}
}

func TestStartBeforeInitialize(t *testing.T) {
	srv := NewTogglToolServer(testConfig(), nil)

	if err := srv.Start(); err == nil {
		t.Error("Start() error = nil, want not-initialized failure")
	}
}

func TestStopAfterInitialize(t *testing.T) {
	srv := NewTogglToolServer(testConfig(), nil)
	if err := srv.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
