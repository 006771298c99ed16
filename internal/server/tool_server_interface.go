package server

// ToolServer is the lifecycle contract the facade and the command-line
// entrypoint program against.
type ToolServer interface {
	// Initialize wires dependencies and registers the MCP surface.
	Initialize() error

	// Start runs the server and blocks until it terminates.
	Start() error

	// Stop performs shutdown work.
	Stop() error
}

var _ ToolServer = (*TogglToolServer)(nil)
