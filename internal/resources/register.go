package resources

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

const jsonMIME = "application/json"

// Register advertises the full resource URI set on the MCP server. Fixed
// URIs register as static resources; parameterized ones as resource
// templates. Every handler funnels through Resolver.Resolve, so the
// dispatch table stays the single source of truth for URI semantics.
func Register(s *server.MCPServer, resolver *Resolver) {
	handler := resolver.handleRead

	statics := []struct {
		uri, name, description string
	}{
		{"me://", "current_user", "The authenticated Toggl user"},
		{"workspaces://", "workspaces", "All workspaces for the authenticated user"},
		{"time_entries://current", "current_time_entry", "The currently running time entry, if any"},
	}
	for _, res := range statics {
		s.AddResource(mcp.NewResource(res.uri, res.name,
			mcp.WithResourceDescription(res.description),
			mcp.WithMIMEType(jsonMIME),
		), handler)
	}

	templates := []struct {
		uri, name, description string
	}{
		{"workspaces://{workspace_id}", "workspace", "A specific workspace"},
		{"workspaces://{workspace_id}/users", "workspace_users", "Users in a workspace"},
		{"workspaces://{workspace_id}/clients", "workspace_clients", "Clients in a workspace"},
		{"workspaces://{workspace_id}/projects", "workspace_projects", "Active projects in a workspace"},
		{"workspaces://{workspace_id}/tasks", "workspace_tasks", "Active tasks in a workspace"},
		{"workspaces://{workspace_id}/tags", "workspace_tags", "Tags in a workspace"},
		{"time_entries://{time_entry_id}", "time_entry", "A specific time entry"},
		{"projects://{project_id}", "project", "A specific project"},
		{"clients://{client_id}", "client", "A specific client"},
		{"tags://{tag_id}", "tag", "A specific tag"},
		{"tasks://{task_id}", "task", "A specific task"},
	}
	for _, res := range templates {
		s.AddResourceTemplate(mcp.NewResourceTemplate(res.uri, res.name,
			mcp.WithTemplateDescription(res.description),
			mcp.WithTemplateMIMEType(jsonMIME),
		), handler)
	}
}

// handleRead resolves the requested URI and serializes the resulting
// record or collection as indented JSON resource contents.
func (r *Resolver) handleRead(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	record, err := r.Resolve(ctx, req.Params.URI)
	if err != nil {
		errortypes.LogError(r.log, err)
		return nil, err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, errortypes.MalformedPayload(err, "failed to serialize resource").
			WithField("uri", req.Params.URI)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: jsonMIME,
			Text:     string(data),
		},
	}, nil
}
