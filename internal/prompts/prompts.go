// Package prompts provides the analysis prompts the server advertises.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Prompt names.
const (
	PromptAnalyzeTimeEntries = "analyze_time_entries"
	PromptProjectAnalysis    = "project_analysis"
)

// Register advertises the analysis prompts on the MCP server.
func Register(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt(PromptAnalyzeTimeEntries,
		mcp.WithPromptDescription("Analyze time entries for a workspace"),
		mcp.WithArgument("workspace_id",
			mcp.ArgumentDescription("Workspace ID"),
			mcp.RequiredArgument(),
		),
	), handleAnalyzeTimeEntries)

	s.AddPrompt(mcp.NewPrompt(PromptProjectAnalysis,
		mcp.WithPromptDescription("Analyze a specific project"),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project ID"),
			mcp.RequiredArgument(),
		),
	), handleProjectAnalysis)
}

func handleAnalyzeTimeEntries(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	workspaceID := req.Params.Arguments["workspace_id"]
	if workspaceID == "" {
		return nil, fmt.Errorf("workspace_id argument is required")
	}

	text := fmt.Sprintf(`Please analyze the time entries for workspace %s.

You can use the following resources:
- workspaces://%s
- workspaces://%s/projects
- workspaces://%s/clients

And the following tools:
- get_weekly_report
- get_detailed_report
- get_summary_report
- get_projects_data_trends

Please provide insights on time usage patterns and productivity.`,
		workspaceID, workspaceID, workspaceID, workspaceID)

	return mcp.NewGetPromptResult(
		"Time entry analysis",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func handleProjectAnalysis(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectID := req.Params.Arguments["project_id"]
	if projectID == "" {
		return nil, fmt.Errorf("project_id argument is required")
	}

	text := fmt.Sprintf(`Please analyze project %s.

You can use the following resources:
- projects://%s

And the following tools:
- get_summary_report
- get_profitability_insights
- get_revenue_insights

Please provide insights on project progress, time allocation, and any potential issues.`,
		projectID, projectID)

	return mcp.NewGetPromptResult(
		"Project analysis",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
