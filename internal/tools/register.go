package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
)

// Register advertises the full tool set on the MCP server.
func Register(s *server.MCPServer, d *Dispatcher) {
	s.AddTool(mcp.NewTool(ToolWeeklyReport,
		mcp.WithDescription("Get a weekly report of tracked time grouped by day"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
		mcp.WithString("since",
			mcp.Required(),
			mcp.Description("Range start date (YYYY-MM-DD)"),
		),
		mcp.WithString("until",
			mcp.Required(),
			mcp.Description("Range end date (YYYY-MM-DD)"),
		),
	), d.handleWeeklyReport)

	s.AddTool(mcp.NewTool(ToolDetailedReport,
		mcp.WithDescription("Get per-entry report detail for a date range"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
		mcp.WithString("since",
			mcp.Required(),
			mcp.Description("Range start date (YYYY-MM-DD)"),
		),
		mcp.WithString("until",
			mcp.Required(),
			mcp.Description("Range end date (YYYY-MM-DD)"),
		),
		mcp.WithNumber("page",
			mcp.Description("Result page, starting at 1"),
		),
		mcp.WithString("project_ids",
			mcp.Description("Comma-separated project IDs to filter by"),
		),
		mcp.WithString("user_ids",
			mcp.Description("Comma-separated user IDs to filter by"),
		),
		mcp.WithString("tag_ids",
			mcp.Description("Comma-separated tag IDs to filter by"),
		),
	), d.handleDetailedReport)

	s.AddTool(mcp.NewTool(ToolSummaryReport,
		mcp.WithDescription("Get tracked time aggregated per grouping dimension"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
		mcp.WithString("since",
			mcp.Required(),
			mcp.Description("Range start date (YYYY-MM-DD)"),
		),
		mcp.WithString("until",
			mcp.Required(),
			mcp.Description("Range end date (YYYY-MM-DD)"),
		),
		mcp.WithString("grouping",
			mcp.Required(),
			mcp.Description("Grouping dimension: projects, clients or users"),
			mcp.Enum(GroupingProjects, GroupingClients, GroupingUsers),
		),
	), d.handleSummaryReport)

	s.AddTool(mcp.NewTool(ToolWebhookSubscriptions,
		mcp.WithDescription("List configured webhook subscriptions for a workspace"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
	), d.handleWebhookSubscriptions)

	s.AddTool(mcp.NewTool(ToolProjectsDataTrends,
		mcp.WithDescription("Get per-project tracked-time trends against the preceding period of equal length"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Period start date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Period end date (YYYY-MM-DD)"),
		),
		mcp.WithString("project_ids",
			mcp.Description("Comma-separated project IDs to limit the trend data to"),
		),
	), d.handleProjectTrends)

	s.AddTool(mcp.NewTool(ToolProfitabilityInsights,
		mcp.WithDescription("Get per-project revenue, cost and margin for a period; requires project hourly rates"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Period start date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Period end date (YYYY-MM-DD)"),
		),
	), d.handleProfitabilityInsights)

	s.AddTool(mcp.NewTool(ToolRevenueInsights,
		mcp.WithDescription("Get per-project revenue against the preceding period of equal length"),
		mcp.WithNumber("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID"),
		),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Period start date (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Period end date (YYYY-MM-DD)"),
		),
	), d.handleRevenueInsights)
}

// requireWorkspaceID extracts the workspace_id argument every tool needs.
func requireWorkspaceID(req mcp.CallToolRequest) (int64, error) {
	id, err := req.RequireInt("workspace_id")
	if err != nil {
		return 0, errortypes.InvalidArguments(err, "missing workspace_id")
	}
	if id <= 0 {
		return 0, errortypes.InvalidArguments(
			fmt.Errorf("workspace_id %d is not a valid id", id),
			"invalid workspace_id")
	}
	return int64(id), nil
}

func requireString(req mcp.CallToolRequest, key string) (string, error) {
	value, err := req.RequireString(key)
	if err != nil {
		return "", errortypes.InvalidArguments(err, "missing "+key)
	}
	return value, nil
}

// insightArgs extracts and validates the argument set shared by the
// insight tools. No upstream call happens until this succeeds.
func insightArgs(req mcp.CallToolRequest, withProjectFilter bool) (InsightArgs, error) {
	workspaceID, err := requireWorkspaceID(req)
	if err != nil {
		return InsightArgs{}, err
	}
	startDate, err := requireString(req, "start_date")
	if err != nil {
		return InsightArgs{}, err
	}
	endDate, err := requireString(req, "end_date")
	if err != nil {
		return InsightArgs{}, err
	}
	period, err := parsePeriod(startDate, endDate)
	if err != nil {
		return InsightArgs{}, err
	}

	args := InsightArgs{WorkspaceID: workspaceID, Period: period}
	if withProjectFilter {
		args.ProjectIDs, err = parseIDList(req.GetString("project_ids", ""), "project_ids")
		if err != nil {
			return InsightArgs{}, err
		}
	}
	return args, nil
}

// result serializes a successful tool result as indented JSON.
func (d *Dispatcher) result(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errortypes.MalformedPayload(err, "failed to serialize tool result")
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failure logs err and maps it onto an MCP tool error carrying the
// failure kind, so callers can distinguish caller error from upstream
// trouble.
func (d *Dispatcher) failure(tool string, err error) (*mcp.CallToolResult, error) {
	errortypes.LogError(d.log, err)
	kind := errortypes.KindOf(err)
	if kind == "" {
		kind = errortypes.KindUpstreamFailure
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s: %v", tool, kind, err)), nil
}

func (d *Dispatcher) countToolCall() {
	if d.metrics != nil {
		d.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)
	}
}

func (d *Dispatcher) handleWeeklyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	args := WeeklyReportArgs{}
	var err error
	if args.WorkspaceID, err = requireWorkspaceID(req); err != nil {
		return d.failure(ToolWeeklyReport, err)
	}
	if args.Since, err = requireString(req, "since"); err != nil {
		return d.failure(ToolWeeklyReport, err)
	}
	if args.Until, err = requireString(req, "until"); err != nil {
		return d.failure(ToolWeeklyReport, err)
	}
	if err = validateRange(args.Since, args.Until); err != nil {
		return d.failure(ToolWeeklyReport, err)
	}

	report, err := d.WeeklyReport(ctx, args)
	if err != nil {
		return d.failure(ToolWeeklyReport, err)
	}
	return d.result(report)
}

func (d *Dispatcher) handleDetailedReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	args := DetailedReportArgs{Page: req.GetInt("page", 1)}
	var err error
	if args.WorkspaceID, err = requireWorkspaceID(req); err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	if args.Since, err = requireString(req, "since"); err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	if args.Until, err = requireString(req, "until"); err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	if err = validateRange(args.Since, args.Until); err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	if args.Page < 1 {
		return d.failure(ToolDetailedReport, errortypes.InvalidArguments(
			fmt.Errorf("page %d is not positive", args.Page), "invalid page"))
	}
	if args.ProjectIDs, err = parseIDList(req.GetString("project_ids", ""), "project_ids"); err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	if args.UserIDs, err = parseIDList(req.GetString("user_ids", ""), "user_ids"); err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	if args.TagIDs, err = parseIDList(req.GetString("tag_ids", ""), "tag_ids"); err != nil {
		return d.failure(ToolDetailedReport, err)
	}

	report, err := d.DetailedReport(ctx, args)
	if err != nil {
		return d.failure(ToolDetailedReport, err)
	}
	return d.result(report)
}

func (d *Dispatcher) handleSummaryReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	args := SummaryReportArgs{}
	var err error
	if args.WorkspaceID, err = requireWorkspaceID(req); err != nil {
		return d.failure(ToolSummaryReport, err)
	}
	if args.Since, err = requireString(req, "since"); err != nil {
		return d.failure(ToolSummaryReport, err)
	}
	if args.Until, err = requireString(req, "until"); err != nil {
		return d.failure(ToolSummaryReport, err)
	}
	if args.Grouping, err = requireString(req, "grouping"); err != nil {
		return d.failure(ToolSummaryReport, err)
	}
	if err = validateRange(args.Since, args.Until); err != nil {
		return d.failure(ToolSummaryReport, err)
	}
	if err = validateGrouping(args.Grouping); err != nil {
		return d.failure(ToolSummaryReport, err)
	}

	report, err := d.SummaryReport(ctx, args)
	if err != nil {
		return d.failure(ToolSummaryReport, err)
	}
	return d.result(report)
}

func (d *Dispatcher) handleWebhookSubscriptions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	workspaceID, err := requireWorkspaceID(req)
	if err != nil {
		return d.failure(ToolWebhookSubscriptions, err)
	}

	subs, err := d.WebhookSubscriptions(ctx, workspaceID)
	if err != nil {
		return d.failure(ToolWebhookSubscriptions, err)
	}
	return d.result(subs)
}

func (d *Dispatcher) handleProjectTrends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	args, err := insightArgs(req, true)
	if err != nil {
		return d.failure(ToolProjectsDataTrends, err)
	}

	trends, err := d.ProjectTrends(ctx, args)
	if err != nil {
		return d.failure(ToolProjectsDataTrends, err)
	}
	return d.result(trends)
}

func (d *Dispatcher) handleProfitabilityInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	args, err := insightArgs(req, false)
	if err != nil {
		return d.failure(ToolProfitabilityInsights, err)
	}

	records, err := d.ProfitabilityInsights(ctx, args)
	if err != nil {
		return d.failure(ToolProfitabilityInsights, err)
	}
	return d.result(records)
}

func (d *Dispatcher) handleRevenueInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d.countToolCall()

	args, err := insightArgs(req, false)
	if err != nil {
		return d.failure(ToolRevenueInsights, err)
	}

	records, err := d.RevenueInsights(ctx, args)
	if err != nil {
		return d.failure(ToolRevenueInsights, err)
	}
	return d.result(records)
}
