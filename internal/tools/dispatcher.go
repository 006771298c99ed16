package tools

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/wolkwork/toggl-mcp/internal/domain"
	"github.com/wolkwork/toggl-mcp/internal/insights"
	"github.com/wolkwork/toggl-mcp/internal/normalize"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
	"github.com/wolkwork/toggl-mcp/internal/toggl"
)

// Dispatcher executes validated tool invocations: one or more upstream
// calls, a normalizer pass, and for the insight tools a trip through the
// aggregator. Arguments are validated by the callers in register.go
// before any Dispatcher method runs.
type Dispatcher struct {
	caller    toggl.Caller
	endpoints toggl.Endpoints
	userAgent string
	costRate  float64
	metrics   *telemetry.MetricsCollector
	log       *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given upstream caller.
// costRate is the hourly cost rate used for profitability margins.
func NewDispatcher(caller toggl.Caller, endpoints toggl.Endpoints, userAgent string, costRate float64, metrics *telemetry.MetricsCollector, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		caller:    caller,
		endpoints: endpoints,
		userAgent: userAgent,
		costRate:  costRate,
		metrics:   metrics,
		log:       log,
	}
}

// reportQuery builds the parameter set every Reports API call carries.
func (d *Dispatcher) reportQuery(workspaceID int64, since, until string) url.Values {
	q := url.Values{}
	q.Set("workspace_id", strconv.FormatInt(workspaceID, 10))
	q.Set("user_agent", d.userAgent)
	q.Set("since", since)
	q.Set("until", until)
	return q
}

// WeeklyReport fetches the weekly report grouped by day.
func (d *Dispatcher) WeeklyReport(ctx context.Context, args WeeklyReportArgs) (domain.WeeklyReport, error) {
	raw, err := d.caller.Get(ctx, d.endpoints.ReportsURL("weekly"),
		d.reportQuery(args.WorkspaceID, args.Since, args.Until))
	if err != nil {
		return domain.WeeklyReport{}, err
	}
	return normalize.WeeklyReport(raw, args.WorkspaceID, args.Since, args.Until)
}

// DetailedReport fetches one page of per-entry report detail.
func (d *Dispatcher) DetailedReport(ctx context.Context, args DetailedReportArgs) (domain.DetailedReport, error) {
	q := d.reportQuery(args.WorkspaceID, args.Since, args.Until)
	q.Set("page", strconv.Itoa(args.Page))
	if len(args.ProjectIDs) > 0 {
		q.Set("project_ids", joinIDs(args.ProjectIDs))
	}
	if len(args.UserIDs) > 0 {
		q.Set("user_ids", joinIDs(args.UserIDs))
	}
	if len(args.TagIDs) > 0 {
		q.Set("tag_ids", joinIDs(args.TagIDs))
	}

	raw, err := d.caller.Get(ctx, d.endpoints.ReportsURL("details"), q)
	if err != nil {
		return domain.DetailedReport{}, err
	}
	return normalize.DetailedReport(raw, args.WorkspaceID, args.Since, args.Until, args.Page)
}

// SummaryReport fetches tracked time aggregated per grouping dimension.
func (d *Dispatcher) SummaryReport(ctx context.Context, args SummaryReportArgs) (domain.SummaryReport, error) {
	q := d.reportQuery(args.WorkspaceID, args.Since, args.Until)
	q.Set("grouping", args.Grouping)

	raw, err := d.caller.Get(ctx, d.endpoints.ReportsURL("summary"), q)
	if err != nil {
		return domain.SummaryReport{}, err
	}
	return normalize.SummaryReport(raw, args.WorkspaceID, args.Since, args.Until, args.Grouping)
}

// WebhookSubscriptions lists the workspace's configured webhook
// subscriptions. Read-only: this server never mutates subscriptions.
func (d *Dispatcher) WebhookSubscriptions(ctx context.Context, workspaceID int64) ([]domain.WebhookSubscription, error) {
	q := url.Values{}
	q.Set("user_agent", d.userAgent)

	raw, err := d.caller.Get(ctx, d.endpoints.WebhooksURL("subscriptions", workspaceID), q)
	if err != nil {
		return nil, err
	}
	return normalize.WebhookSubscriptions(raw)
}

// ProjectTrends computes per-project tracked-time trends over the period
// against the immediately-preceding period.
func (d *Dispatcher) ProjectTrends(ctx context.Context, args InsightArgs) ([]domain.Insight, error) {
	entries, projects, err := d.insightInputs(ctx, args)
	if err != nil {
		return nil, err
	}
	return insights.Trends(entries, projects, args.Period, args.ProjectIDs), nil
}

// ProfitabilityInsights computes per-project revenue, cost and margin
// over the period. Requires project hourly rate data; projects without a
// rate report zero revenue.
func (d *Dispatcher) ProfitabilityInsights(ctx context.Context, args InsightArgs) ([]domain.Profitability, error) {
	entries, projects, err := d.insightInputs(ctx, args)
	if err != nil {
		return nil, err
	}
	return insights.Profitability(entries, projects, args.Period, d.costRate), nil
}

// RevenueInsights computes per-project revenue over the period against
// the immediately-preceding period.
func (d *Dispatcher) RevenueInsights(ctx context.Context, args InsightArgs) ([]domain.Insight, error) {
	entries, projects, err := d.insightInputs(ctx, args)
	if err != nil {
		return nil, err
	}
	return insights.Revenue(entries, projects, args.Period), nil
}

// insightInputs fetches the aggregator's inputs: the workspace project
// list and the time entries spanning the requested period plus the
// equal-length prior period needed for trend comparison. Entries outside
// the requested workspace are dropped.
func (d *Dispatcher) insightInputs(ctx context.Context, args InsightArgs) ([]domain.TimeEntry, []domain.Project, error) {
	rawProjects, err := d.caller.Get(ctx,
		d.endpoints.TrackURL("workspaces", args.WorkspaceID, "projects"),
		url.Values{"active": []string{"true"}})
	if err != nil {
		return nil, nil, err
	}
	projects, err := normalize.Projects(rawProjects)
	if err != nil {
		return nil, nil, err
	}

	fetchFrom := args.Period.Previous().Start
	fetchUntil := args.Period.End.AddDate(0, 0, 1) // end_date is exclusive upstream

	q := url.Values{}
	q.Set("start_date", fetchFrom.Format(DateFormat))
	q.Set("end_date", fetchUntil.Format(DateFormat))

	rawEntries, err := d.caller.Get(ctx, d.endpoints.TrackURL("me", "time_entries"), q)
	if err != nil {
		return nil, nil, err
	}
	entries, err := normalize.TimeEntries(rawEntries)
	if err != nil {
		return nil, nil, err
	}

	scoped := entries[:0]
	for _, entry := range entries {
		if entry.WorkspaceID == args.WorkspaceID {
			scoped = append(scoped, entry)
		}
	}
	return scoped, projects, nil
}
