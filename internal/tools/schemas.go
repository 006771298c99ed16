// Package tools defines the invocable MCP tool surface: tool names,
// argument schemas, validation, and the dispatcher that maps invocations
// onto upstream calls and aggregation.
package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/domain"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

// Tool names. The set is closed; it is the wire contract hosts depend on.
const (
	ToolWeeklyReport          = "get_weekly_report"
	ToolDetailedReport        = "get_detailed_report"
	ToolSummaryReport         = "get_summary_report"
	ToolWebhookSubscriptions  = "get_webhook_subscriptions"
	ToolProjectsDataTrends    = "get_projects_data_trends"
	ToolProfitabilityInsights = "get_profitability_insights"
	ToolRevenueInsights       = "get_revenue_insights"
)

// Summary report grouping dimensions.
const (
	GroupingProjects = "projects"
	GroupingClients  = "clients"
	GroupingUsers    = "users"
)

// DateFormat is the wire format for report and insight date arguments.
const DateFormat = "2006-01-02"

// WeeklyReportArgs are the validated arguments of get_weekly_report.
type WeeklyReportArgs struct {
	WorkspaceID int64
	Since       string
	Until       string
}

// DetailedReportArgs are the validated arguments of get_detailed_report.
type DetailedReportArgs struct {
	WorkspaceID int64
	Since       string
	Until       string
	Page        int
	ProjectIDs  []int64
	UserIDs     []int64
	TagIDs      []int64
}

// SummaryReportArgs are the validated arguments of get_summary_report.
type SummaryReportArgs struct {
	WorkspaceID int64
	Since       string
	Until       string
	Grouping    string
}

// InsightArgs are the validated arguments shared by the insight tools.
type InsightArgs struct {
	WorkspaceID int64
	Period      domain.Period
	ProjectIDs  []int64
}

// parsePeriod validates a start/end date pair into a Period. An inverted
// range is InvalidArguments; no upstream call may be issued after a
// validation failure.
func parsePeriod(startDate, endDate string) (domain.Period, error) {
	start, err := parseDate(startDate, "start_date")
	if err != nil {
		return domain.Period{}, err
	}
	end, err := parseDate(endDate, "end_date")
	if err != nil {
		return domain.Period{}, err
	}
	if start.After(end) {
		return domain.Period{}, errortypes.InvalidArguments(
			fmt.Errorf("start_date %s is after end_date %s", startDate, endDate),
			"inverted date range")
	}
	return domain.Period{Start: start, End: end}, nil
}

// validateRange checks a since/until pair used by the report tools.
func validateRange(since, until string) error {
	start, err := parseDate(since, "since")
	if err != nil {
		return err
	}
	end, err := parseDate(until, "until")
	if err != nil {
		return err
	}
	if start.After(end) {
		return errortypes.InvalidArguments(
			fmt.Errorf("since %s is after until %s", since, until),
			"inverted date range")
	}
	return nil
}

func parseDate(value, argName string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, errortypes.InvalidArguments(err, "unparsable date argument").
			WithField("argument", argName).
			WithField("value", value)
	}
	return t, nil
}

// parseIDList parses a comma-separated id list argument. Empty input is
// an empty filter, not an error.
func parseIDList(value, argName string) ([]int64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, errortypes.InvalidArguments(
				fmt.Errorf("%q is not a valid id", part),
				"unparsable id list argument").
				WithField("argument", argName)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// validateGrouping checks a summary report grouping dimension.
func validateGrouping(grouping string) error {
	switch grouping {
	case GroupingProjects, GroupingClients, GroupingUsers:
		return nil
	default:
		return errortypes.InvalidArguments(
			fmt.Errorf("unknown grouping %q", grouping),
			"invalid grouping dimension").
			WithField("allowed", []string{GroupingProjects, GroupingClients, GroupingUsers})
	}
}

// joinIDs renders an id list as the comma-separated form the Reports API
// expects in its filter parameters.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
