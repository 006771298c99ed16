package normalize

import (
	"encoding/json"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/domain"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

// The Reports API reports durations in milliseconds; canonical records
// carry seconds.
func msToSeconds(ms int64) int64 {
	return ms / 1000
}

// reportTitle is the polymorphic "title" object the Reports API attaches
// to grouped rows; exactly one of the fields is set depending on the
// grouping dimension.
type reportTitle struct {
	Project string `json:"project"`
	Client  string `json:"client"`
	User    string `json:"user"`
}

func (t reportTitle) label() string {
	switch {
	case t.Project != "":
		return t.Project
	case t.Client != "":
		return t.Client
	default:
		return t.User
	}
}

// WeeklyReport normalizes a Reports v2 weekly payload into per-day
// buckets. since is the first day of the report range; week_totals carries
// seven day totals plus a grand total in its final slot.
func WeeklyReport(raw json.RawMessage, workspaceID int64, since, until string) (domain.WeeklyReport, error) {
	var r struct {
		TotalGrand int64   `json:"total_grand"`
		WeekTotals []int64 `json:"week_totals"`
	}
	if err := decode(raw, "weekly_report", &r); err != nil {
		return domain.WeeklyReport{}, err
	}

	report := domain.WeeklyReport{
		WorkspaceID:  workspaceID,
		Since:        since,
		Until:        until,
		TotalSeconds: msToSeconds(r.TotalGrand),
	}

	start, err := time.Parse("2006-01-02", since)
	if err != nil {
		return domain.WeeklyReport{}, errortypes.MalformedPayload(err, "unparsable report start date").
			WithField("since", since)
	}

	totals := r.WeekTotals
	if len(totals) > 7 {
		// Final slot is the week's grand total, not a day.
		totals = totals[:7]
	}
	for i, ms := range totals {
		report.Days = append(report.Days, domain.DayTotal{
			Date:         start.AddDate(0, 0, i).Format("2006-01-02"),
			TotalSeconds: msToSeconds(ms),
		})
	}
	return report, nil
}

// DetailedReport normalizes a Reports v2 details payload.
func DetailedReport(raw json.RawMessage, workspaceID int64, since, until string, page int) (domain.DetailedReport, error) {
	var r struct {
		TotalGrand int64 `json:"total_grand"`
		TotalCount int   `json:"total_count"`
		PerPage    int   `json:"per_page"`
		Data       []struct {
			ID          int64    `json:"id"`
			Description string   `json:"description"`
			Project     string   `json:"project"`
			User        string   `json:"user"`
			Start       string   `json:"start"`
			Dur         int64    `json:"dur"`
			IsBillable  bool     `json:"is_billable"`
			Tags        []string `json:"tags"`
		} `json:"data"`
	}
	if err := decode(raw, "detailed_report", &r); err != nil {
		return domain.DetailedReport{}, err
	}

	report := domain.DetailedReport{
		WorkspaceID:  workspaceID,
		Since:        since,
		Until:        until,
		TotalSeconds: msToSeconds(r.TotalGrand),
		TotalCount:   r.TotalCount,
		PerPage:      r.PerPage,
		Page:         page,
		Entries:      make([]domain.ReportEntry, 0, len(r.Data)),
	}
	for _, row := range r.Data {
		if err := requireID(row.ID, "report_entry"); err != nil {
			return domain.DetailedReport{}, err
		}
		start, err := parseTimestamp(row.Start)
		if err != nil {
			return domain.DetailedReport{}, errortypes.MalformedPayload(err, "unparsable report entry start").
				WithField("id", row.ID)
		}
		report.Entries = append(report.Entries, domain.ReportEntry{
			ID:              row.ID,
			Description:     row.Description,
			ProjectName:     row.Project,
			UserName:        row.User,
			Start:           start,
			DurationSeconds: msToSeconds(row.Dur),
			Billable:        row.IsBillable,
			Tags:            row.Tags,
		})
	}
	return report, nil
}

// SummaryReport normalizes a Reports v2 summary payload.
func SummaryReport(raw json.RawMessage, workspaceID int64, since, until, grouping string) (domain.SummaryReport, error) {
	var r struct {
		TotalGrand int64 `json:"total_grand"`
		Data       []struct {
			ID    *int64      `json:"id"`
			Title reportTitle `json:"title"`
			Time  int64       `json:"time"`
		} `json:"data"`
	}
	if err := decode(raw, "summary_report", &r); err != nil {
		return domain.SummaryReport{}, err
	}

	report := domain.SummaryReport{
		WorkspaceID:  workspaceID,
		Since:        since,
		Until:        until,
		Grouping:     grouping,
		TotalSeconds: msToSeconds(r.TotalGrand),
		Groups:       make([]domain.SummaryGroup, 0, len(r.Data)),
	}
	for _, row := range r.Data {
		group := domain.SummaryGroup{
			Title:        row.Title.label(),
			TotalSeconds: msToSeconds(row.Time),
		}
		// A nil id is the "no project"/"no client" bucket; keep it with
		// a zero id rather than dropping tracked time.
		if row.ID != nil {
			group.ID = *row.ID
		}
		report.Groups = append(report.Groups, group)
	}
	return report, nil
}
