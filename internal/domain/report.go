package domain

import "time"

// Period is an inclusive date range. Both bounds are midnight-UTC dates.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Length returns the period length. A single-day period has length one day.
func (p Period) Length() time.Duration {
	return p.End.Sub(p.Start) + 24*time.Hour
}

// Previous returns the equal-length period immediately preceding p.
func (p Period) Previous() Period {
	length := p.Length()
	return Period{
		Start: p.Start.Add(-length),
		End:   p.End.Add(-length),
	}
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End.Add(24*time.Hour))
}

// DayTotal is one day's bucket within a weekly report.
type DayTotal struct {
	Date         string `json:"date"`
	TotalSeconds int64  `json:"total_seconds"`
}

// WeeklyReport groups tracked time by day over a report range.
type WeeklyReport struct {
	WorkspaceID  int64      `json:"workspace_id"`
	Since        string     `json:"since"`
	Until        string     `json:"until"`
	TotalSeconds int64      `json:"total_seconds"`
	Days         []DayTotal `json:"days"`
}

// ReportEntry is one row of a detailed report.
type ReportEntry struct {
	ID              int64     `json:"id"`
	Description     string    `json:"description"`
	ProjectName     string    `json:"project,omitempty"`
	UserName        string    `json:"user,omitempty"`
	Start           time.Time `json:"start"`
	DurationSeconds int64     `json:"duration_seconds"`
	Billable        bool      `json:"billable"`
	Tags            []string  `json:"tags,omitempty"`
}

// DetailedReport is a paged per-entry report.
type DetailedReport struct {
	WorkspaceID  int64         `json:"workspace_id"`
	Since        string        `json:"since"`
	Until        string        `json:"until"`
	TotalSeconds int64         `json:"total_seconds"`
	TotalCount   int           `json:"total_count"`
	PerPage      int           `json:"per_page"`
	Page         int           `json:"page"`
	Entries      []ReportEntry `json:"entries"`
}

// SummaryGroup is one aggregation bucket of a summary report.
type SummaryGroup struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	TotalSeconds int64  `json:"total_seconds"`
}

// SummaryReport aggregates tracked time per grouping dimension.
type SummaryReport struct {
	WorkspaceID  int64          `json:"workspace_id"`
	Since        string         `json:"since"`
	Until        string         `json:"until"`
	Grouping     string         `json:"grouping"`
	TotalSeconds int64          `json:"total_seconds"`
	Groups       []SummaryGroup `json:"groups"`
}
