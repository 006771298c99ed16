// Package domain defines the canonical value records produced by
// normalization. All records are transient: they are owned by the request
// that produced them and never persisted.
package domain

import "time"

// RunningDuration is the sentinel duration Toggl reports for a time entry
// that is still running.
const RunningDuration int64 = -1

// Workspace is a top-level tenant grouping; every other entity is scoped
// to exactly one workspace.
type Workspace struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Premium           bool     `json:"premium"`
	DefaultHourlyRate *float64 `json:"default_hourly_rate,omitempty"`
	DefaultCurrency   string   `json:"default_currency,omitempty"`
}

// Client is a billing client within a workspace.
type Client struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
}

// Tag is a free-form label within a workspace.
type Tag struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
}

// Task is a unit of work under a project.
type Task struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
}

// Project is a workspace project. ClientID and Rate are nil when the
// project has no client or no hourly rate configured.
type Project struct {
	ID          int64    `json:"id"`
	WorkspaceID int64    `json:"workspace_id"`
	Name        string   `json:"name"`
	ClientID    *int64   `json:"client_id"`
	Billable    bool     `json:"billable"`
	Rate        *float64 `json:"rate"`
	Active      bool     `json:"active"`
}

// TimeEntry is a tracked span of work. DurationSeconds is RunningDuration
// while the entry is still running; Start is always UTC.
type TimeEntry struct {
	ID              int64     `json:"id"`
	WorkspaceID     int64     `json:"workspace_id"`
	ProjectID       *int64    `json:"project_id"`
	TaskID          *int64    `json:"task_id"`
	Tags            []string  `json:"tags"`
	Start           time.Time `json:"start"`
	DurationSeconds int64     `json:"duration_seconds"`
	Description     string    `json:"description"`
	Billable        bool      `json:"billable"`
}

// Running reports whether the entry is still being tracked.
func (e TimeEntry) Running() bool {
	return e.DurationSeconds == RunningDuration
}

// CurrentTimeEntry is the result of resolving time_entries://current.
// When nothing is running, Running is false and Entry is nil; this is a
// valid result, not an error.
type CurrentTimeEntry struct {
	Running bool       `json:"running"`
	Entry   *TimeEntry `json:"entry,omitempty"`
}

// User is the authenticated account or a workspace member.
type User struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id,omitempty"`
}

// WebhookSubscription is a configured webhook on a workspace. Listed
// read-only; this system never creates or modifies subscriptions.
type WebhookSubscription struct {
	SubscriptionID int64    `json:"subscription_id"`
	WorkspaceID    int64    `json:"workspace_id"`
	URLCallback    string   `json:"url_callback"`
	Description    string   `json:"description"`
	Enabled        bool     `json:"enabled"`
	Events         []string `json:"events,omitempty"`
}
