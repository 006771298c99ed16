// Package normalize converts raw upstream payloads into the canonical
// domain records. All functions are pure: identical input yields identical
// output. A required field that is absent or type-incompatible is a
// MalformedPayload failure; upstream never self-heals a malformed shape,
// so these are surfaced immediately and never retried.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/domain"
	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

// unwrapEnvelope strips the {"data": ...} envelope older API responses put
// around singleton entities. Payloads without the envelope pass through.
func unwrapEnvelope(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}

func decode(raw json.RawMessage, kind string, into any) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return errortypes.MalformedPayload(err, "failed to decode upstream payload").
			WithField("entity", kind)
	}
	return nil
}

func requireID(id int64, kind string) error {
	if id == 0 {
		return errortypes.MalformedPayload(
			fmt.Errorf("missing id in %s payload", kind),
			"upstream payload missing required field").
			WithField("entity", kind)
	}
	return nil
}

type rawWorkspace struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Premium           bool     `json:"premium"`
	DefaultHourlyRate *float64 `json:"default_hourly_rate"`
	DefaultCurrency   string   `json:"default_currency"`
}

func (r rawWorkspace) toDomain() domain.Workspace {
	return domain.Workspace{
		ID:                r.ID,
		Name:              r.Name,
		Premium:           r.Premium,
		DefaultHourlyRate: r.DefaultHourlyRate,
		DefaultCurrency:   r.DefaultCurrency,
	}
}

// Workspace normalizes a single workspace payload.
func Workspace(raw json.RawMessage) (domain.Workspace, error) {
	var r rawWorkspace
	if err := decode(unwrapEnvelope(raw), "workspace", &r); err != nil {
		return domain.Workspace{}, err
	}
	if err := requireID(r.ID, "workspace"); err != nil {
		return domain.Workspace{}, err
	}
	return r.toDomain(), nil
}

// Workspaces normalizes a workspace collection payload.
func Workspaces(raw json.RawMessage) ([]domain.Workspace, error) {
	var rs []rawWorkspace
	if err := decode(unwrapEnvelope(raw), "workspaces", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.Workspace, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "workspace"); err != nil {
			return nil, err
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

type rawClient struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	WID2        int64  `json:"workspace_id"`
	Name        string `json:"name"`
}

func (r rawClient) toDomain() domain.Client {
	wid := r.WorkspaceID
	if wid == 0 {
		wid = r.WID2
	}
	return domain.Client{ID: r.ID, WorkspaceID: wid, Name: r.Name}
}

// Client normalizes a single client payload.
func Client(raw json.RawMessage) (domain.Client, error) {
	var r rawClient
	if err := decode(unwrapEnvelope(raw), "client", &r); err != nil {
		return domain.Client{}, err
	}
	if err := requireID(r.ID, "client"); err != nil {
		return domain.Client{}, err
	}
	return r.toDomain(), nil
}

// Clients normalizes a client collection payload.
func Clients(raw json.RawMessage) ([]domain.Client, error) {
	var rs []rawClient
	if err := decode(unwrapEnvelope(raw), "clients", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "client"); err != nil {
			return nil, err
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

type rawTag struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	WID2        int64  `json:"workspace_id"`
	Name        string `json:"name"`
}

func (r rawTag) toDomain() domain.Tag {
	wid := r.WorkspaceID
	if wid == 0 {
		wid = r.WID2
	}
	return domain.Tag{ID: r.ID, WorkspaceID: wid, Name: r.Name}
}

// Tag normalizes a single tag payload.
func Tag(raw json.RawMessage) (domain.Tag, error) {
	var r rawTag
	if err := decode(unwrapEnvelope(raw), "tag", &r); err != nil {
		return domain.Tag{}, err
	}
	if err := requireID(r.ID, "tag"); err != nil {
		return domain.Tag{}, err
	}
	return r.toDomain(), nil
}

// Tags normalizes a tag collection payload.
func Tags(raw json.RawMessage) ([]domain.Tag, error) {
	var rs []rawTag
	if err := decode(unwrapEnvelope(raw), "tags", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.Tag, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "tag"); err != nil {
			return nil, err
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

type rawTask struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	WID2        int64  `json:"workspace_id"`
	ProjectID   int64  `json:"pid"`
	PID2        int64  `json:"project_id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
}

func (r rawTask) toDomain() domain.Task {
	wid := r.WorkspaceID
	if wid == 0 {
		wid = r.WID2
	}
	pid := r.ProjectID
	if pid == 0 {
		pid = r.PID2
	}
	return domain.Task{ID: r.ID, WorkspaceID: wid, ProjectID: pid, Name: r.Name, Active: r.Active}
}

// Task normalizes a single task payload.
func Task(raw json.RawMessage) (domain.Task, error) {
	var r rawTask
	if err := decode(unwrapEnvelope(raw), "task", &r); err != nil {
		return domain.Task{}, err
	}
	if err := requireID(r.ID, "task"); err != nil {
		return domain.Task{}, err
	}
	return r.toDomain(), nil
}

// Tasks normalizes a task collection payload.
func Tasks(raw json.RawMessage) ([]domain.Task, error) {
	var rs []rawTask
	if err := decode(unwrapEnvelope(raw), "tasks", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "task"); err != nil {
			return nil, err
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

type rawProject struct {
	ID          int64    `json:"id"`
	WorkspaceID int64    `json:"workspace_id"`
	WID2        int64    `json:"wid"`
	Name        string   `json:"name"`
	ClientID    *int64   `json:"client_id"`
	CID2        *int64   `json:"cid"`
	Billable    bool     `json:"billable"`
	Rate        *float64 `json:"rate"`
	Active      bool     `json:"active"`
}

func (r rawProject) toDomain() domain.Project {
	wid := r.WorkspaceID
	if wid == 0 {
		wid = r.WID2
	}
	// Missing client stays an explicit nil, not an absent field.
	clientID := r.ClientID
	if clientID == nil {
		clientID = r.CID2
	}
	return domain.Project{
		ID:          r.ID,
		WorkspaceID: wid,
		Name:        r.Name,
		ClientID:    clientID,
		Billable:    r.Billable,
		Rate:        r.Rate,
		Active:      r.Active,
	}
}

// Project normalizes a single project payload.
func Project(raw json.RawMessage) (domain.Project, error) {
	var r rawProject
	if err := decode(unwrapEnvelope(raw), "project", &r); err != nil {
		return domain.Project{}, err
	}
	if err := requireID(r.ID, "project"); err != nil {
		return domain.Project{}, err
	}
	return r.toDomain(), nil
}

// Projects normalizes a project collection payload.
func Projects(raw json.RawMessage) ([]domain.Project, error) {
	var rs []rawProject
	if err := decode(unwrapEnvelope(raw), "projects", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "project"); err != nil {
			return nil, err
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

type rawTimeEntry struct {
	ID          int64    `json:"id"`
	WorkspaceID int64    `json:"workspace_id"`
	WID2        int64    `json:"wid"`
	ProjectID   *int64   `json:"project_id"`
	PID2        *int64   `json:"pid"`
	TaskID      *int64   `json:"task_id"`
	Tags        []string `json:"tags"`
	Start       string   `json:"start"`
	Duration    int64    `json:"duration"`
	Description string   `json:"description"`
	Billable    bool     `json:"billable"`
}

func (r rawTimeEntry) toDomain() (domain.TimeEntry, error) {
	start, err := parseTimestamp(r.Start)
	if err != nil {
		return domain.TimeEntry{}, errortypes.MalformedPayload(err, "unparsable time entry start").
			WithField("entity", "time_entry").
			WithField("id", r.ID)
	}
	wid := r.WorkspaceID
	if wid == 0 {
		wid = r.WID2
	}
	projectID := r.ProjectID
	if projectID == nil {
		projectID = r.PID2
	}
	duration := r.Duration
	if duration < 0 {
		// Any negative duration means the entry is running.
		duration = domain.RunningDuration
	}
	return domain.TimeEntry{
		ID:              r.ID,
		WorkspaceID:     wid,
		ProjectID:       projectID,
		TaskID:          r.TaskID,
		Tags:            r.Tags,
		Start:           start,
		DurationSeconds: duration,
		Description:     r.Description,
		Billable:        r.Billable,
	}, nil
}

// TimeEntry normalizes a single time entry payload.
func TimeEntry(raw json.RawMessage) (domain.TimeEntry, error) {
	var r rawTimeEntry
	if err := decode(unwrapEnvelope(raw), "time_entry", &r); err != nil {
		return domain.TimeEntry{}, err
	}
	if err := requireID(r.ID, "time_entry"); err != nil {
		return domain.TimeEntry{}, err
	}
	return r.toDomain()
}

// TimeEntries normalizes a time entry collection payload.
func TimeEntries(raw json.RawMessage) ([]domain.TimeEntry, error) {
	var rs []rawTimeEntry
	if err := decode(unwrapEnvelope(raw), "time_entries", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "time_entry"); err != nil {
			return nil, err
		}
		entry, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// CurrentTimeEntry normalizes the time_entries/current payload. Upstream
// answers null when nothing is running; that is a valid no-running-entry
// result, not an error.
func CurrentTimeEntry(raw json.RawMessage) (domain.CurrentTimeEntry, error) {
	trimmed := bytes.TrimSpace(unwrapEnvelope(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.CurrentTimeEntry{Running: false}, nil
	}
	entry, err := TimeEntry(trimmed)
	if err != nil {
		return domain.CurrentTimeEntry{}, err
	}
	return domain.CurrentTimeEntry{Running: true, Entry: &entry}, nil
}

type rawUser struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Fullname           string `json:"fullname"`
	DefaultWorkspaceID int64  `json:"default_workspace_id"`
	DefaultWID2        int64  `json:"default_wid"`
}

func (r rawUser) toDomain() domain.User {
	wid := r.DefaultWorkspaceID
	if wid == 0 {
		wid = r.DefaultWID2
	}
	return domain.User{
		ID:                 r.ID,
		Email:              r.Email,
		Fullname:           r.Fullname,
		DefaultWorkspaceID: wid,
	}
}

// User normalizes the authenticated user payload.
func User(raw json.RawMessage) (domain.User, error) {
	var r rawUser
	if err := decode(unwrapEnvelope(raw), "user", &r); err != nil {
		return domain.User{}, err
	}
	if err := requireID(r.ID, "user"); err != nil {
		return domain.User{}, err
	}
	return r.toDomain(), nil
}

// Users normalizes a workspace user listing.
func Users(raw json.RawMessage) ([]domain.User, error) {
	var rs []rawUser
	if err := decode(unwrapEnvelope(raw), "users", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.ID, "user"); err != nil {
			return nil, err
		}
		out = append(out, r.toDomain())
	}
	return out, nil
}

// WebhookSubscriptions normalizes a webhook subscription listing.
func WebhookSubscriptions(raw json.RawMessage) ([]domain.WebhookSubscription, error) {
	var rs []struct {
		SubscriptionID int64    `json:"subscription_id"`
		WorkspaceID    int64    `json:"workspace_id"`
		URLCallback    string   `json:"url_callback"`
		Description    string   `json:"description"`
		Enabled        bool     `json:"enabled"`
		Events         []string `json:"event_filters"`
	}
	if err := decode(unwrapEnvelope(raw), "webhook_subscriptions", &rs); err != nil {
		return nil, err
	}
	out := make([]domain.WebhookSubscription, 0, len(rs))
	for _, r := range rs {
		if err := requireID(r.SubscriptionID, "webhook_subscription"); err != nil {
			return nil, err
		}
		out = append(out, domain.WebhookSubscription{
			SubscriptionID: r.SubscriptionID,
			WorkspaceID:    r.WorkspaceID,
			URLCallback:    r.URLCallback,
			Description:    r.Description,
			Enabled:        r.Enabled,
			Events:         r.Events,
		})
	}
	return out, nil
}

// parseTimestamp parses an upstream timestamp into UTC. Upstream emits
// RFC3339 with and without sub-second precision.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
