package normalize

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
)

func TestProjectDefaults(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 7,
		"workspace_id": 1,
		"name": "Anvil",
		"billable": true,
		"active": true
	}`)

	project, err := Project(raw)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if project.ClientID != nil {
		t.Errorf("ClientID = %v, want explicit nil for missing client", *project.ClientID)
	}
	if project.Rate != nil {
		t.Errorf("Rate = %v, want nil for missing rate", *project.Rate)
	}
	if !project.Billable || !project.Active {
		t.Errorf("flags = billable %v active %v, want both true", project.Billable, project.Active)
	}
}

func TestProjectLegacyFieldAliases(t *testing.T) {
	raw := json.RawMessage(`{"id": 7, "wid": 3, "cid": 9, "name": "Anvil"}`)

	project, err := Project(raw)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if project.WorkspaceID != 3 {
		t.Errorf("WorkspaceID = %d, want 3 from wid alias", project.WorkspaceID)
	}
	if project.ClientID == nil || *project.ClientID != 9 {
		t.Errorf("ClientID = %v, want 9 from cid alias", project.ClientID)
	}
}

func TestProjectMissingID(t *testing.T) {
	_, err := Project(json.RawMessage(`{"name": "Anvil"}`))
	if !errortypes.IsMalformedPayload(err) {
		t.Errorf("Project() error = %v, want malformed payload", err)
	}
}

func TestProjectIncompatibleType(t *testing.T) {
	_, err := Project(json.RawMessage(`{"id": "seven", "name": "Anvil"}`))
	if !errortypes.IsMalformedPayload(err) {
		t.Errorf("Project() error = %v, want malformed payload", err)
	}
}

func TestDataEnvelopeUnwrap(t *testing.T) {
	raw := json.RawMessage(`{"data": {"id": 4, "wid": 1, "name": "Acme"}}`)

	client, err := Client(raw)
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	if client.ID != 4 || client.Name != "Acme" {
		t.Errorf("Client() = %+v, want id 4 name Acme", client)
	}
}

func TestTimeEntryTimestampToUTC(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 11,
		"workspace_id": 1,
		"start": "2024-03-09T10:30:00+02:00",
		"duration": 3600,
		"description": "refactor",
		"billable": true
	}`)

	entry, err := TimeEntry(raw)
	if err != nil {
		t.Fatalf("TimeEntry() error = %v", err)
	}
	want := time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)
	if !entry.Start.Equal(want) || entry.Start.Location() != time.UTC {
		t.Errorf("Start = %v, want %v in UTC", entry.Start, want)
	}
	if entry.DurationSeconds != 3600 {
		t.Errorf("DurationSeconds = %d, want 3600", entry.DurationSeconds)
	}
}

func TestTimeEntryRunningSentinel(t *testing.T) {
	// Toggl encodes running entries as negative durations; any negative
	// value normalizes to the single sentinel.
	raw := json.RawMessage(`{
		"id": 11,
		"workspace_id": 1,
		"start": "2024-03-09T10:30:00Z",
		"duration": -1709987400
	}`)

	entry, err := TimeEntry(raw)
	if err != nil {
		t.Fatalf("TimeEntry() error = %v", err)
	}
	if !entry.Running() {
		t.Errorf("Running() = false, want true for negative duration")
	}
}

func TestTimeEntryBadTimestamp(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "unparsable start",
			raw:  `{"id": 11, "workspace_id": 1, "start": "yesterday", "duration": 10}`,
		},
		{
			name: "missing start",
			raw:  `{"id": 11, "workspace_id": 1, "duration": 10}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TimeEntry(json.RawMessage(tt.raw))
			if !errortypes.IsMalformedPayload(err) {
				t.Errorf("TimeEntry() error = %v, want malformed payload", err)
			}
		})
	}
}

func TestTimeEntriesCollection(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": 1, "wid": 1, "start": "2024-03-09T08:00:00Z", "duration": 600, "tags": ["deep-work"]},
		{"id": 2, "wid": 1, "start": "2024-03-09T09:00:00Z", "duration": 1200, "project_id": 7}
	]`)

	entries, err := TimeEntries(raw)
	if err != nil {
		t.Fatalf("TimeEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("TimeEntries() returned %d entries, want 2", len(entries))
	}
	if entries[0].Tags[0] != "deep-work" {
		t.Errorf("Tags = %v, want [deep-work]", entries[0].Tags)
	}
	if entries[1].ProjectID == nil || *entries[1].ProjectID != 7 {
		t.Errorf("ProjectID = %v, want 7", entries[1].ProjectID)
	}
}

func TestCurrentTimeEntry(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantRunning bool
	}{
		{name: "nothing running", raw: `null`, wantRunning: false},
		{name: "empty body", raw: ``, wantRunning: false},
		{
			name:        "running entry",
			raw:         `{"id": 5, "workspace_id": 1, "start": "2024-03-09T08:00:00Z", "duration": -1}`,
			wantRunning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := CurrentTimeEntry(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("CurrentTimeEntry() error = %v", err)
			}
			if current.Running != tt.wantRunning {
				t.Errorf("Running = %v, want %v", current.Running, tt.wantRunning)
			}
			if tt.wantRunning && current.Entry == nil {
				t.Error("Entry = nil for a running entry")
			}
			if !tt.wantRunning && current.Entry != nil {
				t.Errorf("Entry = %+v, want nil when nothing is running", current.Entry)
			}
		})
	}
}

// Round-trip: a normalizer output re-encoded and re-validated never
// raises MalformedPayload; the canonical shape is self-consistent.
func TestNormalizerRoundTrip(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 7,
		"workspace_id": 1,
		"name": "Anvil",
		"client_id": 9,
		"rate": 50,
		"billable": true,
		"active": true
	}`)

	first, err := Project(raw)
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	reencoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	second, err := Project(reencoded)
	if err != nil {
		t.Fatalf("Project() round-trip error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip mismatch: %+v vs %+v", first, second)
	}
}

func TestWorkspaces(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": 1, "name": "Personal", "premium": false},
		{"id": 2, "name": "Agency", "premium": true, "default_hourly_rate": 80, "default_currency": "EUR"}
	]`)

	workspaces, err := Workspaces(raw)
	if err != nil {
		t.Fatalf("Workspaces() error = %v", err)
	}
	if len(workspaces) != 2 {
		t.Fatalf("Workspaces() returned %d, want 2", len(workspaces))
	}
	if workspaces[1].DefaultHourlyRate == nil || *workspaces[1].DefaultHourlyRate != 80 {
		t.Errorf("DefaultHourlyRate = %v, want 80", workspaces[1].DefaultHourlyRate)
	}
}

func TestUserLegacyDefaultWID(t *testing.T) {
	user, err := User(json.RawMessage(`{"id": 3, "email": "a@b.c", "fullname": "Ada", "default_wid": 5}`))
	if err != nil {
		t.Fatalf("User() error = %v", err)
	}
	if user.DefaultWorkspaceID != 5 {
		t.Errorf("DefaultWorkspaceID = %d, want 5 from default_wid alias", user.DefaultWorkspaceID)
	}
}

func TestWebhookSubscriptions(t *testing.T) {
	raw := json.RawMessage(`[
		{"subscription_id": 12, "workspace_id": 1, "url_callback": "https://example.test/hook", "enabled": true, "event_filters": ["time_entry.created"]}
	]`)

	subs, err := WebhookSubscriptions(raw)
	if err != nil {
		t.Fatalf("WebhookSubscriptions() error = %v", err)
	}
	if len(subs) != 1 || subs[0].SubscriptionID != 12 || !subs[0].Enabled {
		t.Errorf("WebhookSubscriptions() = %+v, want one enabled subscription 12", subs)
	}
}
