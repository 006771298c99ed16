package toggl

import (
	"fmt"
	"strings"
)

// Endpoints holds the base URLs of the upstream API families. The Track
// API serves entity reads, the Reports API serves computed reports, and
// the Webhooks API serves subscription listings.
type Endpoints struct {
	Track    string
	Reports  string
	Webhooks string
}

func join(base string, parts ...any) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, part := range parts {
		fmt.Fprintf(&b, "/%v", part)
	}
	return b.String()
}

// TrackURL builds a Track API v9 URL from path parts.
func (e Endpoints) TrackURL(parts ...any) string {
	return join(e.Track, parts...)
}

// ReportsURL builds a Reports API v2 URL from path parts.
func (e Endpoints) ReportsURL(parts ...any) string {
	return join(e.Reports, parts...)
}

// WebhooksURL builds a Webhooks API URL from path parts.
func (e Endpoints) WebhooksURL(parts ...any) string {
	return join(e.Webhooks, parts...)
}
