// Package resources maps hierarchical resource URIs onto upstream API
// calls and exposes them as addressable MCP resources.
package resources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/wolkwork/toggl-mcp/internal/errortypes"
	"github.com/wolkwork/toggl-mcp/internal/normalize"
	"github.com/wolkwork/toggl-mcp/internal/telemetry"
	"github.com/wolkwork/toggl-mcp/internal/toggl"
)

// Resource URI schemes. The set is closed: anything else is NotFound.
const (
	SchemeMe          = "me"
	SchemeWorkspaces  = "workspaces"
	SchemeTimeEntries = "time_entries"
	SchemeProjects    = "projects"
	SchemeClients     = "clients"
	SchemeTags        = "tags"
	SchemeTasks       = "tasks"
)

// Workspace sub-collections.
const (
	SubUsers    = "users"
	SubClients  = "clients"
	SubProjects = "projects"
	SubTasks    = "tasks"
	SubTags     = "tags"
)

// Resolver turns a resource URI into exactly one upstream call followed
// by one normalizer pass.
type Resolver struct {
	caller    toggl.Caller
	endpoints toggl.Endpoints
	metrics   *telemetry.MetricsCollector
	log       *slog.Logger

	dispatch map[string]func(ctx context.Context, segments []string) (any, error)
}

// NewResolver creates a Resolver over the given upstream caller.
func NewResolver(caller toggl.Caller, endpoints toggl.Endpoints, metrics *telemetry.MetricsCollector, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	r := &Resolver{
		caller:    caller,
		endpoints: endpoints,
		metrics:   metrics,
		log:       log,
	}
	r.dispatch = map[string]func(ctx context.Context, segments []string) (any, error){
		SchemeMe:          r.resolveMe,
		SchemeWorkspaces:  r.resolveWorkspaces,
		SchemeTimeEntries: r.resolveTimeEntries,
		SchemeProjects:    r.leafResolver("projects", func(raw []byte) (any, error) { return normalize.Project(raw) }),
		SchemeClients:     r.leafResolver("clients", func(raw []byte) (any, error) { return normalize.Client(raw) }),
		SchemeTags:        r.leafResolver("tags", func(raw []byte) (any, error) { return normalize.Tag(raw) }),
		SchemeTasks:       r.leafResolver("tasks", func(raw []byte) (any, error) { return normalize.Task(raw) }),
	}
	return r
}

// Resolve parses uri and dispatches it to its scheme handler. Unknown
// schemes are NotFound; URIs that cannot be parsed into the expected
// shape are InvalidIdentifier.
func (r *Resolver) Resolve(ctx context.Context, uri string) (any, error) {
	scheme, segments, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	handler, ok := r.dispatch[scheme]
	if !ok {
		return nil, errortypes.NotFound(
			fmt.Errorf("unknown resource scheme %q", scheme),
			"unrecognized resource").
			WithField("uri", uri)
	}

	if r.metrics != nil {
		r.metrics.IncrementCounter(telemetry.MetricResourceReads, 1)
	}
	r.log.Debug("resolving resource", "uri", uri)

	result, err := handler(ctx, segments)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseURI splits "scheme://a/b" into its scheme and path segments.
func parseURI(uri string) (string, []string, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return "", nil, errortypes.InvalidIdentifier(
			fmt.Errorf("missing scheme separator in %q", uri),
			"unparsable resource URI")
	}

	var segments []string
	for _, segment := range strings.Split(rest, "/") {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return scheme, segments, nil
}

func parseID(segment string) (int64, error) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, errortypes.InvalidIdentifier(
			fmt.Errorf("segment %q is not a valid id", segment),
			"unparsable resource id")
	}
	return id, nil
}

func (r *Resolver) resolveMe(ctx context.Context, segments []string) (any, error) {
	if len(segments) != 0 {
		return nil, errortypes.NotFound(
			fmt.Errorf("me has no sub-collections"),
			"unrecognized resource")
	}
	raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("me"), nil)
	if err != nil {
		return nil, err
	}
	return normalize.User(raw)
}

func (r *Resolver) resolveWorkspaces(ctx context.Context, segments []string) (any, error) {
	switch len(segments) {
	case 0:
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces"), nil)
		if err != nil {
			return nil, err
		}
		return normalize.Workspaces(raw)

	case 1:
		id, err := parseID(segments[0])
		if err != nil {
			return nil, err
		}
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces", id), nil)
		if err != nil {
			return nil, err
		}
		return normalize.Workspace(raw)

	case 2:
		id, err := parseID(segments[0])
		if err != nil {
			return nil, err
		}
		return r.resolveWorkspaceSub(ctx, id, segments[1])

	default:
		return nil, errortypes.InvalidIdentifier(
			fmt.Errorf("too many path segments: %v", segments),
			"unparsable resource URI")
	}
}

func (r *Resolver) resolveWorkspaceSub(ctx context.Context, workspaceID int64, sub string) (any, error) {
	// Listings of projects and tasks are scoped to active records, the
	// same filter the upstream web UI applies.
	activeOnly := url.Values{"active": []string{"true"}}

	switch sub {
	case SubUsers:
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces", workspaceID, "users"), nil)
		if err != nil {
			return nil, err
		}
		return normalize.Users(raw)
	case SubClients:
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces", workspaceID, "clients"), nil)
		if err != nil {
			return nil, err
		}
		return normalize.Clients(raw)
	case SubProjects:
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces", workspaceID, "projects"), activeOnly)
		if err != nil {
			return nil, err
		}
		return normalize.Projects(raw)
	case SubTasks:
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces", workspaceID, "tasks"), activeOnly)
		if err != nil {
			return nil, err
		}
		return normalize.Tasks(raw)
	case SubTags:
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("workspaces", workspaceID, "tags"), nil)
		if err != nil {
			return nil, err
		}
		return normalize.Tags(raw)
	default:
		return nil, errortypes.NotFound(
			fmt.Errorf("unknown workspace sub-collection %q", sub),
			"unrecognized resource").
			WithField("workspace_id", workspaceID)
	}
}

func (r *Resolver) resolveTimeEntries(ctx context.Context, segments []string) (any, error) {
	if len(segments) != 1 {
		return nil, errortypes.InvalidIdentifier(
			fmt.Errorf("time_entries requires exactly one segment, got %v", segments),
			"unparsable resource URI")
	}

	if segments[0] == "current" {
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("me", "time_entries", "current"), nil)
		if err != nil {
			return nil, err
		}
		return normalize.CurrentTimeEntry(raw)
	}

	id, err := parseID(segments[0])
	if err != nil {
		return nil, err
	}
	raw, err := r.caller.Get(ctx, r.endpoints.TrackURL("me", "time_entries", id), nil)
	if err != nil {
		return nil, err
	}
	return normalize.TimeEntry(raw)
}

// leafResolver builds a handler for the single-entity schemes
// (projects://{id} and friends): one GET on /<collection>/<id>, one
// normalizer pass.
func (r *Resolver) leafResolver(collection string, normalizeFn func(raw []byte) (any, error)) func(ctx context.Context, segments []string) (any, error) {
	return func(ctx context.Context, segments []string) (any, error) {
		if len(segments) != 1 {
			return nil, errortypes.InvalidIdentifier(
				fmt.Errorf("%s requires exactly one id segment, got %v", collection, segments),
				"unparsable resource URI")
		}
		id, err := parseID(segments[0])
		if err != nil {
			return nil, err
		}
		raw, err := r.caller.Get(ctx, r.endpoints.TrackURL(collection, id), nil)
		if err != nil {
			return nil, err
		}
		return normalizeFn(raw)
	}
}
