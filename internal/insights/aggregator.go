// Package insights derives trend, profitability and revenue metrics from
// normalized time entries and projects. Everything here is pure
// computation over request-scoped data; nothing is fetched or stored.
package insights

import (
	"sort"

	"github.com/wolkwork/toggl-mcp/internal/domain"
)

const secondsPerHour = 3600.0

// projectSums accumulates per-project durations for one period.
type projectSums struct {
	seconds         map[int64]int64
	billableSeconds map[int64]int64
}

func newProjectSums() projectSums {
	return projectSums{
		seconds:         make(map[int64]int64),
		billableSeconds: make(map[int64]int64),
	}
}

func (s projectSums) add(entry domain.TimeEntry) {
	if entry.ProjectID == nil || entry.Running() {
		// Unassigned and still-running entries have no project bucket or
		// no final duration to aggregate.
		return
	}
	id := *entry.ProjectID
	s.seconds[id] += entry.DurationSeconds
	if entry.Billable {
		s.billableSeconds[id] += entry.DurationSeconds
	}
}

// sumPeriods partitions entries into the current period and the
// equal-length immediately-preceding period, accumulating per-project
// sums for each. Entries outside both periods are ignored.
func sumPeriods(entries []domain.TimeEntry, period domain.Period) (current, prior projectSums) {
	current = newProjectSums()
	prior = newProjectSums()
	previous := period.Previous()

	for _, entry := range entries {
		switch {
		case period.Contains(entry.Start):
			current.add(entry)
		case previous.Contains(entry.Start):
			prior.add(entry)
		}
	}
	return current, prior
}

// growthRate returns (current-prior)/prior, or nil when prior is zero:
// growth against nothing is undefined, never infinite and never an error.
func growthRate(current, prior float64) *float64 {
	if prior == 0 {
		return nil
	}
	rate := (current - prior) / prior
	return &rate
}

// orderInsights sorts by descending current value, ties broken by
// ascending project id for determinism.
func orderInsights(out []domain.Insight) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Current != out[j].Current {
			return out[i].Current > out[j].Current
		}
		return out[i].ProjectID < out[j].ProjectID
	})
}

func projectNames(projects []domain.Project) map[int64]domain.Project {
	byID := make(map[int64]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	return byID
}

// filterSet builds a membership set from a project id filter; an empty
// filter admits every project.
func filterSet(projectIDs []int64) map[int64]bool {
	if len(projectIDs) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(projectIDs))
	for _, id := range projectIDs {
		set[id] = true
	}
	return set
}

// Trends computes per-project tracked-time insights for the period
// against the immediately-preceding period of equal length. Values are
// seconds. An empty period yields an empty collection.
func Trends(entries []domain.TimeEntry, projects []domain.Project, period domain.Period, projectIDs []int64) []domain.Insight {
	current, prior := sumPeriods(entries, period)
	byID := projectNames(projects)
	filter := filterSet(projectIDs)

	seen := make(map[int64]bool)
	for id := range current.seconds {
		seen[id] = true
	}
	for id := range prior.seconds {
		seen[id] = true
	}

	out := make([]domain.Insight, 0, len(seen))
	for id := range seen {
		if filter != nil && !filter[id] {
			continue
		}
		cur := float64(current.seconds[id])
		pri := float64(prior.seconds[id])
		out = append(out, domain.Insight{
			ProjectID:   id,
			ProjectName: byID[id].Name,
			Current:     cur,
			Prior:       pri,
			Delta:       cur - pri,
			GrowthRate:  growthRate(cur, pri),
		})
	}
	orderInsights(out)
	return out
}

// Profitability computes per-project revenue and margin for the period.
// Revenue is billable hours times the project hourly rate (zero when the
// project has no rate); cost is tracked hours times costRate; margin
// percent is nil when revenue is zero.
func Profitability(entries []domain.TimeEntry, projects []domain.Project, period domain.Period, costRate float64) []domain.Profitability {
	current, _ := sumPeriods(entries, period)
	byID := projectNames(projects)

	out := make([]domain.Profitability, 0, len(current.seconds))
	for id, seconds := range current.seconds {
		project := byID[id]
		trackedHours := float64(seconds) / secondsPerHour
		billableHours := float64(current.billableSeconds[id]) / secondsPerHour

		var revenue float64
		if project.Rate != nil {
			revenue = billableHours * *project.Rate
		}
		cost := trackedHours * costRate
		margin := revenue - cost

		record := domain.Profitability{
			ProjectID:     id,
			ProjectName:   project.Name,
			BillableHours: billableHours,
			TrackedHours:  trackedHours,
			Revenue:       revenue,
			Cost:          cost,
			Margin:        margin,
		}
		if revenue != 0 {
			pct := margin / revenue * 100
			record.MarginPercent = &pct
		}
		out = append(out, record)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// Revenue computes per-project revenue insights for the period against
// the immediately-preceding period. Values are currency amounts derived
// from billable hours and project rates; projects without a rate
// contribute zero revenue in both periods.
func Revenue(entries []domain.TimeEntry, projects []domain.Project, period domain.Period) []domain.Insight {
	current, prior := sumPeriods(entries, period)
	byID := projectNames(projects)

	seen := make(map[int64]bool)
	for id := range current.billableSeconds {
		seen[id] = true
	}
	for id := range prior.billableSeconds {
		seen[id] = true
	}

	out := make([]domain.Insight, 0, len(seen))
	for id := range seen {
		project := byID[id]
		var rate float64
		if project.Rate != nil {
			rate = *project.Rate
		}
		cur := float64(current.billableSeconds[id]) / secondsPerHour * rate
		pri := float64(prior.billableSeconds[id]) / secondsPerHour * rate
		out = append(out, domain.Insight{
			ProjectID:   id,
			ProjectName: project.Name,
			Current:     cur,
			Prior:       pri,
			Delta:       cur - pri,
			GrowthRate:  growthRate(cur, pri),
		})
	}
	orderInsights(out)
	return out
}
