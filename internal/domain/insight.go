package domain

// Insight is a derived period-over-period metric for one project. Current
// and Prior are the metric values (seconds for trends, currency for
// revenue) in the requested period and the equal-length preceding period.
// GrowthRate is nil when the prior period value is zero: growth against
// nothing is undefined, not infinite.
type Insight struct {
	ProjectID   int64    `json:"project_id"`
	ProjectName string   `json:"project_name"`
	Current     float64  `json:"current"`
	Prior       float64  `json:"prior"`
	Delta       float64  `json:"delta"`
	GrowthRate  *float64 `json:"growth_rate"`
}

// Profitability is a derived revenue/cost record for one project over a
// period. MarginPercent is nil when revenue is zero.
type Profitability struct {
	ProjectID     int64    `json:"project_id"`
	ProjectName   string   `json:"project_name"`
	BillableHours float64  `json:"billable_hours"`
	TrackedHours  float64  `json:"tracked_hours"`
	Revenue       float64  `json:"revenue"`
	Cost          float64  `json:"cost"`
	Margin        float64  `json:"margin"`
	MarginPercent *float64 `json:"margin_percent"`
}
