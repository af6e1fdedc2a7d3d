// Package report assembles the daily partner-growth report: a lagged
// month-to-date window compared against the prior month and prior year,
// projected to end of month against tiered targets, and rendered for
// Slack delivery.
package report

import (
	"time"

	"gep-report/internal/metrics"
	"gep-report/internal/targets"
)

// PartnerLine is one partner row in a ranked section.
type PartnerLine struct {
	Partner string `json:"partner"`
	Current int    `json:"current"`
	Prior   int    `json:"prior"`
	Change  int    `json:"change"`
}

// TodayPartial carries the current day's counts, which the 1-day lag
// keeps out of the MTD window.
type TodayPartial struct {
	Date      time.Time      `json:"date"`
	Total     int            `json:"total"`
	ByPartner map[string]int `json:"by_partner"`
}

// LeadsSection is the leads-pipeline portion of the report.
type LeadsSection struct {
	Total        int           `json:"total"`
	Prior        int           `json:"prior"`
	Change       int           `json:"change"`
	DailyAverage float64       `json:"daily_average"`
	RunRate      int           `json:"run_rate"`
	Leaders      []PartnerLine `json:"leaders"`
	Laggards     []PartnerLine `json:"laggards"`
}

// Report is the complete daily snapshot. It is what gets persisted to
// latest_metrics.json and what the renderer formats.
type Report struct {
	GeneratedAt  time.Time               `json:"generated_at"`
	Window       metrics.ReportingWindow `json:"window"`
	Targets      targets.Tiers           `json:"targets"`
	TargetSource targets.Source          `json:"target_source"`

	MTDAdds         int            `json:"mtd_adds"`
	DailyAverage    float64        `json:"daily_average"`
	RunRate         int            `json:"run_rate"`
	Attainment      map[string]int `json:"attainment"`
	RunRateVsTarget map[string]int `json:"run_rate_vs_target"`

	YoYChange *int `json:"yoy_change,omitempty"`
	YoYPct    *int `json:"yoy_pct,omitempty"`

	TopPartners []PartnerLine `json:"top_partners"`
	Leaders     []PartnerLine `json:"leaders"`
	Laggards    []PartnerLine `json:"laggards"`

	// Full per-partner comparisons, kept for the pod breakdown thread
	// and the MCP snapshot tool.
	AddsByPartner  map[string]metrics.CategoryComparison `json:"adds_by_partner"`
	LeadsByPartner map[string]metrics.CategoryComparison `json:"leads_by_partner,omitempty"`

	Leads        *LeadsSection `json:"leads,omitempty"`
	TodayPartial *TodayPartial `json:"today_partial,omitempty"`
}
