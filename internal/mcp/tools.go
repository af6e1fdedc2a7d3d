package mcp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"gep-report/internal/metrics"
	"gep-report/internal/report"
)

type windowIn struct {
	Today string `json:"today,omitempty" jsonschema:"wall-clock date YYYY-MM-DD, defaults to now"`
}

type windowOut struct {
	Period       string `json:"period"`
	DaysElapsed  int    `json:"days_elapsed"`
	DaysInPeriod int    `json:"days_in_period"`
}

type projectIn struct {
	MTDTotal     int                `json:"mtd_total"`
	DaysElapsed  int                `json:"days_elapsed"`
	DaysInPeriod int                `json:"days_in_period"`
	Targets      map[string]float64 `json:"targets,omitempty"`
}

type projectOut struct {
	DailyAverage    float64        `json:"daily_average"`
	RunRate         int            `json:"run_rate"`
	Attainment      map[string]int `json:"attainment,omitempty"`
	RunRateVsTarget map[string]int `json:"run_rate_vs_target,omitempty"`
}

type row struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Group    string  `json:"group,omitempty"`
}

type summarizeIn struct {
	Actual []row  `json:"actual"`
	Plan   []row  `json:"plan"`
	Period string `json:"period"`
	TopN   int    `json:"top_n,omitempty"`
}

type varianceOut struct {
	Category    string   `json:"category"`
	Actual      float64  `json:"actual"`
	Plan        float64  `json:"plan"`
	Variance    float64  `json:"variance"`
	VariancePct *float64 `json:"variance_pct"`
}

type summarizeOut struct {
	Period           string        `json:"period"`
	TotalActual      float64       `json:"total_actual"`
	TotalPlan        float64       `json:"total_plan"`
	TotalVariance    float64       `json:"total_variance"`
	TotalVariancePct *float64      `json:"total_variance_pct"`
	TopPositive      []varianceOut `json:"top_positive"`
	TopNegative      []varianceOut `json:"top_negative"`
}

type compareIn struct {
	Current   []row `json:"current"`
	Prior     []row `json:"prior"`
	PriorYear []row `json:"prior_year,omitempty"`
}

type compareOut struct {
	Comparisons map[string]metrics.CategoryComparison `json:"comparisons"`
}

type snapshotIn struct{}

func (s *Server) registerTools() {
	sdk.AddTool(s.impl, &sdk.Tool{
		Name:        "resolve_reporting_window",
		Description: "Resolve the lagged month-to-date reporting window for a wall-clock date. On the 1st the window shifts to the full previous month.",
	}, s.resolveWindow)

	sdk.AddTool(s.impl, &sdk.Tool{
		Name:        "project_run_rate",
		Description: "Project month-to-date volume to end of month and compute attainment against tiered targets.",
	}, s.projectRunRate)

	sdk.AddTool(s.impl, &sdk.Tool{
		Name:        "summarize_variance",
		Description: "Align actual and plan rows into a zero-filled grid and summarize plan-vs-actual variance for one period.",
		InputSchema: summarizeSchema(),
	}, s.summarizeVariance)

	sdk.AddTool(s.impl, &sdk.Tool{
		Name:        "compare_windows",
		Description: "Compare per-category values across equal-length windows, with new-entrant and zero sentinels and optional year-over-year.",
	}, s.compareWindows)

	sdk.AddTool(s.impl, &sdk.Tool{
		Name:        "get_latest_metrics",
		Description: "Return the most recent persisted daily report snapshot.",
	}, s.latestMetrics)
}

// summarizeSchema spells out the row shape so clients see the accepted
// date formats instead of an opaque array.
func summarizeSchema() *jsonschema.Schema {
	// Each array property needs its own schema node: the jsonschema
	// library rejects schemas where one node appears in two places.
	rowSchema := func() *jsonschema.Schema {
		return &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"date":     {Type: "string", Description: "period date, e.g. 2026-01 or 2026-01-15"},
				"category": {Type: "string"},
				"value":    {Type: "number"},
				"group":    {Type: "string", Description: "optional entity/business-unit tag"},
			},
			Required: []string{"date", "category", "value"},
		}
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"actual": {Type: "array", Items: rowSchema()},
			"plan":   {Type: "array", Items: rowSchema()},
			"period": {Type: "string", Description: "month to summarize, YYYY-MM"},
			"top_n":  {Type: "integer", Description: "rank list size, default 5"},
		},
		Required: []string{"actual", "plan", "period"},
	}
}

func (s *Server) resolveWindow(ctx context.Context, req *sdk.CallToolRequest, in windowIn) (*sdk.CallToolResult, windowOut, error) {
	today := time.Now().UTC()
	if in.Today != "" {
		parsed, err := time.Parse("2006-01-02", in.Today)
		if err != nil {
			return nil, windowOut{}, fmt.Errorf("invalid date %q: %w", in.Today, err)
		}
		today = parsed
	}

	w := metrics.ResolveReportingWindow(today)
	return nil, windowOut{
		Period:       w.Period.Format("2006-01"),
		DaysElapsed:  w.DaysElapsed,
		DaysInPeriod: w.DaysInPeriod,
	}, nil
}

func (s *Server) projectRunRate(ctx context.Context, req *sdk.CallToolRequest, in projectIn) (*sdk.CallToolResult, projectOut, error) {
	m, err := metrics.Project(float64(in.MTDTotal), in.DaysElapsed, in.DaysInPeriod, in.Targets)
	if err != nil {
		return nil, projectOut{}, err
	}
	return nil, projectOut{
		DailyAverage:    m.DailyAverage,
		RunRate:         m.RunRate,
		Attainment:      m.Attainment,
		RunRateVsTarget: m.RunRateVsTarget,
	}, nil
}

func (s *Server) summarizeVariance(ctx context.Context, req *sdk.CallToolRequest, in summarizeIn) (*sdk.CallToolResult, summarizeOut, error) {
	period, err := time.Parse("2006-01", in.Period)
	if err != nil {
		return nil, summarizeOut{}, fmt.Errorf("invalid period %q: %w", in.Period, err)
	}

	grid := metrics.Align(toObservations(in.Actual, metrics.SeriesActual), toObservations(in.Plan, metrics.SeriesPlan))
	summary := metrics.Summarize(grid, period.UTC(), in.TopN)

	return nil, summarizeOut{
		Period:           summary.Period.Format("2006-01"),
		TotalActual:      summary.TotalActual,
		TotalPlan:        summary.TotalPlan,
		TotalVariance:    summary.TotalVariance,
		TotalVariancePct: jsonFloat(summary.TotalVariancePct),
		TopPositive:      toVarianceOut(summary.TopPositive),
		TopNegative:      toVarianceOut(summary.TopNegative),
	}, nil
}

func (s *Server) compareWindows(ctx context.Context, req *sdk.CallToolRequest, in compareIn) (*sdk.CallToolResult, compareOut, error) {
	var priorYear []metrics.Observation
	if in.PriorYear != nil {
		priorYear = toObservations(in.PriorYear, metrics.SeriesActual)
	}
	cmps := metrics.Compare(
		toObservations(in.Current, metrics.SeriesActual),
		toObservations(in.Prior, metrics.SeriesActual),
		priorYear,
	)
	return nil, compareOut{Comparisons: cmps}, nil
}

func (s *Server) latestMetrics(ctx context.Context, req *sdk.CallToolRequest, in snapshotIn) (*sdk.CallToolResult, *report.Report, error) {
	rep, err := report.LoadSnapshot(s.snapshotPath)
	if err != nil {
		return nil, nil, fmt.Errorf("no snapshot available: %w", err)
	}
	return nil, rep, nil
}

func toObservations(rows []row, series metrics.Series) []metrics.Observation {
	raw := make([]metrics.RawRow, len(rows))
	for i, r := range rows {
		raw[i] = metrics.RawRow{
			Date:     r.Date,
			Category: r.Category,
			Value:    fmt.Sprintf("%v", r.Value),
			Group:    r.Group,
		}
	}
	return metrics.ParseRows(raw, series)
}

func toVarianceOut(rows []metrics.CategoryVariance) []varianceOut {
	out := make([]varianceOut, len(rows))
	for i, r := range rows {
		out[i] = varianceOut{
			Category:    r.Category,
			Actual:      r.Actual,
			Plan:        r.Plan,
			Variance:    r.Variance,
			VariancePct: jsonFloat(r.VariancePct),
		}
	}
	return out
}

func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
