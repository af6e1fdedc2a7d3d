package metrics

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// CategoryVariance holds the plan-vs-actual delta for one category in one period.
type CategoryVariance struct {
	Category    string  `json:"category"`
	Actual      float64 `json:"actual"`
	Plan        float64 `json:"plan"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variance_pct"` // NaN when plan is 0
}

// VarianceSummary is a read-only snapshot of plan attainment for one period.
// TotalVariancePct is NaN when the plan total is 0; callers must treat NaN
// as "not meaningful", never as zero.
type VarianceSummary struct {
	Period           time.Time          `json:"period"`
	TotalPlan        float64            `json:"total_plan"`
	TotalActual      float64            `json:"total_actual"`
	TotalVariance    float64            `json:"total_variance"`
	TotalVariancePct float64            `json:"total_variance_pct"`
	TopPositive      []CategoryVariance `json:"top_positive"`
	TopNegative      []CategoryVariance `json:"top_negative"`
}

// PeriodTotals is one row of the per-period totals table.
type PeriodTotals struct {
	Period      time.Time `json:"period"`
	Plan        float64   `json:"plan"`
	Actual      float64   `json:"actual"`
	Variance    float64   `json:"variance"`
	VariancePct float64   `json:"variance_pct"` // NaN when plan is 0
}

// Summarize computes totals and contributor rankings for a single period.
// A period with no rows yields zero totals and empty rank lists, never an
// error. Categories rank by raw variance (not percentage) so small-base
// percentage explosions cannot dominate the lists; ties break by category
// name ascending.
func Summarize(grid AlignedGrid, period time.Time, topN int) VarianceSummary {
	if topN <= 0 {
		topN = 5
	}
	period = PeriodOf(period)

	byCategory := make(map[string]*CategoryVariance)
	var totalActual, totalPlan float64

	for _, r := range grid.Rows {
		if !r.Period.Equal(period) {
			continue
		}
		cv, ok := byCategory[r.Category]
		if !ok {
			cv = &CategoryVariance{Category: r.Category}
			byCategory[r.Category] = cv
		}
		switch r.Series {
		case SeriesActual:
			cv.Actual += r.Value
			totalActual += r.Value
		case SeriesPlan:
			cv.Plan += r.Value
			totalPlan += r.Value
		}
	}

	ranked := make([]CategoryVariance, 0, len(byCategory))
	for _, cv := range byCategory {
		cv.Variance = cv.Actual - cv.Plan
		cv.VariancePct = pctOf(cv.Variance, cv.Plan)
		ranked = append(ranked, *cv)
	}
	slices.SortFunc(ranked, func(a, b CategoryVariance) int {
		if c := cmp.Compare(b.Variance, a.Variance); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	summary := VarianceSummary{
		Period:           period,
		TotalPlan:        totalPlan,
		TotalActual:      totalActual,
		TotalVariance:    totalActual - totalPlan,
		TotalVariancePct: pctOf(totalActual-totalPlan, totalPlan),
	}

	summary.TopPositive = headCopy(ranked, topN)
	slices.SortFunc(ranked, func(a, b CategoryVariance) int {
		if c := cmp.Compare(a.Variance, b.Variance); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	summary.TopNegative = headCopy(ranked, topN)

	return summary
}

// TotalsByPeriod reduces a grid to one Plan/Actual/Variance row per period,
// ascending by period.
func TotalsByPeriod(grid AlignedGrid) []PeriodTotals {
	idx := make(map[time.Time]int)
	var totals []PeriodTotals

	for _, r := range grid.Rows {
		i, ok := idx[r.Period]
		if !ok {
			i = len(totals)
			idx[r.Period] = i
			totals = append(totals, PeriodTotals{Period: r.Period})
		}
		switch r.Series {
		case SeriesActual:
			totals[i].Actual += r.Value
		case SeriesPlan:
			totals[i].Plan += r.Value
		}
	}

	for i := range totals {
		totals[i].Variance = totals[i].Actual - totals[i].Plan
		totals[i].VariancePct = pctOf(totals[i].Variance, totals[i].Plan)
	}
	slices.SortFunc(totals, func(a, b PeriodTotals) int {
		return a.Period.Compare(b.Period)
	})
	return totals
}

func pctOf(variance, plan float64) float64 {
	if plan == 0 {
		return math.NaN()
	}
	return variance / plan * 100
}

func headCopy(ranked []CategoryVariance, n int) []CategoryVariance {
	if len(ranked) == 0 {
		return nil
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]CategoryVariance, n)
	copy(out, ranked[:n])
	return out
}
