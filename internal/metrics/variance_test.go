package metrics

import (
	"math"
	"testing"
	"time"
)

func planActualGrid(period time.Time, values map[string][2]float64) AlignedGrid {
	var actual, plan []Observation
	for category, v := range values {
		actual = append(actual, Observation{Period: period, Category: category, Value: v[0], Series: SeriesActual})
		plan = append(plan, Observation{Period: period, Category: category, Value: v[1], Series: SeriesPlan})
	}
	return Align(actual, plan)
}

func TestSummarize_SignConvention(t *testing.T) {
	jan := month(2026, time.January)
	grid := planActualGrid(jan, map[string][2]float64{"Revenue": {1100, 1000}})

	s := Summarize(grid, jan, 5)
	if s.TotalVariance != 100 {
		t.Errorf("Expected variance actual-plan=+100, got %v", s.TotalVariance)
	}
	if s.TotalVariancePct != 10 {
		t.Errorf("Expected +10%%, got %v", s.TotalVariancePct)
	}
}

func TestSummarize_ZeroPlanGuard(t *testing.T) {
	jan := month(2026, time.January)
	grid := planActualGrid(jan, map[string][2]float64{"Revenue": {50, 0}})

	s := Summarize(grid, jan, 5)
	if !math.IsNaN(s.TotalVariancePct) {
		t.Errorf("Expected NaN sentinel for zero plan, got %v", s.TotalVariancePct)
	}
	if s.TotalVariance != 50 {
		t.Errorf("Expected variance 50, got %v", s.TotalVariance)
	}
}

func TestSummarize_EmptyPeriod(t *testing.T) {
	jan := month(2026, time.January)
	grid := planActualGrid(jan, map[string][2]float64{"Revenue": {1, 1}})

	s := Summarize(grid, month(2026, time.March), 5)
	if s.TotalActual != 0 || s.TotalPlan != 0 {
		t.Errorf("Expected zero totals for missing period, got %+v", s)
	}
	if len(s.TopPositive) != 0 || len(s.TopNegative) != 0 {
		t.Error("Expected empty rank lists to signal no data")
	}
}

func TestSummarize_RanksByRawVariance(t *testing.T) {
	jan := month(2026, time.January)
	grid := planActualGrid(jan, map[string][2]float64{
		"Tiny":  {3, 1},       // +2 but +200%
		"Large": {1100, 1000}, // +100 at +10%
		"Miss":  {700, 900},   // -200
	})

	s := Summarize(grid, jan, 2)
	if s.TopPositive[0].Category != "Large" {
		t.Errorf("Expected raw-variance ranking to put Large first, got %s", s.TopPositive[0].Category)
	}
	if s.TopNegative[0].Category != "Miss" {
		t.Errorf("Expected Miss to lead negatives, got %s", s.TopNegative[0].Category)
	}
	if len(s.TopPositive) != 2 {
		t.Errorf("Expected topN cap of 2, got %d", len(s.TopPositive))
	}
}

func TestSummarize_TieBreaksByCategoryName(t *testing.T) {
	jan := month(2026, time.January)
	grid := planActualGrid(jan, map[string][2]float64{
		"Beta":  {110, 100},
		"Alpha": {60, 50},
	})

	s := Summarize(grid, jan, 5)
	if s.TopPositive[0].Category != "Alpha" {
		t.Errorf("Expected alphabetical tie-break, got %s first", s.TopPositive[0].Category)
	}
}

func TestTotalsByPeriod(t *testing.T) {
	jan := month(2026, time.January)
	feb := month(2026, time.February)

	actual := []Observation{
		{Period: feb, Category: "Revenue", Value: 200, Series: SeriesActual},
		{Period: jan, Category: "Revenue", Value: 100, Series: SeriesActual},
	}
	plan := []Observation{
		{Period: jan, Category: "Revenue", Value: 80, Series: SeriesPlan},
	}

	totals := TotalsByPeriod(Align(actual, plan))
	if len(totals) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(totals))
	}
	if !totals[0].Period.Equal(jan) {
		t.Errorf("Expected ascending period order, got %v first", totals[0].Period)
	}
	if totals[0].Variance != 20 {
		t.Errorf("Expected Jan variance 20, got %v", totals[0].Variance)
	}
	if !math.IsNaN(totals[1].VariancePct) {
		t.Errorf("Expected NaN pct for zero Feb plan, got %v", totals[1].VariancePct)
	}
}
