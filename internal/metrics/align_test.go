package metrics

import (
	"reflect"
	"testing"
	"time"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestAlign_ZeroFillsMissingSeries(t *testing.T) {
	jan := month(2026, time.January)

	actual := []Observation{{Period: jan, Category: "Revenue", Value: 100, Series: SeriesActual}}
	grid := Align(actual, nil)

	if len(grid.Rows) != 2 {
		t.Fatalf("Expected 2 rows (Actual + Plan), got %d", len(grid.Rows))
	}
	if grid.Rows[0].Series != SeriesActual || grid.Rows[0].Value != 100 {
		t.Errorf("Actual row mismatch: %+v", grid.Rows[0])
	}
	if grid.Rows[1].Series != SeriesPlan || grid.Rows[1].Value != 0 {
		t.Errorf("Expected zero-filled Plan row, got %+v", grid.Rows[1])
	}
}

func TestAlign_CompleteGrid(t *testing.T) {
	jan := month(2026, time.January)
	feb := month(2026, time.February)

	actual := []Observation{
		{Period: jan, Category: "Revenue", Value: 100, Series: SeriesActual},
		{Period: feb, Category: "COGS", Value: 40, Series: SeriesActual},
	}
	plan := []Observation{
		{Period: jan, Category: "COGS", Value: 35, Series: SeriesPlan},
	}

	grid := Align(actual, plan)

	// 3 distinct (period, category) keys x 2 series.
	if len(grid.Rows) != 6 {
		t.Fatalf("Expected 6 rows, got %d", len(grid.Rows))
	}
	for _, r := range grid.Rows {
		if r.Period.IsZero() || r.Category == "" {
			t.Errorf("Incomplete row in grid: %+v", r)
		}
	}
}

func TestAlign_SumsDuplicateTuples(t *testing.T) {
	jan := month(2026, time.January)
	actual := []Observation{
		{Period: jan, Category: "Revenue", Value: 60, Series: SeriesActual},
		{Period: jan, Category: "Revenue", Value: 40, Series: SeriesActual},
	}

	grid := Align(actual, nil)
	if grid.Rows[0].Value != 100 {
		t.Errorf("Expected duplicates summed to 100, got %v", grid.Rows[0].Value)
	}
}

func TestAlign_DropsPartialGrouping(t *testing.T) {
	jan := month(2026, time.January)
	actual := []Observation{{Period: jan, Category: "Revenue", Value: 100, Series: SeriesActual, Group: "EMEA"}}
	plan := []Observation{{Period: jan, Category: "Revenue", Value: 90, Series: SeriesPlan}}

	grid := Align(actual, plan)
	if grid.HasGroups {
		t.Fatal("Expected grouping to be dropped when only one input carries groups")
	}
	for _, r := range grid.Rows {
		if r.Group != "" {
			t.Errorf("Expected group stripped, got %+v", r)
		}
	}
}

func TestAlign_KeepsGroupingWhenBothSidesHaveIt(t *testing.T) {
	jan := month(2026, time.January)
	actual := []Observation{{Period: jan, Category: "Revenue", Value: 100, Series: SeriesActual, Group: "EMEA"}}
	plan := []Observation{{Period: jan, Category: "Revenue", Value: 90, Series: SeriesPlan, Group: "AMER"}}

	grid := Align(actual, plan)
	if !grid.HasGroups {
		t.Fatal("Expected grouping preserved")
	}
	// Two (period, category, group) keys x 2 series.
	if len(grid.Rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(grid.Rows))
	}
}

func TestAlign_Idempotent(t *testing.T) {
	jan := month(2026, time.January)
	actual := []Observation{
		{Period: jan, Category: "B", Value: 2, Series: SeriesActual},
		{Period: jan, Category: "A", Value: 1, Series: SeriesActual},
	}
	plan := []Observation{{Period: jan, Category: "C", Value: 3, Series: SeriesPlan}}

	first := Align(actual, plan)
	second := Align(actual, plan)
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical grids for identical inputs")
	}
}

func TestParseRows_Coercion(t *testing.T) {
	rows := []RawRow{
		{Date: "2026-01-15", Category: "Revenue", Value: "1,250.5"},
		{Date: "not-a-date", Category: "Dropped", Value: "10"},
		{Date: "1/2/2026", Category: "COGS", Value: "abc"},
	}

	obs := ParseRows(rows, SeriesActual)
	if len(obs) != 2 {
		t.Fatalf("Expected unparseable date dropped, got %d rows", len(obs))
	}
	if obs[0].Value != 1250.5 {
		t.Errorf("Expected comma-stripped 1250.5, got %v", obs[0].Value)
	}
	if !obs[0].Period.Equal(month(2026, time.January)) {
		t.Errorf("Expected period normalized to month start, got %v", obs[0].Period)
	}
	if obs[1].Value != 0 {
		t.Errorf("Expected non-numeric value coerced to 0, got %v", obs[1].Value)
	}
}
