package metrics

import (
	"cmp"
	"slices"
	"time"
)

// GridRow is one cell of an AlignedGrid.
type GridRow struct {
	Period   time.Time `json:"period"`
	Category string    `json:"category"`
	Group    string    `json:"group,omitempty"`
	Series   Series    `json:"series"`
	Value    float64   `json:"value"`
}

// AlignedGrid is the rectangular join of Actual and Plan observations:
// every (period, category, group) key present in either input carries a
// value for both series, zero-filled where the source had none.
type AlignedGrid struct {
	Rows      []GridRow `json:"rows"`
	HasGroups bool      `json:"has_groups"`
}

type gridKey struct {
	period   time.Time
	category string
	group    string
}

// Align combines two labeled observation sets into a single tidy grid.
// Duplicate (period, category, group, series) tuples are summed. If only
// one input carries group labels, grouping is dropped entirely rather
// than producing a partial join.
func Align(actual, plan []Observation) AlignedGrid {
	useGroups := hasGroups(actual) && hasGroups(plan)

	// 1. Aggregate each series onto the (possibly group-stripped) key space.
	actualSums := sumByKey(actual, useGroups)
	planSums := sumByKey(plan, useGroups)

	// 2. Union of keys across both series.
	keySet := make(map[gridKey]bool, len(actualSums)+len(planSums))
	for k := range actualSums {
		keySet[k] = true
	}
	for k := range planSums {
		keySet[k] = true
	}

	keys := make([]gridKey, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b gridKey) int {
		if c := a.period.Compare(b.period); c != 0 {
			return c
		}
		if c := cmp.Compare(a.category, b.category); c != 0 {
			return c
		}
		return cmp.Compare(a.group, b.group)
	})

	// 3. Emit the full cartesian product key x {Actual, Plan}, zero-filled.
	rows := make([]GridRow, 0, len(keys)*2)
	for _, k := range keys {
		rows = append(rows,
			GridRow{Period: k.period, Category: k.category, Group: k.group, Series: SeriesActual, Value: actualSums[k]},
			GridRow{Period: k.period, Category: k.category, Group: k.group, Series: SeriesPlan, Value: planSums[k]},
		)
	}

	return AlignedGrid{Rows: rows, HasGroups: useGroups}
}

// Periods returns the distinct periods present in the grid, ascending.
func (g AlignedGrid) Periods() []time.Time {
	var periods []time.Time
	var last time.Time
	for _, r := range g.Rows { // rows are period-sorted
		if r.Period != last {
			periods = append(periods, r.Period)
			last = r.Period
		}
	}
	return periods
}

func hasGroups(obs []Observation) bool {
	for _, o := range obs {
		if o.Group != "" {
			return true
		}
	}
	return false
}

func sumByKey(obs []Observation, useGroups bool) map[gridKey]float64 {
	sums := make(map[gridKey]float64, len(obs))
	for _, o := range obs {
		k := gridKey{period: PeriodOf(o.Period), category: o.Category}
		if useGroups {
			k.group = o.Group
		}
		sums[k] += o.Value
	}
	return sums
}
