package metrics

import (
	"cmp"
	"math"
	"slices"
)

// CategoryComparison contrasts one category's total in the current window
// against the same-length prior window. YoYPct is present only when a
// prior-year baseline exists; absence means "no baseline", which is
// distinct from a 0% change.
type CategoryComparison struct {
	Current   float64  `json:"current"`
	Prior     float64  `json:"prior"`
	Change    float64  `json:"change"`
	PctChange float64  `json:"pct_change"`
	YoYPct    *float64 `json:"yoy_pct,omitempty"`
}

// Compare aggregates each window by category and produces per-category
// deltas. Callers must supply windows bounded to the same day count (day 1
// through day K of their respective months); the comparator does not
// enforce that. A nil priorYear window disables YoY entirely.
//
// A category with no prior value but current activity is "new": its
// percentage change is pinned to +100 rather than infinity.
func Compare(current, prior, priorYear []Observation) map[string]CategoryComparison {
	currentSums := sumByCategory(current)
	priorSums := sumByCategory(prior)
	priorYearSums := sumByCategory(priorYear)

	categories := make(map[string]bool, len(currentSums)+len(priorSums))
	for c := range currentSums {
		categories[c] = true
	}
	for c := range priorSums {
		categories[c] = true
	}
	for c := range priorYearSums {
		categories[c] = true
	}

	out := make(map[string]CategoryComparison, len(categories))
	for c := range categories {
		cur := currentSums[c]
		pri := priorSums[c]

		cc := CategoryComparison{
			Current:   cur,
			Prior:     pri,
			Change:    cur - pri,
			PctChange: changePct(cur, pri),
		}
		if priorYear != nil {
			if py := priorYearSums[c]; py > 0 {
				pct := math.Round((cur - py) / py * 100)
				cc.YoYPct = &pct
			}
		}
		out[c] = cc
	}
	return out
}

// RankedComparison pairs a category with its comparison for ordered output.
type RankedComparison struct {
	Category string `json:"category"`
	CategoryComparison
}

// SelectLeaders picks the n categories with the highest percentage growth,
// requiring a minimum current volume so tiny bases cannot top the list.
func SelectLeaders(cmps map[string]CategoryComparison, minCurrent float64, n int) []RankedComparison {
	var ranked []RankedComparison
	for category, cc := range cmps {
		if cc.Current >= minCurrent {
			ranked = append(ranked, RankedComparison{Category: category, CategoryComparison: cc})
		}
	}
	slices.SortFunc(ranked, func(a, b RankedComparison) int {
		if c := cmp.Compare(b.PctChange, a.PctChange); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return capRanked(ranked, n)
}

// SelectLaggards picks the n categories with the lowest percentage change.
// Only categories with a nonzero prior qualify; a new entrant cannot lag.
func SelectLaggards(cmps map[string]CategoryComparison, n int) []RankedComparison {
	var ranked []RankedComparison
	for category, cc := range cmps {
		if cc.Prior > 0 {
			ranked = append(ranked, RankedComparison{Category: category, CategoryComparison: cc})
		}
	}
	slices.SortFunc(ranked, func(a, b RankedComparison) int {
		if c := cmp.Compare(a.PctChange, b.PctChange); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return capRanked(ranked, n)
}

// SelectTopByVolume picks the n categories with the highest current totals.
func SelectTopByVolume(cmps map[string]CategoryComparison, n int) []RankedComparison {
	ranked := make([]RankedComparison, 0, len(cmps))
	for category, cc := range cmps {
		ranked = append(ranked, RankedComparison{Category: category, CategoryComparison: cc})
	}
	slices.SortFunc(ranked, func(a, b RankedComparison) int {
		if c := cmp.Compare(b.Current, a.Current); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return capRanked(ranked, n)
}

func sumByCategory(obs []Observation) map[string]float64 {
	sums := make(map[string]float64, len(obs))
	for _, o := range obs {
		sums[o.Category] += o.Value
	}
	return sums
}

func changePct(current, prior float64) float64 {
	switch {
	case prior > 0:
		return (current - prior) / prior * 100
	case current > 0:
		return 100 // new entrant, not infinite
	default:
		return 0
	}
}

func capRanked(ranked []RankedComparison, n int) []RankedComparison {
	if n > 0 && len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}
