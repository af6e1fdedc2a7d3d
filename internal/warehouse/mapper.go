package warehouse

import (
	"time"

	"gep-report/internal/metrics"
)

// Metric selects which funnel stage of an Event feeds an observation set.
type Metric string

const (
	MetricAdds  Metric = "adds"
	MetricLeads Metric = "leads"
)

func (m Metric) valueOf(e Event) float64 {
	if m == MetricLeads {
		return float64(e.Leads)
	}
	return float64(e.Adds)
}

// ObservationsForWindow reduces raw events to per-partner observations for
// one reporting window. Only events whose action date falls inside the
// window's elapsed days count, so a month-to-date window and its
// same-length prior windows stay comparable.
func ObservationsForWindow(events []Event, w metrics.ReportingWindow, metric Metric) []metrics.Observation {
	sums := make(map[string]float64)
	for _, e := range events {
		if !metrics.PeriodOf(e.ActionDate).Equal(w.Period) {
			continue
		}
		if e.ActionDate.Day() > w.DaysElapsed {
			continue
		}
		sums[e.Partner] += metric.valueOf(e)
	}

	obs := make([]metrics.Observation, 0, len(sums))
	for partner, v := range sums {
		obs = append(obs, metrics.Observation{
			Period:   w.Period,
			Category: partner,
			Value:    v,
			Series:   metrics.SeriesActual,
		})
	}
	return obs
}

// PartialCounts sums events for a single calendar day, used for the
// today-so-far section that sits outside the lagged reporting window.
func PartialCounts(events []Event, day time.Time, metric Metric) (total int, byPartner map[string]int) {
	byPartner = make(map[string]int)
	y, m, d := day.UTC().Date()
	for _, e := range events {
		ey, em, ed := e.ActionDate.UTC().Date()
		if ey != y || em != m || ed != d {
			continue
		}
		v := int(metric.valueOf(e))
		total += v
		byPartner[e.Partner] += v
	}
	return total, byPartner
}
