package metrics

import (
	"fmt"
	"math"
	"time"
)

// RunRateMetrics projects a period's end-of-period total from its
// month-to-date pace and measures attainment against named target tiers.
type RunRateMetrics struct {
	MTDTotal     float64 `json:"mtd_total"`
	DaysElapsed  int     `json:"days_elapsed"`
	DaysInPeriod int     `json:"days_in_period"`
	DailyAverage float64 `json:"daily_average"`
	RunRate      int     `json:"run_rate"`

	// Keyed by tier name (e.g. "forecast", "stretch", "low").
	Attainment      map[string]int `json:"attainment"`
	RunRateVsTarget map[string]int `json:"run_rate_vs_target"`
}

// ReportingWindow is the resolved MTD window for a report date.
type ReportingWindow struct {
	Period       time.Time `json:"period"`
	DaysElapsed  int       `json:"days_elapsed"`
	DaysInPeriod int       `json:"days_in_period"`
}

// Project computes the linear run-rate projection and per-tier attainment.
// Counts are discrete adds, so every percentage and the projection round
// half-up to the nearest integer.
//
// Projecting from zero elapsed days is undefined, and a zero-valued target
// is a configuration error; both fail with ErrInvalidInput rather than
// being silently skipped.
func Project(mtdTotal float64, daysElapsed, daysInPeriod int, targets map[string]float64) (RunRateMetrics, error) {
	if daysElapsed < 1 {
		return RunRateMetrics{}, fmt.Errorf("%w: days elapsed must be >= 1, got %d", ErrInvalidInput, daysElapsed)
	}
	if daysInPeriod < daysElapsed {
		return RunRateMetrics{}, fmt.Errorf("%w: days in period (%d) < days elapsed (%d)", ErrInvalidInput, daysInPeriod, daysElapsed)
	}
	for tier, target := range targets {
		if target <= 0 {
			return RunRateMetrics{}, fmt.Errorf("%w: target %q must be positive, got %v", ErrInvalidInput, tier, target)
		}
	}

	dailyAvg := mtdTotal / float64(daysElapsed)
	runRate := dailyAvg * float64(daysInPeriod)

	m := RunRateMetrics{
		MTDTotal:        mtdTotal,
		DaysElapsed:     daysElapsed,
		DaysInPeriod:    daysInPeriod,
		DailyAverage:    math.Round(dailyAvg*10) / 10,
		RunRate:         roundInt(runRate),
		Attainment:      make(map[string]int, len(targets)),
		RunRateVsTarget: make(map[string]int, len(targets)),
	}
	for tier, target := range targets {
		m.Attainment[tier] = roundInt(mtdTotal / target * 100)
		m.RunRateVsTarget[tier] = roundInt(runRate / target * 100)
	}
	return m, nil
}

// ResolveReportingWindow maps "today" to the MTD window the report covers.
// The warehouse feed lags one day, so the last complete day is yesterday.
// On the first calendar day of a month there is no complete day yet in the
// new month; the window shifts back to the entire previous month.
func ResolveReportingWindow(today time.Time) ReportingWindow {
	// The window is defined in UTC; normalize before reading the day so
	// a zoned timestamp cannot disagree with its own period.
	today = today.UTC()
	period := PeriodOf(today)

	if today.Day() == 1 {
		period = period.AddDate(0, -1, 0)
		days := DaysInPeriod(period)
		return ReportingWindow{Period: period, DaysElapsed: days, DaysInPeriod: days}
	}

	return ReportingWindow{
		Period:       period,
		DaysElapsed:  today.Day() - 1,
		DaysInPeriod: DaysInPeriod(period),
	}
}

// PriorWindow returns the same-length window in the month before w.
func (w ReportingWindow) PriorWindow() ReportingWindow {
	period := w.Period.AddDate(0, -1, 0)
	return ReportingWindow{
		Period:       period,
		DaysElapsed:  w.DaysElapsed,
		DaysInPeriod: DaysInPeriod(period),
	}
}

// PriorYearWindow returns the same-length window in the same month one
// year earlier.
func (w ReportingWindow) PriorYearWindow() ReportingWindow {
	period := w.Period.AddDate(-1, 0, 0)
	return ReportingWindow{
		Period:       period,
		DaysElapsed:  w.DaysElapsed,
		DaysInPeriod: DaysInPeriod(period),
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
