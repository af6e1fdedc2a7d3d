package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput marks a caller error: malformed arguments or a divisor
// that makes the requested computation undefined.
var ErrInvalidInput = errors.New("invalid input")

// Series labels which plan-vs-actual side an observation belongs to.
type Series string

const (
	SeriesActual Series = "Actual"
	SeriesPlan   Series = "Plan"
)

// Observation is a single recorded value for a category in a calendar month.
// Period is always normalized to the first instant of its month (UTC).
type Observation struct {
	Period   time.Time `json:"period"`
	Category string    `json:"category"`
	Value    float64   `json:"value"`
	Series   Series    `json:"series"`
	Group    string    `json:"group,omitempty"`
}

// RawRow is an unvalidated input tuple as delivered by a boundary
// collaborator (warehouse result set, spreadsheet row, CSV line).
type RawRow struct {
	Date     string
	Category string
	Value    string
	Group    string
}

// PeriodOf normalizes any timestamp to the canonical month boundary:
// the first nanosecond of its month, in UTC.
func PeriodOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysInPeriod returns the number of calendar days in the month containing t.
func DaysInPeriod(t time.Time) int {
	u := t.UTC()
	// Day 0 of the next month is the last day of this one.
	return time.Date(u.Year(), u.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

// ParseRows coerces raw rows into Observations for the given series.
// Rows with an unparseable date are dropped; a non-numeric value becomes 0.
func ParseRows(rows []RawRow, series Series) []Observation {
	var out []Observation
	for _, r := range rows {
		period, ok := parseDate(r.Date)
		if !ok {
			continue
		}
		out = append(out, Observation{
			Period:   period,
			Category: strings.TrimSpace(r.Category),
			Value:    parseValue(r.Value),
			Series:   series,
			Group:    strings.TrimSpace(r.Group),
		})
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return PeriodOf(t), true
		}
	}
	return time.Time{}, false
}

func parseValue(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
