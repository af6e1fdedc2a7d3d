// Package sheets reads tabular data out of Google Sheets. The plan
// series and the monthly targets both live in spreadsheets maintained
// by the partnerships team.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gep-report/internal/metrics"
	"gep-report/internal/targets"
)

// Reader fetches a rectangular cell range as strings. The Google-backed
// implementation lives in google.go; tests use the in-memory one.
type Reader interface {
	ReadRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// ParsePlanRows converts sheet rows into plan observations. The first
// row is treated as a header when its value cell is not numeric. Layout
// is date, category, value, with an optional fourth group column.
func ParsePlanRows(rows [][]string) []metrics.Observation {
	raw := make([]metrics.RawRow, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		if i == 0 && !isNumeric(row[2]) {
			continue
		}
		r := metrics.RawRow{Date: row[0], Category: row[1], Value: row[2]}
		if len(row) > 3 {
			r.Group = row[3]
		}
		raw = append(raw, r)
	}
	return metrics.ParseRows(raw, metrics.SeriesPlan)
}

// ParseTargetRows extracts tiered targets keyed by month ("2006-01").
// Layout is month, forecast, stretch, low.
func ParseTargetRows(rows [][]string) (map[string]targets.Tiers, error) {
	out := make(map[string]targets.Tiers)
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if i == 0 && !isNumeric(row[1]) {
			continue
		}
		month := strings.TrimSpace(row[0])
		if month == "" {
			continue
		}
		tiers := targets.Tiers{
			Forecast: cellFloat(row, 1),
			Stretch:  cellFloat(row, 2),
			Low:      cellFloat(row, 3),
		}
		// Every tier feeds the projection, which rejects non-positive
		// targets, so a partial row must fail here and let resolution
		// fall through to the cache or fallback.
		if tiers.Forecast <= 0 {
			return nil, fmt.Errorf("non-positive forecast target for %s", month)
		}
		if tiers.Stretch <= 0 {
			return nil, fmt.Errorf("non-positive stretch target for %s", month)
		}
		if tiers.Low <= 0 {
			return nil, fmt.Errorf("non-positive low target for %s", month)
		}
		out[month] = tiers
	}
	return out, nil
}

// TargetFetcher adapts a Reader into the fetcher shape the targets book
// wants.
func TargetFetcher(r Reader, spreadsheetID, readRange string) targets.Fetcher {
	return func(ctx context.Context, month string) (targets.Tiers, error) {
		rows, err := r.ReadRows(ctx, spreadsheetID, readRange)
		if err != nil {
			return targets.Tiers{}, err
		}
		byMonth, err := ParseTargetRows(rows)
		if err != nil {
			return targets.Tiers{}, err
		}
		tiers, ok := byMonth[month]
		if !ok {
			return targets.Tiers{}, fmt.Errorf("targets sheet has no row for %s", month)
		}
		return tiers, nil
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	return err == nil
}

func cellFloat(row []string, idx int) float64 {
	if idx >= len(row) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[idx]), ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
