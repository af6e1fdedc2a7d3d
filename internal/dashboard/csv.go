package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gep-report/internal/metrics"
)

// Column synonyms to standardize user-provided CSVs.
var (
	dateSynonyms   = []string{"date", "month", "period", "period_start", "period_end"}
	metricSynonyms = []string{"metric", "account", "line_item", "category", "kpi", "name"}
	valueSynonyms  = []string{"value", "amount", "actual", "plan", "val"}
	entitySynonyms = []string{"entity", "business_unit", "bu", "department", "cost_center"}
)

// ReadCSV parses an uploaded plan or actuals file into observations.
// Header names are matched case-insensitively against the synonym lists;
// the entity column is optional.
func ReadCSV(r io.Reader, series metrics.Series) ([]metrics.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	dateIdx := findColumn(header, dateSynonyms)
	metricIdx := findColumn(header, metricSynonyms)
	valueIdx := findColumn(header, valueSynonyms)
	entityIdx := findColumn(header, entitySynonyms)

	if dateIdx < 0 {
		return nil, fmt.Errorf("no date column found (accepted: %s)", strings.Join(dateSynonyms, ", "))
	}
	if metricIdx < 0 {
		return nil, fmt.Errorf("no metric column found (accepted: %s)", strings.Join(metricSynonyms, ", "))
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("no value column found (accepted: %s)", strings.Join(valueSynonyms, ", "))
	}

	var raw []metrics.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		row := metrics.RawRow{
			Date:     cell(record, dateIdx),
			Category: cell(record, metricIdx),
			Value:    cell(record, valueIdx),
		}
		if entityIdx >= 0 {
			row.Group = cell(record, entityIdx)
		}
		raw = append(raw, row)
	}

	return metrics.ParseRows(raw, series), nil
}

func findColumn(header []string, candidates []string) int {
	lower := make(map[string]int, len(header))
	for i, h := range header {
		lower[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, cand := range candidates {
		if idx, ok := lower[cand]; ok {
			return idx
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
