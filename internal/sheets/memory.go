package sheets

import (
	"context"
	"fmt"
)

// MemoryReader serves fixed ranges from memory, keyed "spreadsheetID/range".
type MemoryReader struct {
	Ranges map[string][][]string
	Err    error
}

var _ Reader = (*MemoryReader)(nil)

func (m *MemoryReader) ReadRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	rows, ok := m.Ranges[spreadsheetID+"/"+readRange]
	if !ok {
		return nil, fmt.Errorf("no data for %s/%s", spreadsheetID, readRange)
	}
	return rows, nil
}
