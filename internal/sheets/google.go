package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// GoogleReader reads cell ranges through the Sheets API with service
// account credentials.
type GoogleReader struct {
	svc *gsheet.Service
}

var _ Reader = (*GoogleReader)(nil)

// NewGoogleReader builds a read-only Sheets client. credentialsFile may
// be empty, in which case GOOGLE_APPLICATION_CREDENTIALS is used.
func NewGoogleReader(ctx context.Context, credentialsFile string) (*GoogleReader, error) {
	if credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if credentialsFile == "" {
		return nil, errors.New("missing sheets credentials (set SHEETS_CREDENTIALS_FILE or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	log.Debug().Msg("Google Sheets service created")
	return &GoogleReader{svc: svc}, nil
}

func (g *GoogleReader) ReadRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		rows = append(rows, cells)
	}
	log.Debug().Int("rows", len(rows)).Str("range", readRange).Msg("Read sheet range")
	return rows, nil
}
