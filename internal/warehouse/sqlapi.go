package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// sqlAPIClient talks to the Snowflake SQL REST API (/api/v2/statements).
// Results are cached per statement for the lifetime of the process so a
// pipeline that derives several windows from one feed only pays for one
// round trip.
type sqlAPIClient struct {
	cfg         Config
	httpClient  *http.Client
	lastRequest time.Time

	cache      map[string][]Event
	cacheMutex sync.RWMutex
}

func newSQLAPIClient(cfg Config) Client {
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 2 * time.Second
	}
	return &sqlAPIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		cache: make(map[string][]Event),
	}
}

type statementRequest struct {
	Statement string `json:"statement"`
	Timeout   int    `json:"timeout,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Role      string `json:"role,omitempty"`
}

type statementResponse struct {
	ResultSetMetaData struct {
		RowType []struct {
			Name string `json:"name"`
		} `json:"rowType"`
	} `json:"resultSetMetaData"`
	Data    [][]*string `json:"data"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// eventsQuery mirrors the growth-events feed: one row per partner action
// with adds/leads flags, bounded by action date.
const eventsQuery = `SELECT calendar_month, action_date, partner_name, adds_flag, leads_flag
FROM partner_growth_events
WHERE action_date >= '%s' AND action_date <= '%s'
ORDER BY action_date`

func (c *sqlAPIClient) FetchEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	statement := fmt.Sprintf(eventsQuery, from.Format("2006-01-02"), to.Format("2006-01-02"))

	c.cacheMutex.RLock()
	cached, ok := c.cache[statement]
	c.cacheMutex.RUnlock()
	if ok {
		log.Debug().Int("rows", len(cached)).Msg("Warehouse cache hit")
		return cached, nil
	}

	c.throttle()

	resp, err := c.execute(ctx, statement)
	if err != nil {
		return nil, err
	}

	events, dropped := mapRows(resp)
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Skipped warehouse rows with unparseable action dates")
	}
	log.Info().Int("rows", len(events)).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Fetched growth events from warehouse")

	c.cacheMutex.Lock()
	c.cache[statement] = events
	c.cacheMutex.Unlock()

	return events, nil
}

func (c *sqlAPIClient) execute(ctx context.Context, statement string) (*statementResponse, error) {
	body, err := json.Marshal(statementRequest{
		Statement: statement,
		Timeout:   60,
		Warehouse: c.cfg.Warehouse,
		Database:  c.cfg.Database,
		Schema:    c.cfg.Schema,
		Role:      c.cfg.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode statement: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.AccountURL, "/") + "/api/v2/statements"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.Token))
	req.Header.Set("X-Snowflake-Authorization-Token-Type", "PROGRAMMATIC_ACCESS_TOKEN")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("warehouse request failed: %w", err)
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read warehouse response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("warehouse returned status %d: %s", httpResp.StatusCode, truncate(string(payload), 200))
	}

	var resp statementResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode warehouse response: %w", err)
	}
	return &resp, nil
}

func (c *sqlAPIClient) throttle() {
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling warehouse request")
		time.Sleep(wait)
	}
	c.lastRequest = time.Now()
}

// mapRows converts a SQL API result set into Events, resolving columns by
// name so query column order is not load-bearing.
func mapRows(resp *statementResponse) (events []Event, dropped int) {
	cols := make(map[string]int, len(resp.ResultSetMetaData.RowType))
	for i, rt := range resp.ResultSetMetaData.RowType {
		cols[strings.ToLower(rt.Name)] = i
	}

	dateIdx, ok := cols["action_date"]
	if !ok {
		return nil, len(resp.Data)
	}
	partnerIdx := cols["partner_name"]
	addsIdx, hasAdds := cols["adds_flag"]
	leadsIdx, hasLeads := cols["leads_flag"]

	for _, row := range resp.Data {
		date, ok := cellDate(row, dateIdx)
		if !ok {
			dropped++
			continue
		}
		e := Event{
			ActionDate: date,
			Partner:    cellString(row, partnerIdx),
		}
		if hasAdds {
			e.Adds = cellInt(row, addsIdx)
		}
		if hasLeads {
			e.Leads = cellInt(row, leadsIdx)
		}
		events = append(events, e)
	}
	return events, dropped
}

func cellString(row []*string, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return *row[idx]
}

func cellInt(row []*string, idx int) int {
	v, err := strconv.Atoi(strings.TrimSpace(cellString(row, idx)))
	if err != nil {
		return 0
	}
	return v
}

func cellDate(row []*string, idx int) (time.Time, bool) {
	s := strings.TrimSpace(cellString(row, idx))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// The SQL API may return dates as epoch days.
	if days, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(days*86400), 0).UTC(), true
	}
	return time.Time{}, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
