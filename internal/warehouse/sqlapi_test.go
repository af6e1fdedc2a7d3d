package warehouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gep-report/internal/metrics"
)

func resultSet(cols []string, rows [][]*string) map[string]any {
	rowType := make([]map[string]string, len(cols))
	for i, c := range cols {
		rowType[i] = map[string]string{"name": c}
	}
	return map[string]any{
		"resultSetMetaData": map[string]any{"rowType": rowType},
		"data":              rows,
	}
}

func ptr(s string) *string { return &s }

func TestFetchEvents_ParsesAndCaches(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/api/v2/statements" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Unexpected auth header: %s", got)
		}
		var req statementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode statement request: %v", err)
		}
		if req.Warehouse != "WH" {
			t.Errorf("Expected warehouse WH, got %s", req.Warehouse)
		}

		json.NewEncoder(w).Encode(resultSet(
			[]string{"calendar_month", "action_date", "partner_name", "adds_flag", "leads_flag"},
			[][]*string{
				{ptr("2026-01"), ptr("2026-01-05"), ptr("GoCo"), ptr("1"), ptr("0")},
				{ptr("2026-01"), ptr("2026-01-06"), ptr("Fresh"), ptr("0"), ptr("1")},
				{ptr("2026-01"), nil, ptr("Broken"), ptr("1"), ptr("0")},
			},
		))
	}))
	defer server.Close()

	client := NewClient(Config{
		AccountURL:   server.URL,
		Token:        "test-token",
		Warehouse:    "WH",
		RequestDelay: time.Millisecond,
	})

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.January, 22, 0, 0, 0, 0, time.UTC)

	events, err := client.FetchEvents(context.Background(), from, to)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events after dropping the unparseable row, got %d", len(events))
	}
	if events[0].Partner != "GoCo" || events[0].Adds != 1 || events[0].Leads != 0 {
		t.Errorf("First event mismatch: %+v", events[0])
	}
	if events[1].Leads != 1 {
		t.Errorf("Expected leads flag carried through, got %+v", events[1])
	}

	if _, err := client.FetchEvents(context.Background(), from, to); err != nil {
		t.Fatalf("Unexpected error on cached fetch: %v", err)
	}
	if requests != 1 {
		t.Errorf("Expected second identical fetch to hit the cache, got %d requests", requests)
	}
}

func TestFetchEvents_SurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"002003","message":"SQL compilation error"}`))
	}))
	defer server.Close()

	client := NewClient(Config{AccountURL: server.URL, Token: "t", RequestDelay: time.Millisecond})
	_, err := client.FetchEvents(context.Background(), time.Now(), time.Now())
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}

func TestObservationsForWindow(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
	}
	events := []Event{
		{ActionDate: day(3), Partner: "GoCo", Adds: 1},
		{ActionDate: day(10), Partner: "GoCo", Adds: 1, Leads: 2},
		{ActionDate: day(23), Partner: "GoCo", Adds: 1}, // past elapsed days
		{ActionDate: time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC), Partner: "GoCo", Adds: 1},
	}
	w := metrics.ReportingWindow{
		Period:       time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		DaysElapsed:  22,
		DaysInPeriod: 31,
	}

	obs := ObservationsForWindow(events, w, MetricAdds)
	if len(obs) != 1 {
		t.Fatalf("Expected one partner observation, got %d", len(obs))
	}
	if obs[0].Value != 2 {
		t.Errorf("Expected events outside the window excluded, got %v", obs[0].Value)
	}

	leads := ObservationsForWindow(events, w, MetricLeads)
	if leads[0].Value != 2 {
		t.Errorf("Expected leads metric selection, got %v", leads[0].Value)
	}
}

func TestPartialCounts(t *testing.T) {
	today := time.Date(2026, time.January, 23, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{ActionDate: today.Add(3 * time.Hour), Partner: "GoCo", Adds: 1},
		{ActionDate: today.Add(9 * time.Hour), Partner: "Fresh", Adds: 2},
		{ActionDate: today.AddDate(0, 0, -1), Partner: "GoCo", Adds: 5},
	}

	total, byPartner := PartialCounts(events, today, MetricAdds)
	if total != 3 {
		t.Errorf("Expected 3 adds today, got %d", total)
	}
	if byPartner["GoCo"] != 1 || byPartner["Fresh"] != 2 {
		t.Errorf("Per-partner partial counts mismatch: %+v", byPartner)
	}
}
