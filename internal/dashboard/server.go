// Package dashboard serves the variance-analysis UI: upload plan and
// actual CSVs, see aligned per-category variance and per-period totals.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gep-report/internal/metrics"
)

const defaultTopN = 5

// Server hosts the dashboard UI and its JSON API.
type Server struct {
	store       *Store
	addr        string
	openBrowser bool
}

func NewServer(addr string, openBrowser bool) *Server {
	return &Server{
		store:       &Store{},
		addr:        addr,
		openBrowser: openBrowser,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", s.addr).Msg("Dashboard listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if s.openBrowser {
		url := "http://" + s.addr
		if err := browser.OpenURL(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
		}
	}

	return g.Wait()
}

// Handler exposes the route table, also used directly by tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /app.js", s.handleAppJS)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/periods", s.handlePeriods)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/totals", s.handleTotals)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleAppJS(w http.ResponseWriter, r *http.Request) {
	js, err := appJS()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(js)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	series := metrics.SeriesActual
	switch r.URL.Query().Get("series") {
	case "actual", "":
	case "plan":
		series = metrics.SeriesPlan
	default:
		http.Error(w, "series must be actual or plan", http.StatusBadRequest)
		return
	}

	obs, err := ReadCSV(r.Body, series)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.store.SetSeries(series, obs)
	log.Info().Str("series", string(series)).Int("rows", len(obs)).Msg("Dashboard upload accepted")

	writeJSON(w, map[string]int{"rows": len(obs)})
}

func (s *Server) handlePeriods(w http.ResponseWriter, r *http.Request) {
	grid, ok := s.store.Grid()
	if !ok {
		writeJSON(w, []string{})
		return
	}
	periods := grid.Periods()
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.Format("2006-01")
	}
	writeJSON(w, labels)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	grid, ok := s.store.Grid()
	if !ok {
		http.Error(w, "no data uploaded", http.StatusNotFound)
		return
	}

	period, err := time.Parse("2006-01", r.URL.Query().Get("period"))
	if err != nil {
		http.Error(w, "period must look like 2026-01", http.StatusBadRequest)
		return
	}

	summary := metrics.Summarize(grid, period.UTC(), defaultTopN)
	writeJSON(w, toSummaryDTO(summary))
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	grid, ok := s.store.Grid()
	if !ok {
		writeJSON(w, []totalsDTO{})
		return
	}

	totals := metrics.TotalsByPeriod(grid)
	out := make([]totalsDTO, len(totals))
	for i, t := range totals {
		out[i] = totalsDTO{
			Period:      t.Period.Format("2006-01"),
			Actual:      t.Actual,
			Plan:        t.Plan,
			Variance:    t.Variance,
			VariancePct: jsonFloat(t.VariancePct),
		}
	}
	writeJSON(w, out)
}

// DTOs keep NaN out of encoding/json: the zero-plan sentinel becomes null.

type varianceDTO struct {
	Category    string   `json:"category"`
	Actual      float64  `json:"actual"`
	Plan        float64  `json:"plan"`
	Variance    float64  `json:"variance"`
	VariancePct *float64 `json:"variance_pct"`
}

type summaryDTO struct {
	Period           string        `json:"period"`
	TotalActual      float64       `json:"total_actual"`
	TotalPlan        float64       `json:"total_plan"`
	TotalVariance    float64       `json:"total_variance"`
	TotalVariancePct *float64      `json:"total_variance_pct"`
	TopPositive      []varianceDTO `json:"top_positive"`
	TopNegative      []varianceDTO `json:"top_negative"`
}

type totalsDTO struct {
	Period      string   `json:"period"`
	Actual      float64  `json:"actual"`
	Plan        float64  `json:"plan"`
	Variance    float64  `json:"variance"`
	VariancePct *float64 `json:"variance_pct"`
}

func toSummaryDTO(s metrics.VarianceSummary) summaryDTO {
	return summaryDTO{
		Period:           s.Period.Format("2006-01"),
		TotalActual:      s.TotalActual,
		TotalPlan:        s.TotalPlan,
		TotalVariance:    s.TotalVariance,
		TotalVariancePct: jsonFloat(s.TotalVariancePct),
		TopPositive:      toVarianceDTOs(s.TopPositive),
		TopNegative:      toVarianceDTOs(s.TopNegative),
	}
}

func toVarianceDTOs(rows []metrics.CategoryVariance) []varianceDTO {
	out := make([]varianceDTO, len(rows))
	for i, r := range rows {
		out[i] = varianceDTO{
			Category:    r.Category,
			Actual:      r.Actual,
			Plan:        r.Plan,
			Variance:    r.Variance,
			VariancePct: jsonFloat(r.VariancePct),
		}
	}
	return out
}

func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
