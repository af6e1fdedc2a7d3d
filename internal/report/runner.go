package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gep-report/internal/metrics"
	"gep-report/internal/notify"
	"gep-report/internal/targets"
	"gep-report/internal/taxonomy"
	"gep-report/internal/warehouse"
)

// Runner wires the daily pipeline together: resolve the reporting
// window, fetch events, build the report, persist the snapshot, deliver.
type Runner struct {
	Warehouse    warehouse.Client
	Targets      *targets.Book
	Taxonomy     *taxonomy.Book
	Notifier     notify.Notifier
	SnapshotPath string
}

// Run executes the pipeline for the given wall-clock day. With skipSlack
// the report is built and persisted but not delivered.
func (r *Runner) Run(ctx context.Context, today time.Time, skipSlack bool) (*Report, error) {
	window := metrics.ResolveReportingWindow(today)
	log.Info().
		Str("period", window.Period.Format("2006-01")).
		Int("days_elapsed", window.DaysElapsed).
		Int("days_in_period", window.DaysInPeriod).
		Msg("Resolved reporting window")

	// One fetch covers every comparison window: prior year through today.
	from := window.PriorYearWindow().Period
	events, err := r.Warehouse.FetchEvents(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("event fetch failed: %w", err)
	}

	tiers, source, err := r.Targets.Resolve(ctx, window.Period)
	if err != nil {
		return nil, fmt.Errorf("target resolution failed: %w", err)
	}

	rep, err := Build(Inputs{
		Window: window,
		Today:  today,
		Events: events,
		Tiers:  tiers,
		Source: source,
	})
	if err != nil {
		return nil, err
	}

	if r.SnapshotPath != "" {
		if err := SaveSnapshot(r.SnapshotPath, rep); err != nil {
			return nil, err
		}
		log.Info().Str("path", r.SnapshotPath).Msg("Saved metrics snapshot")
	}

	if skipSlack || r.Notifier == nil {
		log.Info().Msg("Skipping Slack delivery")
		return rep, nil
	}

	if err := r.Notifier.Post(ctx, Render(rep)); err != nil {
		return rep, err
	}
	if r.Taxonomy != nil {
		if err := r.Notifier.Post(ctx, RenderBreakdown(rep, r.Taxonomy)); err != nil {
			return rep, err
		}
	}
	return rep, nil
}
