package report

import (
	"fmt"
	"math"
	"time"

	"gep-report/internal/metrics"
	"gep-report/internal/targets"
	"gep-report/internal/warehouse"
)

const (
	topPartnerCount = 5
	trendingCount   = 3

	// Minimum current volume to qualify as a trending-up partner.
	leaderMinAdds  = 5
	leaderMinLeads = 10
)

// Inputs is everything Build needs. Events must cover the prior-year
// window through today so every comparison window can be derived from
// the one feed.
type Inputs struct {
	Window metrics.ReportingWindow
	Today  time.Time
	Events []warehouse.Event
	Tiers  targets.Tiers
	Source targets.Source
}

// Build computes the full daily report from raw warehouse events.
func Build(in Inputs) (*Report, error) {
	w := in.Window
	current := warehouse.ObservationsForWindow(in.Events, w, warehouse.MetricAdds)
	prior := warehouse.ObservationsForWindow(in.Events, w.PriorWindow(), warehouse.MetricAdds)
	priorYear := warehouse.ObservationsForWindow(in.Events, w.PriorYearWindow(), warehouse.MetricAdds)

	cmps := metrics.Compare(current, prior, priorYear)

	mtd := sumValues(current)
	proj, err := metrics.Project(float64(mtd), w.DaysElapsed, w.DaysInPeriod, in.Tiers.Map())
	if err != nil {
		return nil, fmt.Errorf("run-rate projection failed: %w", err)
	}

	r := &Report{
		GeneratedAt:     in.Today,
		Window:          w,
		Targets:         in.Tiers,
		TargetSource:    in.Source,
		MTDAdds:         mtd,
		DailyAverage:    proj.DailyAverage,
		RunRate:         proj.RunRate,
		Attainment:      proj.Attainment,
		RunRateVsTarget: proj.RunRateVsTarget,
		TopPartners:     toLines(metrics.SelectTopByVolume(cmps, topPartnerCount)),
		Leaders:         toLines(metrics.SelectLeaders(cmps, leaderMinAdds, trendingCount)),
		Laggards:        toLines(metrics.SelectLaggards(cmps, trendingCount)),
		AddsByPartner:   cmps,
	}

	if pyTotal := sumValues(priorYear); pyTotal > 0 {
		change := mtd - pyTotal
		pct := int(math.Round(float64(change) / float64(pyTotal) * 100))
		r.YoYChange = &change
		r.YoYPct = &pct
	}

	if total, byPartner := warehouse.PartialCounts(in.Events, in.Today, warehouse.MetricAdds); total > 0 {
		r.TodayPartial = &TodayPartial{
			Date:      in.Today.UTC().Truncate(24 * time.Hour),
			Total:     total,
			ByPartner: byPartner,
		}
	}

	r.Leads, r.LeadsByPartner = buildLeads(in.Events, w)

	return r, nil
}

// buildLeads mirrors the adds pipeline for the leads metric. The section
// is omitted entirely when neither window saw a lead.
func buildLeads(events []warehouse.Event, w metrics.ReportingWindow) (*LeadsSection, map[string]metrics.CategoryComparison) {
	current := warehouse.ObservationsForWindow(events, w, warehouse.MetricLeads)
	prior := warehouse.ObservationsForWindow(events, w.PriorWindow(), warehouse.MetricLeads)

	total := sumValues(current)
	priorTotal := sumValues(prior)
	if total == 0 && priorTotal == 0 {
		return nil, nil
	}

	cmps := metrics.Compare(current, prior, nil)

	dailyAvg := float64(total) / float64(w.DaysElapsed)
	section := &LeadsSection{
		Total:        total,
		Prior:        priorTotal,
		Change:       total - priorTotal,
		DailyAverage: math.Round(dailyAvg*10) / 10,
		RunRate:      int(dailyAvg * float64(w.DaysInPeriod)),
		Leaders:      toLines(growingOnly(metrics.SelectLeaders(cmps, leaderMinLeads, trendingCount))),
		Laggards:     toLines(decliningOnly(metrics.SelectLaggards(cmps, trendingCount))),
	}
	return section, cmps
}

// growingOnly keeps partners with positive growth. Leads leaders must be
// genuinely up, not just above the volume floor.
func growingOnly(ranked []metrics.RankedComparison) []metrics.RankedComparison {
	out := ranked[:0:0]
	for _, rc := range ranked {
		if rc.PctChange > 0 {
			out = append(out, rc)
		}
	}
	return out
}

func decliningOnly(ranked []metrics.RankedComparison) []metrics.RankedComparison {
	out := ranked[:0:0]
	for _, rc := range ranked {
		if rc.PctChange < 0 {
			out = append(out, rc)
		}
	}
	return out
}

func toLines(ranked []metrics.RankedComparison) []PartnerLine {
	lines := make([]PartnerLine, 0, len(ranked))
	for _, rc := range ranked {
		lines = append(lines, PartnerLine{
			Partner: rc.Category,
			Current: int(rc.Current),
			Prior:   int(rc.Prior),
			Change:  int(rc.Change),
		})
	}
	return lines
}

func sumValues(obs []metrics.Observation) int {
	var total float64
	for _, o := range obs {
		total += o.Value
	}
	return int(total)
}
