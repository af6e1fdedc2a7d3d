package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"gep-report/internal/targets"
	"gep-report/internal/taxonomy"
)

// The message layout below is locked with the channel's readers. Keep
// headers, separators and bullet shapes stable; change numbers only.

const divider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Render formats the daily report for Slack. It is a pure function of
// the report value.
func Render(r *Report) string {
	var b strings.Builder
	w := r.Window

	mtdPct := int(float64(w.DaysElapsed) / float64(w.DaysInPeriod) * 100)
	monthLabel := w.Period.Format("January 2006")

	fmt.Fprintf(&b, "*GEP Performance Update - %s*\n\n", r.GeneratedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "*MTD Progress:* %d of %d days (%d%%)\n\n", w.DaysElapsed, w.DaysInPeriod, mtdPct)
	b.WriteString(divider + "\n\n")

	fmt.Fprintf(&b, "*%s MTD ACTUALS*\n", strings.ToUpper(monthLabel))
	fmt.Fprintf(&b, "• Total Adds: *%d*", r.MTDAdds)
	if r.YoYChange != nil {
		fmt.Fprintf(&b, " (%s vs %s)", signed(*r.YoYChange), w.PriorYearWindow().Period.Format("Jan 2006"))
	}
	fmt.Fprintf(&b, "\n• Daily Average: *%.1f adds/day*\n\n", r.DailyAverage)

	b.WriteString("*RUN-RATE PROJECTION*\n")
	fmt.Fprintf(&b, "• Projected EOM: *%d adds*\n", r.RunRate)
	writeTierLine(&b, "Forecast", r.Targets.Forecast, r.RunRate, r.RunRateVsTarget["forecast"])
	writeTierLine(&b, "Stretch", r.Targets.Stretch, r.RunRate, r.RunRateVsTarget["stretch"])
	b.WriteString("\n")

	b.WriteString("*CURRENT ATTAINMENT*\n")
	fmt.Fprintf(&b, "• vs Forecast: *%d%%*\n", r.Attainment["forecast"])
	fmt.Fprintf(&b, "• vs Stretch: *%d%%*\n\n", r.Attainment["stretch"])

	b.WriteString(divider + "\n\n")

	b.WriteString("*TOP 5 PERFORMERS BY VOLUME (MTD)*\n")
	for i, p := range r.TopPartners {
		todayNote := ""
		if r.TodayPartial != nil {
			if n := r.TodayPartial.ByPartner[p.Partner]; n > 0 {
				todayNote = fmt.Sprintf(" (+%d today)", n)
			}
		}
		fmt.Fprintf(&b, "%d. %s: %d adds%s\n", i+1, p.Partner, p.Current, todayNote)
	}

	b.WriteString("\n" + divider + "\n\n")

	b.WriteString("*TRENDING UP*\n")
	fmt.Fprintf(&b, "_MoM comparing same MTD period (%s 1-%d vs %s 1-%d)_\n",
		w.Period.Format("Jan"), w.DaysElapsed, w.PriorWindow().Period.Format("Jan"), w.DaysElapsed)
	writeTrendLines(&b, r.Leaders, "adds")

	b.WriteString("\n*TRENDING DOWN*\n")
	b.WriteString("_MoM comparing same MTD period_\n")
	writeTrendLines(&b, r.Laggards, "adds")

	if r.Leads != nil {
		b.WriteString("\n" + divider + "\n\n")
		fmt.Fprintf(&b, "*LEADS PIPELINE (%s)*\n", monthLabel)
		fmt.Fprintf(&b, "• Total Leads: *%d* (%s vs %s)\n", r.Leads.Total, signed(r.Leads.Change), w.PriorWindow().Period.Format("Jan"))
		fmt.Fprintf(&b, "• Daily Average: *%.1f leads/day*\n", r.Leads.DailyAverage)
		fmt.Fprintf(&b, "• Projected EOM: *%d leads*\n", r.Leads.RunRate)

		b.WriteString("\n*LEADS TRENDING UP*\n")
		b.WriteString("_MoM comparing same MTD period_\n")
		writeTrendLines(&b, r.Leads.Leaders, "leads")

		b.WriteString("\n*LEADS TRENDING DOWN*\n")
		b.WriteString("_MoM comparing same MTD period_\n")
		writeTrendLines(&b, r.Leads.Laggards, "leads")
	}

	b.WriteString("\n" + divider + "\n\n")

	b.WriteString("_Note: All partners included in rankings and totals._\n")
	if r.TodayPartial != nil {
		fmt.Fprintf(&b, "_%s's partial data (%d adds so far) not included in MTD calculations due to 1-day data lag._\n",
			r.TodayPartial.Date.Format("January 2"), r.TodayPartial.Total)
	}
	if r.TargetSource != "" && r.TargetSource != targets.SourceSheet {
		fmt.Fprintf(&b, "_Targets served from %s; targets sheet was unavailable._\n", r.TargetSource)
	}
	b.WriteString("_Data: warehouse (partner_growth_events) | Targets: latest forecast sheet_\n")
	fmt.Fprintf(&b, "_Updated: %s UTC_", r.GeneratedAt.UTC().Format("2006-01-02 15:04"))

	return b.String()
}

// RenderBreakdown formats the per-pod partner breakdown posted as a
// thread reply under the main report.
func RenderBreakdown(r *Report, book *taxonomy.Book) string {
	var b strings.Builder
	reportDate := r.GeneratedAt.Format("January 2, 2006")

	fmt.Fprintf(&b, "*PARTNER BREAKDOWN BY CATEGORY* - %s\n\n", reportDate)

	byPod := make(map[string][]string)
	for partner := range r.AddsByPartner {
		e := book.Classify(partner)
		byPod[e.Pod] = append(byPod[e.Pod], partner)
	}

	for _, pod := range book.Pods() {
		partners := byPod[pod]
		if len(partners) == 0 {
			continue
		}
		slices.SortFunc(partners, func(a, c string) int {
			pa, pc := priorityRank(book, a), priorityRank(book, c)
			if pa != pc {
				return cmp.Compare(pa, pc)
			}
			if d := cmp.Compare(r.AddsByPartner[c].Current, r.AddsByPartner[a].Current); d != 0 {
				return d
			}
			return cmp.Compare(a, c)
		})

		fmt.Fprintf(&b, "*%s*\n", strings.ToUpper(pod))
		for _, partner := range partners {
			adds := r.AddsByPartner[partner]
			line := fmt.Sprintf("  • [%s] %s: %d adds (%s)",
				book.Classify(partner).Priority, partner, int(adds.Current), signed(int(adds.Change)))
			if r.TodayPartial != nil {
				if n := r.TodayPartial.ByPartner[partner]; n > 0 {
					line += fmt.Sprintf(" (+%d today)", n)
				}
			}
			if leads, ok := r.LeadsByPartner[partner]; ok && (leads.Current > 0 || leads.Prior > 0) {
				line += fmt.Sprintf(" | %d leads (%s)", int(leads.Current), signed(int(leads.Change)))
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(divider + "\n\n")
	b.WriteString("_All comparisons vs same MTD period last month_\n")
	fmt.Fprintf(&b, "_Data as of %s_", reportDate)

	return b.String()
}

func writeTierLine(b *strings.Builder, name string, target float64, runRate, pct int) {
	if target <= 0 {
		return
	}
	gap := runRate - int(target)
	fmt.Fprintf(b, "• vs %s (%d): *%d%%* (%s)\n", name, int(target), pct, signed(gap))
}

func writeTrendLines(b *strings.Builder, lines []PartnerLine, unit string) {
	for _, p := range lines {
		fmt.Fprintf(b, "• %s: %d %s (%s vs %d prior)\n", p.Partner, p.Current, unit, signed(p.Change), p.Prior)
	}
}

func signed(n int) string {
	return fmt.Sprintf("%+d", n)
}

func priorityRank(book *taxonomy.Book, partner string) int {
	priority := book.Classify(partner).Priority
	for i, p := range book.PriorityOrder {
		if p == priority {
			return i
		}
	}
	return len(book.PriorityOrder) + int(priority[len(priority)-1])
}
