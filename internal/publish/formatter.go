package publish

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockTrend/internal/calculator"
	"StockTrend/internal/collector"
	"StockTrend/internal/model"
)

// FormatRunSummary lists the latest indicators of every analysed symbol and
// the reason each skipped symbol was skipped.
func FormatRunSummary(results []model.SymbolResult, at time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockTrend analysis</b> | %s\n\n", at.Format("2006-01-02")))

	var skipped []model.SymbolResult
	analysed := 0
	for _, r := range results {
		if r.Skipped() {
			skipped = append(skipped, r)
			continue
		}
		if len(r.Points) == 0 {
			continue
		}
		analysed++
		p := r.Points[len(r.Points)-1]
		b.WriteString(fmt.Sprintf("<b>%s</b> %s close %.2f\n", html.EscapeString(r.Symbol), p.Date, p.Close))
		b.WriteString(fmt.Sprintf("  SMA %.2f | EMA %.2f | σ %.2f\n", p.SMA, p.EMA, p.RollingStd))
		b.WriteString(fmt.Sprintf("  bands %.2f - %.2f (position %.0f%%)\n",
			p.LowerBand, p.UpperBand, calculator.BandPosition(p)*100))
	}
	if analysed == 0 {
		b.WriteString("No symbol had enough history.\n")
	}

	if len(skipped) > 0 {
		b.WriteString("\n⚠️ <b>Skipped:</b>\n")
		for _, r := range skipped {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(r.Symbol), html.EscapeString(r.Err.Error())))
		}
	}
	return b.String()
}

// FormatMergeSummary reports one fetch cycle per symbol.
func FormatMergeSummary(results []collector.FetchResult, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📥 <b>StockTrend fetch</b> | %s\n\n", at.Format("2006-01-02 15:04")))

	total := &model.MergeReport{}
	for _, r := range results {
		name := html.EscapeString(r.Symbol)
		switch {
		case r.Err != nil && r.Report == nil:
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", name, html.EscapeString(r.Err.Error())))
		case r.Err != nil:
			total.Add(r.Report)
			b.WriteString(fmt.Sprintf("❌ %s: +%d before abort: %s\n", name, r.Report.Inserted, html.EscapeString(r.Err.Error())))
		case r.Report != nil:
			total.Add(r.Report)
			b.WriteString(fmt.Sprintf("%s: +%d new, %d known, %d rejected\n",
				name, r.Report.Inserted, r.Report.SkippedDuplicate, r.Report.Rejected))
		}
	}
	b.WriteString(fmt.Sprintf("\nTotal: +%d new, %d known, %d rejected\n",
		total.Inserted, total.SkippedDuplicate, total.Rejected))
	return b.String()
}
