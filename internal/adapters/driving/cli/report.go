package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/billtopics/internal/core/domain"
)

// maxReportedSkips bounds the skipped-record list in the report.
const maxReportedSkips = 10

// renderReport formats a run for the terminal.
func renderReport(result *domain.RunResult, styles *Styles) string {
	if styles == nil {
		styles = NewStyles(nil)
	}
	var b strings.Builder

	summary := []string{
		styles.Title.Render("Run " + result.RunID),
		fmt.Sprintf("Bills: %d  Topics: %d  Outliers: %d  Skipped: %d",
			result.BillCount, len(result.Topics), result.OutlierCount, len(result.Skipped)),
		styles.Muted.Render(fmt.Sprintf("Seed %d, started %s, took %s",
			result.Config.RandomSeed,
			result.StartedAt.UTC().Format(time.RFC3339),
			result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))),
	}
	b.WriteString(styles.Summary.Render(strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	for _, t := range result.Topics {
		b.WriteString(styles.Topic.Render(fmt.Sprintf("[%d] %s", t.ID, t.Name)))
		b.WriteString(styles.Muted.Render(fmt.Sprintf(" (%d bills)", t.Size())))
		b.WriteString("\n")
		b.WriteString("    ")
		b.WriteString(styles.Keywords.Render(strings.Join(t.Terms(), ", ")))
		b.WriteString("\n")
		if line := breakdown(result, t.ID, domain.DimensionParty); line != "" {
			b.WriteString(styles.Muted.Render("    party: " + line))
			b.WriteString("\n")
		}
		if line := breakdown(result, t.ID, domain.DimensionPeriod); line != "" {
			b.WriteString(styles.Muted.Render("    period: " + line))
			b.WriteString("\n")
		}
	}

	if result.OutlierCount > 0 {
		b.WriteString(styles.Warning.Render(fmt.Sprintf("%d bills fit no topic", result.OutlierCount)))
		b.WriteString("\n")
	}

	if len(result.Correlations) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Title.Render("Correlated topics"))
		b.WriteString("\n")
		pairs := append([]domain.CorrelationEntry(nil), result.Correlations...)
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Weight > pairs[j].Weight })
		for _, c := range pairs {
			b.WriteString(fmt.Sprintf("    %d - %d  %.3f\n", c.TopicA, c.TopicB, c.Weight))
		}
	}

	if len(result.Skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Warning.Render(fmt.Sprintf("Skipped %d records", len(result.Skipped))))
		b.WriteString("\n")
		for i, s := range result.Skipped {
			if i == maxReportedSkips {
				b.WriteString(styles.Muted.Render(fmt.Sprintf("    ... and %d more", len(result.Skipped)-i)))
				b.WriteString("\n")
				break
			}
			id := s.BillID
			if id == "" {
				id = "-"
			}
			b.WriteString(fmt.Sprintf("    #%d %s: %s\n", s.Index, id, s.Reason))
		}
	}

	return b.String()
}

// breakdown lists the counts of one dimension for a topic, largest first.
func breakdown(result *domain.RunResult, topicID int, kind domain.DimensionKind) string {
	var rows []domain.AggregateRow
	for _, row := range result.AggregatesFor(kind) {
		if row.TopicID == topicID {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })

	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, fmt.Sprintf("%s %d", row.Value, row.Count))
	}
	return strings.Join(parts, ", ")
}

// renderRuns formats run summaries as a table.
func renderRuns(runs []domain.RunSummary, styles *Styles) string {
	if styles == nil {
		styles = NewStyles(nil)
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("%-36s  %-20s  %6s  %6s  %8s", "RUN", "STARTED", "BILLS", "TOPICS", "OUTLIERS")))
	b.WriteString("\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%-36s  %-20s  %6d  %6d  %8d\n",
			r.RunID, r.StartedAt.UTC().Format(time.RFC3339), r.BillCount, r.TopicCount, r.OutlierCount))
	}
	return b.String()
}
