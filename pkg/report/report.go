// Package report renders backlogs, scorecards, and drift diffs as markdown
// for the reporting collaborators. Rendering never alters the bundles.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/benchmark"
)

// GapMatrix renders a backlog as the control-mapping gap matrix.
func GapMatrix(b *backlog.Backlog) string {
	var sb strings.Builder

	sb.WriteString("# Salesforce SBS Gap Matrix\n\n")
	fmt.Fprintf(&sb, "- Assessment ID: `%s`\n", b.AssessmentID)
	fmt.Fprintf(&sb, "- Generated UTC: `%s`\n", b.GeneratedAtUTC)
	fmt.Fprintf(&sb, "- Catalog version: `%s`\n", b.CatalogVersion)
	fmt.Fprintf(&sb, "- SBS controls in catalog: `%d`\n", b.Summary.CatalogControls)
	fmt.Fprintf(&sb, "- Mapped findings: `%d`\n", b.Summary.MappedFindings)
	fmt.Fprintf(&sb, "- Unmapped findings: `%d`\n", b.Summary.UnmappedFindings)
	fmt.Fprintf(&sb, "- Invalid mapping entries: `%d`\n", b.Summary.InvalidMappingEntries)

	sb.WriteString("\n## Status Summary (Mapped Findings)\n")
	for _, status := range []string{"pass", "fail", "partial", "not_applicable"} {
		fmt.Fprintf(&sb, "- %s: `%d`\n", status, b.Summary.StatusCounts[status])
	}

	sb.WriteString("\n## Control Mapping Table\n")
	sb.WriteString("| Legacy Control ID | SBS Control ID | SBS Title | Mapping Confidence | SSCF Controls | Status | Severity | Owner | Due Date |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, item := range b.MappedItems {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			item.LegacyControlID,
			item.ControlID,
			strings.ReplaceAll(item.Title, "|", "/"),
			item.MappingConfidence,
			strings.Join(item.SSCFControlIDs, ", "),
			item.Status,
			item.Severity,
			item.Owner,
			item.DueDate,
		)
	}

	sb.WriteString("\n## Unmapped Findings\n")
	if len(b.UnmappedItems) == 0 {
		sb.WriteString("- None\n")
	}
	for _, item := range b.UnmappedItems {
		fmt.Fprintf(&sb, "- `%s` (%s, %s)\n", item.ControlID, item.Status, item.Severity)
	}

	sb.WriteString("\n## Invalid Mapping Entries\n")
	if len(b.InvalidMappingEntries) == 0 {
		sb.WriteString("- None\n")
	}
	for _, entry := range b.InvalidMappingEntries {
		fmt.Fprintf(&sb, "- `%s` -> `%s` (%s)\n", entry.ControlID, entry.ResolvedControlID, entry.Reason)
	}

	sb.WriteString("\n")
	return sb.String()
}

var domainStatusMarks = map[benchmark.DomainStatus]string{
	benchmark.StatusCovered:      "COVERED",
	benchmark.StatusPartial:      "PARTIAL",
	benchmark.StatusGap:          "GAP",
	benchmark.StatusNotEvaluated: "NOT EVALUATED",
}

// Scorecard renders a domain scorecard as markdown.
func Scorecard(card *benchmark.Scorecard) string {
	var sb strings.Builder

	sb.WriteString("# SSCF Domain Scorecard\n\n")
	fmt.Fprintf(&sb, "- Assessment ID: `%s`\n", card.AssessmentID)
	fmt.Fprintf(&sb, "- Generated UTC: `%s`\n", card.GeneratedAtUTC)
	fmt.Fprintf(&sb, "- SSCF index version: `%s`\n", card.SSCFIndexVersion)
	fmt.Fprintf(&sb, "- Coverage threshold: `%.0f%%`\n", card.ThresholdPct)

	names := make([]string, 0, len(card.Domains))
	for name := range card.Domains {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("\n## Domain Scorecard\n")
	sb.WriteString("| Domain | Controls | Score | Status |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		d := card.Domains[name]
		fmt.Fprintf(&sb, "| %s | %d | %.1f%% | %s |\n",
			name, d.ControlsEvaluated, d.ScorePct, domainStatusMarks[d.Status])
	}

	sb.WriteString("\n## Summary\n")
	fmt.Fprintf(&sb, "- Domains covered: `%d`\n", card.Summary.DomainsCovered)
	fmt.Fprintf(&sb, "- Domains partial: `%d`\n", card.Summary.DomainsPartial)
	fmt.Fprintf(&sb, "- Domains gap: `%d`\n", card.Summary.DomainsGap)
	fmt.Fprintf(&sb, "- Domains not evaluated: `%d`\n", card.Summary.DomainsNotEvaluated)
	fmt.Fprintf(&sb, "- Unmatched findings: `%d`\n", card.Summary.UnmatchedFindings)

	sb.WriteString("\n## Domain Details\n")
	for _, name := range names {
		d := card.Domains[name]
		fmt.Fprintf(&sb, "\n### %s — %.1f%% (%s)\n\n", name, d.ScorePct, domainStatusMarks[d.Status])
		sb.WriteString("| SSCF Control | Score | Status |\n")
		sb.WriteString("|---|---|---|\n")
		for _, ctrl := range d.ControlDetail {
			fmt.Fprintf(&sb, "| `%s` | %.2f | %s |\n", ctrl.ControlID, ctrl.Score, ctrl.Status)
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// DriftDiff renders a backlog comparison as markdown.
func DriftDiff(diff *backlog.Diff) string {
	var sb strings.Builder

	sb.WriteString("# Backlog Drift Comparison\n\n")
	fmt.Fprintf(&sb, "- Prior assessment: `%s`\n", diff.PriorAssessmentID)
	fmt.Fprintf(&sb, "- Current assessment: `%s`\n", diff.CurrentAssessmentID)
	fmt.Fprintf(&sb, "- New: `%d`  Resolved: `%d`  Regressed: `%d`  Improved: `%d`  Unchanged: `%d`\n",
		len(diff.New), len(diff.Resolved), len(diff.Regressed), len(diff.Improved), len(diff.Unchanged))

	sb.WriteString("\n## New Findings\n")
	if len(diff.New) == 0 {
		sb.WriteString("- None\n")
	}
	for _, item := range diff.New {
		fmt.Fprintf(&sb, "- `%s` %s (%s, %s)\n", item.ControlID, item.Title, item.Status, item.Severity)
	}

	sb.WriteString("\n## Resolved Findings\n")
	if len(diff.Resolved) == 0 {
		sb.WriteString("- None\n")
	}
	for _, item := range diff.Resolved {
		fmt.Fprintf(&sb, "- `%s` %s (was %s)\n", item.ControlID, item.Title, item.Status)
	}

	sb.WriteString("\n## Regressions\n")
	if len(diff.Regressed) == 0 {
		sb.WriteString("- None\n")
	}
	for _, t := range diff.Regressed {
		fmt.Fprintf(&sb, "- `%s` %s: %s -> %s\n", t.ControlID, t.Title, t.Prior, t.Current)
	}

	sb.WriteString("\n## Improvements\n")
	if len(diff.Improved) == 0 {
		sb.WriteString("- None\n")
	}
	for _, t := range diff.Improved {
		fmt.Fprintf(&sb, "- `%s` %s: %s -> %s\n", t.ControlID, t.Title, t.Prior, t.Current)
	}

	sb.WriteString("\n")
	return sb.String()
}
