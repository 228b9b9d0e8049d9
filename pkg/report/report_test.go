package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/benchmark"
	"github.com/user/sbsmap/pkg/findings"
	"github.com/user/sbsmap/pkg/mapping"
)

func TestGapMatrix(t *testing.T) {
	b := &backlog.Backlog{
		AssessmentID:   "run-1",
		GeneratedAtUTC: "2026-03-14T09:30:00Z",
		CatalogVersion: "2025.1",
		Framework:      backlog.FrameworkName,
		Summary: backlog.Summary{
			CatalogControls: 40, FindingsTotal: 2, MappedFindings: 1,
			UnmappedFindings: 1,
			StatusCounts:     map[string]int{"pass": 0, "fail": 1, "partial": 0, "not_applicable": 0},
		},
		MappedItems: []mapping.MappedItem{{
			ControlID:         "SBS-AUTH-001",
			Title:             "Enforce MFA",
			MappingConfidence: mapping.ConfidenceHigh,
			SSCFControlIDs:    []string{"SSCF-IAM-01", "SSCF-IAM-02"},
			Status:            findings.StatusFail,
			Severity:          findings.SeverityHigh,
		}},
		UnmappedItems: []mapping.UnmappedFinding{
			{ControlID: "CUSTOM-CHECK-7", Status: findings.StatusFail, Severity: findings.SeverityLow},
		},
		InvalidMappingEntries: []mapping.InvalidMappingEntry{},
	}

	md := GapMatrix(b)
	assert.Contains(t, md, "# Salesforce SBS Gap Matrix")
	assert.Contains(t, md, "Assessment ID: `run-1`")
	assert.Contains(t, md, "| SBS-AUTH-001 | Enforce MFA | high | SSCF-IAM-01, SSCF-IAM-02 | fail | high |")
	assert.Contains(t, md, "- `CUSTOM-CHECK-7` (fail, low)")
	assert.True(t, strings.Contains(md, "## Invalid Mapping Entries\n- None"), "empty section renders None")
}

func TestGapMatrixEscapesPipesInTitles(t *testing.T) {
	b := &backlog.Backlog{
		Summary: backlog.Summary{StatusCounts: map[string]int{}},
		MappedItems: []mapping.MappedItem{{
			ControlID: "SBS-X", Title: "A | B", SSCFControlIDs: []string{},
		}},
	}
	md := GapMatrix(b)
	assert.Contains(t, md, "A / B")
}

func TestScorecardMarkdown(t *testing.T) {
	card := &benchmark.Scorecard{
		AssessmentID:     "run-1",
		GeneratedAtUTC:   "2026-03-14T09:30:00Z",
		SSCFIndexVersion: "1.0",
		ThresholdPct:     80,
		Domains: map[string]benchmark.DomainScore{
			"Identity & Access Management": {
				ControlsEvaluated: 1,
				ScorePct:          100,
				Status:            benchmark.StatusCovered,
				ControlDetail: []benchmark.ControlDetail{
					{ControlID: "SSCF-IAM-01", Score: 1, Status: "pass"},
				},
			},
			"Logging & Monitoring": {
				ControlsEvaluated: 1,
				Status:            benchmark.StatusNotEvaluated,
				ControlDetail: []benchmark.ControlDetail{
					{ControlID: "SSCF-LOG-01", Status: "no_evidence"},
				},
			},
		},
		Summary: benchmark.ScorecardSummary{DomainsCovered: 1, DomainsNotEvaluated: 1},
	}

	md := Scorecard(card)
	assert.Contains(t, md, "# SSCF Domain Scorecard")
	assert.Contains(t, md, "| Identity & Access Management | 1 | 100.0% | COVERED |")
	assert.Contains(t, md, "| Logging & Monitoring | 1 | 0.0% | NOT EVALUATED |")
	assert.Contains(t, md, "| `SSCF-IAM-01` | 1.00 | pass |")
	assert.Less(t, strings.Index(md, "| Identity &"), strings.Index(md, "| Logging &"), "domains render in sorted order")
}

func TestDriftDiffMarkdown(t *testing.T) {
	diff := &backlog.Diff{
		PriorAssessmentID:   "run-1",
		CurrentAssessmentID: "run-2",
		New:                 []mapping.MappedItem{{ControlID: "SBS-INT-001", Title: "New one", Status: findings.StatusFail, Severity: findings.SeverityMedium}},
		Resolved:            []mapping.MappedItem{},
		Regressed: []backlog.Transition{
			{ControlID: "SBS-AUTH-002", Title: "Session timeout", Prior: findings.StatusPass, Current: findings.StatusFail},
		},
		Improved:  []backlog.Transition{},
		Unchanged: []mapping.MappedItem{},
	}

	md := DriftDiff(diff)
	assert.Contains(t, md, "# Backlog Drift Comparison")
	assert.Contains(t, md, "- `SBS-INT-001` New one (fail, medium)")
	assert.Contains(t, md, "- `SBS-AUTH-002` Session timeout: pass -> fail")
	assert.Contains(t, md, "## Resolved Findings\n- None")
}
