package backlog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sbsmap/pkg/findings"
	"github.com/user/sbsmap/pkg/mapping"
)

var buildTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleResult() mapping.Result {
	return mapping.Result{
		Mapped: []mapping.MappedItem{
			{ControlID: "SBS-AUTH-001", Title: "Enforce MFA", MappingConfidence: mapping.ConfidenceHigh, Status: findings.StatusFail, Severity: findings.SeverityHigh, SSCFControlIDs: []string{"SSCF-IAM-01"}},
			{ControlID: "SBS-AUTH-002", Title: "Session timeout", MappingConfidence: mapping.ConfidenceMedium, LegacyControlID: "SFSEC-AUTH-02", Status: findings.StatusPass, Severity: findings.SeverityLow, SSCFControlIDs: []string{}},
		},
		Unmapped: []mapping.UnmappedFinding{
			{ControlID: "CUSTOM-CHECK-7", Status: findings.StatusFail, Severity: findings.SeverityLow},
		},
		Invalid: []mapping.InvalidMappingEntry{
			{ControlID: "SBS-GONE-001", ResolvedControlID: "SBS-GONE-001", Reason: "control not found in imported catalog"},
		},
	}
}

func TestBuildSummaryReconciles(t *testing.T) {
	b := Build("run-1", "2025.1", 40, sampleResult(), buildTime)

	assert.Equal(t, "run-1", b.AssessmentID)
	assert.Equal(t, "2026-03-14T09:30:00Z", b.GeneratedAtUTC)
	assert.Equal(t, "2025.1", b.CatalogVersion)
	assert.Equal(t, FrameworkName, b.Framework)

	s := b.Summary
	assert.Equal(t, 40, s.CatalogControls)
	assert.Equal(t, 4, s.FindingsTotal)
	assert.Equal(t, s.FindingsTotal, s.MappedFindings+s.UnmappedFindings+s.InvalidMappingEntries)

	assert.Equal(t, 1, s.StatusCounts["pass"])
	assert.Equal(t, 1, s.StatusCounts["fail"])
	assert.Equal(t, 0, s.StatusCounts["partial"])
	assert.Equal(t, 1, s.MappingConfidenceCounts["high"])
	assert.Equal(t, 1, s.MappingConfidenceCounts["medium"])
	assert.Equal(t, 0, s.MappingConfidenceCounts["low"])
}

func TestBuildInitializesAllCountKeys(t *testing.T) {
	b := Build("run-1", "2025.1", 40, mapping.Result{}, buildTime)

	for _, key := range []string{"pass", "fail", "partial", "not_applicable"} {
		_, ok := b.Summary.StatusCounts[key]
		assert.True(t, ok, "status key %q must be present even at zero", key)
	}
	for _, key := range []string{"high", "medium", "low"} {
		_, ok := b.Summary.MappingConfidenceCounts[key]
		assert.True(t, ok, "confidence key %q must be present even at zero", key)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	b := Build("run-1", "2025.1", 40, sampleResult(), buildTime)
	path := filepath.Join(t.TempDir(), "out", "sbs_gap_backlog.json")
	require.NoError(t, b.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, b, loaded)
}

func TestCompareDrift(t *testing.T) {
	mk := func(id string, status findings.Status) mapping.MappedItem {
		return mapping.MappedItem{ControlID: id, Title: id, Status: status}
	}
	prior := Build("run-1", "2025.1", 40, mapping.Result{Mapped: []mapping.MappedItem{
		mk("SBS-AUTH-001", findings.StatusFail),
		mk("SBS-AUTH-002", findings.StatusPass),
		mk("SBS-ACS-001", findings.StatusPass),
		mk("SBS-ACS-002", findings.StatusFail),
		mk("SBS-DATA-001", findings.StatusNotApplicable),
	}}, buildTime)
	current := Build("run-2", "2025.1", 40, mapping.Result{Mapped: []mapping.MappedItem{
		mk("SBS-AUTH-001", findings.StatusPass),             // improved
		mk("SBS-AUTH-002", findings.StatusPartial),          // regressed
		mk("SBS-ACS-002", findings.StatusFail),              // unchanged
		mk("SBS-DATA-001", findings.StatusFail),             // from not_applicable: outside ordering
		mk("SBS-INT-001", findings.StatusFail),              // new
	}}, buildTime)

	diff := Compare(prior, current)

	assert.Equal(t, "run-1", diff.PriorAssessmentID)
	assert.Equal(t, "run-2", diff.CurrentAssessmentID)

	require.Len(t, diff.New, 1)
	assert.Equal(t, "SBS-INT-001", diff.New[0].ControlID)

	require.Len(t, diff.Resolved, 1)
	assert.Equal(t, "SBS-ACS-001", diff.Resolved[0].ControlID)

	require.Len(t, diff.Improved, 1)
	assert.Equal(t, "SBS-AUTH-001", diff.Improved[0].ControlID)
	assert.Equal(t, findings.StatusFail, diff.Improved[0].Prior)

	require.Len(t, diff.Regressed, 1)
	assert.Equal(t, "SBS-AUTH-002", diff.Regressed[0].ControlID)

	// SBS-ACS-002 unchanged, SBS-DATA-001 moved out of not_applicable which
	// is neither regression nor improvement.
	require.Len(t, diff.Unchanged, 2)
	assert.Equal(t, "SBS-ACS-002", diff.Unchanged[0].ControlID)
	assert.Equal(t, "SBS-DATA-001", diff.Unchanged[1].ControlID)
}
