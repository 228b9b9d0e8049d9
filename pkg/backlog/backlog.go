package backlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/user/sbsmap/pkg/findings"
	"github.com/user/sbsmap/pkg/mapping"
)

// FrameworkName identifies the framework the backlog's expansions target.
const FrameworkName = "CSA_SSCF"

// Summary reconciles the run: findings_total always equals
// mapped + unmapped + invalid.
type Summary struct {
	CatalogControls         int            `json:"catalog_controls"`
	FindingsTotal           int            `json:"findings_total"`
	MappedFindings          int            `json:"mapped_findings"`
	UnmappedFindings        int            `json:"unmapped_findings"`
	InvalidMappingEntries   int            `json:"invalid_mapping_entries"`
	StatusCounts            map[string]int `json:"status_counts"`
	MappingConfidenceCounts map[string]int `json:"mapping_confidence_counts"`
}

// Backlog is the full output bundle of one assessment run. Immutable once
// emitted; reporting collaborators read it, never alter it.
type Backlog struct {
	AssessmentID          string                        `json:"assessment_id"`
	GeneratedAtUTC        string                        `json:"generated_at_utc"`
	CatalogVersion        string                        `json:"catalog_version"`
	Framework             string                        `json:"framework"`
	Summary               Summary                       `json:"summary"`
	MappedItems           []mapping.MappedItem          `json:"mapped_items"`
	UnmappedItems         []mapping.UnmappedFinding     `json:"unmapped_items"`
	InvalidMappingEntries []mapping.InvalidMappingEntry `json:"invalid_mapping_entries"`
}

// Build assembles a backlog from a resolution result. generatedAt is passed
// explicitly so reruns over identical input differ only in that field.
func Build(assessmentID, catalogVersion string, catalogControls int, res mapping.Result, generatedAt time.Time) *Backlog {
	statusCounts := map[string]int{
		string(findings.StatusPass):          0,
		string(findings.StatusFail):          0,
		string(findings.StatusPartial):       0,
		string(findings.StatusNotApplicable): 0,
	}
	confidenceCounts := map[string]int{
		string(mapping.ConfidenceHigh):   0,
		string(mapping.ConfidenceMedium): 0,
		string(mapping.ConfidenceLow):    0,
	}
	for _, item := range res.Mapped {
		statusCounts[string(item.Status)]++
		confidenceCounts[string(item.MappingConfidence)]++
	}

	return &Backlog{
		AssessmentID:   assessmentID,
		GeneratedAtUTC: generatedAt.UTC().Format(time.RFC3339),
		CatalogVersion: catalogVersion,
		Framework:      FrameworkName,
		Summary: Summary{
			CatalogControls:         catalogControls,
			FindingsTotal:           len(res.Mapped) + len(res.Unmapped) + len(res.Invalid),
			MappedFindings:          len(res.Mapped),
			UnmappedFindings:        len(res.Unmapped),
			InvalidMappingEntries:   len(res.Invalid),
			StatusCounts:            statusCounts,
			MappingConfidenceCounts: confidenceCounts,
		},
		MappedItems:           res.Mapped,
		UnmappedItems:         res.Unmapped,
		InvalidMappingEntries: res.Invalid,
	}
}

// Load reads a backlog bundle from disk.
func Load(path string) (*Backlog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backlog: %w", err)
	}
	var b Backlog
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing backlog %s: %w", path, err)
	}
	return &b, nil
}

// Write serializes the backlog as indented JSON, creating parent directories.
func (b *Backlog) Write(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
