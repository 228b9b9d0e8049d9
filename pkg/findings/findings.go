package findings

import (
	"encoding/json"
	"fmt"
	"os"
)

// Status is the assessed outcome of one control check.
type Status string

const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusPartial       Status = "partial"
	StatusNotApplicable Status = "not_applicable"
)

// Severity ranks a finding's risk.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Finding is one raw observation from a collector or import. Read-only input;
// the control id may be canonical, legacy, or unrecognized.
type Finding struct {
	ControlID     string   `json:"control_id"`
	Status        Status   `json:"status"`
	Severity      Severity `json:"severity"`
	Owner         string   `json:"owner,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	ObservedValue string   `json:"observed_value,omitempty"`
	Remediation   string   `json:"remediation,omitempty"`
	EvidenceRef   string   `json:"evidence_ref,omitempty"`
}

// Set is one assessment run's ordered finding sequence.
type Set struct {
	AssessmentID      string    `json:"assessment_id"`
	AssessmentTimeUTC string    `json:"assessment_time_utc"`
	Org               string    `json:"org,omitempty"`
	Env               string    `json:"env,omitempty"`
	Findings          []Finding `json:"findings"`
}

// ValidStatus reports whether s is one of the four accepted statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPass, StatusFail, StatusPartial, StatusNotApplicable:
		return true
	}
	return false
}

// NormalizeSeverity maps collector severity vocabulary onto the canonical
// set. Earlier collector generations emitted "moderate" for "medium".
func NormalizeSeverity(s Severity) (Severity, bool) {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return s, true
	case "moderate":
		return SeverityMedium, true
	}
	return s, false
}

// Validate checks every finding's status and severity, normalizing severities
// in place. Order is preserved.
func (s *Set) Validate() error {
	for i := range s.Findings {
		f := &s.Findings[i]
		if f.ControlID == "" {
			return fmt.Errorf("finding %d: missing control_id", i)
		}
		if !ValidStatus(f.Status) {
			return fmt.Errorf("finding %q: invalid status %q", f.ControlID, f.Status)
		}
		sev, ok := NormalizeSeverity(f.Severity)
		if !ok {
			return fmt.Errorf("finding %q: invalid severity %q", f.ControlID, f.Severity)
		}
		f.Severity = sev
	}
	return nil
}

// LoadSet reads and validates a finding-set document.
func LoadSet(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading finding set: %w", err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing finding set %s: %w", path, err)
	}
	if set.AssessmentID == "" {
		return nil, fmt.Errorf("finding set %s: missing assessment_id", path)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("finding set %s: %w", path, err)
	}
	return &set, nil
}
