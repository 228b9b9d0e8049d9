package benchmark

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/user/sbsmap/pkg/findings"
	"github.com/user/sbsmap/pkg/mapping"
)

// DefaultThresholdPct is the coverage threshold applied when the caller does
// not supply one.
const DefaultThresholdPct = 80.0

// DomainStatus classifies a domain's coverage.
type DomainStatus string

const (
	StatusCovered DomainStatus = "covered"
	StatusPartial DomainStatus = "partial"
	StatusGap     DomainStatus = "gap"
	// StatusNotEvaluated marks a domain none of whose controls received any
	// mapped finding, not even a not_applicable one.
	StatusNotEvaluated DomainStatus = "not_evaluated"
)

// ControlDetail is the per-framework-control score line inside a domain.
type ControlDetail struct {
	ControlID string  `json:"control_id"`
	Score     float64 `json:"score"`
	Status    string  `json:"status"`
}

// DomainScore aggregates all mapped items whose framework controls fall in
// one domain. Computed fresh each run, never persisted as mutable state.
type DomainScore struct {
	ControlsEvaluated int             `json:"controls_evaluated"`
	ScorePct          float64         `json:"score_pct"`
	Status            DomainStatus    `json:"status"`
	ControlDetail     []ControlDetail `json:"control_detail"`
}

// ScorecardSummary counts domains per classification.
type ScorecardSummary struct {
	DomainsCovered      int `json:"domains_covered"`
	DomainsPartial      int `json:"domains_partial"`
	DomainsGap          int `json:"domains_gap"`
	DomainsNotEvaluated int `json:"domains_not_evaluated"`
	UnmatchedFindings   int `json:"unmatched_findings"`
}

// Scorecard is the domain-level coverage output bundle.
type Scorecard struct {
	AssessmentID     string                 `json:"assessment_id"`
	GeneratedAtUTC   string                 `json:"generated_at_utc"`
	SSCFIndexVersion string                 `json:"sscf_index_version"`
	ThresholdPct     float64                `json:"threshold_pct"`
	Domains          map[string]DomainScore `json:"domains"`
	Summary          ScorecardSummary       `json:"summary"`
}

// statusScore implements the numeric scale: pass 1.0, partial 0.5, fail 0.0.
// not_applicable is absent on purpose; such findings drop out of the
// denominator entirely rather than scoring zero.
var statusScore = map[findings.Status]float64{
	findings.StatusPass:    1.0,
	findings.StatusPartial: 0.5,
	findings.StatusFail:    0.0,
}

// Run aggregates mapped items into per-domain scores against the full
// framework index. Classification happens on the unrounded score; the
// stored score_pct is rounded for presentation.
func Run(index *Index, items []mapping.MappedItem, thresholdPct float64, assessmentID string, generatedAt time.Time) *Scorecard {
	// Distribute items onto framework controls.
	itemsByControl := make(map[string][]mapping.MappedItem)
	unmatched := 0
	for _, item := range items {
		placed := false
		for _, sscfID := range item.SSCFControlIDs {
			if _, ok := index.Lookup(sscfID); ok {
				itemsByControl[sscfID] = append(itemsByControl[sscfID], item)
				placed = true
			}
		}
		if !placed {
			unmatched++
		}
	}

	card := &Scorecard{
		AssessmentID:     assessmentID,
		GeneratedAtUTC:   generatedAt.UTC().Format(time.RFC3339),
		SSCFIndexVersion: index.Version,
		ThresholdPct:     thresholdPct,
		Domains:          make(map[string]DomainScore, len(index.byDomain)),
	}
	card.Summary.UnmatchedFindings = unmatched

	domainNames := make([]string, 0, len(index.byDomain))
	for name := range index.byDomain {
		domainNames = append(domainNames, name)
	}
	sort.Strings(domainNames)

	for _, domain := range domainNames {
		controlIDs := append([]string(nil), index.byDomain[domain]...)
		sort.Strings(controlIDs)

		detail := make([]ControlDetail, 0, len(controlIDs))
		total := 0.0
		evidenced := false
		for _, cid := range controlIDs {
			score, status, hasItems := scoreControl(itemsByControl[cid])
			if hasItems {
				evidenced = true
			}
			total += score
			detail = append(detail, ControlDetail{ControlID: cid, Score: round4(score), Status: status})
		}

		ds := DomainScore{
			ControlsEvaluated: len(controlIDs),
			ControlDetail:     detail,
		}
		pct := 0.0
		if len(controlIDs) > 0 {
			pct = total / float64(len(controlIDs)) * 100.0
		}
		ds.ScorePct = round4(pct)

		if !evidenced {
			ds.Status = StatusNotEvaluated
			card.Summary.DomainsNotEvaluated++
		} else {
			ds.Status = classify(pct, thresholdPct)
			switch ds.Status {
			case StatusCovered:
				card.Summary.DomainsCovered++
			case StatusPartial:
				card.Summary.DomainsPartial++
			default:
				card.Summary.DomainsGap++
			}
		}
		card.Domains[domain] = ds
	}

	return card
}

// scoreControl averages the scoreable findings for one framework control.
// not_applicable findings are excluded from the denominator; a control with
// no scoreable findings at all scores zero but still counts as evaluated.
// The returned bool reports whether any mapped item referenced the control.
func scoreControl(items []mapping.MappedItem) (float64, string, bool) {
	if len(items) == 0 {
		return 0, "no_evidence", false
	}

	sum := 0.0
	scoreable := 0
	worst := ""
	for _, item := range items {
		s, ok := statusScore[item.Status]
		if !ok {
			continue // not_applicable
		}
		sum += s
		scoreable++
		worst = worseStatus(worst, string(item.Status))
	}
	if scoreable == 0 {
		// Only not_applicable evidence. Excluded findings cannot carry a
		// control: absence of scoreable evidence is a gap.
		return 0, string(findings.StatusNotApplicable), true
	}
	return sum / float64(scoreable), worst, true
}

var statusSeverity = map[string]int{
	string(findings.StatusPass):    0,
	string(findings.StatusPartial): 1,
	string(findings.StatusFail):    2,
}

func worseStatus(a, b string) string {
	if a == "" {
		return b
	}
	if statusSeverity[b] > statusSeverity[a] {
		return b
	}
	return a
}

// classify grades an evidenced domain on its unrounded score. At or above
// the threshold is covered, [50, threshold) partial, below 50 a gap.
func classify(pct, thresholdPct float64) DomainStatus {
	switch {
	case pct >= thresholdPct:
		return StatusCovered
	case pct >= 50.0:
		return StatusPartial
	default:
		return StatusGap
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// LoadScorecard reads a scorecard bundle from disk.
func LoadScorecard(path string) (*Scorecard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scorecard: %w", err)
	}
	var card Scorecard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("parsing scorecard %s: %w", path, err)
	}
	return &card, nil
}

// Write serializes the scorecard as indented JSON, creating parent
// directories.
func (s *Scorecard) Write(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
