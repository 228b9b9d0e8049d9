// Package assess applies deterministic structural rules to collector
// snapshots, producing the finding-set document consumed by the mapping
// resolver. It is read-only and never connects to the source platform.
package assess

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/sbsmap/pkg/catalog"
	"github.com/user/sbsmap/pkg/findings"
)

// Options controls one assessment run.
type Options struct {
	Org    string
	Env    string
	DryRun bool
}

// Run evaluates every catalog control and returns a finding set: exactly one
// finding per control, in catalog order. A control without a rule, or whose
// scope was not collected, yields not_applicable.
func Run(cat *catalog.Catalog, snap *Snapshot, opts Options, now time.Time) (*findings.Set, error) {
	if !opts.DryRun && snap == nil {
		return nil, fmt.Errorf("collector snapshot is required unless dry-run is set")
	}

	org := opts.Org
	if org == "" {
		if snap != nil && snap.Org != "" {
			org = snap.Org
		} else if opts.DryRun {
			org = "dry-run"
		} else {
			org = "org-" + uuid.NewString()[:8]
		}
	}
	env := opts.Env
	if env == "" {
		env = "dev"
	}

	now = now.UTC()
	dateStr := now.Format("2006-01-02")
	set := &findings.Set{
		AssessmentID:      assessmentID(org, env, opts.DryRun, now),
		AssessmentTimeUTC: now.Format(time.RFC3339),
		Org:               org,
		Env:               env,
	}

	for _, rec := range cat.Controls() {
		severity := severityFor(rec)

		var outcome Outcome
		rule, haveRule := Rules[rec.ID]
		switch {
		case !haveRule:
			outcome = notApplicable("No assessment rule defined")
		case opts.DryRun:
			if override, ok := dryRunOverrides[rec.ID]; ok {
				outcome = override
			} else {
				outcome = rule(&Snapshot{})
			}
		default:
			outcome = rule(snap)
		}

		set.Findings = append(set.Findings, findings.Finding{
			ControlID:     rec.ID,
			Status:        outcome.Status,
			Severity:      severity,
			Owner:         "Business Security Services",
			ObservedValue: outcome.ObservedValue,
			Remediation:   outcome.Remediation,
			EvidenceRef:   fmt.Sprintf("collector://salesforce/%s/%s/snapshot-%s", env, rec.ID, dateStr),
		})
	}
	return set, nil
}

func severityFor(rec catalog.ControlRecord) findings.Severity {
	sev, ok := findings.NormalizeSeverity(findings.Severity(strings.ToLower(rec.RiskLevel)))
	if !ok {
		return findings.SeverityMedium
	}
	return sev
}

func assessmentID(org, env string, dryRun bool, now time.Time) string {
	stamp := now.Format("20060102")
	if dryRun {
		return fmt.Sprintf("sfdc-assess-dry-run-%s-%s", env, stamp)
	}
	orgLabel := org
	if i := strings.IndexByte(orgLabel, '.'); i > 0 {
		orgLabel = orgLabel[:i]
	}
	return fmt.Sprintf("sfdc-assess-%s-%s-%s", orgLabel, env, stamp)
}
