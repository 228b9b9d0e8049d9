package mapping

import (
	"github.com/user/sbsmap/pkg/catalog"
	"github.com/user/sbsmap/pkg/findings"
)

// Confidence grades how a mapping was resolved, never how good the evidence
// is. Direct catalog matches grade high, alias-table matches medium, and
// expansions that fell through to an ambiguous category default grade low.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MappedItem is the resolved product of one finding. Created once during
// resolution and never mutated afterward.
type MappedItem struct {
	ControlID         string            `json:"sbs_control_id"`
	LegacyControlID   string            `json:"legacy_control_id,omitempty"`
	Title             string            `json:"sbs_title"`
	Category          string            `json:"category"`
	MappingConfidence Confidence        `json:"mapping_confidence"`
	MappingNotes      string            `json:"mapping_notes,omitempty"`
	SSCFControlIDs    []string          `json:"sscf_control_ids"`
	Status            findings.Status   `json:"status"`
	Severity          findings.Severity `json:"severity"`
	Owner             string            `json:"owner,omitempty"`
	DueDate           string            `json:"due_date,omitempty"`
	Remediation       string            `json:"remediation,omitempty"`
	EvidenceRef       string            `json:"evidence_ref,omitempty"`
}

// UnmappedFinding is a finding whose control id matched nothing: not
// canonical, not aliased.
type UnmappedFinding struct {
	ControlID string            `json:"control_id"`
	Status    findings.Status   `json:"status"`
	Severity  findings.Severity `json:"severity"`
}

// InvalidMappingEntry is a finding whose resolved canonical id should exist
// in the catalog but does not. This is a drift signal: the catalog or alias
// map is stale.
type InvalidMappingEntry struct {
	ControlID         string `json:"control_id"`
	ResolvedControlID string `json:"resolved_control_id"`
	Reason            string `json:"reason"`
}

// Result partitions one finding set. The conservation invariant holds by
// construction: every finding lands in exactly one list.
type Result struct {
	Mapped   []MappedItem
	Unmapped []UnmappedFinding
	Invalid  []InvalidMappingEntry
}

// Resolver resolves findings against a catalog, alias map, and framework
// mapping. Resolution is pure: no clock, no I/O, no randomness.
type Resolver struct {
	catalog   *catalog.Catalog
	aliases   *AliasMap
	framework *FrameworkMapping

	// Categories whose controls carry two or more conflicting override
	// rules. A fallback to such a category's default has no single
	// unambiguous rule behind it and grades low.
	ambiguousCategories map[string]bool
}

// NewResolver builds a resolver and precomputes category ambiguity.
func NewResolver(cat *catalog.Catalog, aliases *AliasMap, framework *FrameworkMapping) *Resolver {
	r := &Resolver{
		catalog:             cat,
		aliases:             aliases,
		framework:           framework,
		ambiguousCategories: make(map[string]bool),
	}

	// A category is ambiguous when at least two of its controls have
	// overrides that disagree on targets.
	firstOverride := make(map[string][]string)
	for _, rec := range cat.Controls() {
		targets, ok := framework.ControlOverrides[rec.ID]
		if !ok {
			continue
		}
		prev, seen := firstOverride[rec.Category]
		if !seen {
			firstOverride[rec.Category] = targets
			continue
		}
		if !equalStringSlices(prev, targets) {
			r.ambiguousCategories[rec.Category] = true
		}
	}
	return r
}

// Resolve partitions a finding sequence into mapped, unmapped, and invalid,
// preserving input order within each list.
func (r *Resolver) Resolve(in []findings.Finding) Result {
	res := Result{
		Mapped:   make([]MappedItem, 0, len(in)),
		Unmapped: []UnmappedFinding{},
		Invalid:  []InvalidMappingEntry{},
	}

	for _, f := range in {
		// 1. Direct match: canonical namespace and present in the catalog.
		// This always wins over an alias-map entry for the same id.
		if r.catalog.IsCanonicalID(f.ControlID) {
			if rec, ok := r.catalog.Lookup(f.ControlID); ok {
				res.Mapped = append(res.Mapped, r.buildItem(f, rec, "", "direct collector mapping"))
				continue
			}
		}

		// 2. Aliased match via the legacy table.
		if rule, ok := r.aliases.Lookup(f.ControlID); ok {
			rec, ok := r.catalog.Lookup(rule.SBSControlID)
			if !ok {
				// The alias table references a control the catalog no
				// longer carries. Drift.
				res.Invalid = append(res.Invalid, InvalidMappingEntry{
					ControlID:         f.ControlID,
					ResolvedControlID: rule.SBSControlID,
					Reason:            "aliased target not found in imported catalog",
				})
				continue
			}
			res.Mapped = append(res.Mapped, r.buildItem(f, rec, f.ControlID, rule.Notes))
			continue
		}

		// 3. Canonical namespace but absent from the loaded catalog:
		// drift, not an unmapped finding.
		if r.catalog.IsCanonicalID(f.ControlID) {
			res.Invalid = append(res.Invalid, InvalidMappingEntry{
				ControlID:         f.ControlID,
				ResolvedControlID: f.ControlID,
				Reason:            "control not found in imported catalog",
			})
			continue
		}

		// 4. Nothing matched.
		res.Unmapped = append(res.Unmapped, UnmappedFinding{
			ControlID: f.ControlID,
			Status:    f.Status,
			Severity:  f.Severity,
		})
	}
	return res
}

func (r *Resolver) buildItem(f findings.Finding, rec catalog.ControlRecord, legacyID, notes string) MappedItem {
	sscfIDs, viaAmbiguousDefault := r.expand(rec)

	confidence := ConfidenceHigh
	if legacyID != "" {
		confidence = ConfidenceMedium
	}
	if viaAmbiguousDefault {
		confidence = ConfidenceLow
	}

	return MappedItem{
		ControlID:         rec.ID,
		LegacyControlID:   legacyID,
		Title:             rec.Title,
		Category:          rec.Category,
		MappingConfidence: confidence,
		MappingNotes:      notes,
		SSCFControlIDs:    sscfIDs,
		Status:            f.Status,
		Severity:          f.Severity,
		Owner:             f.Owner,
		DueDate:           f.DueDate,
		Remediation:       f.Remediation,
		EvidenceRef:       f.EvidenceRef,
	}
}

// expand returns the framework control ids for a canonical control, and
// whether the expansion fell through to an ambiguous category default.
// Override beats category default; the no-rule case is an empty, non-nil
// list so the gap is visible in the output.
func (r *Resolver) expand(rec catalog.ControlRecord) ([]string, bool) {
	if targets, ok := r.framework.ControlOverrides[rec.ID]; ok {
		return dedupe(targets), false
	}
	if targets, ok := r.framework.DefaultsByCategory[rec.Category]; ok {
		return dedupe(targets), r.ambiguousCategories[rec.Category]
	}
	return []string{}, false
}

// dedupe preserves first-occurrence order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
