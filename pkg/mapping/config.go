package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasMap maps legacy or external control identifiers to canonical SBS ids.
// It is not total; absence means no aliased match exists.
type AliasMap struct {
	byLegacy map[string]AliasRule
}

// AliasRule is one legacy-to-canonical mapping row.
type AliasRule struct {
	LegacyControlID string `yaml:"legacy_control_id"`
	SBSControlID    string `yaml:"sbs_control_id"`
	Notes           string `yaml:"notes"`
}

type aliasDocument struct {
	Mappings []AliasRule `yaml:"mappings"`
}

// LoadAliasMap reads a control_mapping.yaml document. Duplicate legacy ids
// and incomplete rows are rejected at the boundary.
func LoadAliasMap(path string) (*AliasMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias map: %w", err)
	}
	var doc aliasDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing alias map %s: %w", path, err)
	}

	am := &AliasMap{byLegacy: make(map[string]AliasRule, len(doc.Mappings))}
	for i, rule := range doc.Mappings {
		if rule.LegacyControlID == "" || rule.SBSControlID == "" {
			return nil, fmt.Errorf("alias map %s: mapping %d: legacy_control_id and sbs_control_id are required", path, i)
		}
		if _, dup := am.byLegacy[rule.LegacyControlID]; dup {
			return nil, fmt.Errorf("alias map %s: duplicate legacy id %q", path, rule.LegacyControlID)
		}
		am.byLegacy[rule.LegacyControlID] = rule
	}
	return am, nil
}

// Lookup returns the alias rule for a legacy id and whether one exists.
func (a *AliasMap) Lookup(legacyID string) (AliasRule, bool) {
	rule, ok := a.byLegacy[legacyID]
	return rule, ok
}

// Len returns the number of alias rules.
func (a *AliasMap) Len() int { return len(a.byLegacy) }

// FrameworkMapping projects canonical controls onto SSCF framework controls.
// Per-control overrides take precedence over category defaults; a control
// with neither expands to an empty list, which is surfaced, never dropped.
type FrameworkMapping struct {
	ControlOverrides   map[string][]string `yaml:"control_overrides"`
	DefaultsByCategory map[string][]string `yaml:"defaults_by_category"`
}

// LoadFrameworkMapping reads a sbs_to_sscf_mapping.yaml document.
func LoadFrameworkMapping(path string) (*FrameworkMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading framework mapping: %w", err)
	}
	var fm FrameworkMapping
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("parsing framework mapping %s: %w", path, err)
	}
	for id, targets := range fm.ControlOverrides {
		if len(targets) == 0 {
			return nil, fmt.Errorf("framework mapping %s: override for %q lists no framework controls", path, id)
		}
	}
	if fm.ControlOverrides == nil {
		fm.ControlOverrides = map[string][]string{}
	}
	if fm.DefaultsByCategory == nil {
		fm.DefaultsByCategory = map[string][]string{}
	}
	return &fm, nil
}
