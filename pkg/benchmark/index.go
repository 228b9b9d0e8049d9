package benchmark

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IndexControl is one SSCF framework control as declared by the control
// index document.
type IndexControl struct {
	SSCFControlID string `yaml:"sscf_control_id"`
	Domain        string `yaml:"domain"`
	Title         string `yaml:"title"`
	OwnerTeam     string `yaml:"owner_team"`
}

// Index is the full framework control index: every SSCF control, grouped by
// domain for coverage scoring.
type Index struct {
	Version  string
	byID     map[string]IndexControl
	byDomain map[string][]string
}

type indexDocument struct {
	Version  string         `yaml:"version"`
	Controls []IndexControl `yaml:"controls"`
}

// LoadIndex reads a sscf_control_index.yaml document. Controls missing an id
// or domain, and duplicate ids, are rejected.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SSCF index: %w", err)
	}
	var doc indexDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing SSCF index %s: %w", path, err)
	}

	idx := &Index{
		Version:  doc.Version,
		byID:     make(map[string]IndexControl, len(doc.Controls)),
		byDomain: make(map[string][]string),
	}
	for i, ctrl := range doc.Controls {
		if ctrl.SSCFControlID == "" {
			return nil, fmt.Errorf("SSCF index %s: control %d missing sscf_control_id", path, i)
		}
		if ctrl.Domain == "" {
			return nil, fmt.Errorf("SSCF index %s: control %q missing domain", path, ctrl.SSCFControlID)
		}
		if _, dup := idx.byID[ctrl.SSCFControlID]; dup {
			return nil, fmt.Errorf("SSCF index %s: duplicate control id %q", path, ctrl.SSCFControlID)
		}
		idx.byID[ctrl.SSCFControlID] = ctrl
		idx.byDomain[ctrl.Domain] = append(idx.byDomain[ctrl.Domain], ctrl.SSCFControlID)
	}
	if len(idx.byID) == 0 {
		return nil, fmt.Errorf("SSCF index %s: no controls declared", path)
	}
	return idx, nil
}

// NewIndex builds an index directly from controls; used by tests and
// embedding callers.
func NewIndex(version string, controls []IndexControl) (*Index, error) {
	idx := &Index{
		Version:  version,
		byID:     make(map[string]IndexControl, len(controls)),
		byDomain: make(map[string][]string),
	}
	for _, ctrl := range controls {
		if ctrl.SSCFControlID == "" || ctrl.Domain == "" {
			return nil, fmt.Errorf("SSCF control requires id and domain")
		}
		if _, dup := idx.byID[ctrl.SSCFControlID]; dup {
			return nil, fmt.Errorf("duplicate SSCF control id %q", ctrl.SSCFControlID)
		}
		idx.byID[ctrl.SSCFControlID] = ctrl
		idx.byDomain[ctrl.Domain] = append(idx.byDomain[ctrl.Domain], ctrl.SSCFControlID)
	}
	return idx, nil
}

// Lookup returns the index entry for an SSCF control id.
func (i *Index) Lookup(id string) (IndexControl, bool) {
	ctrl, ok := i.byID[id]
	return ctrl, ok
}

// Len returns the number of framework controls in the index.
func (i *Index) Len() int { return len(i.byID) }
