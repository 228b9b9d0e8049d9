package assess

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot is the collector output consumed by the assessor: one JSON object
// per collected scope (auth, access, integrations, oauth, event-monitoring,
// secconf, transaction-security). The assessor is read-only and never
// connects to the platform itself.
type Snapshot struct {
	Org    string                    `json:"org"`
	Scopes map[string]map[string]any `json:"raw"`
}

// LoadSnapshot reads a collector output file. Both shapes produced by the
// collector are handled: a multi-scope document keyed by scope name, and a
// single-scope document whose raw object is the scope data itself.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collector output: %w", err)
	}
	var doc struct {
		Org string         `json:"org"`
		Raw map[string]any `json:"raw"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing collector output %s: %w", path, err)
	}

	snap := &Snapshot{Org: doc.Org, Scopes: make(map[string]map[string]any)}
	for name, v := range doc.Raw {
		if scope, ok := v.(map[string]any); ok {
			snap.Scopes[name] = scope
		}
	}
	if len(snap.Scopes) == 0 && len(doc.Raw) > 0 {
		// Single-scope output: raw IS the scope data. The rule functions
		// probe every scope name against it.
		snap.Scopes[""] = doc.Raw
	}
	return snap, nil
}

// Scope returns the named scope's data, handling single-scope snapshots.
func (s *Snapshot) Scope(name string) map[string]any {
	if s == nil {
		return nil
	}
	if scope, ok := s.Scopes[name]; ok {
		return scope
	}
	if scope, ok := s.Scopes[""]; ok {
		return scope
	}
	return nil
}

// total extracts totalSize from a SOQL result object.
func total(v any) int {
	obj, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	if n, ok := obj["totalSize"].(float64); ok {
		return int(n)
	}
	return 0
}

// records extracts the records list from a SOQL result object.
func records(v any) []map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := obj["records"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if rec, ok := r.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

func boolField(rec map[string]any, field string) bool {
	b, _ := rec[field].(bool)
	return b
}
