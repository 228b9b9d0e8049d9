package catalog

import (
	"fmt"
	"strings"
)

// ControlRecord is one canonical SBS benchmark control, immutable for the run.
type ControlRecord struct {
	ID                  string `json:"control_id"`
	Title               string `json:"title"`
	Category            string `json:"category"`
	CategoryDescription string `json:"category_description,omitempty"`
	Statement           string `json:"statement,omitempty"`
	Description         string `json:"description,omitempty"`
	Risk                string `json:"risk,omitempty"`
	RiskLevel           string `json:"risk_level,omitempty"`
	AuditProcedure      string `json:"audit_procedure,omitempty"`
	Remediation         string `json:"remediation,omitempty"`
	DefaultValue        string `json:"default_value,omitempty"`
}

// Catalog is the normalized benchmark: controls keyed by id, plus the
// id-namespace rule used to decide whether an arbitrary identifier claims
// to be canonical.
type Catalog struct {
	Title    string
	Version  string
	IDPrefix string

	controls map[string]ControlRecord
	order    []string
}

// ParseError reports a malformed control source. Fatal: the run must not
// continue on a partially-understood catalog.
type ParseError struct {
	ControlID string
	Field     string
	Reason    string
}

func (e *ParseError) Error() string {
	if e.ControlID != "" {
		return fmt.Sprintf("catalog parse error: control %q: %s", e.ControlID, e.Reason)
	}
	return fmt.Sprintf("catalog parse error: %s", e.Reason)
}

// VersionMismatchError reports that the source document's embedded version
// does not match the configured pin. Fatal: catalog drift is never absorbed.
type VersionMismatchError struct {
	Pinned string
	Found  string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("catalog version mismatch: pinned %q but source declares %q", e.Pinned, e.Found)
}

// Lookup returns the control record for id and whether it exists.
func (c *Catalog) Lookup(id string) (ControlRecord, bool) {
	rec, ok := c.controls[id]
	return rec, ok
}

// IsCanonicalID reports whether id belongs to the catalog's declared id
// namespace. Membership in the namespace says nothing about presence in the
// catalog; that distinction is what separates drift from an unmapped finding.
func (c *Catalog) IsCanonicalID(id string) bool {
	return c.IDPrefix != "" && strings.HasPrefix(id, c.IDPrefix)
}

// Len returns the number of controls.
func (c *Catalog) Len() int {
	return len(c.controls)
}

// ControlIDs returns control ids in source document order.
func (c *Catalog) ControlIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Controls returns all records in source document order.
func (c *Catalog) Controls() []ControlRecord {
	out := make([]ControlRecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.controls[id])
	}
	return out
}
