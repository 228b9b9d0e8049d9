package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourcePin is the versioned source configuration for the SBS benchmark.
// The version pin is a hard contract: a source document declaring any other
// version aborts the load.
type SourcePin struct {
	BenchmarkName      string `yaml:"benchmark_name"`
	BenchmarkShortName string `yaml:"benchmark_short_name"`
	ReleaseTag         string `yaml:"release_tag"`
	VersionPin         string `yaml:"version_pin"`
	IDPrefix           string `yaml:"id_prefix"`
	LocalXMLPath       string `yaml:"local_xml_path"`
}

// LoadSourcePin reads and validates a sbs_source.yaml document.
func LoadSourcePin(path string) (SourcePin, error) {
	var pin SourcePin
	data, err := os.ReadFile(path)
	if err != nil {
		return pin, fmt.Errorf("reading source config: %w", err)
	}
	if err := yaml.Unmarshal(data, &pin); err != nil {
		return pin, fmt.Errorf("parsing source config %s: %w", path, err)
	}
	if pin.VersionPin == "" {
		return pin, fmt.Errorf("source config %s: version_pin is required", path)
	}
	if pin.IDPrefix == "" {
		return pin, fmt.Errorf("source config %s: id_prefix is required", path)
	}
	if pin.LocalXMLPath == "" {
		return pin, fmt.Errorf("source config %s: local_xml_path is required", path)
	}
	return pin, nil
}

// xmlBenchmark mirrors the SBS benchmark XML export
// (namespace https://securitybenchmark.dev/sbs/v1).
type xmlBenchmark struct {
	XMLName  xml.Name `xml:"benchmark"`
	Metadata struct {
		Title         string `xml:"title"`
		Version       string `xml:"version"`
		TotalControls string `xml:"total_controls"`
	} `xml:"metadata"`
	Controls struct {
		Categories []xmlCategory `xml:"category"`
	} `xml:"controls"`
}

type xmlCategory struct {
	Name        string       `xml:"name"`
	Description string       `xml:"description"`
	Controls    []xmlControl `xml:"control"`
}

type xmlControl struct {
	ID               string `xml:"id,attr"`
	Title            string `xml:"title"`
	Statement        string `xml:"statement"`
	Description      string `xml:"description"`
	Risk             string `xml:"risk"`
	RiskLevel        string `xml:"risk_level"`
	AuditProcedure   string `xml:"audit_procedure"`
	Remediation      string `xml:"remediation"`
	DefaultValue     string `xml:"default_value"`
	RemediationScope struct {
		Scope      string `xml:"scope"`
		EntityType string `xml:"entity_type"`
	} `xml:"remediation_scope"`
}

// Parse decodes a benchmark XML export into a Catalog, enforcing the version
// pin and the per-record required fields (id, title, category).
func Parse(r io.Reader, pin SourcePin) (*Catalog, error) {
	var doc xmlBenchmark
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid benchmark XML: %v", err)}
	}

	if doc.Metadata.Version != pin.VersionPin {
		return nil, &VersionMismatchError{Pinned: pin.VersionPin, Found: doc.Metadata.Version}
	}

	cat := &Catalog{
		Title:    doc.Metadata.Title,
		Version:  doc.Metadata.Version,
		IDPrefix: pin.IDPrefix,
		controls: make(map[string]ControlRecord),
	}

	for _, category := range doc.Controls.Categories {
		if category.Name == "" {
			return nil, &ParseError{Reason: "category missing name"}
		}
		for _, ctrl := range category.Controls {
			if ctrl.ID == "" {
				return nil, &ParseError{Field: "id", Reason: fmt.Sprintf("control in category %q missing id", category.Name)}
			}
			if ctrl.Title == "" {
				return nil, &ParseError{ControlID: ctrl.ID, Field: "title", Reason: "missing title"}
			}
			if _, dup := cat.controls[ctrl.ID]; dup {
				return nil, &ParseError{ControlID: ctrl.ID, Reason: "duplicate control id"}
			}
			cat.controls[ctrl.ID] = ControlRecord{
				ID:                  ctrl.ID,
				Title:               ctrl.Title,
				Category:            category.Name,
				CategoryDescription: category.Description,
				Statement:           ctrl.Statement,
				Description:         ctrl.Description,
				Risk:                ctrl.Risk,
				RiskLevel:           ctrl.RiskLevel,
				AuditProcedure:      ctrl.AuditProcedure,
				Remediation:         ctrl.Remediation,
				DefaultValue:        ctrl.DefaultValue,
			}
			cat.order = append(cat.order, ctrl.ID)
		}
	}

	if len(cat.controls) == 0 {
		return nil, &ParseError{Reason: "benchmark declares no controls"}
	}
	return cat, nil
}

// Load resolves the source pin's local XML path (relative to the pin file's
// directory) and parses it.
func Load(pinPath string) (*Catalog, error) {
	pin, err := LoadSourcePin(pinPath)
	if err != nil {
		return nil, err
	}
	xmlPath := pin.LocalXMLPath
	if !filepath.IsAbs(xmlPath) {
		xmlPath = filepath.Join(filepath.Dir(pinPath), xmlPath)
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("opening benchmark source: %w", err)
	}
	defer f.Close()
	return Parse(f, pin)
}
