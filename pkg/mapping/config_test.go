package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAliasMap(t *testing.T) {
	path := writeTempYAML(t, "control_mapping.yaml", `
mappings:
  - legacy_control_id: SFSEC-AUTH-01
    sbs_control_id: SBS-AUTH-001
    notes: renamed in 2025.1
  - legacy_control_id: SFSEC-AUTH-02
    sbs_control_id: SBS-AUTH-002
`)
	m, err := LoadAliasMap(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	rule, ok := m.Lookup("SFSEC-AUTH-01")
	require.True(t, ok)
	assert.Equal(t, "SBS-AUTH-001", rule.SBSControlID)

	_, ok = m.Lookup("SFSEC-NOPE")
	assert.False(t, ok)
}

func TestLoadAliasMapRejectsDuplicateLegacyID(t *testing.T) {
	path := writeTempYAML(t, "control_mapping.yaml", `
mappings:
  - legacy_control_id: SFSEC-AUTH-01
    sbs_control_id: SBS-AUTH-001
  - legacy_control_id: SFSEC-AUTH-01
    sbs_control_id: SBS-AUTH-002
`)
	_, err := LoadAliasMap(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SFSEC-AUTH-01")
}

func TestLoadAliasMapRejectsIncompleteRow(t *testing.T) {
	path := writeTempYAML(t, "control_mapping.yaml", `
mappings:
  - legacy_control_id: SFSEC-AUTH-01
`)
	_, err := LoadAliasMap(path)
	require.Error(t, err)
}

func TestLoadFrameworkMapping(t *testing.T) {
	path := writeTempYAML(t, "sbs_to_sscf_mapping.yaml", `
control_overrides:
  SBS-AUTH-001: [SSCF-IAM-01, SSCF-IAM-02]
defaults_by_category:
  Authentication: [SSCF-IAM-01]
`)
	fm, err := LoadFrameworkMapping(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SSCF-IAM-01", "SSCF-IAM-02"}, fm.ControlOverrides["SBS-AUTH-001"])
	assert.Equal(t, []string{"SSCF-IAM-01"}, fm.DefaultsByCategory["Authentication"])
}

func TestLoadFrameworkMappingRejectsEmptyOverride(t *testing.T) {
	path := writeTempYAML(t, "sbs_to_sscf_mapping.yaml", `
control_overrides:
  SBS-AUTH-001: []
`)
	_, err := LoadFrameworkMapping(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SBS-AUTH-001")
}
