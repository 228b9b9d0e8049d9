package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sbsmap/pkg/catalog"
	"github.com/user/sbsmap/pkg/findings"
)

const resolverTestXML = `<benchmark xmlns="https://securitybenchmark.dev/sbs/v1">
  <metadata>
    <title>Salesforce Baseline Standard</title>
    <version>2025.1</version>
  </metadata>
  <controls>
    <category>
      <name>Authentication</name>
      <control id="SBS-AUTH-001"><title>Enforce MFA</title><risk_level>high</risk_level></control>
      <control id="SBS-AUTH-002"><title>Session timeout</title><risk_level>medium</risk_level></control>
    </category>
    <category>
      <name>Access Control</name>
      <control id="SBS-ACS-001"><title>Least privilege profiles</title></control>
      <control id="SBS-ACS-002"><title>Review permission sets</title></control>
    </category>
    <category>
      <name>Data Protection</name>
      <control id="SBS-DATA-001"><title>Encrypt at rest</title></control>
    </category>
  </controls>
</benchmark>`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse(strings.NewReader(resolverTestXML), catalog.SourcePin{
		VersionPin:   "2025.1",
		IDPrefix:     "SBS-",
		LocalXMLPath: "unused.xml",
	})
	require.NoError(t, err)
	return cat
}

func testAliases() *AliasMap {
	return &AliasMap{byLegacy: map[string]AliasRule{
		"SFSEC-AUTH-01": {LegacyControlID: "SFSEC-AUTH-01", SBSControlID: "SBS-AUTH-001", Notes: "renamed in 2025.1"},
		"SFSEC-OLD-99":  {LegacyControlID: "SFSEC-OLD-99", SBSControlID: "SBS-GONE-001", Notes: "target retired"},
		"SBS-AUTH-002":  {LegacyControlID: "SBS-AUTH-002", SBSControlID: "SBS-AUTH-001", Notes: "stale self alias"},
	}}
}

func testFramework() *FrameworkMapping {
	return &FrameworkMapping{
		ControlOverrides: map[string][]string{
			"SBS-AUTH-001": {"SSCF-IAM-01", "SSCF-IAM-02", "SSCF-IAM-01"},
			"SBS-ACS-001":  {"SSCF-IAM-03"},
			"SBS-ACS-002":  {"SSCF-IAM-04"},
		},
		DefaultsByCategory: map[string][]string{
			"Authentication": {"SSCF-IAM-01"},
			"Access Control": {"SSCF-IAM-05"},
		},
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(testCatalog(t), testAliases(), testFramework())
}

func TestResolveDirectMatch(t *testing.T) {
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SBS-AUTH-001", Status: findings.StatusFail, Severity: findings.SeverityHigh, Owner: "secops"},
	})

	require.Len(t, res.Mapped, 1)
	item := res.Mapped[0]
	assert.Equal(t, "SBS-AUTH-001", item.ControlID)
	assert.Empty(t, item.LegacyControlID)
	assert.Equal(t, ConfidenceHigh, item.MappingConfidence)
	assert.Equal(t, "Enforce MFA", item.Title)
	assert.Equal(t, findings.StatusFail, item.Status)
	assert.Equal(t, "secops", item.Owner)
	assert.Equal(t, []string{"SSCF-IAM-01", "SSCF-IAM-02"}, item.SSCFControlIDs, "override targets de-duplicated in order")
}

func TestResolveCategoryDefaultKeepsHighConfidence(t *testing.T) {
	// SBS-AUTH-002 has no override; Authentication's default applies. Only
	// one Authentication control carries an override, so the category is
	// unambiguous and the direct match stays high confidence.
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SBS-AUTH-002", Status: findings.StatusPartial, Severity: findings.SeverityMedium},
	})

	require.Len(t, res.Mapped, 1)
	assert.Equal(t, ConfidenceHigh, res.Mapped[0].MappingConfidence)
	assert.Equal(t, []string{"SSCF-IAM-01"}, res.Mapped[0].SSCFControlIDs)
}

func TestResolveAliasedMatch(t *testing.T) {
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SFSEC-AUTH-01", Status: findings.StatusPartial, Severity: findings.SeverityMedium},
	})

	require.Len(t, res.Mapped, 1)
	item := res.Mapped[0]
	assert.Equal(t, "SBS-AUTH-001", item.ControlID)
	assert.Equal(t, "SFSEC-AUTH-01", item.LegacyControlID)
	assert.Equal(t, ConfidenceMedium, item.MappingConfidence)
	assert.Equal(t, "renamed in 2025.1", item.MappingNotes)
}

func TestResolveDirectMatchBeatsAlias(t *testing.T) {
	// SBS-AUTH-002 exists in the catalog and also has a stale alias entry
	// pointing at SBS-AUTH-001. The catalog wins.
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SBS-AUTH-002", Status: findings.StatusPass, Severity: findings.SeverityLow},
	})

	require.Len(t, res.Mapped, 1)
	assert.Equal(t, "SBS-AUTH-002", res.Mapped[0].ControlID)
	assert.Equal(t, ConfidenceHigh, res.Mapped[0].MappingConfidence)
	assert.Empty(t, res.Mapped[0].LegacyControlID)
}

func TestResolveCanonicalButAbsentIsDrift(t *testing.T) {
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SBS-FUTURE-042", Status: findings.StatusFail, Severity: findings.SeverityHigh},
	})

	assert.Empty(t, res.Mapped)
	assert.Empty(t, res.Unmapped)
	require.Len(t, res.Invalid, 1)
	assert.Equal(t, "SBS-FUTURE-042", res.Invalid[0].ControlID)
	assert.Equal(t, "SBS-FUTURE-042", res.Invalid[0].ResolvedControlID)
	assert.Contains(t, res.Invalid[0].Reason, "not found in imported catalog")
}

func TestResolveAliasedTargetAbsentIsDrift(t *testing.T) {
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SFSEC-OLD-99", Status: findings.StatusFail, Severity: findings.SeverityLow},
	})

	require.Len(t, res.Invalid, 1)
	assert.Equal(t, "SFSEC-OLD-99", res.Invalid[0].ControlID)
	assert.Equal(t, "SBS-GONE-001", res.Invalid[0].ResolvedControlID)
}

func TestResolveUnknownIDIsUnmapped(t *testing.T) {
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "CUSTOM-CHECK-7", Status: findings.StatusFail, Severity: findings.SeverityLow},
	})

	require.Len(t, res.Unmapped, 1)
	assert.Equal(t, "CUSTOM-CHECK-7", res.Unmapped[0].ControlID)
	assert.Equal(t, findings.StatusFail, res.Unmapped[0].Status)
}

func TestResolveEmptyExpansionIsSurfaced(t *testing.T) {
	// SBS-DATA-001 has no override and Data Protection has no category
	// default. The mapped item still appears, with an empty target list.
	res := newTestResolver(t).Resolve([]findings.Finding{
		{ControlID: "SBS-DATA-001", Status: findings.StatusFail, Severity: findings.SeverityHigh},
	})

	require.Len(t, res.Mapped, 1)
	require.NotNil(t, res.Mapped[0].SSCFControlIDs)
	assert.Empty(t, res.Mapped[0].SSCFControlIDs)
}

func TestResolveAmbiguousCategoryDefaultGradesLow(t *testing.T) {
	// Access Control has two controls with different override targets, so a
	// hypothetical third control falling through to the category default is
	// ambiguous. Authentication has a single override rule and is not.
	cat, err := catalog.Parse(strings.NewReader(`<benchmark xmlns="https://securitybenchmark.dev/sbs/v1">
  <metadata><title>SBS</title><version>2025.1</version></metadata>
  <controls>
    <category>
      <name>Access Control</name>
      <control id="SBS-ACS-001"><title>A</title></control>
      <control id="SBS-ACS-002"><title>B</title></control>
      <control id="SBS-ACS-003"><title>C</title></control>
    </category>
  </controls>
</benchmark>`), catalog.SourcePin{VersionPin: "2025.1", IDPrefix: "SBS-", LocalXMLPath: "unused.xml"})
	require.NoError(t, err)

	r := NewResolver(cat, &AliasMap{byLegacy: map[string]AliasRule{}}, testFramework())
	res := r.Resolve([]findings.Finding{
		{ControlID: "SBS-ACS-003", Status: findings.StatusFail, Severity: findings.SeverityMedium},
	})

	require.Len(t, res.Mapped, 1)
	assert.Equal(t, ConfidenceLow, res.Mapped[0].MappingConfidence)
	assert.Equal(t, []string{"SSCF-IAM-05"}, res.Mapped[0].SSCFControlIDs)
}

func TestResolveConservation(t *testing.T) {
	in := []findings.Finding{
		{ControlID: "SBS-AUTH-001", Status: findings.StatusFail, Severity: findings.SeverityHigh},
		{ControlID: "SFSEC-AUTH-01", Status: findings.StatusPass, Severity: findings.SeverityLow},
		{ControlID: "SBS-FUTURE-042", Status: findings.StatusFail, Severity: findings.SeverityHigh},
		{ControlID: "SFSEC-OLD-99", Status: findings.StatusPartial, Severity: findings.SeverityMedium},
		{ControlID: "CUSTOM-CHECK-7", Status: findings.StatusFail, Severity: findings.SeverityLow},
		{ControlID: "SBS-DATA-001", Status: findings.StatusNotApplicable, Severity: findings.SeverityLow},
	}

	res := newTestResolver(t).Resolve(in)
	assert.Equal(t, len(in), len(res.Mapped)+len(res.Unmapped)+len(res.Invalid))
	assert.Len(t, res.Mapped, 3)
	assert.Len(t, res.Invalid, 2)
	assert.Len(t, res.Unmapped, 1)
}

func TestResolveIsDeterministic(t *testing.T) {
	in := []findings.Finding{
		{ControlID: "SBS-AUTH-001", Status: findings.StatusFail, Severity: findings.SeverityHigh},
		{ControlID: "SFSEC-AUTH-01", Status: findings.StatusPass, Severity: findings.SeverityLow},
		{ControlID: "CUSTOM-CHECK-7", Status: findings.StatusFail, Severity: findings.SeverityLow},
	}

	r := newTestResolver(t)
	first := r.Resolve(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Resolve(in))
	}
}

func TestResolveEmptyInput(t *testing.T) {
	res := newTestResolver(t).Resolve(nil)
	assert.Empty(t, res.Mapped)
	assert.Empty(t, res.Unmapped)
	assert.Empty(t, res.Invalid)
}
