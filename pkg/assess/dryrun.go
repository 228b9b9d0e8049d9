package assess

import "github.com/user/sbsmap/pkg/findings"

// dryRunOverrides emits a realistic weak-org scenario without connecting to
// anything: roughly 40% pass, 30% partial, 30% fail across the assessable
// controls. Controls not listed here fall through to their rule with an
// empty snapshot and come back not_applicable.
var dryRunOverrides = map[string]Outcome{
	"SBS-AUTH-001": {findings.StatusFail, "No SSO providers configured [dry-run]", "Configure org-wide SSO."},
	"SBS-AUTH-002": {findings.StatusPartial, "SSO not configured, bypass governance cannot be assessed [dry-run]", ""},
	"SBS-AUTH-003": {findings.StatusFail, "No Login IP Ranges found [dry-run]", "Add Login IP Ranges to privileged profiles."},
	"SBS-AUTH-004": {findings.StatusPartial, "MFA org settings unconfirmed [dry-run]", "Verify MFA in Setup > Identity Verification."},

	"SBS-ACS-001": {findings.StatusFail, "8 admin profiles with ModifyAllData [dry-run]", "Reduce to at most 2 admin profiles."},
	"SBS-ACS-002": {findings.StatusPartial, "6 elevated permission sets [dry-run]", "Document justification for all elevated sets."},
	"SBS-ACS-003": {findings.StatusFail, "All 4 connected apps allow all users [dry-run]", "Apply admin-approved policy."},
	"SBS-ACS-004": {findings.StatusPartial, "2 super admin-equivalent profiles [dry-run]", "Document justification."},
	"SBS-ACS-005": {findings.StatusPartial, "Requires profile audit [dry-run]", "Run detailed profile review."},
	"SBS-ACS-006": {findings.StatusPartial, "Requires permission set audit [dry-run]", "Audit Use Any API Client grants."},
	"SBS-ACS-007": {findings.StatusPartial, "Non-human identity inventory required [dry-run]", "Build NHI inventory."},
	"SBS-ACS-008": {findings.StatusPartial, "NHI privilege scope requires audit [dry-run]", "Restrict NHI permissions."},
	"SBS-ACS-009": {findings.StatusPartial, "Compensating controls require manual review [dry-run]", ""},
	"SBS-ACS-010": {findings.StatusFail, "No access review process evidence found [dry-run]", "Implement quarterly access reviews."},
	"SBS-ACS-011": {findings.StatusPartial, "Change governance process requires verification [dry-run]", ""},
	"SBS-ACS-012": {findings.StatusPartial, "Login hour restrictions require profile audit [dry-run]", ""},

	"SBS-INT-002": {findings.StatusFail, "3 active remote sites have protocol security disabled [dry-run]", "Enable protocol security."},
	"SBS-INT-003": {findings.StatusPass, "12 Named Credentials found [dry-run]", ""},
	"SBS-INT-004": {findings.StatusPartial, "5 event types found but no API-specific types [dry-run]", "Enable the ApiEvent type."},

	"SBS-OAUTH-001": {findings.StatusFail, "3 connected apps allow all users [dry-run]", "Restrict to admin-approved."},
	"SBS-OAUTH-002": {findings.StatusPartial, "2/5 apps lack admin-approved restriction [dry-run]", "Apply policy to all apps."},
	"SBS-OAUTH-003": {findings.StatusPartial, "Criticality classification not documented [dry-run]", "Classify all connected apps."},
	"SBS-OAUTH-004": {findings.StatusPartial, "Vendor due diligence documentation missing [dry-run]", "Complete vendor assessments."},

	"SBS-DATA-001": {findings.StatusPartial, "Field scan required [dry-run]", "Run data classification scan."},
	"SBS-DATA-002": {findings.StatusPartial, "Field inventory requires SOQL audit [dry-run]", ""},
	"SBS-DATA-003": {findings.StatusPartial, "Backup process not verifiable via API [dry-run]", "Verify backup schedule."},
	"SBS-DATA-004": {findings.StatusFail, "0 fields with history tracking enabled [dry-run]", "Enable field history tracking."},

	"SBS-SECCONF-001": {findings.StatusPartial, "Health Check score: 64/100 [dry-run]", "Remediate to reach at least 80%."},
	"SBS-SECCONF-002": {findings.StatusPartial, "Score 64/100, deviations remain [dry-run]", "Address all failing items."},

	"SBS-DEP-003": {findings.StatusFail, "No Transaction Security Policies found [dry-run]", "Create TSPs for high-risk events."},

	"SBS-CODE-003": {findings.StatusPartial, "Apex logging requires code audit [dry-run]", ""},
	"SBS-CODE-004": {findings.StatusFail, "Sensitive data in logs cannot be ruled out [dry-run]", "Audit all Apex log statements."},
}
