package adk

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/user/sbsmap/pkg/backlog"
	"github.com/user/sbsmap/pkg/benchmark"
)

// Message represents a chat message
type Message struct {
	Role    string // "user", "model", "system"
	Content string
}

// LLMProvider defines the interface for different AI models
type LLMProvider interface {
	GenerateResponse(ctx context.Context, history []Message) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Advisor turns a remediation backlog into a prioritized narrative
// using the configured LLM provider. It never feeds raw org data to
// the model, only the already-aggregated backlog and scorecard.
type Advisor struct {
	llm LLMProvider
}

func NewAdvisor(llm LLMProvider) *Advisor {
	return &Advisor{llm: llm}
}

const advisorSystemPrompt = `You are a Salesforce security remediation advisor.
You are given a gap backlog produced by mapping collector findings onto the
Salesforce Baseline Standard, plus an optional SSCF domain scorecard.
Produce a short, prioritized remediation plan: group by category, lead with
failed high-risk controls, and keep each recommendation actionable.
Do not invent control IDs that are not in the input.`

// Advise builds the advisory prompt from the backlog (and scorecard, if
// present) and returns the model's remediation narrative.
func (a *Advisor) Advise(ctx context.Context, bl *backlog.Backlog, sc *benchmark.Scorecard) (string, error) {
	if bl == nil {
		return "", fmt.Errorf("advisor requires a backlog")
	}

	history := []Message{
		{Role: "system", Content: advisorSystemPrompt},
		{Role: "user", Content: buildAdvisoryInput(bl, sc)},
	}

	return a.llm.GenerateResponse(ctx, history)
}

func buildAdvisoryInput(bl *backlog.Backlog, sc *benchmark.Scorecard) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assessment: %s (catalog %s)\n", bl.AssessmentID, bl.CatalogVersion)
	fmt.Fprintf(&b, "Findings: %d total, %d mapped, %d unmapped, %d invalid\n",
		bl.Summary.FindingsTotal, bl.Summary.MappedFindings,
		bl.Summary.UnmappedFindings, bl.Summary.InvalidMappingEntries)

	b.WriteString("\nOpen items (fail/partial):\n")
	for _, item := range bl.MappedItems {
		if item.Status != "fail" && item.Status != "partial" {
			continue
		}
		fmt.Fprintf(&b, "- %s [%s/%s] %s (category %s)\n",
			item.ControlID, item.Status, item.Severity, item.Title, item.Category)
		if item.Remediation != "" {
			fmt.Fprintf(&b, "  remediation hint: %s\n", item.Remediation)
		}
	}

	if len(bl.InvalidMappingEntries) > 0 {
		b.WriteString("\nInvalid mapping entries (drift, fix the mapping config):\n")
		for _, inv := range bl.InvalidMappingEntries {
			fmt.Fprintf(&b, "- %s: %s\n", inv.ControlID, inv.Reason)
		}
	}

	if sc != nil {
		b.WriteString("\nSSCF domain scorecard:\n")
		domains := make([]string, 0, len(sc.Domains))
		for d := range sc.Domains {
			domains = append(domains, d)
		}
		sort.Strings(domains)
		for _, d := range domains {
			ds := sc.Domains[d]
			fmt.Fprintf(&b, "- %s: %.1f%% (%s)\n", d, ds.ScorePct, ds.Status)
		}
	}

	return b.String()
}
