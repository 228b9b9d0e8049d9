package backlog

import (
	"sort"

	"github.com/user/sbsmap/pkg/findings"
	"github.com/user/sbsmap/pkg/mapping"
)

// Transition records a status change for one control between two runs.
type Transition struct {
	ControlID string          `json:"sbs_control_id"`
	Title     string          `json:"sbs_title"`
	Prior     findings.Status `json:"prior_status"`
	Current   findings.Status `json:"current_status"`
}

// Diff is the result of comparing a current backlog against a prior-run
// snapshot. Both backlogs are explicit arguments; the comparison never
// reads implicit filesystem state.
type Diff struct {
	PriorAssessmentID   string               `json:"prior_assessment_id"`
	CurrentAssessmentID string               `json:"current_assessment_id"`
	New                 []mapping.MappedItem `json:"new"`
	Resolved            []mapping.MappedItem `json:"resolved"`
	Regressed           []Transition         `json:"regressed"`
	Improved            []Transition         `json:"improved"`
	Unchanged           []mapping.MappedItem `json:"unchanged"`
}

// statusRank orders statuses from best to worst for transition direction.
// not_applicable sits outside the ordering; any move in or out of it is
// reported as neither regression nor improvement.
var statusRank = map[findings.Status]int{
	findings.StatusPass:    0,
	findings.StatusPartial: 1,
	findings.StatusFail:    2,
}

// Compare diffs two backlogs keyed by canonical control id. A control in the
// current run only is New; in the prior run only is Resolved; present in
// both with a worse status is Regressed, with a better status Improved,
// otherwise Unchanged. Output lists are sorted by control id.
func Compare(prior, current *Backlog) *Diff {
	priorByID := make(map[string]mapping.MappedItem, len(prior.MappedItems))
	for _, item := range prior.MappedItems {
		priorByID[item.ControlID] = item
	}

	diff := &Diff{
		PriorAssessmentID:   prior.AssessmentID,
		CurrentAssessmentID: current.AssessmentID,
		New:                 []mapping.MappedItem{},
		Resolved:            []mapping.MappedItem{},
		Regressed:           []Transition{},
		Improved:            []Transition{},
		Unchanged:           []mapping.MappedItem{},
	}

	seen := make(map[string]bool, len(current.MappedItems))
	for _, item := range current.MappedItems {
		seen[item.ControlID] = true
		prev, ok := priorByID[item.ControlID]
		if !ok {
			diff.New = append(diff.New, item)
			continue
		}
		if prev.Status == item.Status {
			diff.Unchanged = append(diff.Unchanged, item)
			continue
		}
		prevRank, prevOK := statusRank[prev.Status]
		curRank, curOK := statusRank[item.Status]
		if !prevOK || !curOK {
			diff.Unchanged = append(diff.Unchanged, item)
			continue
		}
		t := Transition{ControlID: item.ControlID, Title: item.Title, Prior: prev.Status, Current: item.Status}
		if curRank > prevRank {
			diff.Regressed = append(diff.Regressed, t)
		} else {
			diff.Improved = append(diff.Improved, t)
		}
	}

	for _, item := range prior.MappedItems {
		if !seen[item.ControlID] {
			diff.Resolved = append(diff.Resolved, item)
		}
	}

	sort.Slice(diff.New, func(i, j int) bool { return diff.New[i].ControlID < diff.New[j].ControlID })
	sort.Slice(diff.Resolved, func(i, j int) bool { return diff.Resolved[i].ControlID < diff.Resolved[j].ControlID })
	sort.Slice(diff.Regressed, func(i, j int) bool { return diff.Regressed[i].ControlID < diff.Regressed[j].ControlID })
	sort.Slice(diff.Improved, func(i, j int) bool { return diff.Improved[i].ControlID < diff.Improved[j].ControlID })
	sort.Slice(diff.Unchanged, func(i, j int) bool { return diff.Unchanged[i].ControlID < diff.Unchanged[j].ControlID })

	return diff
}
