// Package eligibility filters event participants against a certificate job's
// eligibility criteria.
package eligibility

import (
	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
)

// Evaluator selects the participants a certificate job will cover.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns a work item for every participant meeting the criteria,
// preserving the input order. The attendance bound is inclusive. A nil
// criteria admits everyone.
func (e *Evaluator) Evaluate(participants []model.Participant, criteria *model.EligibilityCriteria) []model.WorkItem {
	items := make([]model.WorkItem, 0, len(participants))
	for _, p := range participants {
		if criteria != nil && p.AttendancePercent < criteria.MinimumAttendancePercentage {
			continue
		}
		items = append(items, model.WorkItem{ID: p.ID, Attributes: p.Attributes})
	}
	return items
}
