package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/attestia/jobcore/pkg/jobs/core/domain/model"
	eligibility "github.com/attestia/jobcore/pkg/jobs/engine/eligibility"
)

func TestEvaluateFiltersByAttendance(t *testing.T) {
	evaluator := eligibility.NewEvaluator()
	participants := []model.Participant{
		{ID: "p-1", AttendancePercent: 95},
		{ID: "p-2", AttendancePercent: 79.9},
		{ID: "p-3", AttendancePercent: 80},
	}

	items := evaluator.Evaluate(participants, &model.EligibilityCriteria{MinimumAttendancePercentage: 80})

	// The bound is inclusive and input order is preserved.
	assert.Len(t, items, 2)
	assert.Equal(t, "p-1", items[0].ID)
	assert.Equal(t, "p-3", items[1].ID)
}

func TestEvaluateNilCriteriaAdmitsEveryone(t *testing.T) {
	evaluator := eligibility.NewEvaluator()
	participants := []model.Participant{
		{ID: "p-1", AttendancePercent: 0},
		{ID: "p-2", AttendancePercent: 100},
	}

	items := evaluator.Evaluate(participants, nil)
	assert.Len(t, items, 2)
}

func TestEvaluateCarriesAttributes(t *testing.T) {
	evaluator := eligibility.NewEvaluator()
	participants := []model.Participant{
		{ID: "p-1", AttendancePercent: 100, Attributes: map[string]string{"email": "a@example.com"}},
	}

	items := evaluator.Evaluate(participants, &model.EligibilityCriteria{})
	assert.Equal(t, "a@example.com", items[0].Attributes["email"])
}

func TestEvaluateEmptyPopulation(t *testing.T) {
	evaluator := eligibility.NewEvaluator()
	items := evaluator.Evaluate(nil, &model.EligibilityCriteria{MinimumAttendancePercentage: 50})
	assert.Empty(t, items)
}
