package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"approvalflow/internal/model"
)

func slots(statuses ...model.ReviewStatus) []model.ReviewerSlot {
	out := make([]model.ReviewerSlot, len(statuses))
	for i, s := range statuses {
		out[i] = model.ReviewerSlot{ProjectID: 1, ReviewerID: int64(i + 1), Status: s}
	}
	return out
}

func TestAggregateOutcome(t *testing.T) {
	tests := []struct {
		name  string
		slots []model.ReviewerSlot
		want  Outcome
	}{
		{"no slots waived", nil, OutcomeReadyForDirector},
		{"all pending", slots(model.ReviewPending, model.ReviewPending), OutcomeStillPending},
		{"one pending dominates rejection", slots(model.ReviewRejected, model.ReviewPending), OutcomeStillPending},
		{"all approved", slots(model.ReviewApproved, model.ReviewApproved, model.ReviewApproved), OutcomeReadyForDirector},
		{"needs_info counts as resolved", slots(model.ReviewApproved, model.ReviewNeedsInfo), OutcomeReadyForDirector},
		{"two approved one rejected", slots(model.ReviewApproved, model.ReviewApproved, model.ReviewRejected), OutcomeRejected},
		{"single rejection", slots(model.ReviewRejected), OutcomeRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateOutcome(tt.slots))
		})
	}
}

func TestStatusAfterAggregate(t *testing.T) {
	st, ok := StatusAfterAggregate(OutcomeRejected)
	assert.True(t, ok)
	assert.Equal(t, model.StatusRejected, st)

	st, ok = StatusAfterAggregate(OutcomeReadyForDirector)
	assert.True(t, ok)
	assert.Equal(t, model.StatusPendingDirector, st)

	_, ok = StatusAfterAggregate(OutcomeStillPending)
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]model.ProjectStatus{
		{model.StatusPendingReview, model.StatusPendingDirector},
		{model.StatusPendingReview, model.StatusRejected},
		{model.StatusPendingDirector, model.StatusApproved},
		{model.StatusPendingDirector, model.StatusRejected},
		{model.StatusApproved, model.StatusInProgress},
		{model.StatusInProgress, model.StatusCompleted},
	}
	for _, edge := range allowed {
		assert.True(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	denied := [][2]model.ProjectStatus{
		{model.StatusPendingReview, model.StatusApproved},
		{model.StatusPendingReview, model.StatusInProgress},
		{model.StatusApproved, model.StatusCompleted},
		{model.StatusRejected, model.StatusPendingReview},
		{model.StatusCompleted, model.StatusInProgress},
		{model.StatusApproved, model.StatusRejected},
	}
	for _, edge := range denied {
		assert.False(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestProgress(t *testing.T) {
	ms := func(statuses ...model.MilestoneStatus) []model.Milestone {
		out := make([]model.Milestone, len(statuses))
		for i, s := range statuses {
			out[i] = model.Milestone{Status: s}
		}
		return out
	}

	assert.Equal(t, 0, Progress(nil))
	assert.Equal(t, 33, Progress(ms(model.MilestoneCompleted, model.MilestoneNotStarted, model.MilestoneInProgress)))
	assert.Equal(t, 67, Progress(ms(model.MilestoneCompleted, model.MilestoneCompleted, model.MilestoneNotStarted)))
	assert.Equal(t, 100, Progress(ms(model.MilestoneCompleted)))
	assert.Equal(t, 50, Progress(ms(model.MilestoneCompleted, model.MilestoneInProgress)))
	assert.Equal(t, 0, Progress(ms(model.MilestoneNotStarted)))
}

func TestVariance(t *testing.T) {
	tests := []struct {
		name       string
		budget     float64
		spent      float64
		pct        float64
		severity   Severity
		overBudget bool
	}{
		{"critical near ceiling", 10000, 9500, 95, SeverityCritical, false},
		{"warning band", 10000, 8000, 80, SeverityWarning, false},
		{"normal", 10000, 2500, 25, SeverityNormal, false},
		{"exactly 75 stays normal", 10000, 7500, 75, SeverityNormal, false},
		{"exactly 90 stays warning", 10000, 9000, 90, SeverityWarning, false},
		{"over budget saturates", 10000, 12000, 100, SeverityCritical, true},
		{"zero budget zero spend", 0, 0, 0, SeverityNormal, false},
		{"zero budget with spend", 0, 1, 100, SeverityCritical, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Variance(tt.budget, tt.spent)
			assert.InDelta(t, tt.pct, v.PercentUsed, 0.0001)
			assert.Equal(t, tt.severity, v.Severity)
			assert.Equal(t, tt.overBudget, v.OverBudget)
			assert.Equal(t, tt.budget, v.Budget)
			assert.Equal(t, tt.spent, v.Spent)
		})
	}
}
