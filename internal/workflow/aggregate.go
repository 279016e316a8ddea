// Package workflow holds the pure decision logic of the approval engine:
// reviewer aggregation, lifecycle transitions, progress and budget-variance
// computation. No I/O happens here.
package workflow

import "approvalflow/internal/model"

type Outcome string

const (
	// OutcomeStillPending means at least one reviewer slot has not decided;
	// no project-level transition happens.
	OutcomeStillPending Outcome = "still_pending"

	// OutcomeRejected means every slot decided and at least one rejected.
	OutcomeRejected Outcome = "rejected"

	// OutcomeReadyForDirector means every slot decided and none rejected;
	// needs_info counts as resolved.
	OutcomeReadyForDirector Outcome = "ready_for_director"
)

// AggregateOutcome combines all reviewer slots of one project. A rejection
// dominates once every slot is resolved; a single pending slot dominates
// everything.
func AggregateOutcome(slots []model.ReviewerSlot) Outcome {
	rejected := false
	for _, s := range slots {
		switch s.Status {
		case model.ReviewPending:
			return OutcomeStillPending
		case model.ReviewRejected:
			rejected = true
		}
	}
	if rejected {
		return OutcomeRejected
	}
	return OutcomeReadyForDirector
}

// StatusAfterAggregate maps a resolved aggregate outcome to the project
// status it advances to. ok is false for OutcomeStillPending.
func StatusAfterAggregate(o Outcome) (model.ProjectStatus, bool) {
	switch o {
	case OutcomeRejected:
		return model.StatusRejected, true
	case OutcomeReadyForDirector:
		return model.StatusPendingDirector, true
	}
	return "", false
}
