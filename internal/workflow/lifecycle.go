package workflow

import "approvalflow/internal/model"

// transitions is the full lifecycle graph. rejected and completed are
// terminal; the only edges out of pending_review are the aggregate edges.
var transitions = map[model.ProjectStatus][]model.ProjectStatus{
	model.StatusPendingReview:   {model.StatusPendingDirector, model.StatusRejected},
	model.StatusPendingDirector: {model.StatusApproved, model.StatusRejected},
	model.StatusApproved:        {model.StatusInProgress},
	model.StatusInProgress:      {model.StatusCompleted},
}

// CanTransition reports whether from -> to is an edge of the lifecycle
// graph. Transitions are monotonic; no stage is ever skipped except the
// rejection shortcuts encoded above.
func CanTransition(from, to model.ProjectStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
