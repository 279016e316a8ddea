package workflow

import (
	"math"

	"approvalflow/internal/model"
)

// Progress derives the stored project progress from the full milestone set:
// round(100 * completed / total), 0 when no milestones exist.
func Progress(milestones []model.Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	completed := 0
	for _, m := range milestones {
		if m.Status == model.MilestoneCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(milestones)) * 100))
}
