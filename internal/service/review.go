package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
	"approvalflow/internal/workflow"
	"approvalflow/pkg/metrics"
)

// ReviewService records reviewer decisions and applies the aggregate
// outcome to the project. The whole record-aggregate-advance sequence runs
// inside one WithProject scope, so two reviewers finishing the last two
// pending slots concurrently still produce exactly one transition.
type ReviewService struct {
	store  store.Store
	logger *zap.Logger
}

func NewReviewService(st store.Store, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: st, logger: logger}
}

// RecordDecision writes the reviewer's decision into their slot and, once
// every slot is resolved, advances the project to rejected or
// pending_director exactly once.
func (s *ReviewService) RecordDecision(ctx context.Context, projectID, reviewerID int64, decision model.ReviewStatus, comment string) (workflow.Outcome, error) {
	const op = "review.record_decision"

	if !decision.Decision() {
		return "", apperr.New(apperr.CodeValidation, op, projectID, "invalid decision %q", decision)
	}

	var outcome workflow.Outcome
	err := s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		slot, err := tx.GetReviewer(ctx, reviewerID)
		if err != nil {
			if apperr.IsCode(err, apperr.CodeNotFound) {
				return apperr.New(apperr.CodeUnauthorized, op, projectID, "user %d holds no reviewer slot", reviewerID)
			}
			return err
		}
		if slot.Status != model.ReviewPending {
			return apperr.New(apperr.CodeInvalidState, op, projectID, "slot already resolved to %s", slot.Status)
		}

		p := tx.Project()
		if p.Status != model.StatusPendingReview {
			return apperr.New(apperr.CodeInvalidState, op, projectID, "project is %s, not under review", p.Status)
		}

		slot.Status = decision
		slot.Comment = comment
		slot.UpdatedAt = time.Now()
		if err := tx.UpdateReviewer(ctx, slot); err != nil {
			return err
		}

		slots, err := tx.Reviewers(ctx)
		if err != nil {
			return err
		}
		outcome = workflow.AggregateOutcome(slots)

		if next, ok := workflow.StatusAfterAggregate(outcome); ok {
			from := p.Status
			p.Status = next
			if err := tx.SaveProject(ctx, p); err != nil {
				return err
			}
			metrics.LifecycleTransitions.WithLabelValues(string(from), string(next)).Inc()
			if err := tx.AppendEvent(ctx, EventStatusChanged, StatusChangedEvent{
				ProjectID: projectID,
				From:      from,
				To:        next,
			}); err != nil {
				return err
			}
		}

		return tx.AppendEvent(ctx, EventReviewRecorded, ReviewRecordedEvent{
			ProjectID:  projectID,
			ReviewerID: reviewerID,
			Department: slot.Department,
			Decision:   decision,
			Outcome:    outcome,
		})
	})
	if err != nil {
		return "", err
	}

	metrics.ReviewDecisions.WithLabelValues(string(decision)).Inc()
	s.logger.Info("reviewer decision recorded",
		zap.Int64("project_id", projectID),
		zap.Int64("reviewer_id", reviewerID),
		zap.String("decision", string(decision)),
		zap.String("outcome", string(outcome)),
	)
	return outcome, nil
}
