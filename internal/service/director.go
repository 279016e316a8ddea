package service

import (
	"context"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
	"approvalflow/pkg/metrics"
)

// DirectorService is the final authority over a reviewed project.
type DirectorService struct {
	store  store.Store
	logger *zap.Logger
}

func NewDirectorService(st store.Store, logger *zap.Logger) *DirectorService {
	return &DirectorService{store: st, logger: logger}
}

// Decide renders the terminal approve/reject decision. Only a Director may
// call it, only while the project awaits direction; re-deciding an already
// decided project fails with INVALID_STATE.
func (s *DirectorService) Decide(ctx context.Context, projectID, actingUserID int64, decision model.ProjectStatus, comment string) error {
	const op = "director.decide"

	if decision != model.StatusApproved && decision != model.StatusRejected {
		return apperr.New(apperr.CodeValidation, op, projectID, "decision must be approved or rejected, got %q", decision)
	}

	profile, err := s.store.GetProfile(ctx, actingUserID)
	if err != nil {
		return err
	}
	if profile.Role != model.RoleDirector {
		return apperr.New(apperr.CodeUnauthorized, op, projectID, "only directors may decide, user %d is %s", actingUserID, profile.Role)
	}

	err = s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		p := tx.Project()
		if p.Status != model.StatusPendingDirector {
			return apperr.New(apperr.CodeInvalidState, op, projectID, "project is %s, not awaiting direction", p.Status)
		}

		from := p.Status
		p.Status = decision
		p.DirectorComment = comment
		p.DirectorID = &actingUserID
		if err := tx.SaveProject(ctx, p); err != nil {
			return err
		}
		metrics.LifecycleTransitions.WithLabelValues(string(from), string(decision)).Inc()
		return tx.AppendEvent(ctx, EventStatusChanged, StatusChangedEvent{
			ProjectID: projectID,
			From:      from,
			To:        decision,
			ActorID:   actingUserID,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("director decision rendered",
		zap.Int64("project_id", projectID),
		zap.Int64("director_id", actingUserID),
		zap.String("decision", string(decision)),
	)
	return nil
}
