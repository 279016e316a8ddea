package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
	"approvalflow/internal/workflow"
	"approvalflow/pkg/metrics"
)

// ExecutionService tracks approved projects through their execution phase:
// start/complete, milestones and derived progress, issues, free-text
// updates, and budget variance.
type ExecutionService struct {
	store  store.Store
	logger *zap.Logger
}

func NewExecutionService(st store.Store, logger *zap.Logger) *ExecutionService {
	return &ExecutionService{store: st, logger: logger}
}

// owner-or-administrator check shared by Start and Complete.
func (s *ExecutionService) authorizeOperator(ctx context.Context, op string, p *model.Project, actingUserID int64) error {
	if p.SubmitterID == actingUserID {
		return nil
	}
	profile, err := s.store.GetProfile(ctx, actingUserID)
	if err != nil {
		return err
	}
	if profile.Role != model.RoleAdministrator {
		return apperr.New(apperr.CodeUnauthorized, op, p.ID, "user %d is neither owner nor administrator", actingUserID)
	}
	return nil
}

// Start moves an approved project into execution, stamping the start date.
func (s *ExecutionService) Start(ctx context.Context, projectID, actingUserID int64) error {
	const op = "execution.start"

	return s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		p := tx.Project()
		if err := s.authorizeOperator(ctx, op, p, actingUserID); err != nil {
			return err
		}
		if !workflow.CanTransition(p.Status, model.StatusInProgress) {
			return apperr.New(apperr.CodeInvalidState, op, projectID, "project is %s, not approved", p.Status)
		}

		now := time.Now()
		p.StartDate = &now
		p.Status = model.StatusInProgress
		if err := tx.SaveProject(ctx, p); err != nil {
			return err
		}
		metrics.LifecycleTransitions.WithLabelValues(string(model.StatusApproved), string(model.StatusInProgress)).Inc()
		return tx.AppendEvent(ctx, EventStatusChanged, StatusChangedEvent{
			ProjectID: projectID,
			From:      model.StatusApproved,
			To:        model.StatusInProgress,
			ActorID:   actingUserID,
		})
	})
}

// Complete finishes an in-progress project. Completion is an explicit
// operator action: progress is forced to 100 regardless of the milestone
// set.
func (s *ExecutionService) Complete(ctx context.Context, projectID, actingUserID int64) error {
	const op = "execution.complete"

	return s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		p := tx.Project()
		if err := s.authorizeOperator(ctx, op, p, actingUserID); err != nil {
			return err
		}
		if !workflow.CanTransition(p.Status, model.StatusCompleted) {
			return apperr.New(apperr.CodeInvalidState, op, projectID, "project is %s, not in progress", p.Status)
		}

		now := time.Now()
		p.EndDate = &now
		p.Status = model.StatusCompleted
		p.Progress = 100
		if err := tx.SaveProject(ctx, p); err != nil {
			return err
		}
		metrics.LifecycleTransitions.WithLabelValues(string(model.StatusInProgress), string(model.StatusCompleted)).Inc()
		return tx.AppendEvent(ctx, EventStatusChanged, StatusChangedEvent{
			ProjectID: projectID,
			From:      model.StatusInProgress,
			To:        model.StatusCompleted,
			ActorID:   actingUserID,
		})
	})
}

type MilestoneInput struct {
	Name        string    `json:"name"`
	DueDate     time.Time `json:"due_date"`
	Description string    `json:"description"`
}

// AddMilestone appends a not_started milestone and recomputes the stored
// progress, which shrinks when the denominator grows.
func (s *ExecutionService) AddMilestone(ctx context.Context, projectID int64, in MilestoneInput) (*model.Milestone, error) {
	const op = "execution.add_milestone"

	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.CodeValidation, op, projectID, "milestone name is required")
	}
	if in.DueDate.IsZero() {
		return nil, apperr.New(apperr.CodeValidation, op, projectID, "milestone due date is required")
	}

	m := &model.Milestone{
		Name:        in.Name,
		DueDate:     in.DueDate,
		Description: in.Description,
		Status:      model.MilestoneNotStarted,
	}
	err := s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		if err := tx.AddMilestone(ctx, m); err != nil {
			return err
		}
		return s.syncProgress(ctx, tx, m.ID, m.Status)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMilestoneStatus sets the milestone's status, stamps or clears the
// completion date, and recomputes the project progress from the full
// milestone set in the same transaction.
func (s *ExecutionService) UpdateMilestoneStatus(ctx context.Context, projectID, milestoneID int64, newStatus model.MilestoneStatus) error {
	const op = "execution.update_milestone"

	if !newStatus.Valid() {
		return apperr.New(apperr.CodeValidation, op, projectID, "invalid milestone status %q", newStatus)
	}

	return s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		m, err := tx.GetMilestone(ctx, milestoneID)
		if err != nil {
			return err
		}

		m.Status = newStatus
		if newStatus == model.MilestoneCompleted {
			now := time.Now()
			m.CompletionDate = &now
		} else {
			m.CompletionDate = nil
		}
		if err := tx.UpdateMilestone(ctx, m); err != nil {
			return err
		}
		return s.syncProgress(ctx, tx, milestoneID, newStatus)
	})
}

// syncProgress re-derives Project.Progress after a milestone mutation so the
// stored value always equals round(100 * completed / total).
func (s *ExecutionService) syncProgress(ctx context.Context, tx store.ProjectTx, milestoneID int64, status model.MilestoneStatus) error {
	milestones, err := tx.Milestones(ctx)
	if err != nil {
		return err
	}
	p := tx.Project()
	p.Progress = workflow.Progress(milestones)
	if err := tx.SaveProject(ctx, p); err != nil {
		return err
	}
	return tx.AppendEvent(ctx, EventMilestoneChanged, MilestoneChangedEvent{
		ProjectID:   p.ID,
		MilestoneID: milestoneID,
		Status:      status,
		Progress:    p.Progress,
	})
}

// ReportIssue appends an open issue attributed to the reporter by name.
func (s *ExecutionService) ReportIssue(ctx context.Context, projectID int64, description string, reporter *model.UserProfile) (*model.Issue, error) {
	const op = "execution.report_issue"

	if strings.TrimSpace(description) == "" {
		return nil, apperr.New(apperr.CodeValidation, op, projectID, "issue description is required")
	}

	iss := &model.Issue{
		Description: description,
		ReportedBy:  reporter.Name,
		Status:      model.IssueOpen,
	}
	err := s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		if err := tx.AddIssue(ctx, iss); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, EventIssueReported, IssueEvent{ProjectID: projectID, IssueID: iss.ID})
	})
	if err != nil {
		return nil, err
	}
	return iss, nil
}

// ResolveIssue closes an open issue. An empty resolution or a non-open
// issue fails with INVALID_STATE; an issue can never be resolved twice.
func (s *ExecutionService) ResolveIssue(ctx context.Context, projectID, issueID int64, resolution string) error {
	const op = "execution.resolve_issue"

	if strings.TrimSpace(resolution) == "" {
		return apperr.New(apperr.CodeInvalidState, op, projectID, "resolution text is required")
	}

	return s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		iss, err := tx.GetIssue(ctx, issueID)
		if err != nil {
			return err
		}
		if iss.Status != model.IssueOpen {
			return apperr.New(apperr.CodeInvalidState, op, projectID, "issue %d is already %s", issueID, iss.Status)
		}

		now := time.Now()
		iss.Status = model.IssueResolved
		iss.Resolution = resolution
		iss.ResolvedAt = &now
		if err := tx.UpdateIssue(ctx, iss); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, EventIssueResolved, IssueEvent{ProjectID: projectID, IssueID: issueID})
	})
}

// PostUpdate appends a free-text progress note; the log is append-only.
func (s *ExecutionService) PostUpdate(ctx context.Context, projectID int64, text string, author *model.UserProfile) (*model.Update, error) {
	const op = "execution.post_update"

	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.CodeValidation, op, projectID, "update text is required")
	}

	u := &model.Update{
		Text:   text,
		Author: author.Name,
	}
	err := s.store.WithProject(ctx, projectID, func(ctx context.Context, tx store.ProjectTx) error {
		if err := tx.AddUpdate(ctx, u); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, EventUpdatePosted, UpdatePostedEvent{
			ProjectID: projectID,
			UpdateID:  u.ID,
			Author:    author.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Variance computes the budget variance of a project. budget_spent is
// externally supplied; this component only computes upon it.
func (s *ExecutionService) Variance(p *model.Project) workflow.BudgetVariance {
	return workflow.Variance(p.Budget, p.BudgetSpent)
}
