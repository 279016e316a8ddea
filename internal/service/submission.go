package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
)

// requiredDepartments is the fixed set of departments whose review a
// submission requests, each with the role its reviewer must hold.
var requiredDepartments = []struct {
	Department string
	Role       model.Role
}{
	{"Finance", model.RoleFinance},
	{"Legal", model.RoleLegal},
	{"Operations", model.RoleOperations},
}

type SubmitInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Timeline    string  `json:"timeline"`
	Department  string  `json:"department"`
}

// SubmissionService creates projects with their reviewer slots and risk
// register in one atomic step.
type SubmissionService struct {
	store store.Store
	// strictAssignment makes submission fail when a required department has
	// no matching reviewer instead of waiving that department's approval.
	strictAssignment bool
	logger           *zap.Logger
}

func NewSubmissionService(st store.Store, strictAssignment bool, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{store: st, strictAssignment: strictAssignment, logger: logger}
}

// Submit validates the proposal, selects one reviewer per required
// department, initializes the four risk entries and persists everything
// atomically. The project starts in pending_review with progress 0.
func (s *SubmissionService) Submit(ctx context.Context, submitter *model.UserProfile, in SubmitInput) (*model.Project, error) {
	const op = "submission.submit"

	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.New(apperr.CodeValidation, op, 0, "title is required")
	}
	if in.Budget < 0 {
		return nil, apperr.New(apperr.CodeValidation, op, 0, "budget must be non-negative")
	}

	var slots []model.ReviewerSlot
	for _, dep := range requiredDepartments {
		reviewer, err := s.store.FindReviewer(ctx, dep.Role, dep.Department)
		if err != nil {
			return nil, err
		}
		if reviewer == nil {
			if s.strictAssignment {
				return nil, apperr.New(apperr.CodeValidation, op, 0, "no reviewer available for %s", dep.Department)
			}
			// Waived: this department's approval is never required.
			s.logger.Warn("no reviewer for department, approval waived",
				zap.String("department", dep.Department),
			)
			continue
		}
		slots = append(slots, model.ReviewerSlot{
			ReviewerID: reviewer.UserID,
			Department: dep.Department,
			Status:     model.ReviewPending,
			UpdatedAt:  time.Now(),
		})
	}

	risks := make([]model.RiskEntry, 0, len(model.RiskCategories))
	for _, cat := range model.RiskCategories {
		risks = append(risks, model.RiskEntry{
			Category:  cat,
			Risk:      model.RiskNotAssessed,
			UpdatedAt: time.Now(),
		})
	}

	p := &model.Project{
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Timeline:    in.Timeline,
		Department:  in.Department,
		SubmitterID: submitter.UserID,
		Status:      model.StatusPendingReview,
		Progress:    0,
	}

	events := []store.Event{{
		RoutingKey: EventProjectSubmitted,
		Payload: ProjectSubmittedEvent{
			Title:       in.Title,
			SubmitterID: submitter.UserID,
			Budget:      in.Budget,
			Department:  in.Department,
			Reviewers:   len(slots),
		},
	}}

	if err := s.store.CreateProject(ctx, p, slots, risks, events); err != nil {
		return nil, err
	}

	s.logger.Info("project submitted",
		zap.Int64("project_id", p.ID),
		zap.Int64("submitter_id", submitter.UserID),
		zap.Int("reviewer_slots", len(slots)),
	)
	return p, nil
}
