package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
)

const (
	defaultDepartment = "IT Department"
)

// DirectoryService resolves user identities to role/department profiles and
// answers the role-filtered project listing.
type DirectoryService struct {
	store  store.Store
	logger *zap.Logger
}

func NewDirectoryService(st store.Store, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{store: st, logger: logger}
}

// ResolveProfile fetches the profile for userID, provisioning a default one
// on first contact. Concurrent calls for the same absent user cannot create
// duplicates: the store resolves the race by handing the loser the winner's
// row.
func (s *DirectoryService) ResolveProfile(ctx context.Context, userID int64, fallbackEmail string) (*model.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	name := fallbackEmail
	if at := strings.Index(fallbackEmail, "@"); at > 0 {
		name = fallbackEmail[:at]
	}

	profile, err = s.store.EnsureProfile(ctx, model.UserProfile{
		UserID:     userID,
		Name:       name,
		Email:      fallbackEmail,
		Role:       model.RoleProposer,
		Department: defaultDepartment,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("provisioned default profile",
		zap.Int64("user_id", userID),
		zap.String("role", string(profile.Role)),
	)
	return profile, nil
}

// ListVisibleProjects applies the visibility policy: proposers see their own
// submissions, directors and administrators see everything, and any other
// role sees exactly the projects it holds a reviewer slot on.
func (s *DirectoryService) ListVisibleProjects(ctx context.Context, profile *model.UserProfile) ([]model.Project, error) {
	switch profile.Role {
	case model.RoleProposer:
		return s.store.ListProjectsBySubmitter(ctx, profile.UserID)
	case model.RoleDirector, model.RoleAdministrator:
		return s.store.ListProjects(ctx)
	default:
		return s.store.ListProjectsByReviewer(ctx, profile.UserID)
	}
}

// ProjectDetail returns the full aggregate plus the computed budget
// variance, after checking the project is visible to the caller.
func (s *DirectoryService) ProjectDetail(ctx context.Context, profile *model.UserProfile, projectID int64) (*store.ProjectGraph, error) {
	g, err := s.store.GetProjectGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !visible(profile, g) {
		return nil, apperr.New(apperr.CodeUnauthorized, "directory.project_detail", projectID, "project not visible to user %d", profile.UserID)
	}
	return g, nil
}

func visible(profile *model.UserProfile, g *store.ProjectGraph) bool {
	switch profile.Role {
	case model.RoleDirector, model.RoleAdministrator:
		return true
	case model.RoleProposer:
		return g.Project.SubmitterID == profile.UserID
	default:
		for _, slot := range g.Reviewers {
			if slot.ReviewerID == profile.UserID {
				return true
			}
		}
		return false
	}
}
