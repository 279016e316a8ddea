// Package store defines the persistence contract of the workflow engine.
// The PostgreSQL implementation lives in internal/repository; MemStore in
// this package backs the service tests.
package store

import (
	"context"

	"approvalflow/internal/model"
)

// Event is a domain event recorded in the same transaction as the mutation
// that produced it, to be published asynchronously by the outbox dispatcher.
type Event struct {
	RoutingKey string
	Payload    any
}

// ProjectGraph is a project with all of its children, the shape the detail
// view consumes.
type ProjectGraph struct {
	Project     model.Project           `json:"project"`
	Submitter   *model.UserProfile      `json:"submitter,omitempty"`
	Reviewers   []model.ReviewerSlot    `json:"reviewers"`
	Risks       []model.RiskEntry       `json:"risk_analysis"`
	Milestones  []model.Milestone       `json:"milestones"`
	Issues      []model.Issue           `json:"issues"`
	Updates     []model.Update          `json:"updates"`
	Discussions []model.DiscussionEntry `json:"discussions"`
}

// Store is the system of record. Every mutation of an existing project
// aggregate goes through WithProject so that read-decide-write sequences are
// atomic with respect to other writers of the same project. Operations on
// different projects are fully independent.
type Store interface {
	// Identity. CreateUserWithProfile persists the identity and its profile
	// in one atomic step: neither row survives if either insert fails. The
	// profile's UserID is filled in from the created user.
	CreateUser(ctx context.Context, u *model.User) error
	CreateUserWithProfile(ctx context.Context, u *model.User, p model.UserProfile) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Profiles. GetProfile returns a NOT_FOUND apperr when absent.
	// EnsureProfile inserts the profile unless one already exists for the
	// user id; the loser of a concurrent race gets the winner's row back.
	GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error)
	EnsureProfile(ctx context.Context, p model.UserProfile) (*model.UserProfile, error)
	CreateProfile(ctx context.Context, p model.UserProfile) error

	// FindReviewer resolves at most one profile matching the reviewer role
	// and department; (nil, nil) when no match exists.
	FindReviewer(ctx context.Context, role model.Role, department string) (*model.UserProfile, error)

	// CreateProject persists the project together with its reviewer slots,
	// risk entries and submission events in one atomic step.
	CreateProject(ctx context.Context, p *model.Project, reviewers []model.ReviewerSlot, risks []model.RiskEntry, events []Event) error

	GetProject(ctx context.Context, id int64) (*model.Project, error)
	GetProjectGraph(ctx context.Context, id int64) (*ProjectGraph, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListProjectsBySubmitter(ctx context.Context, userID int64) ([]model.Project, error)
	ListProjectsByReviewer(ctx context.Context, reviewerID int64) ([]model.Project, error)

	// WithProject runs fn inside a transaction holding exclusive access to
	// the project aggregate. fn returning an error rolls back every write,
	// leaving no side effect visible. A lost race surfaces as a
	// CONFLICTING_WRITE apperr after bounded retries; a missing project as
	// NOT_FOUND.
	WithProject(ctx context.Context, projectID int64, fn func(ctx context.Context, tx ProjectTx) error) error
}

// ProjectTx is the mutation surface available inside a WithProject scope.
// Project returns the row as loaded under the lock; SaveProject persists
// any field changes and bumps the version counter.
type ProjectTx interface {
	Project() *model.Project
	SaveProject(ctx context.Context, p *model.Project) error

	Reviewers(ctx context.Context) ([]model.ReviewerSlot, error)
	GetReviewer(ctx context.Context, reviewerID int64) (*model.ReviewerSlot, error)
	UpdateReviewer(ctx context.Context, slot *model.ReviewerSlot) error

	Milestones(ctx context.Context) ([]model.Milestone, error)
	GetMilestone(ctx context.Context, id int64) (*model.Milestone, error)
	AddMilestone(ctx context.Context, m *model.Milestone) error
	UpdateMilestone(ctx context.Context, m *model.Milestone) error

	GetIssue(ctx context.Context, id int64) (*model.Issue, error)
	AddIssue(ctx context.Context, iss *model.Issue) error
	UpdateIssue(ctx context.Context, iss *model.Issue) error

	AddUpdate(ctx context.Context, u *model.Update) error
	AddDiscussion(ctx context.Context, d *model.DiscussionEntry) error
	UpdateRisk(ctx context.Context, e *model.RiskEntry) error

	AppendEvent(ctx context.Context, routingKey string, payload any) error
}
