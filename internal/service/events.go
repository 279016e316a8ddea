package service

import (
	"approvalflow/internal/model"
	"approvalflow/internal/workflow"
)

// Routing keys for domain events written through the outbox.
const (
	EventProjectSubmitted = "project.submitted"
	EventReviewRecorded   = "project.review_recorded"
	EventStatusChanged    = "project.status_changed"
	EventMilestoneChanged = "project.milestone_changed"
	EventIssueReported    = "project.issue_reported"
	EventIssueResolved    = "project.issue_resolved"
	EventUpdatePosted     = "project.update_posted"
)

// ProjectSubmittedEvent carries no project id in the payload; the id is not
// assigned until the insert commits, and the outbox row's aggregate id
// identifies the project.
type ProjectSubmittedEvent struct {
	Title       string  `json:"title"`
	SubmitterID int64   `json:"submitter_id"`
	Budget      float64 `json:"budget"`
	Department  string  `json:"department"`
	Reviewers   int     `json:"reviewers"`
}

type ReviewRecordedEvent struct {
	ProjectID  int64              `json:"project_id"`
	ReviewerID int64              `json:"reviewer_id"`
	Department string             `json:"department"`
	Decision   model.ReviewStatus `json:"decision"`
	Outcome    workflow.Outcome   `json:"outcome"`
}

type StatusChangedEvent struct {
	ProjectID int64               `json:"project_id"`
	From      model.ProjectStatus `json:"from"`
	To        model.ProjectStatus `json:"to"`
	ActorID   int64               `json:"actor_id,omitempty"`
}

type MilestoneChangedEvent struct {
	ProjectID   int64                 `json:"project_id"`
	MilestoneID int64                 `json:"milestone_id"`
	Status      model.MilestoneStatus `json:"status"`
	Progress    int                   `json:"progress"`
}

type IssueEvent struct {
	ProjectID int64 `json:"project_id"`
	IssueID   int64 `json:"issue_id"`
}

type UpdatePostedEvent struct {
	ProjectID int64  `json:"project_id"`
	UpdateID  int64  `json:"update_id"`
	Author    string `json:"author"`
}
