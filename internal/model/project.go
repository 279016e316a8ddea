package model

import "time"

type ProjectStatus string

const (
	StatusPendingReview   ProjectStatus = "pending_review"
	StatusPendingDirector ProjectStatus = "pending_director"
	StatusApproved        ProjectStatus = "approved"
	StatusRejected        ProjectStatus = "rejected"
	StatusInProgress      ProjectStatus = "in_progress"
	StatusCompleted       ProjectStatus = "completed"
)

// Terminal reports whether no operation may transition out of the status.
func (s ProjectStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

type Project struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Budget          float64       `json:"budget"`
	Timeline        string        `json:"timeline"`
	Department      string        `json:"department"`
	SubmitterID     int64         `json:"submitter_id"`
	Status          ProjectStatus `json:"status"`
	Progress        int           `json:"progress"`
	BudgetSpent     float64       `json:"budget_spent"`
	StartDate       *time.Time    `json:"start_date,omitempty"`
	EndDate         *time.Time    `json:"end_date,omitempty"`
	DirectorComment string        `json:"director_comment"`
	DirectorID      *int64        `json:"director_id,omitempty"`
	Version         int64         `json:"version"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "not_started"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneNotStarted, MilestoneInProgress, MilestoneCompleted:
		return true
	}
	return false
}

type Milestone struct {
	ID             int64           `json:"id"`
	ProjectID      int64           `json:"project_id"`
	Name           string          `json:"name"`
	DueDate        time.Time       `json:"due_date"`
	Description    string          `json:"description"`
	Status         MilestoneStatus `json:"status"`
	CompletionDate *time.Time      `json:"completion_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
