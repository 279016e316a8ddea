package model

import "time"

type IssueStatus string

const (
	IssueOpen     IssueStatus = "open"
	IssueResolved IssueStatus = "resolved"
)

type Issue struct {
	ID          int64       `json:"id"`
	ProjectID   int64       `json:"project_id"`
	Description string      `json:"description"`
	ReportedBy  string      `json:"reported_by"`
	Status      IssueStatus `json:"status"`
	Resolution  string      `json:"resolution"`
	CreatedAt   time.Time   `json:"created_at"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
}

// Update is an append-only progress note; rows are never mutated.
type Update struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Text      string    `json:"update_text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// DiscussionEntry is an append-only comment with the author name snapshotted
// at write time.
type DiscussionEntry struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	AuthorID   int64     `json:"user_id"`
	AuthorName string    `json:"user_name"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
