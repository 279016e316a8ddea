package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"approvalflow/internal/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so child reads can
// run inside or outside a project transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func queryReviewers(ctx context.Context, q querier, projectID int64) ([]model.ReviewerSlot, error) {
	rows, err := q.Query(ctx, `
        SELECT project_id, reviewer_id, department, status, comment, updated_at
        FROM reviewers
        WHERE project_id = $1
        ORDER BY department ASC
    `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.ReviewerSlot
	for rows.Next() {
		var slot model.ReviewerSlot
		if err := rows.Scan(
			&slot.ProjectID,
			&slot.ReviewerID,
			&slot.Department,
			&slot.Status,
			&slot.Comment,
			&slot.UpdatedAt,
		); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func queryRisks(ctx context.Context, q querier, projectID int64) ([]model.RiskEntry, error) {
	rows, err := q.Query(ctx, `
        SELECT project_id, category, risk, mitigation, updated_at
        FROM risk_analysis
        WHERE project_id = $1
        ORDER BY category ASC
    `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.RiskEntry
	for rows.Next() {
		var e model.RiskEntry
		if err := rows.Scan(&e.ProjectID, &e.Category, &e.Risk, &e.Mitigation, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const milestoneColumns = `id, project_id, name, due_date, description, status, completion_date, created_at, updated_at`

func scanMilestone(row pgx.Row) (*model.Milestone, error) {
	var m model.Milestone
	err := row.Scan(
		&m.ID,
		&m.ProjectID,
		&m.Name,
		&m.DueDate,
		&m.Description,
		&m.Status,
		&m.CompletionDate,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func queryMilestones(ctx context.Context, q querier, projectID int64) ([]model.Milestone, error) {
	rows, err := q.Query(ctx, `
        SELECT `+milestoneColumns+`
        FROM milestones
        WHERE project_id = $1
        ORDER BY due_date ASC, id ASC
    `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

const issueColumns = `id, project_id, description, reported_by, status, resolution, created_at, resolved_at`

func scanIssue(row pgx.Row) (*model.Issue, error) {
	var iss model.Issue
	err := row.Scan(
		&iss.ID,
		&iss.ProjectID,
		&iss.Description,
		&iss.ReportedBy,
		&iss.Status,
		&iss.Resolution,
		&iss.CreatedAt,
		&iss.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &iss, nil
}

func queryIssues(ctx context.Context, q querier, projectID int64) ([]model.Issue, error) {
	rows, err := q.Query(ctx, `
        SELECT `+issueColumns+`
        FROM issues
        WHERE project_id = $1
        ORDER BY created_at ASC, id ASC
    `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		iss, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *iss)
	}
	return issues, rows.Err()
}

func queryUpdates(ctx context.Context, q querier, projectID int64) ([]model.Update, error) {
	rows, err := q.Query(ctx, `
        SELECT id, project_id, update_text, author, created_at
        FROM updates
        WHERE project_id = $1
        ORDER BY created_at ASC, id ASC
    `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []model.Update
	for rows.Next() {
		var u model.Update
		if err := rows.Scan(&u.ID, &u.ProjectID, &u.Text, &u.Author, &u.CreatedAt); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func queryDiscussions(ctx context.Context, q querier, projectID int64) ([]model.DiscussionEntry, error) {
	rows, err := q.Query(ctx, `
        SELECT id, project_id, user_id, user_name, comment, created_at
        FROM discussions
        WHERE project_id = $1
        ORDER BY created_at ASC, id ASC
    `, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.DiscussionEntry
	for rows.Next() {
		var d model.DiscussionEntry
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.AuthorID, &d.AuthorName, &d.Comment, &d.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, d)
	}
	return entries, rows.Err()
}
