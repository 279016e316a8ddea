package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
	"approvalflow/pkg/metrics"
	"approvalflow/pkg/outbox"
)

// WithProject runs fn inside a transaction holding a row lock on the
// project, serializing all writers of the same aggregate. Serialization
// failures are retried a bounded number of times before surfacing as
// CONFLICTING_WRITE.
func (s *Store) WithProject(ctx context.Context, projectID int64, fn func(ctx context.Context, tx store.ProjectTx) error) error {
	var lastErr error
	for attempt := 0; attempt < s.txRetries; attempt++ {
		err := s.withProjectOnce(ctx, projectID, fn)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		metrics.TxConflictRetries.Inc()
		s.logger.Warn("aggregate transaction conflicted, retrying",
			zap.Int64("project_id", projectID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return apperr.Wrap(apperr.CodeConflictingWrite, "repository.with_project", projectID, lastErr, "aggregate write conflict")
}

func (s *Store) withProjectOnce(ctx context.Context, projectID int64, fn func(ctx context.Context, tx store.ProjectTx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	p, err := scanProject(tx.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.CodeNotFound, "repository.with_project", projectID, "project not found")
		}
		return err
	}

	ptx := &projectTx{tx: tx, project: p}
	if err := fn(ctx, ptx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// projectTx implements store.ProjectTx over one pgx transaction.
type projectTx struct {
	tx      pgx.Tx
	project *model.Project
}

func (t *projectTx) Project() *model.Project {
	return t.project
}

// SaveProject writes every mutable field and bumps the version counter. The
// row lock makes the version predicate always match here; a zero row count
// would mean the lock was bypassed, which is treated as a lost race.
func (t *projectTx) SaveProject(ctx context.Context, p *model.Project) error {
	tag, err := t.tx.Exec(ctx, `
        UPDATE projects
        SET title = $2, description = $3, budget = $4, timeline = $5, department = $6,
            status = $7, progress = $8, budget_spent = $9, start_date = $10, end_date = $11,
            director_comment = $12, director_id = $13,
            version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $14
    `, p.ID, p.Title, p.Description, p.Budget, p.Timeline, p.Department,
		p.Status, p.Progress, p.BudgetSpent, p.StartDate, p.EndDate,
		p.DirectorComment, p.DirectorID, p.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeConflictingWrite, "repository.save_project", p.ID, "version %d is stale", p.Version)
	}
	p.Version++
	return nil
}

func (t *projectTx) Reviewers(ctx context.Context) ([]model.ReviewerSlot, error) {
	return queryReviewers(ctx, t.tx, t.project.ID)
}

func (t *projectTx) GetReviewer(ctx context.Context, reviewerID int64) (*model.ReviewerSlot, error) {
	var slot model.ReviewerSlot
	err := t.tx.QueryRow(ctx, `
        SELECT project_id, reviewer_id, department, status, comment, updated_at
        FROM reviewers
        WHERE project_id = $1 AND reviewer_id = $2
    `, t.project.ID, reviewerID).Scan(
		&slot.ProjectID,
		&slot.ReviewerID,
		&slot.Department,
		&slot.Status,
		&slot.Comment,
		&slot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "repository.get_reviewer", t.project.ID, "no reviewer slot for user %d", reviewerID)
		}
		return nil, err
	}
	return &slot, nil
}

func (t *projectTx) UpdateReviewer(ctx context.Context, slot *model.ReviewerSlot) error {
	tag, err := t.tx.Exec(ctx, `
        UPDATE reviewers
        SET status = $3, comment = $4, updated_at = NOW()
        WHERE project_id = $1 AND reviewer_id = $2
    `, t.project.ID, slot.ReviewerID, slot.Status, slot.Comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "repository.update_reviewer", t.project.ID, "no reviewer slot for user %d", slot.ReviewerID)
	}
	return nil
}

func (t *projectTx) Milestones(ctx context.Context) ([]model.Milestone, error) {
	return queryMilestones(ctx, t.tx, t.project.ID)
}

func (t *projectTx) GetMilestone(ctx context.Context, id int64) (*model.Milestone, error) {
	m, err := scanMilestone(t.tx.QueryRow(ctx,
		`SELECT `+milestoneColumns+` FROM milestones WHERE id = $1 AND project_id = $2`, id, t.project.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "repository.get_milestone", t.project.ID, "milestone %d not found", id)
		}
		return nil, err
	}
	return m, nil
}

func (t *projectTx) AddMilestone(ctx context.Context, m *model.Milestone) error {
	m.ProjectID = t.project.ID
	return t.tx.QueryRow(ctx, `
        INSERT INTO milestones (project_id, name, due_date, description, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `, m.ProjectID, m.Name, m.DueDate, m.Description, m.Status).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (t *projectTx) UpdateMilestone(ctx context.Context, m *model.Milestone) error {
	tag, err := t.tx.Exec(ctx, `
        UPDATE milestones
        SET name = $3, due_date = $4, description = $5, status = $6, completion_date = $7, updated_at = NOW()
        WHERE id = $1 AND project_id = $2
    `, m.ID, t.project.ID, m.Name, m.DueDate, m.Description, m.Status, m.CompletionDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "repository.update_milestone", t.project.ID, "milestone %d not found", m.ID)
	}
	return nil
}

func (t *projectTx) GetIssue(ctx context.Context, id int64) (*model.Issue, error) {
	iss, err := scanIssue(t.tx.QueryRow(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = $1 AND project_id = $2`, id, t.project.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "repository.get_issue", t.project.ID, "issue %d not found", id)
		}
		return nil, err
	}
	return iss, nil
}

func (t *projectTx) AddIssue(ctx context.Context, iss *model.Issue) error {
	iss.ProjectID = t.project.ID
	return t.tx.QueryRow(ctx, `
        INSERT INTO issues (project_id, description, reported_by, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, iss.ProjectID, iss.Description, iss.ReportedBy, iss.Status).
		Scan(&iss.ID, &iss.CreatedAt)
}

func (t *projectTx) UpdateIssue(ctx context.Context, iss *model.Issue) error {
	tag, err := t.tx.Exec(ctx, `
        UPDATE issues
        SET status = $3, resolution = $4, resolved_at = $5
        WHERE id = $1 AND project_id = $2
    `, iss.ID, t.project.ID, iss.Status, iss.Resolution, iss.ResolvedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "repository.update_issue", t.project.ID, "issue %d not found", iss.ID)
	}
	return nil
}

func (t *projectTx) AddUpdate(ctx context.Context, u *model.Update) error {
	u.ProjectID = t.project.ID
	return t.tx.QueryRow(ctx, `
        INSERT INTO updates (project_id, update_text, author)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, u.ProjectID, u.Text, u.Author).Scan(&u.ID, &u.CreatedAt)
}

func (t *projectTx) AddDiscussion(ctx context.Context, d *model.DiscussionEntry) error {
	d.ProjectID = t.project.ID
	return t.tx.QueryRow(ctx, `
        INSERT INTO discussions (project_id, user_id, user_name, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, d.ProjectID, d.AuthorID, d.AuthorName, d.Comment).Scan(&d.ID, &d.CreatedAt)
}

func (t *projectTx) UpdateRisk(ctx context.Context, e *model.RiskEntry) error {
	tag, err := t.tx.Exec(ctx, `
        UPDATE risk_analysis
        SET risk = $3, mitigation = $4, updated_at = NOW()
        WHERE project_id = $1 AND category = $2
    `, t.project.ID, e.Category, e.Risk, e.Mitigation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.CodeNotFound, "repository.update_risk", t.project.ID, "no %s risk entry", e.Category)
	}
	return nil
}

func (t *projectTx) AppendEvent(ctx context.Context, routingKey string, payload any) error {
	return outbox.InsertEvent(ctx, t.tx, &t.project.ID, routingKey, payload)
}
