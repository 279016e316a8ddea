package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
	"approvalflow/internal/store"
	"approvalflow/pkg/outbox"
)

const projectColumns = `id, title, description, budget, timeline, department, submitter_id,
       status, progress, budget_spent, start_date, end_date,
       director_comment, director_id, version, created_at, updated_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Budget,
		&p.Timeline,
		&p.Department,
		&p.SubmitterID,
		&p.Status,
		&p.Progress,
		&p.BudgetSpent,
		&p.StartDate,
		&p.EndDate,
		&p.DirectorComment,
		&p.DirectorID,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject persists the project, its reviewer slots, its risk register
// and the submission events in one transaction.
func (s *Store) CreateProject(ctx context.Context, p *model.Project, reviewers []model.ReviewerSlot, risks []model.RiskEntry, events []store.Event) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        INSERT INTO projects (title, description, budget, timeline, department, submitter_id, status, progress)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `, p.Title, p.Description, p.Budget, p.Timeline, p.Department, p.SubmitterID, p.Status, p.Progress).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		s.logger.Error("failed to insert project", zap.Error(err))
		return err
	}

	for _, slot := range reviewers {
		_, err := tx.Exec(ctx, `
            INSERT INTO reviewers (project_id, reviewer_id, department, status, comment)
            VALUES ($1, $2, $3, $4, $5)
        `, p.ID, slot.ReviewerID, slot.Department, slot.Status, slot.Comment)
		if err != nil {
			s.logger.Error("failed to insert reviewer slot", zap.Int64("project_id", p.ID), zap.Error(err))
			return err
		}
	}

	for _, entry := range risks {
		_, err := tx.Exec(ctx, `
            INSERT INTO risk_analysis (project_id, category, risk, mitigation)
            VALUES ($1, $2, $3, $4)
        `, p.ID, entry.Category, entry.Risk, entry.Mitigation)
		if err != nil {
			s.logger.Error("failed to insert risk entry", zap.Int64("project_id", p.ID), zap.Error(err))
			return err
		}
	}

	for _, ev := range events {
		if err := outbox.InsertEvent(ctx, tx, &p.ID, ev.RoutingKey, ev.Payload); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("project inserted",
		zap.Int64("id", p.ID),
		zap.Int64("submitter_id", p.SubmitterID),
		zap.Int("reviewer_slots", len(reviewers)),
	)
	return nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "repository.get_project", id, "project not found")
		}
		s.logger.Error("failed to find project", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *Store) listProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			s.logger.Error("failed to scan project", zap.Error(err))
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.listProjects(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC`)
}

func (s *Store) ListProjectsBySubmitter(ctx context.Context, userID int64) ([]model.Project, error) {
	return s.listProjects(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE submitter_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *Store) ListProjectsByReviewer(ctx context.Context, reviewerID int64) ([]model.Project, error) {
	return s.listProjects(ctx, `
        SELECT `+projectColumns+`
        FROM projects
        WHERE id IN (SELECT project_id FROM reviewers WHERE reviewer_id = $1)
        ORDER BY created_at DESC
    `, reviewerID)
}

// GetProjectGraph fetches the project with all of its children for the
// detail view.
func (s *Store) GetProjectGraph(ctx context.Context, id int64) (*store.ProjectGraph, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	g := &store.ProjectGraph{Project: *p}

	if submitter, err := s.GetProfile(ctx, p.SubmitterID); err == nil {
		g.Submitter = submitter
	} else if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	g.Reviewers, err = queryReviewers(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	g.Risks, err = queryRisks(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	g.Milestones, err = queryMilestones(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	g.Issues, err = queryIssues(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	g.Updates, err = queryUpdates(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	g.Discussions, err = queryDiscussions(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return g, nil
}
