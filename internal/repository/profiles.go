package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

const profileColumns = `user_id, name, email, role, department`

func scanProfile(row pgx.Row) (*model.UserProfile, error) {
	var p model.UserProfile
	err := row.Scan(&p.UserID, &p.Name, &p.Email, &p.Role, &p.Department)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (*model.UserProfile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "repository.get_profile", 0, "profile not found for user %d", userID)
		}
		s.logger.Error("failed to find profile", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// EnsureProfile inserts unless a row for user_id already exists. The unique
// constraint decides concurrent races; the loser refetches the winner's row
// instead of failing.
func (s *Store) EnsureProfile(ctx context.Context, p model.UserProfile) (*model.UserProfile, error) {
	tag, err := s.db.Exec(ctx, `
        INSERT INTO user_profiles (user_id, name, email, role, department)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO NOTHING
    `, p.UserID, p.Name, p.Email, p.Role, p.Department)
	if err != nil {
		s.logger.Error("failed to ensure profile", zap.Int64("user_id", p.UserID), zap.Error(err))
		return nil, err
	}
	if tag.RowsAffected() == 1 {
		return &p, nil
	}
	return s.GetProfile(ctx, p.UserID)
}

func (s *Store) CreateProfile(ctx context.Context, p model.UserProfile) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO user_profiles (user_id, name, email, role, department)
        VALUES ($1, $2, $3, $4, $5)
    `, p.UserID, p.Name, p.Email, p.Role, p.Department)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeValidation, "repository.create_profile", 0, "profile already exists for user %d", p.UserID)
		}
		s.logger.Error("failed to insert profile", zap.Int64("user_id", p.UserID), zap.Error(err))
		return err
	}
	return nil
}

// FindReviewer resolves at most one profile holding the given reviewer role
// in the given department; (nil, nil) when none exists.
func (s *Store) FindReviewer(ctx context.Context, role model.Role, department string) (*model.UserProfile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, `
        SELECT `+profileColumns+`
        FROM user_profiles
        WHERE role = $1 AND department = $2
        ORDER BY user_id ASC
        LIMIT 1
    `, role, department))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to find reviewer",
			zap.String("role", string(role)),
			zap.String("department", department),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}
