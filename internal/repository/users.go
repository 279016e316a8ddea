package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"approvalflow/internal/apperr"
	"approvalflow/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at
    `
	err := s.db.QueryRow(ctx, query, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeValidation, "repository.create_user", 0, "email already exists")
		}
		s.logger.Error("failed to insert user", zap.Error(err))
		return err
	}

	s.logger.Info("user inserted", zap.Int64("id", u.ID))
	return nil
}

// CreateUserWithProfile inserts the user and its profile in one
// transaction, so a failed profile insert leaves no identity row behind.
func (s *Store) CreateUserWithProfile(ctx context.Context, u *model.User, p model.UserProfile) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        INSERT INTO users (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at
    `, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeValidation, "repository.create_user", 0, "email already exists")
		}
		s.logger.Error("failed to insert user", zap.Error(err))
		return err
	}

	p.UserID = u.ID
	_, err = tx.Exec(ctx, `
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

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("user registered", zap.Int64("id", u.ID))
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := s.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.CodeNotFound, "repository.get_user", 0, "user not found")
		}
		s.logger.Error("failed to find user", zap.Error(err))
		return nil, err
	}
	return &u, nil
}
