// Package repository implements store.Store on PostgreSQL.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"approvalflow/internal/store"
)

// Store is the PostgreSQL system of record.
type Store struct {
	db        *pgxpool.Pool
	logger    *zap.Logger
	txRetries int
}

var _ store.Store = (*Store)(nil)

func New(db *pgxpool.Pool, txRetries int, logger *zap.Logger) *Store {
	if txRetries <= 0 {
		txRetries = 3
	}
	return &Store{db: db, logger: logger, txRetries: txRetries}
}

// retryable reports whether the error is a serialization failure or
// deadlock that a fresh transaction may succeed past.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
