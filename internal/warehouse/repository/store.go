// Package repository is the PostgreSQL domain.Store. Every unit of work is one
// database transaction; rows being depleted or resized are taken with
// SELECT ... FOR UPDATE and occupancy moves through a conditional UPDATE.
package repository

import (
	"context"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/database"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/jmoiron/sqlx"
)

// PostgresStore runs units of work in PostgreSQL transactions
type PostgresStore struct {
	db     *database.DB
	logger *logger.Logger
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *database.DB, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithComponent("postgres-store"),
	}
}

// Transact runs fn inside a transaction and commits when it returns nil.
// Driver errors are translated to AppErrors.
func (s *PostgresStore) Transact(ctx context.Context, fn func(ctx context.Context, tx domain.Tx) error) error {
	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(ctx, newScope(tx))
	})
	if err == nil {
		return nil
	}

	if appErr := database.MapPQError(err); appErr != nil {
		if errors.Is(appErr, errors.ErrConcurrencyConflict) {
			s.logger.Warn().Err(err).Msg("unit of work lost a lock race")
		}
		return appErr
	}
	return err
}

// scope binds every repository to one transaction
type scope struct {
	*productRepository
	*locationRepository
	*batchRepository
	*orderRepository
}

func newScope(db sqlx.ExtContext) *scope {
	return &scope{
		productRepository:  &productRepository{db: db},
		locationRepository: &locationRepository{db: db},
		batchRepository:    &batchRepository{db: db},
		orderRepository:    &orderRepository{db: db},
	}
}

var _ domain.Tx = (*scope)(nil)

// affectedOne reports whether exactly one row changed
func affectedOne(res interface{ RowsAffected() (int64, error) }) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
