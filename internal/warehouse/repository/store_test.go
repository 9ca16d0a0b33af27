package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/internal/warehouse/repository"
	"github.com/frostvault/frostvault-backend/pkg/database"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/frostvault/frostvault-backend/pkg/testutil"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockTimeout = 2 * time.Second

func newMockStore(t *testing.T) (*repository.PostgresStore, *testutil.MockDB) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })
	db := database.Wrap(mockDB.DB, logger.Nop(), lockTimeout)
	return repository.NewPostgresStore(db, logger.Nop()), mockDB
}

var batchCols = []string{
	"id", "product_id", "batch_number", "expiry_date", "quantity", "barcode",
	"assigned_location_id", "status", "created_at", "updated_at",
}

func TestPostgresStore_AdjustOccupancyIsConditional(t *testing.T) {
	store, mockDB := newMockStore(t)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectExec("UPDATE storage_locations").
		WithArgs("loc-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectExec("UPDATE storage_locations").
		WithArgs("loc-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	var refused, applied bool
	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		var err error
		if refused, err = tx.AdjustOccupancy(ctx, "loc-1", 5); err != nil {
			return err
		}
		applied, err = tx.AdjustOccupancy(ctx, "loc-1", 3)
		return err
	})

	require.NoError(t, err)
	assert.False(t, refused)
	assert.True(t, applied)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_LockTimeoutIsConcurrencyConflict(t *testing.T) {
	store, mockDB := newMockStore(t)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs("prod-1").
		WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mockDB.ExpectRollback()

	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		_, err := tx.LockAvailableBatches(ctx, "prod-1")
		return err
	})

	assert.ErrorIs(t, err, errors.ErrConcurrencyConflict)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.Retryable)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_UniqueViolationIsDuplicate(t *testing.T) {
	store, mockDB := newMockStore(t)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectQuery("INSERT INTO batches").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "batches_barcode_key"})
	mockDB.ExpectRollback()

	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		return tx.InsertBatch(ctx, &domain.Batch{
			ProductID:   "prod-1",
			BatchNumber: "LOT-1",
			Barcode:     "LOT-1",
			ExpiryDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Quantity:    5,
			Status:      domain.BatchAvailable,
		})
	})

	assert.ErrorIs(t, err, errors.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "barcode")
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_MissingBatchIsNotFound(t *testing.T) {
	store, mockDB := newMockStore(t)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectQuery("FROM batches WHERE id = $1 FOR UPDATE").
		WithArgs("missing").
		WillReturnRows(testutil.MockRows(batchCols...))
	mockDB.ExpectRollback()

	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		_, err := tx.LockBatch(ctx, "missing")
		return err
	})

	assert.ErrorIs(t, err, errors.ErrNotFound)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_LockAvailableBatchesScansRows(t *testing.T) {
	store, mockDB := newMockStore(t)
	created := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	loc := "loc-1"

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs("prod-1").
		WillReturnRows(testutil.MockRows(batchCols...).
			AddRow("b-1", "prod-1", "LOT-1", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 5, "LOT-1", loc, "available", created, created).
			AddRow("b-2", "prod-1", "LOT-2", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 5, "LOT-2", nil, "available", created, created))
	mockDB.ExpectExec("UPDATE batches").
		WithArgs("b-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	var batches []*domain.Batch
	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		var err error
		if batches, err = tx.LockAvailableBatches(ctx, "prod-1"); err != nil {
			return err
		}
		ok, err := tx.DecrementBatchQuantity(ctx, "b-1", 5)
		if err == nil && !ok {
			t.Error("expected decrement to apply")
		}
		return err
	})

	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "b-1", batches[0].ID)
	require.NotNil(t, batches[0].AssignedLocationID)
	assert.Equal(t, loc, *batches[0].AssignedLocationID)
	assert.Nil(t, batches[1].AssignedLocationID)
	assert.Equal(t, domain.BatchAvailable, batches[1].Status)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_SumQuantityByLocation(t *testing.T) {
	store, mockDB := newMockStore(t)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectQuery("GROUP BY assigned_location_id").
		WillReturnRows(testutil.MockRows("location_id", "total").
			AddRow("loc-1", 12).
			AddRow("loc-2", 0))
	mockDB.ExpectCommit()

	var sums map[string]int
	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		var err error
		sums, err = tx.SumQuantityByLocation(ctx)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"loc-1": 12, "loc-2": 0}, sums)
	mockDB.ExpectationsWereMet(t)
}

func TestMigrate_StopsAtFirstFailure(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })
	db := database.Wrap(mockDB.DB, logger.Nop(), 0)

	mockDB.ExpectBegin()
	mockDB.ExpectExec("CREATE TABLE IF NOT EXISTS products").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectExec("CREATE TABLE IF NOT EXISTS storage_locations").
		WillReturnError(&pq.Error{Code: "42501", Message: "permission denied"})
	mockDB.ExpectRollback()

	err := repository.Migrate(context.Background(), db)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 2")
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_InsertBatchAssignsID(t *testing.T) {
	s := testutil.NewUnitTestSuite(t)
	defer s.Cleanup()
	store := repository.NewPostgresStore(database.Wrap(s.MockDB.DB, logger.Nop(), 0), logger.Nop())

	locID := "loc-1"
	batch := s.Fixtures.Batch("prod-1", &locID, time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC), 12)
	created := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	s.MockDB.ExpectBegin()
	s.MockDB.ExpectQuery("INSERT INTO batches").
		WithArgs(testutil.AnyUUID{}, "prod-1", batch.BatchNumber, testutil.AnyTime{}, 12, batch.BatchNumber, &locID, domain.BatchAvailable).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(created, created))
	s.MockDB.ExpectCommit()

	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		return tx.InsertBatch(ctx, batch)
	})

	require.NoError(t, err)
	assert.Len(t, batch.ID, 36)
	assert.Equal(t, created, batch.CreatedAt)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), batch.ExpiryDate)
}

func TestPostgresStore_MalformedInputIsValidation(t *testing.T) {
	tests := []struct {
		name    string
		pqErr   *pq.Error
		wantKey string
	}{
		{
			name:    "invalid uuid text",
			pqErr:   &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`},
			wantKey: "id",
		},
		{
			name:    "numeric out of range",
			pqErr:   &pq.Error{Code: "22003", Message: "numeric field overflow"},
			wantKey: "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mockDB := newMockStore(t)

			mockDB.ExpectUnitOfWork(lockTimeout)
			mockDB.ExpectQuery("FROM batches WHERE id = $1 FOR UPDATE").
				WithArgs("abc").
				WillReturnError(tt.pqErr)
			mockDB.ExpectRollback()

			err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
				_, err := tx.LockBatch(ctx, "abc")
				return err
			})

			assert.ErrorIs(t, err, errors.ErrValidation)
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, 400, appErr.StatusCode)
			assert.Contains(t, appErr.Details, tt.wantKey)
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestPostgresStore_UpdateLatestTemperatureKeepsNewerReading(t *testing.T) {
	store, mockDB := newMockStore(t)
	at := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectExec("last_temp_update IS NULL OR last_temp_update <= $3").
		WithArgs("loc-1", sqlmock.AnyArg(), at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectCommit()

	var current bool
	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		var err error
		current, err = tx.UpdateLatestTemperature(ctx, "loc-1", decimal.NewFromInt(20), at)
		return err
	})

	require.NoError(t, err)
	assert.False(t, current)
	mockDB.ExpectationsWereMet(t)
}

func TestPostgresStore_LockPickTakesRowLock(t *testing.T) {
	store, mockDB := newMockStore(t)
	created := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

	mockDB.ExpectUnitOfWork(lockTimeout)
	mockDB.ExpectQuery("FROM picks WHERE id = $1 FOR UPDATE").
		WithArgs("k-1").
		WillReturnRows(testutil.MockRows("id", "order_id", "batch_id", "product_id", "quantity_picked", "status", "created_at", "updated_at").
			AddRow("k-1", "o-1", "b-1", "p-1", 4, "picked", created, created))
	mockDB.ExpectCommit()

	var pick *domain.Pick
	err := store.Transact(context.Background(), func(ctx context.Context, tx domain.Tx) error {
		var err error
		pick, err = tx.LockPick(ctx, "k-1")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PickPicked, pick.Status)
	assert.Equal(t, 4, pick.QuantityPicked)
	mockDB.ExpectationsWereMet(t)
}
