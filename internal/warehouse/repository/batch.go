package repository

import (
	"context"
	"database/sql"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const batchColumns = `id, product_id, batch_number, expiry_date, quantity, barcode,
	assigned_location_id, status, created_at, updated_at`

type batchRepository struct {
	db sqlx.ExtContext
}

func (r *batchRepository) InsertBatch(ctx context.Context, b *domain.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	query := `
		INSERT INTO batches (
			id, product_id, batch_number, expiry_date, quantity, barcode, assigned_location_id, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		b.ID, b.ProductID, b.BatchNumber, b.ExpiryDate, b.Quantity, b.Barcode,
		b.AssignedLocationID, b.Status,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *batchRepository) getBatch(ctx context.Context, query string, arg interface{}) (*domain.Batch, error) {
	var b domain.Batch
	if err := sqlx.GetContext(ctx, r.db, &b, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, err
	}
	return &b, nil
}

func (r *batchRepository) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	return r.getBatch(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

func (r *batchRepository) LockBatch(ctx context.Context, id string) (*domain.Batch, error) {
	return r.getBatch(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *batchRepository) GetBatchByBarcode(ctx context.Context, barcode string) (*domain.Batch, error) {
	return r.getBatch(ctx, `SELECT `+batchColumns+` FROM batches WHERE barcode = $1`, barcode)
}

func (r *batchRepository) UpdateBatch(ctx context.Context, b *domain.Batch) error {
	query := `
		UPDATE batches SET
			batch_number = $2, barcode = $3, expiry_date = $4, quantity = $5, status = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		b.ID, b.BatchNumber, b.Barcode, b.ExpiryDate, b.Quantity, b.Status,
	).Scan(&b.UpdatedAt)
	if err == sql.ErrNoRows {
		return errors.NotFound("batch")
	}
	return err
}

func (r *batchRepository) DeleteBatch(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NotFound("batch")
	}
	return nil
}

func (r *batchRepository) LockAvailableBatches(ctx context.Context, productID string) ([]*domain.Batch, error) {
	batches := []*domain.Batch{}
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE product_id = $1 AND status = 'available' AND quantity > 0
		ORDER BY expiry_date, created_at, id
		FOR UPDATE
	`
	if err := sqlx.SelectContext(ctx, r.db, &batches, query, productID); err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *batchRepository) DecrementBatchQuantity(ctx context.Context, id string, qty int) (bool, error) {
	query := `
		UPDATE batches
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`
	res, err := r.db.ExecContext(ctx, query, id, qty)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *batchRepository) ListBatches(ctx context.Context) ([]*domain.Batch, error) {
	batches := []*domain.Batch{}
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY expiry_date, created_at, id`
	if err := sqlx.SelectContext(ctx, r.db, &batches, query); err != nil {
		return nil, err
	}
	return batches, nil
}

type locationTotal struct {
	LocationID string `db:"location_id"`
	Total      int    `db:"total"`
}

func (r *batchRepository) SumQuantityByLocation(ctx context.Context) (map[string]int, error) {
	var rows []locationTotal
	query := `
		SELECT assigned_location_id AS location_id, COALESCE(SUM(quantity), 0) AS total
		FROM batches
		WHERE assigned_location_id IS NOT NULL
		GROUP BY assigned_location_id
	`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, err
	}

	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[row.LocationID] = row.Total
	}
	return sums, nil
}
