package repository

import (
	"context"
	"database/sql"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const pickColumns = `id, order_id, batch_id, product_id, quantity_picked, status, created_at, updated_at`

type orderRepository struct {
	db sqlx.ExtContext
}

func (r *orderRepository) InsertOrder(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	query := `INSERT INTO orders (id, status) VALUES ($1, $2) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query, o.ID, o.Status).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepository) getOrder(ctx context.Context, query, id string) (*domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("order")
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT id, status, created_at, updated_at FROM orders WHERE id = $1`, id)
}

func (r *orderRepository) LockOrder(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOrder(ctx, `SELECT id, status, created_at, updated_at FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *orderRepository) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NotFound("order")
	}
	return nil
}

func (r *orderRepository) InsertOrderItem(ctx context.Context, item *domain.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return r.db.QueryRowxContext(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity).
		Scan(&item.CreatedAt)
}

func (r *orderRepository) ListOrderItems(ctx context.Context, orderID string) ([]*domain.OrderItem, error) {
	items := []*domain.OrderItem{}
	query := `
		SELECT id, order_id, product_id, quantity, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id
	`
	if err := sqlx.SelectContext(ctx, r.db, &items, query, orderID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) InsertPick(ctx context.Context, p *domain.Pick) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO picks (id, order_id, batch_id, product_id, quantity_picked, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		p.ID, p.OrderID, p.BatchID, p.ProductID, p.QuantityPicked, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *orderRepository) GetPick(ctx context.Context, id string) (*domain.Pick, error) {
	return r.getPick(ctx, `SELECT `+pickColumns+` FROM picks WHERE id = $1`, id)
}

func (r *orderRepository) LockPick(ctx context.Context, id string) (*domain.Pick, error) {
	return r.getPick(ctx, `SELECT `+pickColumns+` FROM picks WHERE id = $1 FOR UPDATE`, id)
}

func (r *orderRepository) getPick(ctx context.Context, query, id string) (*domain.Pick, error) {
	var p domain.Pick
	if err := sqlx.GetContext(ctx, r.db, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("pick")
		}
		return nil, err
	}
	return &p, nil
}

func (r *orderRepository) SetPickStatus(ctx context.Context, id string, status domain.PickStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE picks SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NotFound("pick")
	}
	return nil
}

func (r *orderRepository) ListPicksByOrder(ctx context.Context, orderID string) ([]*domain.Pick, error) {
	picks := []*domain.Pick{}
	query := `SELECT ` + pickColumns + ` FROM picks WHERE order_id = $1 ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, r.db, &picks, query, orderID); err != nil {
		return nil, err
	}
	return picks, nil
}

func (r *orderRepository) DeletePicksByBatch(ctx context.Context, batchID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM picks WHERE batch_id = $1`, batchID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *orderRepository) CancelPendingPicks(ctx context.Context, orderID string) (int64, error) {
	query := `
		UPDATE picks SET status = 'cancelled', updated_at = NOW()
		WHERE order_id = $1 AND status = 'pending_pick'
	`
	res, err := r.db.ExecContext(ctx, query, orderID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *orderRepository) ListActivePendingPicks(ctx context.Context, batchID string) ([]*domain.Pick, error) {
	picks := []*domain.Pick{}
	query := `
		SELECT p.id, p.order_id, p.batch_id, p.product_id, p.quantity_picked, p.status, p.created_at, p.updated_at
		FROM picks p
		JOIN orders o ON o.id = p.order_id
		WHERE p.batch_id = $1 AND p.status = 'pending_pick' AND o.status = 'pending'
		ORDER BY p.created_at, p.id
	`
	if err := sqlx.SelectContext(ctx, r.db, &picks, query, batchID); err != nil {
		return nil, err
	}
	return picks, nil
}

func (r *orderRepository) InsertDispatch(ctx context.Context, d *domain.Dispatch) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO dispatches (id, order_id, dispatched_by, dispatch_date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return r.db.QueryRowxContext(ctx, query, d.ID, d.OrderID, d.DispatchedBy, d.DispatchDate).
		Scan(&d.CreatedAt)
}
