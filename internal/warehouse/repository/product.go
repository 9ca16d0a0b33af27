package repository

import (
	"context"
	"database/sql"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, category, description, created_at, updated_at`

type productRepository struct {
	db sqlx.ExtContext
}

func (r *productRepository) InsertProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
		INSERT INTO products (id, name, category, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query, p.ID, p.Name, p.Category, p.Description).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	if err := sqlx.SelectContext(ctx, r.db, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}
