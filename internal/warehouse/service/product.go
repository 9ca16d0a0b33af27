package service

import (
	"context"
	"strings"

	"github.com/frostvault/frostvault-backend/internal/warehouse/domain"
	"github.com/frostvault/frostvault-backend/pkg/errors"
)

// CreateProductInput is the data needed to register a product
type CreateProductInput struct {
	Name        string                 `json:"name" validate:"required,max=255"`
	Category    domain.StorageCategory `json:"category" validate:"required,oneof=ambient cold_storage"`
	Description *string                `json:"description,omitempty"`
}

// CreateProduct registers a product
func (s *WarehouseService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	details := map[string]string{}
	if name == "" {
		details["name"] = "this field is required"
	}
	if !in.Category.Valid() {
		details["category"] = "must be one of: ambient, cold_storage"
	}
	if len(details) > 0 {
		return nil, errors.Validation(details)
	}

	product := &domain.Product{
		Name:        name,
		Category:    in.Category,
		Description: in.Description,
	}
	err := s.store.Transact(ctx, func(ctx context.Context, tx domain.Tx) error {
		return tx.InsertProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct gets a product by ID
func (s *WarehouseService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product *domain.Product
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		product, err = tx.GetProduct(ctx, id)
		return err
	})
	return product, err
}

// ListProducts lists all products by name
func (s *WarehouseService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.read(ctx, func(ctx context.Context, tx domain.Tx) error {
		var err error
		products, err = tx.ListProducts(ctx)
		return err
	})
	return products, err
}
