package repository

import (
	"context"
	"fmt"

	"github.com/frostvault/frostvault-backend/pkg/database"
	"github.com/jmoiron/sqlx"
)

// Migrations returns the warehouse schema, in apply order. Constraint names
// are matched by database.MapPQError.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(20) NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT products_name_key UNIQUE (name),
			CONSTRAINT products_storage_type_valid CHECK (category IN ('ambient', 'cold_storage'))
		)`,

		`CREATE TABLE IF NOT EXISTS storage_locations (
			id UUID PRIMARY KEY,
			zone VARCHAR(50) NOT NULL,
			rack VARCHAR(50) NOT NULL,
			slot VARCHAR(50) NOT NULL,
			location_type VARCHAR(20) NOT NULL,
			capacity INTEGER NOT NULL,
			current_occupancy INTEGER NOT NULL DEFAULT 0,
			min_temp NUMERIC(5,2),
			max_temp NUMERIC(5,2),
			latest_temperature NUMERIC(5,2),
			last_temp_update TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT storage_locations_slot_key UNIQUE (zone, rack, slot),
			CONSTRAINT storage_locations_storage_type_valid CHECK (location_type IN ('ambient', 'cold_storage')),
			CONSTRAINT storage_locations_quantity_positive CHECK (capacity > 0),
			CONSTRAINT storage_locations_occupancy_bounds CHECK (current_occupancy >= 0 AND current_occupancy <= capacity),
			CONSTRAINT storage_locations_temperature_range CHECK (min_temp IS NULL OR max_temp IS NULL OR min_temp <= max_temp)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_storage_locations_type ON storage_locations(location_type)`,

		`CREATE TABLE IF NOT EXISTS batches (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL REFERENCES products(id),
			batch_number VARCHAR(100) NOT NULL,
			expiry_date DATE NOT NULL,
			quantity INTEGER NOT NULL,
			barcode VARCHAR(100) NOT NULL,
			assigned_location_id UUID REFERENCES storage_locations(id),
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT batches_batch_number_key UNIQUE (batch_number),
			CONSTRAINT batches_barcode_key UNIQUE (barcode),
			CONSTRAINT batches_quantity_non_negative CHECK (quantity >= 0),
			CONSTRAINT batches_status_valid CHECK (status IN ('available', 'picked', 'dispatched', 'expired', 'damaged'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_batches_fefo ON batches(product_id, expiry_date, created_at) WHERE status = 'available' AND quantity > 0`,
		`CREATE INDEX IF NOT EXISTS idx_batches_location ON batches(assigned_location_id)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT orders_status_valid CHECK (status IN ('pending', 'completed', 'dispatched', 'cancelled'))
		)`,

		`CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT order_items_quantity_positive CHECK (quantity > 0)
		)`,

		`CREATE TABLE IF NOT EXISTS picks (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			batch_id UUID NOT NULL REFERENCES batches(id),
			product_id UUID NOT NULL REFERENCES products(id),
			quantity_picked INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending_pick',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT picks_order_batch_key UNIQUE (order_id, batch_id),
			CONSTRAINT picks_quantity_positive CHECK (quantity_picked > 0),
			CONSTRAINT picks_status_valid CHECK (status IN ('pending_pick', 'picked', 'packed', 'dispatched', 'cancelled'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_picks_batch ON picks(batch_id)`,

		`CREATE TABLE IF NOT EXISTS dispatches (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			dispatched_by VARCHAR(255) NOT NULL,
			dispatch_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS temperature_logs (
			id UUID PRIMARY KEY,
			location_id UUID NOT NULL REFERENCES storage_locations(id) ON DELETE CASCADE,
			temperature NUMERIC(5,2) NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_temperature_logs_location ON temperature_logs(location_id, recorded_at DESC)`,
	}
}

// Migrate applies every migration in one transaction. Statements are
// idempotent, so running it against an existing schema is safe.
func Migrate(ctx context.Context, db *database.DB) error {
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for i, stmt := range Migrations() {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d: %w", i+1, err)
			}
		}
		return nil
	})
}
