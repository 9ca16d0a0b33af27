package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TestSchema is an isolated schema created for one test
type TestSchema struct {
	Name string
	DSN  string
}

// SchemaManager creates and drops per-test schemas
type SchemaManager struct {
	db      *sqlx.DB
	dsnFn   func(schema string) string
	schemas []TestSchema
	mu      sync.Mutex
}

// NewSchemaManager creates a new schema manager. dsnFn returns a DSN whose
// connections default to the given schema.
func NewSchemaManager(db *sqlx.DB, dsnFn func(schema string) string) *SchemaManager {
	return &SchemaManager{
		db:      db,
		dsnFn:   dsnFn,
		schemas: make([]TestSchema, 0),
	}
}

// CreateSchema creates a fresh schema and applies migrations inside it.
//
// Usage:
//
//	schema, err := sm.CreateSchema(ctx, "fefo", repository.Migrations())
//	raw, err := sqlx.ConnectContext(ctx, "postgres", schema.DSN)
func (sm *SchemaManager) CreateSchema(ctx context.Context, name string, migrations []string) (*TestSchema, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	suffix := uuid.New().String()[:8]
	slug := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(name))
	schemaName := fmt.Sprintf("test_%s_%s", slug, suffix)

	if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", schemaName)); err != nil {
		return nil, fmt.Errorf("failed to create test schema: %w", err)
	}

	if err := sm.runMigrations(ctx, schemaName, migrations); err != nil {
		return nil, err
	}

	s := TestSchema{Name: schemaName, DSN: sm.dsnFn(schemaName)}
	sm.schemas = append(sm.schemas, s)
	return &s, nil
}

func (sm *SchemaManager) runMigrations(ctx context.Context, schema string, migrations []string) error {
	tx, err := sm.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL search_path TO %s", schema)); err != nil {
		return fmt.Errorf("failed to set search_path: %w", err)
	}
	for i, migration := range migrations {
		if _, err := tx.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return tx.Commit()
}

// DropSchema removes a test schema and everything in it
func (sm *SchemaManager) DropSchema(ctx context.Context, schema *TestSchema) error {
	if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema.Name)); err != nil {
		return fmt.Errorf("failed to drop test schema: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for i, s := range sm.schemas {
		if s.Name == schema.Name {
			sm.schemas = append(sm.schemas[:i], sm.schemas[i+1:]...)
			break
		}
	}
	return nil
}

// Cleanup drops every schema that is still registered
func (sm *SchemaManager) Cleanup(ctx context.Context) error {
	sm.mu.Lock()
	schemas := append([]TestSchema(nil), sm.schemas...)
	sm.mu.Unlock()

	for i := range schemas {
		if err := sm.DropSchema(ctx, &schemas[i]); err != nil {
			return err
		}
	}
	return nil
}
