package database

import (
	stderrors "errors"
	"strings"

	"github.com/frostvault/frostvault-backend/pkg/errors"
	"github.com/lib/pq"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Duplicate(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	// invalid_text_representation, e.g. a malformed UUID
	case "22P02":
		if strings.Contains(pqErr.Message, "uuid") {
			return errors.Validation(map[string]string{
				"id": "must be a valid UUID",
			})
		}
		return errors.Validation(map[string]string{
			"value": "has an invalid format",
		})

	// numeric_value_out_of_range
	case "22003":
		col := pqErr.Column
		if col == "" {
			col = "value"
		}
		return errors.Validation(map[string]string{
			col: "is out of range",
		})

	// lock_not_available, serialization_failure, deadlock_detected
	case "55P03", "40001", "40P01":
		return errors.ConcurrencyConflict("concurrent update in progress, retry the request")

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "occupancy_bounds"):
		return errors.Validation(map[string]string{
			"current_occupancy": "must stay between 0 and capacity",
		})

	case strings.Contains(constraint, "quantity_non_negative"), strings.Contains(constraint, "quantity_positive"):
		return errors.Validation(map[string]string{
			"quantity": "must not be negative",
		})

	case strings.Contains(constraint, "temperature_range"):
		return errors.Validation(map[string]string{
			"temperature": "minimum must not exceed maximum",
		})

	case strings.Contains(constraint, "storage_type_valid"):
		return errors.Validation(map[string]string{
			"storage_type": "must be one of: ambient, cold_storage",
		})

	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "is not a recognised status",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "products_name"):
		return "a product with this name already exists"
	case strings.Contains(constraint, "storage_locations_slot"):
		return "a location with this zone, rack and slot already exists"
	case strings.Contains(constraint, "batch_number"):
		return "a batch with this batch number already exists"
	case strings.Contains(constraint, "barcode"):
		return "a batch with this barcode already exists"
	default:
		return "a record with these values already exists"
	}
}
