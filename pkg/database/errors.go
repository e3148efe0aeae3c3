package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/fleetdocs/fleetdocs-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

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

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "confidence_range"):
		return errors.Validation(map[string]string{
			"extraction_confidence": "must be a non-negative number",
		})

	case strings.Contains(constraint, "document_type_valid"):
		return errors.Validation(map[string]string{
			"document_type": "must be one of: registration, insurance, medical_certificate, cdl",
		})

	case strings.Contains(constraint, "source_count_positive"):
		return errors.Validation(map[string]string{
			"source_count": "must be at least 1",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "identity_key"):
		return "a consolidated record with this identity key already exists"
	default:
		return "a record with these values already exists"
	}
}
