package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"

	"github.com/imaginify/backend/internal/apperror"
)

const uniqueViolation = "23505"

// classifyStoreError wraps err with op and tags failures a redelivery can cure.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) {
		return apperror.Transient(op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperror.Transient(op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "40", "53", "57":
			// connection, rollback, resources, operator intervention
			return apperror.Transient(op, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// uniqueConstraint returns the violated constraint name, or "" when err is
// not a unique violation.
func uniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return pqErr.Constraint
	}
	return ""
}
