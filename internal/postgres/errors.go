package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

const uniqueViolation pq.ErrorCode = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint error
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// ConstraintName returns the violated constraint, if any
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
