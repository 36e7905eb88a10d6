package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAddressTaken is returned when a publish loses the compare-and-set on
	// the address namespace.
	ErrAddressTaken = errors.New("address already taken")
	// ErrOwnerMismatch is returned when a write names an owner that does not
	// own the configuration.
	ErrOwnerMismatch = errors.New("owner does not match")
	// ErrDomainTaken is returned when a custom domain is used by another configuration.
	ErrDomainTaken = errors.New("custom domain already in use")
)

// unique_violation
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
