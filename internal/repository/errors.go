package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrProductTypeNotFound = errors.New("product type not found")
	ErrProductTypeExists   = errors.New("product type with this name already exists")

	// ErrDuplicateSlug signals a unique violation specifically on the slug
	// column. The slug allocator retries on this error and nothing else.
	ErrDuplicateSlug = errors.New("slug already exists")

	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
)

// uniqueViolationCode is the Postgres SQLSTATE for unique-constraint errors.
const uniqueViolationCode = "23505"

// Named constraints from the migrations. Postgres reports the violating
// constraint, which lets us tell a slug collision apart from any other
// uniqueness failure.
const (
	productSlugConstraint     = "products_slug_key"
	userEmailConstraint       = "users_email_key"
	productTypeNameConstraint = "product_types_name_key"
)

// isUniqueViolation reports whether err is a unique violation on the named
// constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
}
