package catalog

import (
	"encoding/json"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Raw input shapes as decoded from the wire. Prices arrive as json.Number so
// the decimal-places rule can be checked against the literal representation
// rather than a rounded float.

// CreateProductInput is the untrusted create-product payload.
type CreateProductInput struct {
	Title          map[string]string `json:"title" validate:"required"`
	Description    map[string]string `json:"description"`
	Slug           *string           `json:"slug"`
	Price          json.Number       `json:"price" validate:"required"`
	CompareAtPrice *json.Number      `json:"compare_at_price"`
	AvailableSizes []string          `json:"available_sizes"`
	ProductTypeID  string            `json:"product_type_id" validate:"required"`
	Color          string            `json:"color" validate:"required"`
	IsActive       *bool             `json:"is_active"`
	IsHot          *bool             `json:"is_hot"`
}

// UpdateProductInput is the untrusted update-product payload. Nil fields are
// absent and leave the stored value untouched.
type UpdateProductInput struct {
	Title          map[string]string `json:"title"`
	Description    map[string]string `json:"description"`
	Slug           *string           `json:"slug"`
	Price          *json.Number      `json:"price"`
	CompareAtPrice *json.Number      `json:"compare_at_price"`
	AvailableSizes []string          `json:"available_sizes"`
	Color          *string           `json:"color"`
	IsActive       *bool             `json:"is_active"`
	IsHot          *bool             `json:"is_hot"`
	Reason         *string           `json:"reason"`
}

// ListProductsInput carries the raw query-string values of a list request.
type ListProductsInput struct {
	Page               string
	Limit              string
	ProductTypeID      string
	IsActive           string
	IsHot              string
	MinPrice           string
	MaxPrice           string
	Search             string
	SortBy             string
	SortDirection      string
	IncludeSoftDeleted bool
}

// CreateImageInput is the untrusted add-image payload.
type CreateImageInput struct {
	URL       string            `json:"url" validate:"required"`
	AltText   map[string]string `json:"alt_text"`
	IsPrimary *bool             `json:"is_primary"`
	SortOrder *int              `json:"sort_order"`
}

// UpdateImageInput is the untrusted update-image payload.
type UpdateImageInput struct {
	URL       *string           `json:"url"`
	AltText   map[string]string `json:"alt_text"`
	IsPrimary *bool             `json:"is_primary"`
	SortOrder *int              `json:"sort_order"`
}

// Normalized commands. These are the only shapes that cross into the service
// layer; no untyped maps get past validation.

// CreateProductCommand is a validated, fully-typed create request.
type CreateProductCommand struct {
	Title           domain.LocalizedText
	Description     domain.LocalizedText
	Slug            *string
	Price           decimal.Decimal
	CompareAtPrice  decimal.NullDecimal
	AvailableSizes  domain.StringList
	ProductTypeID   uuid.UUID
	Color           string
	IsActive        bool
	IsHot           bool
	CreatedByUserID *uuid.UUID
}

// UpdateProductCommand is a validated patch. Nil fields are absent.
type UpdateProductCommand struct {
	Title           domain.LocalizedText
	Description     domain.LocalizedText
	Slug            *string
	Price           *decimal.Decimal
	CompareAtPrice  *decimal.Decimal
	AvailableSizes  domain.StringList
	Color           *string
	IsActive        *bool
	IsHot           *bool
	ChangedByUserID *uuid.UUID
	Reason          *string
}

// SortField is an allow-listed list-products sort column.
type SortField string

const (
	SortByPrice      SortField = "price"
	SortByCreatedAt  SortField = "createdAt"
	SortBySalesCount SortField = "salesCount"
)

// SortDirection is the list-products sort direction.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListProductsQuery is a validated list request with defaults applied.
type ListProductsQuery struct {
	Page               int
	Limit              int
	ProductTypeID      *uuid.UUID
	IsActive           *bool
	IsHot              *bool
	MinPrice           *decimal.Decimal
	MaxPrice           *decimal.Decimal
	Search             *string
	SortBy             SortField
	SortDirection      SortDirection
	IncludeSoftDeleted bool
}

// Offset computes the row offset for the validated page and limit.
func (q *ListProductsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CreateImageCommand is a validated add-image request.
type CreateImageCommand struct {
	ProductID uuid.UUID
	URL       string
	AltText   domain.LocalizedText
	IsPrimary bool
	SortOrder int
}

// UpdateImageCommand is a validated image patch. Nil fields are absent.
type UpdateImageCommand struct {
	ProductID uuid.UUID
	ImageID   uuid.UUID
	URL       *string
	AltText   domain.LocalizedText
	IsPrimary *bool
	SortOrder *int
}
