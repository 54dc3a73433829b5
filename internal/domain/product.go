package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalizedText maps a language code to its translation. The Spanish entry
// ("es") is mandatory on every localized field that reaches the store.
type LocalizedText map[string]string

const (
	LangSpanish = "es"
	LangEnglish = "en"
)

// Spanish returns the mandatory Spanish translation.
func (t LocalizedText) Spanish() string {
	return t[LangSpanish]
}

func (t LocalizedText) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *LocalizedText) Scan(src interface{}) error {
	if src == nil {
		*t = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("cannot scan %T into LocalizedText", src)
	}
}

// StringList is an ordered list of strings stored as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Product is a catalog product. A nil DeletedAt means the product is live;
// soft-deleted products stay in the store and are filtered out on read.
type Product struct {
	ID              uuid.UUID           `json:"id"`
	Title           LocalizedText       `json:"title"`
	Description     LocalizedText       `json:"description,omitempty"`
	Slug            string              `json:"slug"`
	Price           decimal.Decimal     `json:"price"`
	CompareAtPrice  decimal.NullDecimal `json:"compare_at_price,omitempty"`
	AvailableSizes  StringList          `json:"available_sizes,omitempty"`
	ProductTypeID   uuid.UUID           `json:"product_type_id"`
	Color           string              `json:"color"`
	IsActive        bool                `json:"is_active"`
	IsHot           bool                `json:"is_hot"`
	SalesCount      int                 `json:"sales_count"`
	ViewCount       int                 `json:"view_count"`
	CreatedByUserID *uuid.UUID          `json:"created_by_user_id,omitempty"`
	DeletedAt       *time.Time          `json:"deleted_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// ProductImage is one image attached to a product. For a given live product
// at most one image may have IsPrimary set.
type ProductImage struct {
	ID        uuid.UUID     `json:"id"`
	ProductID uuid.UUID     `json:"product_id"`
	URL       string        `json:"url"`
	AltText   LocalizedText `json:"alt_text,omitempty"`
	IsPrimary bool          `json:"is_primary"`
	SortOrder int           `json:"sort_order"`
	CreatedAt time.Time     `json:"created_at"`
}

// PriceHistory is one append-only snapshot of a product's price, written in
// the same transaction as the update that changed it.
type PriceHistory struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Price           decimal.Decimal `json:"price"`
	ChangedByUserID *uuid.UUID      `json:"changed_by_user_id,omitempty"`
	Reason          *string         `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProductType groups products for filtering.
type ProductType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductListItem is the list-endpoint projection of a product: the full
// image set is collapsed to the single primary image, possibly absent.
type ProductListItem struct {
	Product
	PrimaryImage *ProductImage `json:"primary_image,omitempty"`
}
