package catalog

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxAltTextLength     = 200
	maxSearchLength      = 100

	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// ValidateCreateProduct normalizes a raw create payload into a typed command
// or rejects it with a field-level ValidationError. No store access happens
// here; referential checks (product type existence, slug collisions) belong
// to the store-backed components.
func ValidateCreateProduct(in *CreateProductInput) (*CreateProductCommand, *ValidationError) {
	title, verr := validateLocalized("title", in.Title, maxTitleLength, true)
	if verr != nil {
		return nil, verr
	}

	description, verr := validateLocalized("description", in.Description, maxDescriptionLength, false)
	if verr != nil {
		return nil, verr
	}

	var slug *string
	if in.Slug != nil {
		s := strings.TrimSpace(*in.Slug)
		if !IsValidSlug(s) {
			return nil, invalid("slug", "must be lowercase letters, digits and hyphens, at most 100 characters, without leading or trailing hyphens")
		}
		slug = &s
	}

	price, verr := validatePrice("price", in.Price)
	if verr != nil {
		return nil, verr
	}

	compareAt := decimal.NullDecimal{}
	if in.CompareAtPrice != nil {
		d, verr := validatePrice("compare_at_price", *in.CompareAtPrice)
		if verr != nil {
			return nil, verr
		}
		if !d.GreaterThan(price) {
			return nil, invalid("compare_at_price", "must be greater than price")
		}
		compareAt = decimal.NullDecimal{Decimal: d, Valid: true}
	}

	sizes, verr := validateSizes(in.AvailableSizes)
	if verr != nil {
		return nil, verr
	}

	productTypeID, err := uuid.Parse(in.ProductTypeID)
	if err != nil {
		return nil, invalid("product_type_id", "must be a valid UUID")
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		return nil, invalid("color", "must not be empty")
	}

	cmd := &CreateProductCommand{
		Title:          title,
		Description:    description,
		Slug:           slug,
		Price:          price,
		CompareAtPrice: compareAt,
		AvailableSizes: sizes,
		ProductTypeID:  productTypeID,
		Color:          color,
		IsActive:       true,
		IsHot:          false,
	}
	if in.IsActive != nil {
		cmd.IsActive = *in.IsActive
	}
	if in.IsHot != nil {
		cmd.IsHot = *in.IsHot
	}
	return cmd, nil
}

// ValidateUpdateProduct normalizes a raw patch. compare_at_price is checked
// against a price from the same payload when both are present; checking it
// against the stored price is deferred to the update path, which has both
// values in hand.
func ValidateUpdateProduct(in *UpdateProductInput) (*UpdateProductCommand, *ValidationError) {
	cmd := &UpdateProductCommand{}

	if in.Title != nil {
		title, verr := validateLocalized("title", in.Title, maxTitleLength, true)
		if verr != nil {
			return nil, verr
		}
		cmd.Title = title
	}

	if in.Description != nil {
		description, verr := validateLocalized("description", in.Description, maxDescriptionLength, false)
		if verr != nil {
			return nil, verr
		}
		cmd.Description = description
	}

	if in.Slug != nil {
		s := strings.TrimSpace(*in.Slug)
		if !IsValidSlug(s) {
			return nil, invalid("slug", "must be lowercase letters, digits and hyphens, at most 100 characters, without leading or trailing hyphens")
		}
		cmd.Slug = &s
	}

	if in.Price != nil {
		price, verr := validatePrice("price", *in.Price)
		if verr != nil {
			return nil, verr
		}
		cmd.Price = &price
	}

	if in.CompareAtPrice != nil {
		compareAt, verr := validatePrice("compare_at_price", *in.CompareAtPrice)
		if verr != nil {
			return nil, verr
		}
		if cmd.Price != nil && !compareAt.GreaterThan(*cmd.Price) {
			return nil, invalid("compare_at_price", "must be greater than price")
		}
		cmd.CompareAtPrice = &compareAt
	}

	if in.AvailableSizes != nil {
		sizes, verr := validateSizes(in.AvailableSizes)
		if verr != nil {
			return nil, verr
		}
		cmd.AvailableSizes = sizes
	}

	if in.Color != nil {
		color := strings.TrimSpace(*in.Color)
		if color == "" {
			return nil, invalid("color", "must not be empty")
		}
		cmd.Color = &color
	}

	cmd.IsActive = in.IsActive
	cmd.IsHot = in.IsHot

	if in.Reason != nil {
		reason := strings.TrimSpace(*in.Reason)
		if reason != "" {
			cmd.Reason = &reason
		}
	}

	return cmd, nil
}

// ValidateListProducts parses raw query-string values into a typed list
// query, applying defaults and the sort allow-list.
func ValidateListProducts(in *ListProductsInput) (*ListProductsQuery, *ValidationError) {
	q := &ListProductsQuery{
		Page:               defaultPage,
		Limit:              defaultLimit,
		SortBy:             SortByCreatedAt,
		SortDirection:      SortDesc,
		IncludeSoftDeleted: in.IncludeSoftDeleted,
	}

	if in.Page != "" {
		page, err := strconv.Atoi(in.Page)
		if err != nil || page < 1 {
			return nil, invalid("page", "must be an integer greater than or equal to 1")
		}
		q.Page = page
	}

	if in.Limit != "" {
		limit, err := strconv.Atoi(in.Limit)
		if err != nil || limit < 1 || limit > maxLimit {
			return nil, invalid("limit", fmt.Sprintf("must be an integer between 1 and %d", maxLimit))
		}
		q.Limit = limit
	}

	if in.ProductTypeID != "" {
		id, err := uuid.Parse(in.ProductTypeID)
		if err != nil {
			return nil, invalid("product_type_id", "must be a valid UUID")
		}
		q.ProductTypeID = &id
	}

	if in.IsActive != "" {
		active, err := strconv.ParseBool(in.IsActive)
		if err != nil {
			return nil, invalid("is_active", "must be true or false")
		}
		q.IsActive = &active
	}

	if in.IsHot != "" {
		hot, err := strconv.ParseBool(in.IsHot)
		if err != nil {
			return nil, invalid("is_hot", "must be true or false")
		}
		q.IsHot = &hot
	}

	if in.MinPrice != "" {
		min, err := decimal.NewFromString(in.MinPrice)
		if err != nil || min.IsNegative() {
			return nil, invalid("min_price", "must be a non-negative number")
		}
		q.MinPrice = &min
	}

	if in.MaxPrice != "" {
		max, err := decimal.NewFromString(in.MaxPrice)
		if err != nil || max.IsNegative() {
			return nil, invalid("max_price", "must be a non-negative number")
		}
		q.MaxPrice = &max
	}

	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, invalid("min_price", "must not exceed max_price")
	}

	if search := strings.TrimSpace(in.Search); search != "" {
		if len(search) > maxSearchLength {
			return nil, invalid("search", fmt.Sprintf("must be at most %d characters", maxSearchLength))
		}
		q.Search = &search
	}

	if in.SortBy != "" {
		switch SortField(in.SortBy) {
		case SortByPrice, SortByCreatedAt, SortBySalesCount:
			q.SortBy = SortField(in.SortBy)
		default:
			return nil, invalid("sort_by", "must be one of price, createdAt, salesCount")
		}
	}

	if in.SortDirection != "" {
		switch SortDirection(in.SortDirection) {
		case SortAsc, SortDesc:
			q.SortDirection = SortDirection(in.SortDirection)
		default:
			return nil, invalid("sort_direction", "must be asc or desc")
		}
	}

	return q, nil
}

// ValidateCreateImage normalizes a raw add-image payload.
func ValidateCreateImage(productID uuid.UUID, in *CreateImageInput) (*CreateImageCommand, *ValidationError) {
	imageURL, verr := validateImageURL(in.URL)
	if verr != nil {
		return nil, verr
	}

	altText, verr := validateLocalized("alt_text", in.AltText, maxAltTextLength, false)
	if verr != nil {
		return nil, verr
	}

	cmd := &CreateImageCommand{
		ProductID: productID,
		URL:       imageURL,
		AltText:   altText,
	}
	if in.IsPrimary != nil {
		cmd.IsPrimary = *in.IsPrimary
	}
	if in.SortOrder != nil {
		if *in.SortOrder < 0 {
			return nil, invalid("sort_order", "must be non-negative")
		}
		cmd.SortOrder = *in.SortOrder
	}
	return cmd, nil
}

// ValidateUpdateImage normalizes a raw image patch.
func ValidateUpdateImage(productID, imageID uuid.UUID, in *UpdateImageInput) (*UpdateImageCommand, *ValidationError) {
	cmd := &UpdateImageCommand{ProductID: productID, ImageID: imageID}

	if in.URL != nil {
		imageURL, verr := validateImageURL(*in.URL)
		if verr != nil {
			return nil, verr
		}
		cmd.URL = &imageURL
	}

	if in.AltText != nil {
		altText, verr := validateLocalized("alt_text", in.AltText, maxAltTextLength, false)
		if verr != nil {
			return nil, verr
		}
		cmd.AltText = altText
	}

	cmd.IsPrimary = in.IsPrimary

	if in.SortOrder != nil {
		if *in.SortOrder < 0 {
			return nil, invalid("sort_order", "must be non-negative")
		}
		cmd.SortOrder = in.SortOrder
	}

	return cmd, nil
}

// validateLocalized checks a language map: the Spanish entry is mandatory
// when the field itself is required, and every present entry must be
// non-empty and within maxLen.
func validateLocalized(field string, m map[string]string, maxLen int, required bool) (domain.LocalizedText, *ValidationError) {
	if len(m) == 0 {
		if required {
			return nil, invalid(field, "Spanish (es) translation is required")
		}
		return nil, nil
	}

	if required && strings.TrimSpace(m[domain.LangSpanish]) == "" {
		return nil, invalid(field, "Spanish (es) translation is required")
	}

	out := make(domain.LocalizedText, len(m))
	for lang, text := range m {
		if strings.TrimSpace(text) == "" {
			return nil, invalid(field, fmt.Sprintf("%s translation must not be empty", lang))
		}
		if len(text) > maxLen {
			return nil, invalid(field, fmt.Sprintf("%s translation must be at most %d characters", lang, maxLen))
		}
		out[lang] = text
	}
	return out, nil
}

// validatePrice parses a literal number and enforces positivity and the
// two-fractional-digits rule. The check runs on the decimal exponent of the
// literal, so 19.90 passes and 19.999 fails regardless of float rounding.
func validatePrice(field string, n json.Number) (decimal.Decimal, *ValidationError) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, invalid(field, "must be a number")
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, invalid(field, "must be greater than zero")
	}
	if d.Exponent() < -2 {
		return decimal.Decimal{}, invalid(field, "must have at most 2 decimal places")
	}
	return d, nil
}

func validateSizes(sizes []string) (domain.StringList, *ValidationError) {
	if sizes == nil {
		return nil, nil
	}
	out := make(domain.StringList, 0, len(sizes))
	for _, size := range sizes {
		size = strings.TrimSpace(size)
		if size == "" {
			return nil, invalid("available_sizes", "entries must not be empty")
		}
		out = append(out, size)
	}
	return out, nil
}

func validateImageURL(raw string) (string, *ValidationError) {
	raw = strings.TrimSpace(raw)
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid("url", "must be a valid http(s) URL")
	}
	return raw, nil
}
