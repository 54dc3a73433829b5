package service

import (
	"context"
	"strings"
	"time"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
)

const maxProductTypeNameLength = 100

// ProductTypeService defines the interface for product type logic.
type ProductTypeService interface {
	Create(ctx context.Context, name string) (*domain.ProductType, error)
	List(ctx context.Context) ([]*domain.ProductType, error)
}

type productTypeService struct {
	store repository.Store
}

// NewProductTypeService creates a new instance of ProductTypeService.
func NewProductTypeService(store repository.Store) ProductTypeService {
	return &productTypeService{store: store}
}

// Create inserts a new product type. Duplicate names surface from the
// store's unique constraint.
func (s *productTypeService) Create(ctx context.Context, name string) (*domain.ProductType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &catalog.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if len(name) > maxProductTypeNameLength {
		return nil, &catalog.ValidationError{Field: "name", Message: "must be at most 100 characters"}
	}

	productType := &domain.ProductType{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.store.ProductTypes().Create(ctx, productType); err != nil {
		return nil, err
	}
	return productType, nil
}

// List retrieves all product types.
func (s *productTypeService) List(ctx context.Context) ([]*domain.ProductType, error) {
	return s.store.ProductTypes().List(ctx)
}
