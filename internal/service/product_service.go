package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pagination is the metadata envelope returned with every product page.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ProductPage is one page of list results plus its pagination metadata.
type ProductPage struct {
	Items      []*domain.ProductListItem `json:"items"`
	Pagination Pagination                `json:"pagination"`
}

// ProductService defines the interface for product business logic.
type ProductService interface {
	Create(ctx context.Context, cmd *catalog.CreateProductCommand) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, cmd *catalog.UpdateProductCommand) (*domain.Product, error)
	List(ctx context.Context, q *catalog.ListProductsQuery) (*ProductPage, error)
	GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	PriceHistory(ctx context.Context, id uuid.UUID) ([]*domain.PriceHistory, error)
}

type productService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewProductService creates a new instance of ProductService.
func NewProductService(store repository.Store, logger *zap.Logger) ProductService {
	return &productService{store: store, logger: logger}
}

// Create inserts a new product, allocating its slug. A caller-supplied slug
// is used verbatim and never retried; a derived slug gets numeric suffixes on
// collision, bounded by the retry ceiling. Each attempt is a separate insert,
// so there is no check-then-insert race: the unique constraint decides.
func (s *productService) Create(ctx context.Context, cmd *catalog.CreateProductCommand) (*domain.Product, error) {
	if _, err := s.store.ProductTypes().FindByID(ctx, cmd.ProductTypeID); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:              uuid.New(),
		Title:           cmd.Title,
		Description:     cmd.Description,
		Price:           cmd.Price,
		CompareAtPrice:  cmd.CompareAtPrice,
		AvailableSizes:  cmd.AvailableSizes,
		ProductTypeID:   cmd.ProductTypeID,
		Color:           cmd.Color,
		IsActive:        cmd.IsActive,
		IsHot:           cmd.IsHot,
		CreatedByUserID: cmd.CreatedByUserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if cmd.Slug != nil {
		product.Slug = *cmd.Slug
		if err := s.store.Products().Create(ctx, product); err != nil {
			return nil, err
		}
		return product, nil
	}

	base := catalog.Slugify(cmd.Title.Spanish())
	for attempt := 0; attempt <= catalog.MaxSlugRetries; attempt++ {
		product.Slug = catalog.SlugAttempt(base, attempt)

		err := s.store.Products().Create(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, err
		}
	}

	return nil, repository.ErrDuplicateSlug
}

// Update patches a live product. When the patch changes the price by value,
// the update and one price-history row commit in a single transaction; a
// no-op price (same value) takes the plain update path and opens no
// transaction at all.
func (s *productService) Update(ctx context.Context, id uuid.UUID, cmd *catalog.UpdateProductCommand) (*domain.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	// The effective price is the incoming one if the patch carries it,
	// otherwise whatever is stored. compare_at_price must beat it.
	if cmd.CompareAtPrice != nil {
		effective := product.Price
		if cmd.Price != nil {
			effective = *cmd.Price
		}
		if !cmd.CompareAtPrice.GreaterThan(effective) {
			return nil, &catalog.ValidationError{Field: "compare_at_price", Message: "must be greater than price"}
		}
	}

	priceChanged := cmd.Price != nil && !cmd.Price.Equal(product.Price)

	applyProductPatch(product, cmd)
	product.UpdatedAt = time.Now()

	if !priceChanged {
		if err := s.store.Products().Update(ctx, product); err != nil {
			return nil, err
		}
		return product, nil
	}

	entry := &domain.PriceHistory{
		ID:              uuid.New(),
		ProductID:       product.ID,
		Price:           *cmd.Price,
		ChangedByUserID: cmd.ChangedByUserID,
		Reason:          cmd.Reason,
		CreatedAt:       product.UpdatedAt,
	}

	err = s.store.ExecTx(ctx, func(tx repository.Store) error {
		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}
		return tx.PriceHistory().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// List runs the page query and the count query concurrently; they share one
// predicate and have no ordering dependency.
func (s *productService) List(ctx context.Context, q *catalog.ListProductsQuery) (*ProductPage, error) {
	var (
		items []*domain.ProductListItem
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.Products().List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Products().Count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}

	return &ProductPage{
		Items: items,
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    q.Page < totalPages,
			HasPrev:    q.Page > 1,
		},
	}, nil
}

// GetByID retrieves one product. includeDeleted is an admin-only escape
// hatch; the public paths always pass false.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	return s.store.Products().FindByID(ctx, id, includeDeleted)
}

// GetBySlug is the customer-facing detail read. It bumps the view counter
// off the request path: the increment is dispatched and its result ignored,
// so a lost count never delays or fails the read.
func (s *productService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.store.Products().FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	go func(ctx context.Context) {
		if err := s.store.Products().IncrementViewCount(ctx, product.ID); err != nil {
			s.logger.Debug("view count increment failed",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
		}
	}(context.WithoutCancel(ctx))

	return product, nil
}

// SoftDelete marks a live product as deleted.
func (s *productService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.store.Products().SoftDelete(ctx, id)
}

// Restore brings a soft-deleted product back and returns it.
func (s *productService) Restore(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if err := s.store.Products().Restore(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.store.Products().FindByID(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to reload restored product: %w", err)
	}
	return product, nil
}

// PriceHistory lists the audit log of a live product, newest first.
func (s *productService) PriceHistory(ctx context.Context, id uuid.UUID) ([]*domain.PriceHistory, error) {
	if _, err := s.store.Products().FindByID(ctx, id, false); err != nil {
		return nil, err
	}
	return s.store.PriceHistory().ListByProduct(ctx, id)
}

func applyProductPatch(product *domain.Product, cmd *catalog.UpdateProductCommand) {
	if cmd.Title != nil {
		product.Title = cmd.Title
	}
	if cmd.Description != nil {
		product.Description = cmd.Description
	}
	if cmd.Slug != nil {
		product.Slug = *cmd.Slug
	}
	if cmd.Price != nil {
		product.Price = *cmd.Price
	}
	if cmd.CompareAtPrice != nil {
		product.CompareAtPrice = decimal.NullDecimal{Decimal: *cmd.CompareAtPrice, Valid: true}
	}
	if cmd.AvailableSizes != nil {
		product.AvailableSizes = cmd.AvailableSizes
	}
	if cmd.Color != nil {
		product.Color = *cmd.Color
	}
	if cmd.IsActive != nil {
		product.IsActive = *cmd.IsActive
	}
	if cmd.IsHot != nil {
		product.IsHot = *cmd.IsHot
	}
}
