package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"

	"github.com/google/uuid"
)

const productColumns = `id, title, description, slug, price, compare_at_price, available_sizes,
		       product_type_id, color, is_active, is_hot, sales_count, view_count,
		       created_by_user_id, deleted_at, created_at, updated_at`

// sortColumns maps the validated sort fields onto real columns. Anything not
// in this map never reaches the ORDER BY clause.
var sortColumns = map[catalog.SortField]string{
	catalog.SortByPrice:      "price",
	catalog.SortByCreatedAt:  "created_at",
	catalog.SortBySalesCount: "sales_count",
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, q *catalog.ListProductsQuery) ([]*domain.ProductListItem, error)
	Count(ctx context.Context, q *catalog.ListProductsQuery) (int, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product. A unique violation on the slug constraint is
// mapped to ErrDuplicateSlug so the allocator can retry with a suffix; any
// other error surfaces unchanged.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, title, description, slug, price, compare_at_price, available_sizes,
		                      product_type_id, color, is_active, is_hot, sales_count, view_count,
		                      created_by_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Slug,
		product.Price,
		product.CompareAtPrice,
		product.AvailableSizes,
		product.ProductTypeID,
		product.Color,
		product.IsActive,
		product.IsHot,
		product.SalesCount,
		product.ViewCount,
		product.CreatedByUserID,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, productSlugConstraint) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes the mutable columns of a live product. Soft-deleted rows are
// not matched; zero rows affected means not found.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET title = $2, description = $3, slug = $4, price = $5, compare_at_price = $6,
		    available_sizes = $7, color = $8, is_active = $9, is_hot = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Slug,
		product.Price,
		product.CompareAtPrice,
		product.AvailableSizes,
		product.Color,
		product.IsActive,
		product.IsHot,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, productSlugConstraint) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product. Soft-deleted rows are excluded unless the
// caller explicitly opts in.
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindBySlug retrieves a live product by its slug.
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE slug = $1 AND deleted_at IS NULL`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}
	return product, nil
}

// List fetches one page of products matching the query. Each row carries at
// most one image, picked by a lateral join on is_primary; the full image set
// is never returned here.
func (r *productRepository) List(ctx context.Context, q *catalog.ListProductsQuery) ([]*domain.ProductListItem, error) {
	where, args := buildProductPredicate(q)

	orderBy := sortColumns[q.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	direction := "DESC"
	if q.SortDirection == catalog.SortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.title, p.description, p.slug, p.price, p.compare_at_price, p.available_sizes,
		       p.product_type_id, p.color, p.is_active, p.is_hot, p.sales_count, p.view_count,
		       p.created_by_user_id, p.deleted_at, p.created_at, p.updated_at,
		       i.id, i.url, i.alt_text, i.is_primary, i.sort_order, i.created_at
		FROM products p
		LEFT JOIN LATERAL (
			SELECT id, url, alt_text, is_primary, sort_order, created_at
			FROM product_images
			WHERE product_id = p.id AND is_primary = TRUE
			LIMIT 1
		) i ON TRUE
		%s
		ORDER BY p.%s %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, direction, len(args)+1, len(args)+2)

	args = append(args, q.Limit, q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	items := []*domain.ProductListItem{}
	for rows.Next() {
		item := &domain.ProductListItem{}
		var (
			createdBy      uuid.NullUUID
			deletedAt      sql.NullTime
			imageID        uuid.NullUUID
			imageURL       sql.NullString
			imageAltText   domain.LocalizedText
			imageIsPrimary sql.NullBool
			imageSortOrder sql.NullInt32
			imageCreatedAt sql.NullTime
		)

		err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Slug,
			&item.Price,
			&item.CompareAtPrice,
			&item.AvailableSizes,
			&item.ProductTypeID,
			&item.Color,
			&item.IsActive,
			&item.IsHot,
			&item.SalesCount,
			&item.ViewCount,
			&createdBy,
			&deletedAt,
			&item.CreatedAt,
			&item.UpdatedAt,
			&imageID,
			&imageURL,
			&imageAltText,
			&imageIsPrimary,
			&imageSortOrder,
			&imageCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if createdBy.Valid {
			item.CreatedByUserID = &createdBy.UUID
		}
		if deletedAt.Valid {
			item.DeletedAt = &deletedAt.Time
		}

		if imageID.Valid {
			item.PrimaryImage = &domain.ProductImage{
				ID:        imageID.UUID,
				ProductID: item.ID,
				URL:       imageURL.String,
				AltText:   imageAltText,
				IsPrimary: imageIsPrimary.Bool,
				SortOrder: int(imageSortOrder.Int32),
				CreatedAt: imageCreatedAt.Time,
			}
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return items, nil
}

// Count counts products matching the same predicate List uses.
func (r *productRepository) Count(ctx context.Context, q *catalog.ListProductsQuery) (int, error) {
	where, args := buildProductPredicate(q)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM products p %s`, where)

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// SoftDelete marks a live product as deleted. Deleting an already-deleted or
// missing product is not found, not a no-op.
func (r *productRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Restore brings a soft-deleted product back. Restoring a live or missing
// product is not found.
func (r *productRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to restore product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// IncrementViewCount bumps the view counter of a live product. Callers treat
// this as best effort.
func (r *productRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET view_count = view_count + 1 WHERE id = $1 AND deleted_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// buildProductPredicate assembles the AND-combined WHERE clause shared by
// List and Count. All filters are optional; the soft-delete exclusion is on
// unless the caller opted in to deleted rows.
func buildProductPredicate(q *catalog.ListProductsQuery) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	if !q.IncludeSoftDeleted {
		conds = append(conds, "p.deleted_at IS NULL")
	}
	if q.ProductTypeID != nil {
		args = append(args, *q.ProductTypeID)
		conds = append(conds, fmt.Sprintf("p.product_type_id = $%d", len(args)))
	}
	if q.IsActive != nil {
		args = append(args, *q.IsActive)
		conds = append(conds, fmt.Sprintf("p.is_active = $%d", len(args)))
	}
	if q.IsHot != nil {
		args = append(args, *q.IsHot)
		conds = append(conds, fmt.Sprintf("p.is_hot = $%d", len(args)))
	}
	if q.MinPrice != nil {
		args = append(args, *q.MinPrice)
		conds = append(conds, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if q.MaxPrice != nil {
		args = append(args, *q.MaxPrice)
		conds = append(conds, fmt.Sprintf("p.price <= $%d", len(args)))
	}
	if q.Search != nil {
		args = append(args, "%"+*q.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.title->>'es' ILIKE $%d OR p.title->>'en' ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var (
		createdBy uuid.NullUUID
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Slug,
		&product.Price,
		&product.CompareAtPrice,
		&product.AvailableSizes,
		&product.ProductTypeID,
		&product.Color,
		&product.IsActive,
		&product.IsHot,
		&product.SalesCount,
		&product.ViewCount,
		&createdBy,
		&deletedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		product.CreatedByUserID = &createdBy.UUID
	}
	if deletedAt.Valid {
		product.DeletedAt = &deletedAt.Time
	}
	return product, nil
}
