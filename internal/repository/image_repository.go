package repository

import (
	"context"
	"database/sql"
	"fmt"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
)

// ImageRepository defines the interface for product image data access.
type ImageRepository interface {
	Create(ctx context.Context, image *domain.ProductImage) error
	Update(ctx context.Context, image *domain.ProductImage) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	ClearPrimary(ctx context.Context, productID uuid.UUID, exceptID *uuid.UUID) error
}

type imageRepository struct {
	db DBTX
}

// NewImageRepository creates a new instance of ImageRepository.
func NewImageRepository(db DBTX) ImageRepository {
	return &imageRepository{db: db}
}

// Create inserts a new product image.
func (r *imageRepository) Create(ctx context.Context, image *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, url, alt_text, is_primary, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		image.ID,
		image.ProductID,
		image.URL,
		image.AltText,
		image.IsPrimary,
		image.SortOrder,
		image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product image: %w", err)
	}

	return nil
}

// Update writes the mutable columns of an image.
func (r *imageRepository) Update(ctx context.Context, image *domain.ProductImage) error {
	query := `
		UPDATE product_images
		SET url = $2, alt_text = $3, is_primary = $4, sort_order = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		image.ID,
		image.URL,
		image.AltText,
		image.IsPrimary,
		image.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update product image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrImageNotFound
	}

	return nil
}

// Delete removes an image row.
func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM product_images WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrImageNotFound
	}

	return nil
}

// FindByID retrieves an image by ID.
func (r *imageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, url, alt_text, is_primary, sort_order, created_at
		FROM product_images
		WHERE id = $1
	`

	image := &domain.ProductImage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID,
		&image.ProductID,
		&image.URL,
		&image.AltText,
		&image.IsPrimary,
		&image.SortOrder,
		&image.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find product image by ID: %w", err)
	}

	return image, nil
}

// ListByProduct retrieves all images of a product, sort order first.
func (r *imageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, url, alt_text, is_primary, sort_order, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		image := &domain.ProductImage{}
		err := rows.Scan(
			&image.ID,
			&image.ProductID,
			&image.URL,
			&image.AltText,
			&image.IsPrimary,
			&image.SortOrder,
			&image.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

// ClearPrimary drops the primary flag on every image of the product except
// the given one. Called inside the primary-swap transaction before the
// winning image is written.
func (r *imageRepository) ClearPrimary(ctx context.Context, productID uuid.UUID, exceptID *uuid.UUID) error {
	query := `UPDATE product_images SET is_primary = FALSE WHERE product_id = $1 AND is_primary = TRUE`
	args := []interface{}{productID}

	if exceptID != nil {
		query += ` AND id <> $2`
		args = append(args, *exceptID)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear primary images: %w", err)
	}
	return nil
}
