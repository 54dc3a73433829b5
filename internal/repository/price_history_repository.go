package repository

import (
	"context"
	"fmt"

	"catalog-api/internal/domain"

	"github.com/google/uuid"
)

// PriceHistoryRepository defines the interface for the append-only price
// audit log. There is no update or delete on purpose.
type PriceHistoryRepository interface {
	Create(ctx context.Context, entry *domain.PriceHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.PriceHistory, error)
}

type priceHistoryRepository struct {
	db DBTX
}

// NewPriceHistoryRepository creates a new instance of PriceHistoryRepository.
func NewPriceHistoryRepository(db DBTX) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// Create appends one price snapshot.
func (r *priceHistoryRepository) Create(ctx context.Context, entry *domain.PriceHistory) error {
	query := `
		INSERT INTO price_history (id, product_id, price, changed_by_user_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ProductID,
		entry.Price,
		entry.ChangedByUserID,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create price history entry: %w", err)
	}

	return nil
}

// ListByProduct retrieves the price history of a product, newest first.
func (r *priceHistoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.PriceHistory, error) {
	query := `
		SELECT id, product_id, price, changed_by_user_id, reason, created_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.PriceHistory{}
	for rows.Next() {
		entry := &domain.PriceHistory{}
		var changedBy uuid.NullUUID
		var reason *string

		err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.Price,
			&changedBy,
			&reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price history entry: %w", err)
		}

		if changedBy.Valid {
			entry.ChangedByUserID = &changedBy.UUID
		}
		entry.Reason = reason
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price history: %w", err)
	}

	return entries, nil
}
