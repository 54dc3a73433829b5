package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Every
// repository runs against it, so the same repository code works inside and
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store bundles the repositories with a transaction runner. ExecTx hands the
// unit of work a Store whose repositories are bound to one transaction; any
// error returned from the unit rolls everything back.
type Store interface {
	Products() ProductRepository
	Images() ImageRepository
	PriceHistory() PriceHistoryRepository
	ProductTypes() ProductTypeRepository
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository

	ExecTx(ctx context.Context, fn func(Store) error) error
}

type sqlStore struct {
	// db is nil when this store is already bound to a transaction.
	db   *sql.DB
	conn DBTX
}

// NewStore creates a Store over a database handle.
func NewStore(db *sql.DB) Store {
	return &sqlStore{db: db, conn: db}
}

func (s *sqlStore) Products() ProductRepository           { return NewProductRepository(s.conn) }
func (s *sqlStore) Images() ImageRepository               { return NewImageRepository(s.conn) }
func (s *sqlStore) PriceHistory() PriceHistoryRepository  { return NewPriceHistoryRepository(s.conn) }
func (s *sqlStore) ProductTypes() ProductTypeRepository   { return NewProductTypeRepository(s.conn) }
func (s *sqlStore) Users() UserRepository                 { return NewUserRepository(s.conn) }
func (s *sqlStore) RefreshTokens() RefreshTokenRepository { return NewRefreshTokenRepository(s.conn) }

// ExecTx runs fn atomically. Nested calls reuse the surrounding transaction.
func (s *sqlStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &sqlStore{conn: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
