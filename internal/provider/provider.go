// Package provider reads the providers reference table.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNoDatabase is returned when the repository has no database behind it.
var ErrNoDatabase = errors.New("no database configured")

const listQuery = `SELECT id, name FROM providers ORDER BY id`

// Provider is a price data provider row.
type Provider struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository lists providers.
type Repository struct {
	db Querier
}

// NewRepository creates a repository. db may be nil when no database is
// configured; List then returns ErrNoDatabase.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Available reports whether a database is attached.
func (r *Repository) Available() bool {
	return r != nil && r.db != nil
}

// List returns all providers ordered by id.
func (r *Repository) List(ctx context.Context) ([]Provider, error) {
	if !r.Available() {
		return nil, ErrNoDatabase
	}

	rows, err := r.db.Query(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("query providers: %w", err)
	}

	providers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Provider])
	if err != nil {
		return nil, fmt.Errorf("scan providers: %w", err)
	}
	if providers == nil {
		providers = []Provider{}
	}
	return providers, nil
}
