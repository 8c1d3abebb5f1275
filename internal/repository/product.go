package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"woostore/storefront/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id        BIGINT PRIMARY KEY,
	name      TEXT NOT NULL,
	price     TEXT NOT NULL,
	status    TEXT NOT NULL,
	data      JSONB NOT NULL,
	synced_at TIMESTAMPTZ NOT NULL
)`

const upsertProduct = `
	INSERT INTO products (id, name, price, status, data, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET name = $2, price = $3, status = $4, data = $5, synced_at = $6`

type ProductRepository interface {
	SaveProducts(ctx context.Context, products []domain.Product) error
	CountProducts(ctx context.Context) (int, error)
}

type productRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{
		db:  db,
		now: time.Now,
	}
}

// Open connects through the pgx database/sql driver
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// SaveProducts upserts a page of products in one transaction
func (r *productRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	syncedAt := r.now().UTC()
	for _, p := range products {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode product %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx, upsertProduct, p.ID, p.Name, p.Price, p.Status, data, syncedAt); err != nil {
			return fmt.Errorf("failed to save product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}
	return nil
}

func (r *productRepository) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
