package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// Supported database/sql drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var schemas = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS products (
	id        BIGSERIAL PRIMARY KEY,
	name      TEXT NOT NULL,
	maker     TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	price     BIGINT NOT NULL
)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS products (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL,
	maker     TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	price     INTEGER NOT NULL
)`,
}

type sqlProductRepository struct {
	db *sql.DB
}

// OpenSQL opens a connection pool for driver and verifies it with a ping.
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if driver == DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return db, nil
}

// NewSQLProductRepository creates the products table if needed and returns a
// repository backed by db. Queries use $n placeholders, which both drivers accept.
func NewSQLProductRepository(ctx context.Context, db *sql.DB, driver string) (ProductRepository, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("unable to create products table: %w", err)
	}

	return &sqlProductRepository{db: db}, nil
}

func (r *sqlProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, maker, image_url, price FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Maker, &p.ImageURL, &p.Price); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func (r *sqlProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, maker, image_url, price FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Maker, &p.ImageURL, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewProductNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return &p, nil
}

func (r *sqlProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = $1, maker = $2, image_url = $3, price = $4 WHERE id = $5`,
		product.Name, product.Maker, product.ImageURL, product.Price, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectOneRow(result, product.ID)
}

func (r *sqlProductRepository) Add(ctx context.Context, product *domain.Product) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, maker, image_url, price) VALUES ($1, $2, $3, $4) RETURNING id`,
		product.Name, product.Maker, product.ImageURL, product.Price,
	).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

func (r *sqlProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return expectOneRow(result, id)
}

func expectOneRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewProductNotFoundError(id)
	}
	return nil
}
