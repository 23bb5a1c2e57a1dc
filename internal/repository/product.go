package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvhalloran/cartload/internal/model"
)

// ErrDuplicateProduct is returned when an insert violates the unique
// constraint on products.name. The batch persister records it per row; the
// CRUD surface maps it to 409.
var ErrDuplicateProduct = errors.New("product name already exists")

// ProductRepository wraps all SQL touching the products table.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository constructs a repository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// CreateProduct inserts a product and fills in its id and timestamps.
func (r *ProductRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, status, category, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, p.Name, p.Description, p.Status, p.Category, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetProduct returns a product by id, excluding soft-deleted rows.
func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, status, category, created_at, updated_at
		FROM products WHERE id=$1 AND deleted_at IS NULL
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

// ListProducts returns active products newest-first, paginated.
func (r *ProductRepository) ListProducts(ctx context.Context, page, limit int) ([]*model.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, status, category, created_at, updated_at
		FROM products
		WHERE status=$1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, model.ProductActive, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// UpdateProduct overwrites the mutable fields of an existing product.
func (r *ProductRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET name=$1, description=$2, status=$3, category=$4, updated_at=$5
		WHERE id=$6 AND deleted_at IS NULL
	`, p.Name, p.Description, p.Status, p.Category, p.UpdatedAt, p.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateProduct
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteProduct hides a product without removing the row.
func (r *ProductRepository) SoftDeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET deleted_at=NOW(), updated_at=NOW()
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
