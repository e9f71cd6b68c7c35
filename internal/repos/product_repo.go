package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"apiadventures/internal/domain"
)

// ProductRepo is the local product cache. Row ids are always generated by
// the database; the ID of a record passed in is only used for equality.
type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const selectProducts = `
  SELECT id, name, type, expiry_date, price
  FROM products
  ORDER BY id`

func (r *ProductRepo) StoredProducts(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, selectProducts)
	return out, err
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// AddNewProducts inserts the products that are not already stored. Equality
// covers every column, so a record equal in content to a stored row but
// carrying a different id is inserted again.
func (r *ProductRepo) AddNewProducts(ctx context.Context, products []domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing []domain.Product
	if err := tx.SelectContext(ctx, &existing, selectProducts); err != nil {
		return err
	}
	stored := make(map[domain.Key]struct{}, len(existing))
	for _, p := range existing {
		stored[p.Key()] = struct{}{}
	}

	for _, p := range products {
		if _, ok := stored[p.Key()]; ok {
			continue
		}
		if err := insert(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceStoredProducts clears the table and inserts products in one transaction.
func (r *ProductRepo) ReplaceStoredProducts(ctx context.Context, products []domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return err
	}
	for _, p := range products {
		if err := insert(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insert(ctx context.Context, tx *sqlx.Tx, p domain.Product) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO products(name, type, expiry_date, price)
		VALUES (?, ?, ?, ?)
	`, nullable(p.Name), nullable(p.Type), nullable(p.ExpiryDate), nullable(p.Price))
	return err
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
