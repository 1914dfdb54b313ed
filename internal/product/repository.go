package product

import (
	"context"
	"database/sql"
	"errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so stock mutations can run
// inside the order placement transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository interface {
	GetByID(ctx context.Context, productID uint) (*Product, error)
	DecrementStock(ctx context.Context, db DBTX, productID uint, qty int) error
	RestoreStock(ctx context.Context, db DBTX, productID uint, qty int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, productID uint) (*Product, error) {
	query := `
		SELECT id, retailer_id, name, image_url, price, quantity, status, subcategory_id
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&p.ID,
		&p.RetailerID,
		&p.Name,
		&p.ImageURL,
		&p.Price,
		&p.Quantity,
		&p.Status,
		&p.SubcategoryID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError(productID)
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// DecrementStock deducts qty iff enough stock remains. The WHERE guard plus
// the rows-affected check is what keeps two concurrent buyers from both
// draining the same units.
func (r *repository) DecrementStock(ctx context.Context, db DBTX, productID uint, qty int) error {
	res, err := db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - $1
		WHERE id = $2 AND quantity >= $1
	`, qty, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Nothing updated: either the product is gone or the stock ran out.
	var available int
	err = db.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).
		Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundError(productID)
	}
	if err != nil {
		return err
	}

	return &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
}

func (r *repository) RestoreStock(ctx context.Context, db DBTX, productID uint, qty int) error {
	res, err := db.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + $1
		WHERE id = $2
	`, qty, productID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return NotFoundError(productID)
	}

	return nil
}
