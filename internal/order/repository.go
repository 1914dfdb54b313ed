package order

import (
	"context"
	"database/sql"
	"errors"

	"vendora-be/internal/apperror"
	"vendora-be/internal/logger"
	"vendora-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// scopeToRetailer is the single authorization predicate applied to every
// order read and write path. It restricts any query aliasing orders as "o"
// to orders holding at least one of the retailer's products; the retailer id
// must be bound as $1.
const scopeToRetailer = `EXISTS (
		SELECT 1
		FROM order_items soi
		JOIN products sp ON sp.id = soi.product_id
		WHERE soi.order_id = o.id
		  AND sp.retailer_id = $1
	)`

type Repository interface {
	PlaceOrder(ctx context.Context, o *Order, items []OrderItem) (uint, error)
	FetchOrders(ctx context.Context, retailerID uint, status *OrderStatus) ([]*Order, error)
	SearchOrders(ctx context.Context, retailerID uint, query string) ([]*Order, error)
	FetchOrderItems(ctx context.Context, retailerID uint, orderIDs []uint) (map[uint][]OrderItem, error)
	GetOrderDetail(ctx context.Context, retailerID, orderID uint) (*Order, error)
	UpdateOrderStatus(ctx context.Context, retailerID, orderID uint, next OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, retailerID, orderID uint, next PaymentStatus) error
	ConfirmPayment(ctx context.Context, orderID uint, paymentID string, next PaymentStatus) error
	DeleteOrder(ctx context.Context, retailerID, orderID uint) error
	Stats(ctx context.Context, retailerID uint) (*Stats, error)
}

type repository struct {
	db       *sql.DB
	products product.Repository
}

func NewRepository(db *sql.DB, products product.Repository) Repository {
	return &repository{db: db, products: products}
}

// PlaceOrder writes the order header, all line items, and the matching stock
// decrements as one transaction. Any failure, including a losing race on
// stock, rolls the whole unit back.
func (r *repository) PlaceOrder(ctx context.Context, o *Order, items []OrderItem) (uint, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("customer_id", o.CustomerID),
		zap.Int("item_count", len(items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	var orderID uint
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_id, address_id, payment_id,
			order_status, payment_status,
			total_amount, delivery_charge, discount, payment_method
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`,
		o.CustomerID,
		o.AddressID,
		o.PaymentID,
		o.OrderStatus,
		o.PaymentStatus,
		o.TotalAmount,
		o.DeliveryCharge,
		o.Discount,
		o.PaymentMethod,
	).Scan(&orderID)
	if err != nil {
		log.Error("failed to insert order header", zap.Error(err))
		return 0, apperror.FromDB(err)
	}

	for i, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, quantity, unit_price, total_price
			) VALUES ($1,$2,$3,$4,$5)
		`,
			orderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Uint("product_id", item.ProductID),
				zap.Error(err),
			)
			return 0, apperror.FromDB(err)
		}

		if err := r.products.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			log.Warn("stock decrement failed",
				zap.Uint("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return 0, err
	}

	committed = true
	log.Info("order placed", zap.Uint("order_id", orderID))

	return orderID, nil
}

func (r *repository) FetchOrders(ctx context.Context, retailerID uint, status *OrderStatus) ([]*Order, error) {
	query := `
		SELECT
			o.id, o.customer_id, o.address_id, o.payment_id,
			o.order_status, o.payment_status,
			o.total_amount, o.delivery_charge, o.discount, o.payment_method,
			o.created_at, o.updated_at
		FROM orders o
		WHERE ` + scopeToRetailer

	args := []any{retailerID}
	if status != nil {
		query += ` AND o.order_status = $2`
		args = append(args, *status)
	}

	query += ` ORDER BY o.created_at DESC`

	return r.queryOrders(ctx, query, args...)
}

func (r *repository) SearchOrders(ctx context.Context, retailerID uint, search string) ([]*Order, error) {
	query := `
		SELECT
			o.id, o.customer_id, o.address_id, o.payment_id,
			o.order_status, o.payment_status,
			o.total_amount, o.delivery_charge, o.discount, o.payment_method,
			o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE ` + scopeToRetailer + `
		  AND (c.name ILIKE $2 OR c.email ILIKE $2 OR c.phone ILIKE $2)
		ORDER BY o.created_at DESC`

	return r.queryOrders(ctx, query, retailerID, "%"+search+"%")
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.AddressID,
			&o.PaymentID,
			&o.OrderStatus,
			&o.PaymentStatus,
			&o.TotalAmount,
			&o.DeliveryCharge,
			&o.Discount,
			&o.PaymentMethod,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

// FetchOrderItems returns, per order, only the line items owned by the
// retailer. Another seller's items inside a shared order are never projected.
func (r *repository) FetchOrderItems(ctx context.Context, retailerID uint, orderIDs []uint) (map[uint][]OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[uint][]OrderItem{}, nil
	}

	ids := make([]int64, 0, len(orderIDs))
	for _, id := range orderIDs {
		ids = append(ids, int64(id))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity,
			oi.unit_price, oi.total_price,
			p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE p.retailer_id = $1 AND oi.order_id = ANY($2)
		ORDER BY oi.id
	`, retailerID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uint][]OrderItem)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.ProductName,
			&item.ProductImage,
		); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	return result, rows.Err()
}

// GetOrderDetail reports a non-owned order the same way as a missing one, so
// order ids cannot be probed across tenants.
func (r *repository) GetOrderDetail(ctx context.Context, retailerID, orderID uint) (*Order, error) {
	query := `
		SELECT
			o.id, o.customer_id, o.address_id, o.payment_id,
			o.order_status, o.payment_status,
			o.total_amount, o.delivery_charge, o.discount, o.payment_method,
			o.created_at, o.updated_at
		FROM orders o
		WHERE o.id = $2 AND ` + scopeToRetailer

	var o Order
	err := r.db.QueryRowContext(ctx, query, retailerID, orderID).Scan(
		&o.ID,
		&o.CustomerID,
		&o.AddressID,
		&o.PaymentID,
		&o.OrderStatus,
		&o.PaymentStatus,
		&o.TotalAmount,
		&o.DeliveryCharge,
		&o.Discount,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.FetchOrderItems(ctx, retailerID, []uint{orderID})
	if err != nil {
		return nil, err
	}
	o.Items = items[orderID]

	return &o, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, retailerID, orderID uint, next OrderStatus) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "UpdateOrderStatus"),
		zap.Uint("order_id", orderID),
		zap.String("next_status", string(next)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current OrderStatus
	err = tx.QueryRowContext(ctx, `
		SELECT o.order_status FROM orders o
		WHERE o.id = $2 AND `+scopeToRetailer+`
		FOR UPDATE
	`, retailerID, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	if !current.CanTransitionTo(next) {
		return invalidTransitionError(current, next)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET order_status = $1, updated_at = NOW() WHERE id = $2
	`, next, orderID)
	if err != nil {
		return err
	}

	// Cancelling hands the reserved stock back inside the same transaction.
	if next == OrderCancelled {
		if err := r.restoreOrderStock(ctx, tx, orderID); err != nil {
			log.Error("failed to restore stock on cancellation", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("order status updated", zap.String("previous_status", string(current)))
	return nil
}

func (r *repository) restoreOrderStock(ctx context.Context, tx *sql.Tx, orderID uint) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type line struct {
		productID uint
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		if err := r.products.RestoreStock(ctx, tx, l.productID, l.quantity); err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, retailerID, orderID uint, next PaymentStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current PaymentStatus
	err = tx.QueryRowContext(ctx, `
		SELECT o.payment_status FROM orders o
		WHERE o.id = $2 AND `+scopeToRetailer+`
		FOR UPDATE
	`, retailerID, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	if !current.CanTransitionTo(next) {
		return invalidPaymentTransitionError(current, next)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2
	`, next, orderID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ConfirmPayment is the verified-webhook path; the gateway is trusted after
// signature verification, so no retailer scope applies.
func (r *repository) ConfirmPayment(ctx context.Context, orderID uint, paymentID string, next PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_id = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3
	`, paymentID, next, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// DeleteOrder removes a pending order together with its items; the order and
// its items never outlive each other.
func (r *repository) DeleteOrder(ctx context.Context, retailerID, orderID uint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current OrderStatus
	err = tx.QueryRowContext(ctx, `
		SELECT o.order_status FROM orders o
		WHERE o.id = $2 AND `+scopeToRetailer+`
		FOR UPDATE
	`, retailerID, orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	if current != OrderPending {
		return ErrOrderNotPending
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) Stats(ctx context.Context, retailerID uint) (*Stats, error) {
	stats := &Stats{StatusCounts: make(map[OrderStatus]int)}

	rows, err := r.db.QueryContext(ctx, `
		SELECT o.order_status, COUNT(*)
		FROM orders o
		WHERE `+scopeToRetailer+`
		GROUP BY o.order_status
	`, retailerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(oi.total_price), 0), COUNT(DISTINCT o.id)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE p.retailer_id = $1 AND o.order_status <> 'cancelled'
	`, retailerID).Scan(&stats.TotalRevenue, &stats.OrderCount)
	if err != nil {
		return nil, err
	}

	if stats.OrderCount > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.OrderCount)
	}

	return stats, nil
}
