package order

import (
	"context"
	"errors"
	"math"
	"sort"

	"vendora-be/internal/apperror"
	"vendora-be/internal/logger"
	"vendora-be/internal/metrics"
	"vendora-be/internal/notify"
	"vendora-be/internal/product"

	"go.uber.org/zap"
)

type PlaceOrderItemInput struct {
	ProductID  uint    `json:"product_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type PlaceOrderInput struct {
	CustomerID     uint                  `json:"customer_id"`
	AddressID      *uint                 `json:"address_id,omitempty"`
	PaymentID      *string               `json:"payment_id,omitempty"`
	TotalAmount    float64               `json:"total_amount"`
	DeliveryCharge float64               `json:"delivery_charge"`
	Discount       float64               `json:"discount"`
	PaymentMethod  string                `json:"payment_method"`
	Items          []PlaceOrderItemInput `json:"items"`
}

type PlacementResult struct {
	OrderID             uint   `json:"order_id"`
	AffectedRetailerIDs []uint `json:"affected_retailer_ids"`
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error)
	GetOrders(ctx context.Context, retailerID uint, status *string) ([]*Order, error)
	GetOrderDetail(ctx context.Context, retailerID, orderID uint) (*Order, error)
	SearchOrders(ctx context.Context, retailerID uint, query string) ([]*Order, error)
	GetStats(ctx context.Context, retailerID uint) (*Stats, error)
	UpdateOrderStatus(ctx context.Context, retailerID, orderID uint, status string) error
	UpdatePaymentStatus(ctx context.Context, retailerID, orderID uint, status string) error
	ConfirmPayment(ctx context.Context, orderID uint, paymentID string, status PaymentStatus) error
	DeleteOrder(ctx context.Context, retailerID, orderID uint) error
}

type service struct {
	repo      Repository
	products  product.Repository
	notifier  notify.Notifier
	placement *metrics.Placement
}

func NewService(repo Repository, products product.Repository, notifier notify.Notifier, placement *metrics.Placement) Service {
	return &service{
		repo:      repo,
		products:  products,
		notifier:  notifier,
		placement: placement,
	}
}

// priceEqual compares money amounts with a cent of tolerance.
func priceEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("customer_id", input.CustomerID),
		zap.Int("item_count", len(input.Items)),
	)

	if err := validatePlaceOrder(input); err != nil {
		log.Warn("placement rejected", zap.Error(err))
		return nil, err
	}

	// Resolve every product before touching the store. The transactional
	// decrement below stays authoritative under concurrency.
	retailerSet := make(map[uint]struct{})
	items := make([]OrderItem, 0, len(input.Items))

	for _, in := range input.Items {
		p, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil {
			log.Warn("product lookup failed", zap.Uint("product_id", in.ProductID), zap.Error(err))
			return nil, err
		}

		if p.RetailerID == 0 {
			return nil, apperror.Validationf("product %d has no owning retailer", p.ID)
		}
		if !p.Available() {
			return nil, apperror.Validationf("product %d is not available", p.ID)
		}
		if in.Quantity > p.Quantity {
			s.placement.InsufficientStock.Inc()
			return nil, &product.InsufficientStockError{
				ProductID: p.ID,
				Requested: in.Quantity,
				Available: p.Quantity,
			}
		}

		retailerSet[p.RetailerID] = struct{}{}
		items = append(items, OrderItem{
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: in.TotalPrice,
		})
	}

	o := &Order{
		CustomerID:     input.CustomerID,
		AddressID:      input.AddressID,
		PaymentID:      input.PaymentID,
		OrderStatus:    OrderPending,
		PaymentStatus:  PaymentPending,
		TotalAmount:    input.TotalAmount,
		DeliveryCharge: input.DeliveryCharge,
		Discount:       input.Discount,
		PaymentMethod:  input.PaymentMethod,
	}

	timer := metrics.StartTimer()
	orderID, err := s.repo.PlaceOrder(ctx, o, items)
	if err != nil {
		var stockErr *product.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.placement.InsufficientStock.Inc()
		} else {
			s.placement.Failed.Inc()
		}
		return nil, err
	}
	s.placement.Placed.Inc()

	retailerIDs := make([]uint, 0, len(retailerSet))
	for id := range retailerSet {
		retailerIDs = append(retailerIDs, id)
	}
	sort.Slice(retailerIDs, func(i, j int) bool { return retailerIDs[i] < retailerIDs[j] })

	s.notifier.OrderPlaced(ctx, orderID, retailerIDs)

	log.Info("order placed",
		zap.Uint("order_id", orderID),
		zap.Uints("retailer_ids", retailerIDs),
		zap.Duration("took", timer.Duration()),
	)

	return &PlacementResult{OrderID: orderID, AffectedRetailerIDs: retailerIDs}, nil
}

// validatePlaceOrder runs every check that does not need the store, before
// any transaction opens. The submitted totals must be internally consistent:
// line totals match quantity * unit price, and the order total matches the
// lines plus delivery minus discount.
func validatePlaceOrder(input PlaceOrderInput) error {
	if input.CustomerID == 0 {
		return apperror.Validationf("customer_id is required")
	}
	if input.PaymentMethod == "" {
		return apperror.Validationf("payment_method is required")
	}
	if len(input.Items) == 0 {
		return ErrEmptyItems
	}
	if input.DeliveryCharge < 0 || input.Discount < 0 {
		return apperror.Validationf("delivery_charge and discount must not be negative")
	}

	var lineSum float64
	for i, item := range input.Items {
		if item.ProductID == 0 {
			return apperror.Validationf("items[%d]: product_id is required", i)
		}
		if item.Quantity <= 0 {
			return apperror.Validationf("items[%d]: quantity must be greater than zero", i)
		}
		if item.UnitPrice < 0 {
			return apperror.Validationf("items[%d]: unit_price must not be negative", i)
		}
		if !priceEqual(float64(item.Quantity)*item.UnitPrice, item.TotalPrice) {
			return apperror.Validationf("items[%d]: total_price does not match quantity * unit_price", i)
		}
		lineSum += item.TotalPrice
	}

	if !priceEqual(lineSum+input.DeliveryCharge-input.Discount, input.TotalAmount) {
		return apperror.Validationf("total_amount does not match the sum of item totals")
	}

	return nil
}

func (s *service) GetOrders(ctx context.Context, retailerID uint, status *string) ([]*Order, error) {
	var statusFilter *OrderStatus
	if status != nil && *status != "" {
		parsed, err := ParseOrderStatus(*status)
		if err != nil {
			return nil, err
		}
		statusFilter = &parsed
	}

	orders, err := s.repo.FetchOrders(ctx, retailerID, statusFilter)
	if err != nil {
		return nil, err
	}

	return s.attachItems(ctx, retailerID, orders)
}

func (s *service) SearchOrders(ctx context.Context, retailerID uint, query string) ([]*Order, error) {
	if query == "" {
		return nil, apperror.Validationf("search query is required")
	}

	orders, err := s.repo.SearchOrders(ctx, retailerID, query)
	if err != nil {
		return nil, err
	}

	return s.attachItems(ctx, retailerID, orders)
}

func (s *service) attachItems(ctx context.Context, retailerID uint, orders []*Order) ([]*Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemsByOrder, err := s.repo.FetchOrderItems(ctx, retailerID, ids)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.Items = itemsByOrder[o.ID]
	}

	return orders, nil
}

func (s *service) GetOrderDetail(ctx context.Context, retailerID, orderID uint) (*Order, error) {
	return s.repo.GetOrderDetail(ctx, retailerID, orderID)
}

func (s *service) GetStats(ctx context.Context, retailerID uint) (*Stats, error) {
	return s.repo.Stats(ctx, retailerID)
}

func (s *service) UpdateOrderStatus(ctx context.Context, retailerID, orderID uint, status string) error {
	next, err := ParseOrderStatus(status)
	if err != nil {
		return err
	}

	return s.repo.UpdateOrderStatus(ctx, retailerID, orderID, next)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, retailerID, orderID uint, status string) error {
	next, err := ParsePaymentStatus(status)
	if err != nil {
		return err
	}

	return s.repo.UpdatePaymentStatus(ctx, retailerID, orderID, next)
}

func (s *service) ConfirmPayment(ctx context.Context, orderID uint, paymentID string, status PaymentStatus) error {
	if paymentID == "" {
		return apperror.Validationf("payment_id is required")
	}

	return s.repo.ConfirmPayment(ctx, orderID, paymentID, status)
}

func (s *service) DeleteOrder(ctx context.Context, retailerID, orderID uint) error {
	err := s.repo.DeleteOrder(ctx, retailerID, orderID)
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order deleted",
		zap.Uint("retailer_id", retailerID),
		zap.Uint("order_id", orderID),
	)
	return nil
}
