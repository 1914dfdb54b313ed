package order

import "vendora-be/internal/apperror"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// orderTransitions is the closed transition table. delivered and cancelled are
// terminal; skipping states (e.g. pending straight to delivered) is rejected.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPending, PaymentPaid},
	PaymentPaid:    {PaymentRefunded},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), nil
	}
	return "", apperror.Validationf("unknown order status: %q", s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return PaymentStatus(s), nil
	}
	return "", apperror.Validationf("unknown payment status: %q", s)
}
