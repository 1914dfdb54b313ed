package order

import (
	"testing"

	"vendora-be/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderConfirmed, OrderShipped, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},

		// Skipping states is rejected
		{OrderPending, OrderShipped, false},
		{OrderPending, OrderDelivered, false},
		{OrderConfirmed, OrderDelivered, false},

		// Terminal states allow nothing
		{OrderDelivered, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderConfirmed, false},

		// No backwards moves
		{OrderShipped, OrderConfirmed, false},
		{OrderConfirmed, OrderPending, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentPending, PaymentPaid, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentFailed, PaymentPending, true},
		{PaymentFailed, PaymentPaid, true},
		{PaymentPaid, PaymentRefunded, true},

		{PaymentPending, PaymentRefunded, false},
		{PaymentPaid, PaymentPending, false},
		{PaymentRefunded, PaymentPaid, false},
		{PaymentRefunded, PaymentPending, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Run("Known values", func(t *testing.T) {
		for _, s := range []string{"pending", "confirmed", "shipped", "delivered", "cancelled"} {
			parsed, err := ParseOrderStatus(s)
			assert.NoError(t, err)
			assert.Equal(t, OrderStatus(s), parsed)
		}
	})

	t.Run("Unknown value rejected", func(t *testing.T) {
		_, err := ParseOrderStatus("dispatched")
		assert.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestParsePaymentStatus(t *testing.T) {
	t.Run("Known values", func(t *testing.T) {
		for _, s := range []string{"pending", "paid", "failed", "refunded"} {
			parsed, err := ParsePaymentStatus(s)
			assert.NoError(t, err)
			assert.Equal(t, PaymentStatus(s), parsed)
		}
	})

	t.Run("Unknown value rejected", func(t *testing.T) {
		_, err := ParsePaymentStatus("settled")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}
