package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vendora-be/internal/order"
	"vendora-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, input order.PlaceOrderInput) (*order.PlacementResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PlacementResult), args.Error(1)
}

func (m *MockOrderService) GetOrders(ctx context.Context, retailerID uint, status *string) ([]*order.Order, error) {
	args := m.Called(ctx, retailerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderDetail(ctx context.Context, retailerID, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, retailerID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) SearchOrders(ctx context.Context, retailerID uint, query string) ([]*order.Order, error) {
	args := m.Called(ctx, retailerID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) GetStats(ctx context.Context, retailerID uint) (*order.Stats, error) {
	args := m.Called(ctx, retailerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Stats), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, retailerID, orderID uint, status string) error {
	return m.Called(ctx, retailerID, orderID, status).Error(0)
}

func (m *MockOrderService) UpdatePaymentStatus(ctx context.Context, retailerID, orderID uint, status string) error {
	return m.Called(ctx, retailerID, orderID, status).Error(0)
}

func (m *MockOrderService) ConfirmPayment(ctx context.Context, orderID uint, paymentID string, status order.PaymentStatus) error {
	return m.Called(ctx, orderID, paymentID, status).Error(0)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, retailerID, orderID uint) error {
	return m.Called(ctx, retailerID, orderID).Error(0)
}

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *Handler, payload WebhookPayload) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.WebhookHandler(rec, req)
	return rec
}

func TestWebhookHandler(t *testing.T) {
	const secret = "test-secret"

	t.Run("Valid paid event updates the order", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewWebhookHandler(svc, payment.NewHMACVerifier(secret))

		svc.On("ConfirmPayment", mock.Anything, uint(11), "pay_123", order.PaymentPaid).Return(nil)

		rec := postWebhook(t, h, WebhookPayload{
			OrderID:   11,
			PaymentID: "pay_123",
			Signature: sign(secret, "11", "pay_123"),
			Status:    "paid",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body["success"])
		svc.AssertExpectations(t)
	})

	t.Run("Failed event recorded", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewWebhookHandler(svc, payment.NewHMACVerifier(secret))

		svc.On("ConfirmPayment", mock.Anything, uint(11), "pay_123", order.PaymentFailed).Return(nil)

		rec := postWebhook(t, h, WebhookPayload{
			OrderID:   11,
			PaymentID: "pay_123",
			Signature: sign(secret, "11", "pay_123"),
			Status:    "failed",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Bad signature performs no mutation", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewWebhookHandler(svc, payment.NewHMACVerifier(secret))

		rec := postWebhook(t, h, WebhookPayload{
			OrderID:   11,
			PaymentID: "pay_123",
			Signature: "deadbeef",
			Status:    "paid",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.False(t, body["success"])
		svc.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown gateway status ignored", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewWebhookHandler(svc, payment.NewHMACVerifier(secret))

		rec := postWebhook(t, h, WebhookPayload{
			OrderID:   11,
			PaymentID: "pay_123",
			Signature: sign(secret, "11", "pay_123"),
			Status:    "authorized",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid JSON rejected", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewWebhookHandler(svc, payment.NewHMACVerifier(secret))

		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		h.WebhookHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
