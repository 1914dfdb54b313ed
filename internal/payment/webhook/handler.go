package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"vendora-be/internal/logger"
	"vendora-be/internal/order"
	"vendora-be/internal/payment"
	"vendora-be/internal/utils"

	"go.uber.org/zap"
)

// WebhookPayload represents the JSON the payment gateway sends.
type WebhookPayload struct {
	OrderID   uint   `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	Status    string `json:"status"`
}

type Handler struct {
	OrderSvc order.Service
	Verifier payment.Verifier
}

func NewWebhookHandler(orderSvc order.Service, verifier payment.Verifier) *Handler {
	return &Handler{
		OrderSvc: orderSvc,
		Verifier: verifier,
	}
}

// WebhookHandler verifies the gateway signature before any order mutation.
// A bad signature answers {"success":false} and touches nothing.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	orderID := utils.FormatUint(payload.OrderID)
	if !h.Verifier.Verify(orderID, payload.PaymentID, payload.Signature) {
		log.Warn("webhook signature mismatch",
			zap.Uint("order_id", payload.OrderID),
			zap.String("payment_id", payload.PaymentID),
		)
		utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": false})
		return
	}

	var status order.PaymentStatus
	switch payload.Status {
	case "paid", "captured":
		status = order.PaymentPaid
	case "failed", "expired":
		status = order.PaymentFailed
	default:
		// Ignore other gateway statuses
		utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if err := h.OrderSvc.ConfirmPayment(r.Context(), payload.OrderID, payload.PaymentID, status); err != nil {
		log.Error("failed to record payment event",
			zap.Uint("order_id", payload.OrderID),
			zap.Error(err),
		)
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
