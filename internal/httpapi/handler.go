package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"vendora-be/internal/apperror"
	"vendora-be/internal/logger"
	"vendora-be/internal/order"
	"vendora-be/internal/product"
	"vendora-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	orderSvc order.Service
}

func NewHandler(orderSvc order.Service) *Handler {
	return &Handler{orderSvc: orderSvc}
}

// writeError maps the error taxonomy onto HTTP. Insufficient stock gets its
// own payload naming the product and what is left.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *product.InsufficientStockError
	if errors.As(err, &stockErr) {
		utils.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":      stockErr.Error(),
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
		})
		return
	}

	code := apperror.StatusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
		message = "internal server error"
	}

	utils.WriteJSONError(w, message, code)
}

// retailerFrom rejects requests without an authenticated retailer identity.
func retailerFrom(w http.ResponseWriter, r *http.Request) (uint, bool) {
	retailerID, ok := utils.GetRetailerIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return retailerID, true
}

func orderIDFrom(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil || id == 0 {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input order.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	result, err := h.orderSvc.PlaceOrder(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}

	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	orders, err := h.orderSvc.GetOrders(r.Context(), retailerID, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(w, r)
	if !ok {
		return
	}

	o, err := h.orderSvc.GetOrderDetail(r.Context(), retailerID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}

	orders, err := h.orderSvc.SearchOrders(r.Context(), retailerID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) OrderStats(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.orderSvc.GetStats(r.Context(), retailerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}

type updateStatusRequest struct {
	OrderStatus string `json:"order_status"`
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	if err := h.orderSvc.UpdateOrderStatus(r.Context(), retailerID, orderID, req.OrderStatus); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(w, r)
	if !ok {
		return
	}

	var req updatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	if err := h.orderSvc.UpdatePaymentStatus(r.Context(), retailerID, orderID, req.PaymentStatus); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	retailerID, ok := retailerFrom(w, r)
	if !ok {
		return
	}
	orderID, ok := orderIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.orderSvc.DeleteOrder(r.Context(), retailerID, orderID); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
