package httpapi

import (
	"net/http"

	"vendora-be/internal/logger"
	"vendora-be/internal/middleware"
	"vendora-be/internal/payment/webhook"

	"github.com/go-chi/chi/v5"
)

func NewRouter(h *Handler, wh *webhook.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/payments/webhook", wh.WebhookHandler)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Get("/", h.ListOrders)
			r.Get("/search", h.SearchOrders)
			r.Get("/stats", h.OrderStats)
			r.Get("/{id}", h.GetOrder)
			r.Patch("/{id}/status", h.UpdateOrderStatus)
			r.Patch("/{id}/payment-status", h.UpdatePaymentStatus)
			r.Delete("/{id}", h.DeleteOrder)
		})
	})

	return r
}
