package main

import (
	"log"
	"net/http"

	"vendora-be/internal/config"
	"vendora-be/internal/db"
	"vendora-be/internal/httpapi"
	"vendora-be/internal/logger"
	"vendora-be/internal/metrics"
	"vendora-be/internal/notify"
	"vendora-be/internal/order"
	"vendora-be/internal/payment"
	"vendora-be/internal/payment/webhook"
	"vendora-be/internal/product"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	productRepo := product.NewRepository(database)
	orderRepo := order.NewRepository(database, productRepo)
	orderSvc := order.NewService(orderRepo, productRepo, notify.NewLogNotifier(), &metrics.Placement{})

	verifier := payment.NewHMACVerifier(cfg.WebhookSecret)
	webhookHandler := webhook.NewWebhookHandler(orderSvc, verifier)

	router := httpapi.NewRouter(httpapi.NewHandler(orderSvc), webhookHandler)

	log.Printf("🚀 Order API running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
