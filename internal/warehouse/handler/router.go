package handler

import (
	"github.com/frostvault/frostvault-backend/internal/warehouse/service"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Mount registers the warehouse API under /api/v1/warehouse
func Mount(r chi.Router, svc *service.WarehouseService, log *logger.Logger) {
	productHandler := NewProductHandler(svc, log)
	locationHandler := NewLocationHandler(svc, log)
	batchHandler := NewBatchHandler(svc, log)
	orderHandler := NewOrderHandler(svc, log)
	temperatureHandler := NewTemperatureHandler(svc, log)
	alertHandler := NewAlertHandler(svc, log)

	r.Route("/api/v1/warehouse", func(r chi.Router) {
		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{id}", productHandler.Get)
		})

		// Location routes
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", locationHandler.List)
			r.Post("/", locationHandler.Create)
			r.Get("/{id}", locationHandler.Get)
			r.Get("/{id}/temperature", temperatureHandler.History)
			r.Post("/{id}/temperature", temperatureHandler.Log)
		})
		r.Post("/temperature/webhook", temperatureHandler.Webhook)

		// Batch routes
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", batchHandler.List)
			r.Post("/", batchHandler.Create)
			r.Get("/verify/{barcode}", batchHandler.Verify)
			r.Get("/{id}", batchHandler.Get)
			r.Put("/{id}", batchHandler.Update)
			r.Delete("/{id}", batchHandler.Delete)
		})

		// Order routes
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.Get)
			r.Put("/{id}/status", orderHandler.UpdateStatus)
			r.Post("/{id}/dispatch", orderHandler.Dispatch)
		})
		r.Put("/picks/{id}/status", orderHandler.UpdatePickStatus)

		// Alerts
		r.Get("/alerts/expiry", alertHandler.Expiry)
		r.Get("/alerts/stock", alertHandler.Stock)
		r.Get("/alerts/temperature", alertHandler.Temperature)
		r.Get("/audit/occupancy", alertHandler.Occupancy)
	})
}
