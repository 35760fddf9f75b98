package handler

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Product       *ProductHandler
	PurchaseOrder *PurchaseOrderHandler
	Dashboard     *DashboardHandler
}

// SetupRoutes mounts the REST API under /api/v1.
func SetupRoutes(app fiber.Router, h Handlers) {
	api := app.Group("/api/v1")

	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)

	// Product Routes
	api.Get("/products", h.Product.GetProducts)
	api.Get("/products/:id", h.Product.GetProduct)
	api.Post("/products", h.Product.CreateProduct)
	api.Put("/products/:id", h.Product.UpdateProduct)
	api.Delete("/products/:id", h.Product.DeleteProduct)

	// Purchase Order Routes
	api.Get("/purchase-orders", h.PurchaseOrder.GetPurchaseOrders)
	api.Get("/purchase-orders/:id", h.PurchaseOrder.GetPurchaseOrder)
	api.Post("/purchase-orders", h.PurchaseOrder.CreatePurchaseOrder)
	api.Post("/purchase-orders/:id/confirm", h.PurchaseOrder.ConfirmPurchaseOrder)
	api.Delete("/purchase-orders/:id", h.PurchaseOrder.DeletePurchaseOrder)
}
