package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-po/internal/handler"
	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/service"
	"go-inventory-po/internal/ws"
	"go-inventory-po/pkg/config"
	"go-inventory-po/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database. \n", err)
	}
	// Auto Migrate; production schemas should be managed by a migration tool
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	// 3. Setup WebSocket Hub
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	poRepo := repository.NewPurchaseOrderRepo(db)

	policy := service.ConfirmRepeatable
	if cfg.ConfirmOnce {
		policy = service.ConfirmOnce
	}

	productService := service.NewProductService(productRepo, db, wsHub)
	poService := service.NewPurchaseOrderService(poRepo, productRepo, db, wsHub, policy)
	dashService := service.NewDashboardService(poRepo, cfg.LowStockThreshold)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Inventory Purchase Orders v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	handler.SetupRoutes(app, handler.Handlers{
		Product:       handler.NewProductHandler(productService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(poService),
		Dashboard:     handler.NewDashboardHandler(dashService),
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	stop()

	log.Println("Server exited")
}
