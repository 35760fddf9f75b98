// Command confirm-po confirms a purchase order against the configured
// database and prints the resulting stock levels.
package main

import (
	"context"
	"flag"
	"log"

	"go-inventory-po/internal/repository"
	"go-inventory-po/internal/service"
	"go-inventory-po/pkg/config"
	"go-inventory-po/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	orderID := flag.String("id", "", "purchase order id")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	id, err := uuid.Parse(*orderID)
	if err != nil {
		log.Fatalf("❌ Invalid purchase order id %q: %v", *orderID, err)
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	policy := service.ConfirmRepeatable
	if cfg.ConfirmOnce {
		policy = service.ConfirmOnce
	}
	productRepo := repository.NewProductRepo(db)
	poService := service.NewPurchaseOrderService(repository.NewPurchaseOrderRepo(db), productRepo, db, nil, policy)

	// 3. Confirm
	result, err := poService.ConfirmPurchaseOrder(context.Background(), id)
	if err != nil {
		log.Fatalf("❌ Failed to confirm PO #%s: %v", id, err)
	}

	log.Printf("✅ PO #%s confirmed (confirmation %d). Stock updated", result.OrderID, result.ConfirmCount)
	for _, p := range result.Products {
		log.Printf("   %s %-30s +%d -> %d", p.SKU, p.Name, p.Delta, p.Quantity)
	}
}
