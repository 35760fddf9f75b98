package service

import (
	"context"

	"go-inventory-po/internal/repository"
)

type DashboardService interface {
	GetStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	poRepo            repository.PurchaseOrderRepository
	lowStockThreshold int
}

func NewDashboardService(poRepo repository.PurchaseOrderRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{poRepo: poRepo, lowStockThreshold: lowStockThreshold}
}

// GetStats counts products, low stock products and orders by status.
func (s *dashboardService) GetStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.poRepo.GetDashboardStats(ctx, s.lowStockThreshold)
}
