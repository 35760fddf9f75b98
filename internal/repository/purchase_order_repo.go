package repository

import (
	"context"
	"time"

	"go-inventory-po/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepository interface {
	Create(tx *gorm.DB, po *model.PurchaseOrder) error
	FindAll(ctx context.Context) ([]model.PurchaseOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	FindItems(tx *gorm.DB, orderID uuid.UUID) ([]model.PurchaseOrderItem, error)
	MarkConfirmed(tx *gorm.DB, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error)
}

// DashboardStats is the overview shown on the dashboard
type DashboardStats struct {
	TotalProducts   int64 `json:"total_products"`
	LowStockCount   int64 `json:"low_stock_count"`
	DraftOrders     int64 `json:"draft_orders"`
	ConfirmedOrders int64 `json:"confirmed_orders"`
}

type purchaseOrderRepo struct {
	db *gorm.DB
}

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db}
}

func itemsInPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the order together with its items.
func (r *purchaseOrderRepo) Create(tx *gorm.DB, po *model.PurchaseOrder) error {
	return tx.Create(po).Error
}

func (r *purchaseOrderRepo) FindAll(ctx context.Context) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", itemsInPosition).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", itemsInPosition).
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// LockByID loads the order header with a row lock held until tx ends.
func (r *purchaseOrderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) FindItems(tx *gorm.DB, orderID uuid.UUID) ([]model.PurchaseOrderItem, error) {
	var items []model.PurchaseOrderItem
	err := itemsInPosition(tx).Where("purchase_order_id = ?", orderID).Find(&items).Error
	return items, err
}

// MarkConfirmed records a confirmation. The counter is bumped in SQL.
func (r *purchaseOrderRepo) MarkConfirmed(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return tx.Model(&model.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.OrderConfirmed,
			"confirmed_at":  at,
			"confirm_count": gorm.Expr("confirm_count + ?", 1),
		}).Error
}

// Delete removes the order and its items. It returns the number of orders deleted.
func (r *purchaseOrderRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", id).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.PurchaseOrder{}, "id = ?", id)
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *purchaseOrderRepo) GetDashboardStats(ctx context.Context, lowStockThreshold int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("quantity < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.PurchaseOrder{}).Where("status = ?", model.OrderDraft).Count(&stats.DraftOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.PurchaseOrder{}).Where("status = ?", model.OrderConfirmed).Count(&stats.ConfirmedOrders).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
