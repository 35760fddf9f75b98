package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmPolicy decides what happens when an already confirmed order is
// confirmed again.
type ConfirmPolicy int

const (
	// ConfirmRepeatable applies the stock increase on every call.
	ConfirmRepeatable ConfirmPolicy = iota
	// ConfirmOnce rejects later calls with ErrAlreadyConfirmed.
	ConfirmOnce
)

// ConfirmResult reports the stock of every product touched by a confirmation.
type ConfirmResult struct {
	OrderID      uuid.UUID          `json:"order_id"`
	ConfirmCount int                `json:"confirm_count"`
	Products     []model.StockLevel `json:"products"`
}

type PurchaseOrderService interface {
	CreatePurchaseOrder(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]model.PurchaseOrder, error)
	ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) (*ConfirmResult, error)
	DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error
}

type purchaseOrderService struct {
	poRepo      repository.PurchaseOrderRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	notifier    Notifier
	policy      ConfirmPolicy
	now         func() time.Time
}

func NewPurchaseOrderService(poRepo repository.PurchaseOrderRepository, pRepo repository.ProductRepository, db *gorm.DB, notifier Notifier, policy ConfirmPolicy) PurchaseOrderService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &purchaseOrderService{
		poRepo:      poRepo,
		productRepo: pRepo,
		db:          db,
		notifier:    notifier,
		policy:      policy,
		now:         time.Now,
	}
}

// CreatePurchaseOrder stores a draft order. Blank snapshot fields on each
// line are filled from the referenced product. Stock is not touched.
func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	po, err := req.ToPurchaseOrder(s.now())
	if err != nil {
		return nil, invalid("CreatePurchaseOrderRequest.Date", "datetime")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.FindByIDs(tx, productIDs(po.Items))
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for i := range po.Items {
			product, ok := byID[po.Items[i].ProductID]
			if !ok {
				return fmt.Errorf("product %s %w", po.Items[i].ProductID, ErrNotFound)
			}
			po.Items[i].ApplySnapshot(product)
		}

		if err := s.poRepo.Create(tx, po); err != nil {
			// A product deleted between the lookup and the insert.
			if errors.Is(err, gorm.ErrForeignKeyViolated) || isSQLiteForeignKey(err) {
				return fmt.Errorf("purchase order item product %w", ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "purchase order")
	}
	return po, nil
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context) ([]model.PurchaseOrder, error) {
	return s.poRepo.FindAll(ctx)
}

// DeletePurchaseOrder removes an order and its items. Stock that was
// already received stays on the products.
func (s *purchaseOrderService) DeletePurchaseOrder(ctx context.Context, id uuid.UUID) error {
	n, err := s.poRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("purchase order %w", ErrNotFound)
	}
	return nil
}

// ConfirmPurchaseOrder adds each line's quantity received to its product's
// stock. All increments commit together or not at all; they are applied as
// relative SQL updates in product id order.
//
// Under ConfirmRepeatable a second call on the same order increases stock
// again.
func (s *purchaseOrderService) ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) (*ConfirmResult, error) {
	var result *ConfirmResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(tx, id)
		if err != nil {
			return translate(err, "purchase order")
		}
		if s.policy == ConfirmOnce && po.Status == model.OrderConfirmed {
			return fmt.Errorf("purchase order %s: %w", id, ErrAlreadyConfirmed)
		}

		items, err := s.poRepo.FindItems(tx, id)
		if err != nil {
			return err
		}

		incs := model.StockIncrements(items)
		for _, inc := range incs {
			n, err := s.productRepo.IncrementStock(tx, inc.ProductID, inc.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: product %s no longer exists", ErrTransactionFailure, inc.ProductID)
			}
		}

		if err := s.poRepo.MarkConfirmed(tx, id, s.now()); err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(incs))
		for i, inc := range incs {
			ids[i] = inc.ProductID
		}
		products, err := s.productRepo.FindByIDs(tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		result = &ConfirmResult{
			OrderID:      id,
			ConfirmCount: po.ConfirmCount + 1,
			Products:     make([]model.StockLevel, 0, len(incs)),
		}
		for _, inc := range incs {
			if p, ok := byID[inc.ProductID]; ok {
				result.Products = append(result.Products, stockLevel(p, inc.Quantity))
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyConfirmed) || errors.Is(err, ErrTransactionFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailure, err)
	}

	s.notifier.Notify(model.StockEvent{
		Type:     model.EventStockUpdate,
		Action:   model.ActionOrderConfirmed,
		OrderID:  &result.OrderID,
		Products: result.Products,
		Message:  fmt.Sprintf("PO #%s confirmed. Stock updated", result.OrderID),
	})
	return result, nil
}

func productIDs(items []model.PurchaseOrderItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
