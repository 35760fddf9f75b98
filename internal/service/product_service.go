package service

import (
	"context"
	"errors"
	"fmt"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	AddProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	notifier    Notifier
}

func NewProductService(pRepo repository.ProductRepository, db *gorm.DB, notifier Notifier) ProductService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &productService{
		productRepo: pRepo,
		db:          db,
		notifier:    notifier,
	}
}

func (s *productService) AddProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// The unique index is the real guard; this gives the common case a clean error.
	if _, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil {
		return nil, fmt.Errorf("product sku %q: %w", req.SKU, ErrDuplicateKey)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := req.ToProduct()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, translate(err, fmt.Sprintf("product sku %q", req.SKU))
	}

	s.notifier.Notify(model.StockEvent{
		Type:     model.EventStockUpdate,
		Action:   model.ActionProductCreated,
		Products: []model.StockLevel{stockLevel(product, product.Quantity)},
		Message:  fmt.Sprintf("Product '%s' created", product.Name),
	})
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "product")
	}
	return product, nil
}

// UpdateProduct edits a product in place. Line items keep the SKU and name
// they captured when they were created.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated *model.Product
	var oldQuantity int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return translate(err, "product")
		}
		oldQuantity = existing.Quantity

		existing.SKU = req.SKU
		existing.Name = req.Name
		existing.Quantity = req.Quantity

		if err := s.productRepo.Update(tx, existing); err != nil {
			return translate(err, fmt.Sprintf("product sku %q", req.SKU))
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(model.StockEvent{
		Type:     model.EventStockUpdate,
		Action:   model.ActionProductUpdated,
		Products: []model.StockLevel{stockLevel(updated, updated.Quantity-oldQuantity)},
		Message:  fmt.Sprintf("Product '%s' updated", updated.Name),
	})
	return updated, nil
}

// DeleteProduct hard deletes a product that no purchase order line refers to.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var deleted *model.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return translate(err, "product")
		}

		refs, err := s.productRepo.CountItemReferences(tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("product %q is used by %d purchase order item(s): %w", product.SKU, refs, ErrReferentialIntegrity)
		}

		if err := s.productRepo.Delete(tx, id); err != nil {
			return translate(err, fmt.Sprintf("product %q", product.SKU))
		}
		deleted = product
		return nil
	})
	if err != nil {
		return err
	}

	level := stockLevel(deleted, -deleted.Quantity)
	level.Quantity = 0
	s.notifier.Notify(model.StockEvent{
		Type:     model.EventStockUpdate,
		Action:   model.ActionProductDeleted,
		Products: []model.StockLevel{level},
		Message:  fmt.Sprintf("Product '%s' deleted", deleted.Name),
	})
	return nil
}

func stockLevel(p *model.Product, delta int) model.StockLevel {
	return model.StockLevel{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Quantity:  p.Quantity,
		Delta:     delta,
	}
}
