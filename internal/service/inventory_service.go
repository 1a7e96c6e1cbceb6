package service

import (
	"context"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/ledger"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/repository"

	"go.uber.org/zap"
)

type InventoryService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, in composer.ProductInput, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch model.ProductPatch, actor Actor) (*model.Product, error)
	RemoveProduct(ctx context.Context, id string, actor Actor) error

	// Stock derives the remaining quantity per product, optionally for one kind only
	Stock(ctx context.Context, kind model.ProductKind) ([]ledger.ProductStockRow, error)

	ListMovements(ctx context.Context) ([]model.StockMovement, error)
	RecordMovement(ctx context.Context, in composer.MovementInput, actor Actor) (*model.StockMovement, error)
	RemoveMovement(ctx context.Context, id string, actor Actor) error
}

type inventoryService struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewInventoryService(repo repository.Repository, log *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, log: log.Named("inventory")}
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.Products().List(ctx)
}

func (s *inventoryService) CreateProduct(ctx context.Context, in composer.ProductInput, actor Actor) (*model.Product, error) {
	p, err := s.repo.Products().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Product created", append(actor.fields(), zap.String("product_id", p.ID), zap.String("kind", string(p.Kind)))...)
	return p, nil
}

func (s *inventoryService) UpdateProduct(ctx context.Context, id string, patch model.ProductPatch, actor Actor) (*model.Product, error) {
	p, err := s.repo.Products().Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info("Product updated", append(actor.fields(), zap.String("product_id", id))...)
	return p, nil
}

func (s *inventoryService) RemoveProduct(ctx context.Context, id string, actor Actor) error {
	if err := s.repo.Products().Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("Product removed with its movements", append(actor.fields(), zap.String("product_id", id))...)
	return nil
}

func (s *inventoryService) Stock(ctx context.Context, kind model.ProductKind) ([]ledger.ProductStockRow, error) {
	if kind != "" && !kind.Valid() {
		return nil, composer.Invalid("kind", "kind must be FINISHED, RAW_MATERIAL or OTHER")
	}
	data, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var filter ledger.ProductIDSet
	if kind != "" {
		filter = ledger.FilterByKind(data.Products, kind)
	}
	return ledger.ComputeStock(data.StockMovements, data.Products, filter), nil
}

func (s *inventoryService) ListMovements(ctx context.Context) ([]model.StockMovement, error) {
	return s.repo.StockMovements().List(ctx)
}

func (s *inventoryService) RecordMovement(ctx context.Context, in composer.MovementInput, actor Actor) (*model.StockMovement, error) {
	in.ResponsibleEmployeeID = actor.orSelf(in.ResponsibleEmployeeID)
	m, err := s.repo.StockMovements().Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("Manual stock movement recorded", append(actor.fields(),
		zap.String("movement_id", m.ID),
		zap.String("product_id", m.ProductID),
		zap.String("type", string(m.Type)),
		zap.String("quantity", m.Quantity.String()))...)
	return m, nil
}

func (s *inventoryService) RemoveMovement(ctx context.Context, id string, actor Actor) error {
	if err := s.repo.StockMovements().Remove(ctx, id); err != nil {
		return err
	}
	s.log.Info("Stock movement removed", append(actor.fields(), zap.String("movement_id", id))...)
	return nil
}
