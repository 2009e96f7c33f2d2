package products

import (
	"context"
	"errors"

	catalogshared "github.com/meridian-commerce/meridian/internal/catalog/shared"
)

// Service exposes product master data operations.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// ListTracked returns products whose stock drives a low-stock action. Used by
// the periodic low-stock sweep.
func (s *Service) ListTracked(ctx context.Context) ([]Product, error) {
	return s.repo.ListTracked(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errors.New("invalid product ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	applyDefaults(&product)
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	applyDefaults(&product)
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

// UpdateInventory persists the stock counter and low-stock flags. Used by
// the allocation engine.
func (s *Service) UpdateInventory(ctx context.Context, product Product) error {
	if product.ID <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.UpdateInventory(ctx, product)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.Delete(ctx, id)
}

func applyDefaults(p *Product) {
	if p.InventoryMethod == "" {
		p.InventoryMethod = InventoryMethodNone
	}
	if p.LowStockAction == "" {
		p.LowStockAction = LowStockActionNothing
	}
}
