package combinations

import (
	"context"
	"errors"
	"strings"
)

// Service exposes attribute combination operations.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]Combination, error) {
	if productID <= 0 {
		return nil, errors.New("invalid product ID")
	}
	return s.repo.ListByProduct(ctx, productID)
}

func (s *Service) Get(ctx context.Context, id int64) (Combination, error) {
	if id <= 0 {
		return Combination{}, errors.New("invalid combination ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, combo Combination) (Combination, error) {
	if combo.ProductID <= 0 {
		return Combination{}, errors.New("product is required")
	}
	if strings.TrimSpace(combo.SKU) == "" {
		return Combination{}, errors.New("combination SKU is required")
	}
	if combo.NotifyQuantityBelow < 0 {
		return Combination{}, errors.New("notify threshold must be non-negative")
	}
	for _, c := range combo.Components {
		if c.ProductID <= 0 || c.Quantity <= 0 {
			return Combination{}, errors.New("components require a product and a positive quantity")
		}
	}
	return s.repo.Create(ctx, combo)
}

// UpdateStock sets the combination's stock counter. Used by the allocation
// engine.
func (s *Service) UpdateStock(ctx context.Context, id int64, stock int) error {
	if id <= 0 {
		return errors.New("invalid combination ID")
	}
	return s.repo.UpdateStock(ctx, id, stock)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid combination ID")
	}
	return s.repo.Delete(ctx, id)
}
