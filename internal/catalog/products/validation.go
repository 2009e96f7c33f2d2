package products

import (
	"errors"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return errors.New("product code is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if !p.InventoryMethod.IsValid() {
		return errors.New("unknown inventory method")
	}
	if !p.LowStockAction.IsValid() {
		return errors.New("unknown low stock action")
	}
	if p.MultiWarehouse && p.InventoryMethod != InventoryMethodSimple {
		return errors.New("multi-warehouse tracking requires simple stock tracking")
	}
	if p.MinStockQuantity < 0 || p.NotifyQuantityBelow < 0 {
		return errors.New("stock thresholds must be non-negative")
	}
	return nil
}
