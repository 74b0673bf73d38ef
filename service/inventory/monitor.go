package inventory

import (
	"gorm.io/gorm"

	"commerce.GO/event"
	inventoryEntity "commerce.GO/model/entity/inventory"
	inventoryRepo "commerce.GO/model/repository/inventory"
)

// Monitor reacts to ledger quantity writes: it raises one low-stock
// alert per SKU while stock sits at or below threshold, and resolves
// open alerts once stock recovers. It holds no state of its own.
type Monitor struct {
	inventory *inventoryRepo.InventoryRepository
}

func NewMonitor(repo *inventoryRepo.InventoryRepository) *Monitor {
	return &Monitor{inventory: repo}
}

// Raise creates an unresolved alert for the SKU unless one already
// exists. Returns the LowStockDetected event on first crossing, nil on
// repeats (dedup by unresolved-alert existence).
func (m *Monitor) Raise(tx *gorm.DB, productID uint, variantID *uint, sku string, currentStock, threshold int) (*event.LowStockDetected, error) {
	existing, err := m.inventory.UnresolvedAlert(tx, productID, variantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}
	alert := &inventoryEntity.LowStockAlert{
		ProductID:    productID,
		VariantID:    variantID,
		CurrentStock: currentStock,
		Threshold:    threshold,
	}
	if err := m.inventory.CreateAlert(tx, alert); err != nil {
		return nil, err
	}
	return &event.LowStockDetected{
		ProductID:    productID,
		VariantID:    variantID,
		SKU:          sku,
		CurrentStock: currentStock,
		Threshold:    threshold,
	}, nil
}

// Resolve closes open alerts for the SKU. Called when a quantity write
// lands strictly above threshold.
func (m *Monitor) Resolve(tx *gorm.DB, productID uint, variantID *uint) error {
	return m.inventory.ResolveAlerts(tx, productID, variantID)
}
