package inventory

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"commerce.GO/model/domain"
	inventoryEntity "commerce.GO/model/entity/inventory"
)

// InventoryRepository reads the ledger and manages low-stock alerts.
// Ledger writes happen inside the ledger service's transaction; this
// type only appends and queries.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// AppendTransaction inserts a ledger row inside tx. Rows are never
// updated or deleted afterwards.
func (r *InventoryRepository) AppendTransaction(tx *gorm.DB, t *inventoryEntity.InventoryTransaction) error {
	return tx.Create(t).Error
}

// History returns the latest ledger rows for a product, newest first.
func (r *InventoryRepository) History(productID uint, limit int) ([]inventoryEntity.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var txns []inventoryEntity.InventoryTransaction
	err := r.db.Where("product_id = ?", productID).
		Order("txn_id DESC").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}

// LatestForSKU returns the newest ledger row for a product or variant.
func (r *InventoryRepository) LatestForSKU(productID uint, variantID *uint) (*inventoryEntity.InventoryTransaction, error) {
	q := r.db.Where("product_id = ?", productID)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	var t inventoryEntity.InventoryTransaction
	if err := q.Order("txn_id DESC").First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ledger for product %d: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &t, nil
}

// UnresolvedAlert returns the open alert for a SKU, if any.
func (r *InventoryRepository) UnresolvedAlert(tx *gorm.DB, productID uint, variantID *uint) (*inventoryEntity.LowStockAlert, error) {
	q := tx.Where("product_id = ? AND is_resolved = ?", productID, false)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	var a inventoryEntity.LowStockAlert
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// CreateAlert inserts an alert row inside tx.
func (r *InventoryRepository) CreateAlert(tx *gorm.DB, a *inventoryEntity.LowStockAlert) error {
	return tx.Create(a).Error
}

// ResolveAlerts marks every open alert for a SKU resolved. History rows
// are kept.
func (r *InventoryRepository) ResolveAlerts(tx *gorm.DB, productID uint, variantID *uint) error {
	now := time.Now()
	q := tx.Model(&inventoryEntity.LowStockAlert{}).
		Where("product_id = ? AND is_resolved = ?", productID, false)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}
	return q.Updates(map[string]interface{}{"is_resolved": true, "resolved_at": now}).Error
}

// ResolveAlertByID resolves a single alert, or domain.ErrNotFound.
func (r *InventoryRepository) ResolveAlertByID(alertID uint) error {
	now := time.Now()
	res := r.db.Model(&inventoryEntity.LowStockAlert{}).
		Where("alert_id = ? AND is_resolved = ?", alertID, false).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert %d: %w", alertID, domain.ErrNotFound)
	}
	return nil
}

// ListAlerts returns alerts, optionally only unresolved, newest first.
func (r *InventoryRepository) ListAlerts(unresolvedOnly bool) ([]inventoryEntity.LowStockAlert, error) {
	q := r.db.Order("created_at DESC")
	if unresolvedOnly {
		q = q.Where("is_resolved = ?", false)
	}
	var alerts []inventoryEntity.LowStockAlert
	err := q.Find(&alerts).Error
	return alerts, err
}
