package inventory

import (
	"fmt"

	"gorm.io/gorm"

	"commerce.GO/event"
	"commerce.GO/model/domain"
	inventoryEntity "commerce.GO/model/entity/inventory"
	catalogRepo "commerce.GO/model/repository/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
)

// SKURef identifies a stock-keeping unit: a product, or one of its
// variants when VariantID is set.
type SKURef struct {
	ProductID uint
	VariantID *uint
}

// MutationResult reports one applied ledger mutation. Events collected
// here must be published by the caller only after its transaction
// commits.
type MutationResult struct {
	QuantityBefore int
	QuantityAfter  int
	Status         domain.StockStatus
	Events         []event.Event
}

// Ledger owns SKU quantity state. Every mutation runs inside the
// caller's transaction, holds a row lock on the SKU, appends exactly
// one immutable InventoryTransaction, and keeps the alert table in
// step via the Monitor.
type Ledger struct {
	catalog   *catalogRepo.CatalogRepository
	inventory *inventoryRepo.InventoryRepository
	monitor   *Monitor
}

func NewLedger(catalog *catalogRepo.CatalogRepository, inventory *inventoryRepo.InventoryRepository) *Ledger {
	return &Ledger{
		catalog:   catalog,
		inventory: inventory,
		monitor:   NewMonitor(inventory),
	}
}

// Reserve decrements stock to fulfill an order line (ledger type
// sale). Fails with ErrInsufficientStock when demand exceeds what the
// locked row holds, ErrProductUnavailable when the SKU is inactive.
func (l *Ledger) Reserve(tx *gorm.DB, ref SKURef, quantity int, actor *uint) (*MutationResult, error) {
	notes := "Order placement"
	return l.Apply(tx, ref, quantity, domain.TxnSale, &notes, actor)
}

// Restore increments stock after a cancellation (ledger type return).
func (l *Ledger) Restore(tx *gorm.DB, ref SKURef, quantity int, reason string, actor *uint) (*MutationResult, error) {
	return l.Apply(tx, ref, quantity, domain.TxnReturn, &reason, actor)
}

// Adjust sets the absolute quantity (ledger type adjustment). Used for
// manual corrections; the passed value replaces the stored one.
func (l *Ledger) Adjust(tx *gorm.DB, ref SKURef, newQuantity int, actor *uint, notes *string) (*MutationResult, error) {
	return l.Apply(tx, ref, newQuantity, domain.TxnAdjustment, notes, actor)
}

// Apply runs one ledger mutation of any type inside tx.
func (l *Ledger) Apply(tx *gorm.DB, ref SKURef, quantity int, txnType domain.TxnType, notes *string, actor *uint) (*MutationResult, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("ledger: negative quantity %d", quantity)
	}
	if ref.VariantID != nil {
		return l.applyVariant(tx, ref, quantity, txnType, notes, actor)
	}
	return l.applyProduct(tx, ref.ProductID, quantity, txnType, notes, actor)
}

func (l *Ledger) applyProduct(tx *gorm.DB, productID uint, quantity int, txnType domain.TxnType, notes *string, actor *uint) (*MutationResult, error) {
	p, err := l.catalog.FindProductForUpdate(tx, productID)
	if err != nil {
		return nil, err
	}
	if txnType == domain.TxnSale && !p.IsActive {
		return nil, fmt.Errorf("product %s: %w", p.SKU, domain.ErrProductUnavailable)
	}

	before := p.StockQuantity
	after := domain.NextQuantity(before, quantity, txnType)
	if after < 0 {
		return nil, fmt.Errorf("product %s: need %d, have %d: %w", p.SKU, quantity, before, domain.ErrInsufficientStock)
	}

	status := domain.ComputeStockStatus(after, p.LowStockThreshold)
	if err := l.catalog.UpdateProductQuantity(tx, p.ProductID, after, status); err != nil {
		return nil, err
	}
	if err := l.inventory.AppendTransaction(tx, &inventoryEntity.InventoryTransaction{
		ProductID:      p.ProductID,
		Type:           txnType,
		Quantity:       quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Notes:          notes,
		CreatedBy:      actor,
	}); err != nil {
		return nil, err
	}

	res := &MutationResult{QuantityBefore: before, QuantityAfter: after, Status: status}
	if err := l.reconcileAlerts(tx, p.ProductID, nil, p.SKU, after, p.LowStockThreshold, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (l *Ledger) applyVariant(tx *gorm.DB, ref SKURef, quantity int, txnType domain.TxnType, notes *string, actor *uint) (*MutationResult, error) {
	v, err := l.catalog.FindVariantForUpdate(tx, *ref.VariantID)
	if err != nil {
		return nil, err
	}
	if v.ProductID != ref.ProductID {
		return nil, fmt.Errorf("variant %d does not belong to product %d: %w", v.VariantID, ref.ProductID, domain.ErrNotFound)
	}
	p, err := l.catalog.GetProduct(v.ProductID)
	if err != nil {
		return nil, err
	}
	if txnType == domain.TxnSale && (!v.IsActive || !p.IsActive) {
		return nil, fmt.Errorf("variant %s: %w", v.SKU, domain.ErrProductUnavailable)
	}

	before := v.StockQuantity
	after := domain.NextQuantity(before, quantity, txnType)
	if after < 0 {
		return nil, fmt.Errorf("variant %s: need %d, have %d: %w", v.SKU, quantity, before, domain.ErrInsufficientStock)
	}

	if err := l.catalog.UpdateVariantQuantity(tx, v.VariantID, v.ProductID, after); err != nil {
		return nil, err
	}
	if err := l.inventory.AppendTransaction(tx, &inventoryEntity.InventoryTransaction{
		ProductID:      v.ProductID,
		VariantID:      &v.VariantID,
		Type:           txnType,
		Quantity:       quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Notes:          notes,
		CreatedBy:      actor,
	}); err != nil {
		return nil, err
	}

	// Variants share the owning product's configured threshold. The
	// status field stays product-level.
	res := &MutationResult{
		QuantityBefore: before,
		QuantityAfter:  after,
		Status:         domain.ComputeStockStatus(after, p.LowStockThreshold),
	}
	if err := l.reconcileAlerts(tx, v.ProductID, &v.VariantID, v.SKU, after, p.LowStockThreshold, res); err != nil {
		return nil, err
	}
	return res, nil
}

// reconcileAlerts raises or resolves alerts for the SKU based on where
// the new quantity landed relative to the threshold.
func (l *Ledger) reconcileAlerts(tx *gorm.DB, productID uint, variantID *uint, sku string, after, threshold int, res *MutationResult) error {
	if after <= threshold {
		ev, err := l.monitor.Raise(tx, productID, variantID, sku, after, threshold)
		if err != nil {
			return err
		}
		if ev != nil {
			res.Events = append(res.Events, *ev)
		}
		return nil
	}
	return l.monitor.Resolve(tx, productID, variantID)
}
