package domain

// StockStatus classifies a SKU by its current quantity.
type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// TxnType is the kind of an inventory ledger entry.
type TxnType string

const (
	TxnPurchase   TxnType = "purchase"
	TxnSale       TxnType = "sale"
	TxnReturn     TxnType = "return"
	TxnAdjustment TxnType = "adjustment"
	TxnDamage     TxnType = "damage"
)

// ComputeStockStatus derives the stock status from quantity and
// threshold. Called explicitly at every mutation site; the status
// column is never recomputed by a model hook.
func ComputeStockStatus(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity <= threshold:
		return StockLowStock
	default:
		return StockInStock
	}
}

// NextQuantity applies a ledger entry to the current quantity.
// purchase/return add, sale/damage subtract, adjustment sets the
// absolute value. Adjustment is NOT additive: the passed quantity
// replaces the stored one outright.
func NextQuantity(current, quantity int, t TxnType) int {
	switch t {
	case TxnPurchase, TxnReturn:
		return current + quantity
	case TxnSale, TxnDamage:
		return current - quantity
	case TxnAdjustment:
		return quantity
	default:
		return current
	}
}
