package inventory

import (
	"time"

	"commerce.GO/model/domain"
)

// InventoryTransaction represents the inventory_transactions table.
// Rows are append-only: the ledger never updates or deletes them, and
// the latest quantity_after per SKU must equal the stored quantity.
type InventoryTransaction struct {
	TxnID          uint           `gorm:"column:txn_id;primaryKey;autoIncrement" json:"txn_id,omitempty"`
	ProductID      uint           `gorm:"column:product_id;not null;index" json:"product_id"`
	VariantID      *uint          `gorm:"column:variant_id;index" json:"variant_id,omitempty"`
	Type           domain.TxnType `gorm:"column:type;type:varchar(16);not null" json:"type"`
	Quantity       int            `gorm:"column:quantity;not null" json:"quantity"`
	QuantityBefore int            `gorm:"column:quantity_before;not null" json:"quantity_before"`
	QuantityAfter  int            `gorm:"column:quantity_after;not null" json:"quantity_after"`
	Notes          *string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedBy      *uint          `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
