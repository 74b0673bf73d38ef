package inventory

import "time"

// LowStockAlert represents the low_stock_alerts table. At most one
// unresolved alert may exist per (product, variant) pair; resolution
// keeps the row as history.
type LowStockAlert struct {
	AlertID      uint       `gorm:"column:alert_id;primaryKey;autoIncrement" json:"alert_id,omitempty"`
	ProductID    uint       `gorm:"column:product_id;not null;index:idx_alert_unresolved" json:"product_id"`
	VariantID    *uint      `gorm:"column:variant_id;index" json:"variant_id,omitempty"`
	CurrentStock int        `gorm:"column:current_stock;not null" json:"current_stock"`
	Threshold    int        `gorm:"column:threshold;not null" json:"threshold"`
	IsResolved   bool       `gorm:"column:is_resolved;not null;default:false;index:idx_alert_unresolved" json:"is_resolved"`
	ResolvedAt   *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LowStockAlert) TableName() string {
	return "low_stock_alerts"
}
