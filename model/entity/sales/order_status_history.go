package sales

import (
	"time"

	"commerce.GO/model/domain"
)

// OrderStatusHistory represents the order_status_histories table.
// One row per transition, including the initial pending entry.
// Append-only; corrections are new rows.
type OrderStatusHistory struct {
	HistoryID uint               `gorm:"column:history_id;primaryKey;autoIncrement" json:"history_id,omitempty"`
	OrderID   uint               `gorm:"column:order_id;not null;index" json:"order_id"`
	Status    domain.OrderStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Notes     *string            `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ChangedBy *uint              `gorm:"column:changed_by" json:"changed_by,omitempty"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}
