package event

import "github.com/shopspring/decimal"

// Event is a domain event emitted by the core after its transaction
// commits. Values are plain data; side effects live in subscribers.
type Event interface {
	Name() string
}

const (
	NameOrderCreated       = "order.created"
	NameOrderStatusChanged = "order.status_changed"
	NameOrderCancelled     = "order.cancelled"
	NameLowStockDetected   = "inventory.low_stock"
)

type OrderCreated struct {
	OrderID     uint            `mapstructure:"order_id"`
	OrderNumber string          `mapstructure:"order_number"`
	UserID      uint            `mapstructure:"user_id"`
	TotalAmount decimal.Decimal `mapstructure:"total_amount"`
}

func (OrderCreated) Name() string { return NameOrderCreated }

type OrderStatusChanged struct {
	OrderID     uint   `mapstructure:"order_id"`
	OrderNumber string `mapstructure:"order_number"`
	OldStatus   string `mapstructure:"old_status"`
	NewStatus   string `mapstructure:"new_status"`
}

func (OrderStatusChanged) Name() string { return NameOrderStatusChanged }

type OrderCancelled struct {
	OrderID     uint   `mapstructure:"order_id"`
	OrderNumber string `mapstructure:"order_number"`
	Reason      string `mapstructure:"reason"`
}

func (OrderCancelled) Name() string { return NameOrderCancelled }

type LowStockDetected struct {
	ProductID    uint   `mapstructure:"product_id"`
	VariantID    *uint  `mapstructure:"variant_id"`
	SKU          string `mapstructure:"sku"`
	CurrentStock int    `mapstructure:"current_stock"`
	Threshold    int    `mapstructure:"threshold"`
}

func (LowStockDetected) Name() string { return NameLowStockDetected }
