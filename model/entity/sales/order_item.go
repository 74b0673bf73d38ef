package sales

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderItem represents the order_items table. Name, SKU and price are
// snapshotted at order creation and stay fixed when the catalog row
// changes later. Rows are never updated in place.
type OrderItem struct {
	ItemID         uint            `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id,omitempty"`
	OrderID        uint            `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID      uint            `gorm:"column:product_id;not null;index" json:"product_id"`
	VariantID      *uint           `gorm:"column:variant_id" json:"variant_id,omitempty"`
	ProductName    string          `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	ProductSKU     string          `gorm:"column:product_sku;type:varchar(64);not null" json:"product_sku"`
	VariantDetails datatypes.JSON  `gorm:"column:variant_details" json:"variant_details,omitempty"`
	Quantity       int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:decimal(10,2);not null" json:"total_price"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
