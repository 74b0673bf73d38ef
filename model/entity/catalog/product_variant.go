package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProductVariant represents the product_variants table. Each variant
// carries its own quantity, priced independently of the base product.
type ProductVariant struct {
	VariantID     uint            `gorm:"column:variant_id;primaryKey;autoIncrement" json:"variant_id,omitempty"`
	ProductID     uint            `gorm:"column:product_id;not null;index" json:"product_id"`
	SKU           string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name          string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	Attributes    datatypes.JSON  `gorm:"column:attributes" json:"attributes,omitempty"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
