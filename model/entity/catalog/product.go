package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"commerce.GO/model/domain"
)

// Product represents the products table. Quantity and stock status are
// owned by the inventory ledger; everything else is catalog data.
type Product struct {
	ProductID         uint               `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id,omitempty"`
	Name              string             `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Slug              string             `gorm:"column:slug;type:varchar(255);uniqueIndex" json:"slug"`
	SKU               string             `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Description       *string            `gorm:"column:description;type:text" json:"description,omitempty"`
	Price             decimal.Decimal    `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	ComparePrice      *decimal.Decimal   `gorm:"column:compare_price;type:decimal(10,2)" json:"compare_price,omitempty"`
	Brand             *string            `gorm:"column:brand;type:varchar(128)" json:"brand,omitempty"`
	IsActive          bool               `gorm:"column:is_active;not null;default:true" json:"is_active"`
	StockQuantity     int                `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	LowStockThreshold int                `gorm:"column:low_stock_threshold;not null;default:10" json:"low_stock_threshold"`
	StockStatus       domain.StockStatus `gorm:"column:stock_status;type:varchar(16);not null;default:'in_stock';index" json:"stock_status"`
	Images            datatypes.JSON     `gorm:"column:images" json:"images,omitempty"`
	MetaData          datatypes.JSON     `gorm:"column:meta_data" json:"meta_data,omitempty"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt     `gorm:"column:deleted_at;index" json:"-"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
