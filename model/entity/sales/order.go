package sales

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"commerce.GO/model/domain"
)

// Order represents the orders table. Created once with status pending,
// then mutated only through status transitions or cancellation.
// total_amount = subtotal + tax + shipping_fee - discount, fixed at
// creation. Soft-deleted only, never hard-deleted.
type Order struct {
	OrderID       uint                 `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id,omitempty"`
	OrderNumber   string               `gorm:"column:order_number;type:varchar(32);not null;uniqueIndex" json:"order_number"`
	UserID        uint                 `gorm:"column:user_id;not null;index:idx_orders_user_status" json:"user_id"`
	Status        domain.OrderStatus   `gorm:"column:status;type:varchar(16);not null;default:'pending';index:idx_orders_user_status" json:"status"`
	Subtotal      decimal.Decimal      `gorm:"column:subtotal;type:decimal(10,2);not null" json:"subtotal"`
	Tax           decimal.Decimal      `gorm:"column:tax;type:decimal(10,2);not null;default:0" json:"tax"`
	ShippingFee   decimal.Decimal      `gorm:"column:shipping_fee;type:decimal(10,2);not null;default:0" json:"shipping_fee"`
	Discount      decimal.Decimal      `gorm:"column:discount;type:decimal(10,2);not null;default:0" json:"discount"`
	TotalAmount   decimal.Decimal      `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod *string              `gorm:"column:payment_method;type:varchar(32)" json:"payment_method,omitempty"`
	PaymentStatus domain.PaymentStatus `gorm:"column:payment_status;type:varchar(16);not null;default:'pending'" json:"payment_status"`

	ShippingName       string  `gorm:"column:shipping_name;type:varchar(255);not null" json:"shipping_name"`
	ShippingEmail      string  `gorm:"column:shipping_email;type:varchar(255);not null" json:"shipping_email"`
	ShippingPhone      string  `gorm:"column:shipping_phone;type:varchar(32);not null" json:"shipping_phone"`
	ShippingAddress    string  `gorm:"column:shipping_address;type:text;not null" json:"shipping_address"`
	ShippingCity       string  `gorm:"column:shipping_city;type:varchar(128);not null" json:"shipping_city"`
	ShippingState      *string `gorm:"column:shipping_state;type:varchar(128)" json:"shipping_state,omitempty"`
	ShippingCountry    string  `gorm:"column:shipping_country;type:varchar(64);not null" json:"shipping_country"`
	ShippingPostalCode *string `gorm:"column:shipping_postal_code;type:varchar(16)" json:"shipping_postal_code,omitempty"`

	Notes              *string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CancelledAt        *time.Time     `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string        `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	Items           []OrderItem          `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	StatusHistories []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"status_histories,omitempty"`
	Invoices        []OrderInvoice       `gorm:"foreignKey:OrderID" json:"invoices,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// CanBeCancelled reports whether the order may still reach cancelled.
func (o *Order) CanBeCancelled() bool {
	return o.Status == domain.OrderPending || o.Status == domain.OrderProcessing
}
