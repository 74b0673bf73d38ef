package sales

import "time"

// OrderInvoice represents the order_invoices table. Created after a
// successful order commit; the rendered document lives behind the
// renderer collaborator, only its handle is stored here.
type OrderInvoice struct {
	InvoiceID     uint      `gorm:"column:invoice_id;primaryKey;autoIncrement" json:"invoice_id,omitempty"`
	OrderID       uint      `gorm:"column:order_id;not null;index" json:"order_id"`
	InvoiceNumber string    `gorm:"column:invoice_number;type:varchar(32);not null;uniqueIndex" json:"invoice_number"`
	FilePath      string    `gorm:"column:file_path;type:varchar(255);not null" json:"file_path"`
	GeneratedAt   time.Time `gorm:"column:generated_at" json:"generated_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderInvoice) TableName() string {
	return "order_invoices"
}
