package invoice

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	salesEntity "commerce.GO/model/entity/sales"
	salesRepo "commerce.GO/model/repository/sales"
)

// Renderer produces the invoice document for an order and returns a
// handle (file path, object key) to it. PDF/HTML mechanics live behind
// this interface, outside the core.
type Renderer interface {
	RenderInvoice(order *salesEntity.Order, invoiceNumber string) (string, error)
}

// NoopRenderer records a deterministic path without producing a
// document. Default wiring until a real renderer is plugged in.
type NoopRenderer struct {
	BasePath string
}

func (r NoopRenderer) RenderInvoice(order *salesEntity.Order, invoiceNumber string) (string, error) {
	base := r.BasePath
	if base == "" {
		base = "storage/invoices"
	}
	return fmt.Sprintf("%s/%s-%s.pdf", base, order.OrderNumber, invoiceNumber), nil
}

// Service creates invoice records for committed orders. Always invoked
// post-commit; failures here are logged by the caller and never touch
// order state.
type Service struct {
	db       *gorm.DB
	orders   *salesRepo.OrderRepository
	renderer Renderer
}

func NewService(db *gorm.DB, orders *salesRepo.OrderRepository, renderer Renderer) *Service {
	if renderer == nil {
		renderer = NoopRenderer{}
	}
	return &Service{db: db, orders: orders, renderer: renderer}
}

// Generate renders an invoice for the order and stores its record.
func (s *Service) Generate(orderID uint) error {
	o, err := s.orders.FindByID(orderID)
	if err != nil {
		return err
	}

	number := NewInvoiceNumber()
	path, err := s.renderer.RenderInvoice(o, number)
	if err != nil {
		return fmt.Errorf("invoice: render for order %s: %w", o.OrderNumber, err)
	}

	return s.db.Create(&salesEntity.OrderInvoice{
		OrderID:       o.OrderID,
		InvoiceNumber: number,
		FilePath:      path,
		GeneratedAt:   time.Now(),
	}).Error
}

// Regenerate replaces the latest invoice record for an order. The old
// row is deleted; the renderer owns cleanup of the old document.
func (s *Service) Regenerate(orderID uint) error {
	var latest salesEntity.OrderInvoice
	err := s.db.Where("order_id = ?", orderID).Order("invoice_id DESC").First(&latest).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&latest).Error; err != nil {
			return err
		}
		log.Printf("invoice: replaced %s for order %d", latest.InvoiceNumber, orderID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return s.Generate(orderID)
}

// NewInvoiceNumber returns a number like INV-20250101-8C41FA.
func NewInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return "INV-" + time.Now().Format("20060102") + "-" + suffix
}
