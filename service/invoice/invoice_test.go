package invoice

import (
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"commerce.GO/model/domain"
	salesEntity "commerce.GO/model/entity/sales"
	salesRepo "commerce.GO/model/repository/sales"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&salesEntity.Order{},
		&salesEntity.OrderItem{},
		&salesEntity.OrderStatusHistory{},
		&salesEntity.OrderInvoice{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB) *salesEntity.Order {
	t.Helper()
	o := &salesEntity.Order{
		OrderNumber:     "ORD-20250101-TEST01",
		UserID:          1,
		Status:          domain.OrderPending,
		Subtotal:        decimal.NewFromInt(10),
		TotalAmount:     decimal.NewFromInt(10),
		PaymentStatus:   domain.PaymentPending,
		ShippingName:    "Jane Doe",
		ShippingEmail:   "jane@example.com",
		ShippingPhone:   "+1-555-0100",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingCountry: "US",
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

type failingRenderer struct{}

func (failingRenderer) RenderInvoice(*salesEntity.Order, string) (string, error) {
	return "", errors.New("renderer exploded")
}

func TestGenerate_CreatesInvoiceRecord(t *testing.T) {
	db := testDB(t)
	o := seedOrder(t, db)
	s := NewService(db, salesRepo.NewOrderRepository(db), NoopRenderer{BasePath: "tmp/invoices"})

	if err := s.Generate(o.OrderID); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var inv salesEntity.OrderInvoice
	if err := db.First(&inv, "order_id = ?", o.OrderID).Error; err != nil {
		t.Fatalf("invoice row: %v", err)
	}
	if !strings.HasPrefix(inv.InvoiceNumber, "INV-") {
		t.Errorf("invoice number = %q", inv.InvoiceNumber)
	}
	if !strings.Contains(inv.FilePath, o.OrderNumber) {
		t.Errorf("file path = %q, want order number embedded", inv.FilePath)
	}
	if inv.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}

func TestGenerate_RendererFailureReturnsError(t *testing.T) {
	db := testDB(t)
	o := seedOrder(t, db)
	s := NewService(db, salesRepo.NewOrderRepository(db), failingRenderer{})

	if err := s.Generate(o.OrderID); err == nil {
		t.Fatal("expected renderer error")
	}
	var n int64
	db.Model(&salesEntity.OrderInvoice{}).Count(&n)
	if n != 0 {
		t.Errorf("invoice rows = %d after failed render, want 0", n)
	}
}

func TestRegenerate_ReplacesLatest(t *testing.T) {
	db := testDB(t)
	o := seedOrder(t, db)
	s := NewService(db, salesRepo.NewOrderRepository(db), NoopRenderer{})

	if err := s.Generate(o.OrderID); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var first salesEntity.OrderInvoice
	db.First(&first, "order_id = ?", o.OrderID)

	if err := s.Regenerate(o.OrderID); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}

	var invoices []salesEntity.OrderInvoice
	db.Where("order_id = ?", o.OrderID).Find(&invoices)
	if len(invoices) != 1 {
		t.Fatalf("invoice rows = %d, want 1", len(invoices))
	}
	if invoices[0].InvoiceNumber == first.InvoiceNumber {
		t.Error("regenerated invoice kept the old number")
	}
}

func TestGenerate_UnknownOrder(t *testing.T) {
	db := testDB(t)
	s := NewService(db, salesRepo.NewOrderRepository(db), NoopRenderer{})
	if err := s.Generate(4242); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
