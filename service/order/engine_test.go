package order

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"commerce.GO/event"
	"commerce.GO/model/domain"
	catalogEntity "commerce.GO/model/entity/catalog"
	inventoryEntity "commerce.GO/model/entity/inventory"
	salesEntity "commerce.GO/model/entity/sales"
	catalogRepo "commerce.GO/model/repository/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
	salesRepo "commerce.GO/model/repository/sales"
	inventoryService "commerce.GO/service/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&catalogEntity.Product{},
		&catalogEntity.ProductVariant{},
		&inventoryEntity.InventoryTransaction{},
		&inventoryEntity.LowStockAlert{},
		&salesEntity.Order{},
		&salesEntity.OrderItem{},
		&salesEntity.OrderStatusHistory{},
		&salesEntity.OrderInvoice{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testEngine(db *gorm.DB, bus *event.Bus) *Engine {
	catalog := catalogRepo.NewCatalogRepository(db)
	inventory := inventoryRepo.NewInventoryRepository(db)
	orders := salesRepo.NewOrderRepository(db)
	ledger := inventoryService.NewLedger(catalog, inventory)
	return NewEngine(db, catalog, orders, ledger, bus, nil)
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, qty int, price int64) *catalogEntity.Product {
	t.Helper()
	p := &catalogEntity.Product{
		Name:              "Product " + sku,
		Slug:              "product-" + sku,
		SKU:               sku,
		Price:             decimal.NewFromInt(price),
		IsActive:          true,
		StockQuantity:     qty,
		LowStockThreshold: 10,
		StockStatus:       domain.ComputeStockStatus(qty, 10),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func shipping() ShippingInfo {
	return ShippingInfo{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "+1-555-0100",
		Address: "1 Main St",
		City:    "Springfield",
		Country: "US",
	}
}

func TestCreateOrder_EndToEnd(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-E2E", 50, 10)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines:       []Line{{ProductID: p.ProductID, Quantity: 5}},
		Shipping:    shipping(),
		Tax:         decimal.NewFromInt(2),
		ShippingFee: decimal.NewFromInt(3),
		Discount:    decimal.NewFromInt(1),
	}, 7)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if !o.Subtotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("subtotal = %s, want 50", o.Subtotal)
	}
	if !o.TotalAmount.Equal(decimal.NewFromInt(54)) {
		t.Errorf("total = %s, want 54 (50+2+3-1)", o.TotalAmount)
	}
	if o.Status != domain.OrderPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if len(o.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(o.Items))
	}
	item := o.Items[0]
	if item.ProductSKU != "SKU-E2E" || item.Quantity != 5 || !item.UnitPrice.Equal(decimal.NewFromInt(10)) {
		t.Errorf("item snapshot = %+v", item)
	}
	if !item.TotalPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("line total = %s, want 50", item.TotalPrice)
	}

	var reloaded catalogEntity.Product
	db.First(&reloaded, "product_id = ?", p.ProductID)
	if reloaded.StockQuantity != 45 {
		t.Errorf("stock = %d, want 45", reloaded.StockQuantity)
	}

	if len(o.StatusHistories) != 1 || o.StatusHistories[0].Status != domain.OrderPending {
		t.Errorf("status history = %+v, want one pending entry", o.StatusHistories)
	}
}

func TestCreateOrder_SnapshotsPriceAtCreation(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-SNAP", 10, 25)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 2}},
		Shipping: shipping(),
	}, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// later catalog price change must not affect the stored snapshot
	db.Model(&catalogEntity.Product{}).Where("product_id = ?", p.ProductID).
		Update("price", decimal.NewFromInt(99))

	reloaded, err := salesRepo.NewOrderRepository(db).FindByID(o.OrderID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !reloaded.Items[0].UnitPrice.Equal(decimal.NewFromInt(25)) {
		t.Errorf("snapshot price = %s, want 25", reloaded.Items[0].UnitPrice)
	}
}

func TestCreateOrder_FailedLineRollsBackEverything(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p1 := seedProduct(t, db, "SKU-OK", 100, 10)
	p2 := seedProduct(t, db, "SKU-SHORT", 2, 10)

	_, err := e.CreateOrder(CreateOrderInput{
		Lines: []Line{
			{ProductID: p1.ProductID, Quantity: 5},
			{ProductID: p2.ProductID, Quantity: 3},
		},
		Shipping: shipping(),
	}, 1)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	var orders, items, txns int64
	db.Model(&salesEntity.Order{}).Count(&orders)
	db.Model(&salesEntity.OrderItem{}).Count(&items)
	db.Model(&inventoryEntity.InventoryTransaction{}).Count(&txns)
	if orders != 0 || items != 0 || txns != 0 {
		t.Errorf("rows after rollback: orders=%d items=%d txns=%d, want all 0", orders, items, txns)
	}

	var reloaded catalogEntity.Product
	db.First(&reloaded, "product_id = ?", p1.ProductID)
	if reloaded.StockQuantity != 100 {
		t.Errorf("SKU-OK stock = %d after rollback, want 100", reloaded.StockQuantity)
	}
}

func TestCreateOrder_InactiveProduct(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-OFF", 10, 10)
	db.Model(&catalogEntity.Product{}).Where("product_id = ?", p.ProductID).Update("is_active", false)

	_, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 1}},
		Shipping: shipping(),
	}, 1)
	if !errors.Is(err, domain.ErrProductUnavailable) {
		t.Fatalf("err = %v, want ErrProductUnavailable", err)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)

	_, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: 9999, Quantity: 1}},
		Shipping: shipping(),
	}, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateOrder_ValidationFailures(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-VAL", 10, 10)

	cases := []CreateOrderInput{
		{Shipping: shipping()}, // no lines
		{Lines: []Line{{ProductID: p.ProductID, Quantity: 0}}, Shipping: shipping()},
		{Lines: []Line{{ProductID: p.ProductID, Quantity: 1}}}, // missing shipping
		{Lines: []Line{{ProductID: p.ProductID, Quantity: 1}}, Shipping: shipping(), Discount: decimal.NewFromInt(-1)},
	}
	for i, in := range cases {
		if _, err := e.CreateOrder(in, 1); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreateOrder_PublishesEventsPostCommit(t *testing.T) {
	db := testDB(t)
	bus := event.NewBus(16)
	e := testEngine(db, bus)
	p := seedProduct(t, db, "SKU-EVT", 12, 10)

	var mu sync.Mutex
	var names []string
	bus.Subscribe("*", func(ev event.Event) error {
		mu.Lock()
		names = append(names, ev.Name())
		mu.Unlock()
		return nil
	})

	// 12 -> 4 crosses the threshold: expect low-stock + order created
	if _, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 8}},
		Shipping: shipping(),
	}, 1); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	bus.Close()

	want := map[string]bool{event.NameLowStockDetected: false, event.NameOrderCreated: false}
	for _, n := range names {
		want[n] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("event %s not published", name)
		}
	}
}

func TestUpdateStatus_LegalTransition(t *testing.T) {
	db := testDB(t)
	bus := event.NewBus(16)
	e := testEngine(db, bus)
	p := seedProduct(t, db, "SKU-ST", 20, 10)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 1}},
		Shipping: shipping(),
	}, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	notes := "picked and packed"
	actor := uint(2)
	updated, err := e.UpdateStatus(o.OrderID, domain.OrderProcessing, &notes, &actor)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.OrderProcessing {
		t.Errorf("status = %s, want processing", updated.Status)
	}
	if len(updated.StatusHistories) != 2 {
		t.Fatalf("history rows = %d, want 2", len(updated.StatusHistories))
	}
	last := updated.StatusHistories[1]
	if last.Status != domain.OrderProcessing || last.ChangedBy == nil || *last.ChangedBy != 2 {
		t.Errorf("history entry = %+v", last)
	}
	bus.Close()
}

func TestUpdateStatus_IllegalTransitions(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-ILL", 20, 10)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 1}},
		Shipping: shipping(),
	}, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// pending -> shipped skips processing
	if _, err := e.UpdateStatus(o.OrderID, domain.OrderShipped, nil, nil); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Errorf("pending->shipped err = %v, want ErrIllegalTransition", err)
	}

	// walk to delivered, then verify terminality
	for _, s := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered} {
		if _, err := e.UpdateStatus(o.OrderID, s, nil, nil); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	for _, target := range []domain.OrderStatus{domain.OrderPending, domain.OrderProcessing, domain.OrderShipped, domain.OrderCancelled} {
		if _, err := e.UpdateStatus(o.OrderID, target, nil, nil); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("delivered->%s err = %v, want ErrIllegalTransition", target, err)
		}
	}
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	db := testDB(t)
	bus := event.NewBus(16)
	e := testEngine(db, bus)
	p1 := seedProduct(t, db, "SKU-C1", 30, 5)
	p2 := seedProduct(t, db, "SKU-C2", 40, 5)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines: []Line{
			{ProductID: p1.ProductID, Quantity: 3},
			{ProductID: p2.ProductID, Quantity: 5},
		},
		Shipping: shipping(),
	}, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	var mu sync.Mutex
	var cancelled []event.OrderCancelled
	bus.Subscribe(event.NameOrderCancelled, func(ev event.Event) error {
		mu.Lock()
		cancelled = append(cancelled, ev.(event.OrderCancelled))
		mu.Unlock()
		return nil
	})

	actor := uint(9)
	got, err := e.CancelOrder(o.OrderID, "customer changed mind", &actor)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	bus.Close()

	if got.Status != domain.OrderCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if got.CancelledAt == nil {
		t.Error("cancelled_at not set")
	}
	if got.CancellationReason == nil || *got.CancellationReason != "customer changed mind" {
		t.Errorf("cancellation_reason = %v", got.CancellationReason)
	}

	var r1, r2 catalogEntity.Product
	db.First(&r1, "product_id = ?", p1.ProductID)
	db.First(&r2, "product_id = ?", p2.ProductID)
	if r1.StockQuantity != 30 || r2.StockQuantity != 40 {
		t.Errorf("stock after cancel = %d/%d, want 30/40", r1.StockQuantity, r2.StockQuantity)
	}

	var returns int64
	db.Model(&inventoryEntity.InventoryTransaction{}).Where("type = ?", domain.TxnReturn).Count(&returns)
	if returns != 2 {
		t.Errorf("return ledger rows = %d, want 2", returns)
	}

	hist := got.StatusHistories
	if len(hist) != 2 || hist[len(hist)-1].Status != domain.OrderCancelled {
		t.Errorf("history = %+v, want pending then cancelled", hist)
	}

	if len(cancelled) != 1 || cancelled[0].Reason != "customer changed mind" {
		t.Errorf("cancelled events = %+v", cancelled)
	}
}

func TestCancelOrder_NotCancellableFromShipped(t *testing.T) {
	db := testDB(t)
	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-NC", 20, 5)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 2}},
		Shipping: shipping(),
	}, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	for _, s := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped} {
		if _, err := e.UpdateStatus(o.OrderID, s, nil, nil); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}

	_, err = e.CancelOrder(o.OrderID, "too late", nil)
	if !errors.Is(err, domain.ErrNotCancellable) {
		t.Fatalf("err = %v, want ErrNotCancellable", err)
	}

	var reloaded catalogEntity.Product
	db.First(&reloaded, "product_id = ?", p.ProductID)
	if reloaded.StockQuantity != 18 {
		t.Errorf("stock = %d, want 18 (no restoration)", reloaded.StockQuantity)
	}
}

func TestCancelOrder_ConcurrentCancelRestoresOnce(t *testing.T) {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("engine_cancel_%d.db", time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmp) })

	db, err := gorm.Open(sqlite.Open(tmp), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(
		&catalogEntity.Product{},
		&catalogEntity.ProductVariant{},
		&inventoryEntity.InventoryTransaction{},
		&inventoryEntity.LowStockAlert{},
		&salesEntity.Order{},
		&salesEntity.OrderItem{},
		&salesEntity.OrderStatusHistory{},
		&salesEntity.OrderInvoice{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	e := testEngine(db, nil)
	p := seedProduct(t, db, "SKU-DC", 10, 2)

	o, err := e.CreateOrder(CreateOrderInput{
		Lines:    []Line{{ProductID: p.ProductID, Quantity: 3}},
		Shipping: shipping(),
	}, 1)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// Every attempt reads the same pending snapshot; only the first
	// conditional write may claim the order, so stock comes back
	// exactly once no matter how many cancels race.
	const attempts = 4
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	var failures []error
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.CancelOrder(o.OrderID, "duplicate click", nil)
			mu.Lock()
			if err == nil {
				successes++
			} else {
				failures = append(failures, err)
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successful cancels = %d, want exactly 1", successes)
	}
	for _, err := range failures {
		if !errors.Is(err, domain.ErrNotCancellable) {
			t.Errorf("loser err = %v, want ErrNotCancellable", err)
		}
	}

	var reloaded catalogEntity.Product
	db.First(&reloaded, "product_id = ?", p.ProductID)
	if reloaded.StockQuantity != 10 {
		t.Errorf("stock = %d, want 10 (restored exactly once)", reloaded.StockQuantity)
	}

	var returns int64
	db.Model(&inventoryEntity.InventoryTransaction{}).Where("type = ?", domain.TxnReturn).Count(&returns)
	if returns != 1 {
		t.Errorf("return ledger rows = %d, want 1", returns)
	}

	var cancelledRows int64
	db.Model(&salesEntity.OrderStatusHistory{}).
		Where("order_id = ? AND status = ?", o.OrderID, domain.OrderCancelled).
		Count(&cancelledRows)
	if cancelledRows != 1 {
		t.Errorf("cancelled history rows = %d, want 1", cancelledRows)
	}
}
