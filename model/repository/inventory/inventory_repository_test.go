package inventory

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"commerce.GO/model/domain"
	inventoryEntity "commerce.GO/model/entity/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&inventoryEntity.InventoryTransaction{}, &inventoryEntity.LowStockAlert{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func appendTxn(t *testing.T, db *gorm.DB, repo *InventoryRepository, productID uint, variantID *uint, before, after int) {
	t.Helper()
	err := repo.AppendTransaction(db, &inventoryEntity.InventoryTransaction{
		ProductID:      productID,
		VariantID:      variantID,
		Type:           domain.TxnAdjustment,
		Quantity:       after,
		QuantityBefore: before,
		QuantityAfter:  after,
	})
	if err != nil {
		t.Fatalf("append txn: %v", err)
	}
}

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	for i := 0; i < 5; i++ {
		appendTxn(t, db, repo, 1, nil, i, i+1)
	}

	txns, err := repo.History(1, 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("len = %d, want 3", len(txns))
	}
	if txns[0].QuantityAfter != 5 || txns[2].QuantityAfter != 3 {
		t.Errorf("ordering = %d, %d, %d", txns[0].QuantityAfter, txns[1].QuantityAfter, txns[2].QuantityAfter)
	}
}

func TestLatestForSKU_SeparatesProductAndVariantRows(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	vid := uint(9)
	appendTxn(t, db, repo, 1, nil, 0, 10)
	appendTxn(t, db, repo, 1, &vid, 0, 4)

	latest, err := repo.LatestForSKU(1, nil)
	if err != nil {
		t.Fatalf("LatestForSKU: %v", err)
	}
	if latest.QuantityAfter != 10 || latest.VariantID != nil {
		t.Errorf("product row = %+v", latest)
	}

	latest, err = repo.LatestForSKU(1, &vid)
	if err != nil {
		t.Fatalf("LatestForSKU variant: %v", err)
	}
	if latest.QuantityAfter != 4 {
		t.Errorf("variant row = %+v", latest)
	}

	if _, err := repo.LatestForSKU(2, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAlertLifecycle(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)

	a, err := repo.UnresolvedAlert(db, 1, nil)
	if err != nil || a != nil {
		t.Fatalf("UnresolvedAlert empty = %v, %v", a, err)
	}

	alert := &inventoryEntity.LowStockAlert{ProductID: 1, CurrentStock: 3, Threshold: 10}
	if err := repo.CreateAlert(db, alert); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	a, err = repo.UnresolvedAlert(db, 1, nil)
	if err != nil || a == nil {
		t.Fatalf("UnresolvedAlert = %v, %v", a, err)
	}

	if err := repo.ResolveAlerts(db, 1, nil); err != nil {
		t.Fatalf("ResolveAlerts: %v", err)
	}
	a, _ = repo.UnresolvedAlert(db, 1, nil)
	if a != nil {
		t.Errorf("alert still open after resolve")
	}

	var stored inventoryEntity.LowStockAlert
	db.First(&stored, "alert_id = ?", alert.AlertID)
	if !stored.IsResolved || stored.ResolvedAt == nil {
		t.Errorf("resolved alert = %+v", stored)
	}
}

func TestResolveAlertByID_NotFoundOnResolved(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)

	alert := &inventoryEntity.LowStockAlert{ProductID: 1, CurrentStock: 3, Threshold: 10}
	if err := repo.CreateAlert(db, alert); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	if err := repo.ResolveAlertByID(alert.AlertID); err != nil {
		t.Fatalf("ResolveAlertByID: %v", err)
	}
	if err := repo.ResolveAlertByID(alert.AlertID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second resolve err = %v, want ErrNotFound", err)
	}
	if err := repo.ResolveAlertByID(999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestVariantAlertsKeptSeparate(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	vid := uint(7)

	if err := repo.CreateAlert(db, &inventoryEntity.LowStockAlert{ProductID: 1, VariantID: &vid, CurrentStock: 2, Threshold: 10}); err != nil {
		t.Fatalf("CreateAlert: %v", err)
	}

	// the product-level lookup must not see the variant alert
	a, err := repo.UnresolvedAlert(db, 1, nil)
	if err != nil {
		t.Fatalf("UnresolvedAlert: %v", err)
	}
	if a != nil {
		t.Errorf("product lookup returned variant alert %+v", a)
	}

	a, err = repo.UnresolvedAlert(db, 1, &vid)
	if err != nil || a == nil {
		t.Fatalf("variant lookup = %v, %v", a, err)
	}
}
