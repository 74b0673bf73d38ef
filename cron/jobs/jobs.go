package jobs

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"commerce.GO/cron"
	"commerce.GO/model/domain"
	catalogEntity "commerce.GO/model/entity/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
	inventorySvc "commerce.GO/service/inventory"
)

func init() {
	cron.Register("lowstockscan", "*/15 * * * *", LowStockScanJob)
	cron.Register("ledgerreconcile", "0 3 * * *", LedgerReconcileJob)
}

var db *gorm.DB

// SetDB wires the shared connection before the scheduler starts.
// Importing config here would cycle (config.CronJobs points at us), so
// the caller injects it.
func SetDB(conn *gorm.DB) {
	db = conn
}

// LowStockScanJob sweeps active products and variants already at or
// below threshold and raises the missing alerts. Normal crossings are
// alerted inline by ledger writes; this catches stock edited outside
// the ledger.
func LowStockScanJob(args ...string) {
	if db == nil {
		log.Println("lowstockscan: no database configured, skipping")
		return
	}
	monitor := inventorySvc.NewMonitor(inventoryRepo.NewInventoryRepository(db))

	raised := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var products []catalogEntity.Product
		if err := tx.Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
			Find(&products).Error; err != nil {
			return err
		}
		for _, p := range products {
			ev, err := monitor.Raise(tx, p.ProductID, nil, p.SKU, p.StockQuantity, p.LowStockThreshold)
			if err != nil {
				return err
			}
			if ev != nil {
				raised++
			}
		}

		var variants []catalogEntity.ProductVariant
		err := tx.Joins("JOIN products ON products.product_id = product_variants.product_id").
			Where("product_variants.is_active = ? AND product_variants.stock_quantity <= products.low_stock_threshold", true).
			Find(&variants).Error
		if err != nil {
			return err
		}
		for _, v := range variants {
			var p catalogEntity.Product
			if err := tx.First(&p, "product_id = ?", v.ProductID).Error; err != nil {
				return err
			}
			vid := v.VariantID
			ev, err := monitor.Raise(tx, v.ProductID, &vid, v.SKU, v.StockQuantity, p.LowStockThreshold)
			if err != nil {
				return err
			}
			if ev != nil {
				raised++
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("lowstockscan: %v", err)
		return
	}
	log.Printf("lowstockscan: raised %d alerts", raised)
}

// LedgerReconcileJob compares each product's stored quantity with the
// latest ledger quantity_after and logs drift. It never auto-corrects;
// fixes go through stock:adjust so the ledger stays the record.
func LedgerReconcileJob(args ...string) {
	if db == nil {
		log.Println("ledgerreconcile: no database configured, skipping")
		return
	}
	repo := inventoryRepo.NewInventoryRepository(db)

	var products []catalogEntity.Product
	if err := db.Find(&products).Error; err != nil {
		log.Printf("ledgerreconcile: %v", err)
		return
	}

	mismatches := 0
	for _, p := range products {
		latest, err := repo.LatestForSKU(p.ProductID, nil)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // no ledger activity yet
			}
			log.Printf("ledgerreconcile: product %d: %v", p.ProductID, err)
			continue
		}
		if latest.QuantityAfter != p.StockQuantity {
			mismatches++
			log.Printf("ledgerreconcile: product %d (%s) stored quantity %d disagrees with ledger %d",
				p.ProductID, p.SKU, p.StockQuantity, latest.QuantityAfter)
		}
	}

	var variants []catalogEntity.ProductVariant
	if err := db.Find(&variants).Error; err != nil {
		log.Printf("ledgerreconcile: %v", err)
		return
	}
	for _, v := range variants {
		vid := v.VariantID
		latest, err := repo.LatestForSKU(v.ProductID, &vid)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			log.Printf("ledgerreconcile: variant %d: %v", v.VariantID, err)
			continue
		}
		if latest.QuantityAfter != v.StockQuantity {
			mismatches++
			log.Printf("ledgerreconcile: variant %d (%s) stored quantity %d disagrees with ledger %d",
				v.VariantID, v.SKU, v.StockQuantity, latest.QuantityAfter)
		}
	}
	log.Printf("ledgerreconcile: checked %d products, %d variants, %d mismatches",
		len(products), len(variants), mismatches)
}
