package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"commerce.GO/model/domain"
	catalogEntity "commerce.GO/model/entity/catalog"
	catalogRepo "commerce.GO/model/repository/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
)

// StockItemInput is one row of a bulk stock feed.
type StockItemInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}

// ImportStockJSON applies a bulk stock feed as absolute adjustments,
// one ledger transaction per batch. Unknown SKUs and negative
// quantities are skipped with a warning; a bad row never aborts the
// run.
func ImportStockJSON(db *gorm.DB, items []StockItemInput, batchSize int) (*ImportResult, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	catalog := catalogRepo.NewCatalogRepository(db)
	ledger := NewLedger(catalog, inventoryRepo.NewInventoryRepository(db))
	notes := "Bulk stock import"

	res := &ImportResult{}
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		var touched []uint
		err := db.Transaction(func(tx *gorm.DB) error {
			for i, item := range batch {
				row := start + i + 1
				if item.SKU == "" {
					res.Skipped++
					res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: sku is required", row))
					continue
				}
				if item.Quantity < 0 {
					res.Skipped++
					res.Warnings = append(res.Warnings, fmt.Sprintf("row %d (%s): negative quantity", row, item.SKU))
					continue
				}

				ref, err := resolveSKU(tx, item.SKU)
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						res.Skipped++
						res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: unknown sku %s", row, item.SKU))
						continue
					}
					return err
				}

				if _, err := ledger.Adjust(tx, ref, item.Quantity, nil, &notes); err != nil {
					return fmt.Errorf("row %d (%s): %w", row, item.SKU, err)
				}
				touched = append(touched, ref.ProductID)
				res.Imported++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		for _, id := range touched {
			catalog.InvalidateProduct(id)
		}
	}
	return res, nil
}

// resolveSKU maps a feed SKU to a product or variant reference. Both
// lookups run on tx so they see rows written earlier in the same batch.
func resolveSKU(tx *gorm.DB, sku string) (SKURef, error) {
	var p struct {
		ProductID uint
	}
	err := tx.Model(&catalogEntity.Product{}).
		Select("product_id").
		Where("sku = ?", sku).
		Take(&p).Error
	if err == nil {
		return SKURef{ProductID: p.ProductID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SKURef{}, err
	}

	var v struct {
		VariantID uint
		ProductID uint
	}
	err = tx.Table("product_variants").
		Select("variant_id, product_id").
		Where("sku = ?", sku).
		Take(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SKURef{}, fmt.Errorf("sku %s: %w", sku, domain.ErrNotFound)
		}
		return SKURef{}, err
	}
	vid := v.VariantID
	return SKURef{ProductID: v.ProductID, VariantID: &vid}, nil
}
