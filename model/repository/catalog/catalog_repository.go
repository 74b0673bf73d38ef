package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"commerce.GO/config"
	"commerce.GO/core/cache"
	catalogEntity "commerce.GO/model/entity/catalog"
	"commerce.GO/model/domain"
)

const productCacheTTL = 300 // seconds

// CatalogRepository is the CatalogStore: read/write access to product
// and variant records. Quantity writes go through the ledger service,
// which calls back into the *ForUpdate / UpdateQuantity methods here.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// forUpdate adds a row lock on dialects that support it. SQLite (tests)
// serializes writers on its own, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// GetProduct returns a product by ID, or domain.ErrNotFound.
func (r *CatalogRepository) GetProduct(id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.First(&p, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// GetProductWithVariants preloads variants.
func (r *CatalogRepository) GetProductWithVariants(id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	err := r.db.Preload("Variants").First(&p, "product_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// GetProductBySKU returns a product by SKU, or domain.ErrNotFound.
func (r *CatalogRepository) GetProductBySKU(sku string) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.First(&p, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sku %s: %w", sku, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// GetVariant returns a variant by ID, or domain.ErrNotFound.
func (r *CatalogRepository) GetVariant(id uint) (*catalogEntity.ProductVariant, error) {
	var v catalogEntity.ProductVariant
	if err := r.db.First(&v, "variant_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("variant %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

// FindProductForUpdate fetches a product inside tx holding a row lock.
func (r *CatalogRepository) FindProductForUpdate(tx *gorm.DB, id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := forUpdate(tx).First(&p, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// FindVariantForUpdate fetches a variant inside tx holding a row lock.
func (r *CatalogRepository) FindVariantForUpdate(tx *gorm.DB, id uint) (*catalogEntity.ProductVariant, error) {
	var v catalogEntity.ProductVariant
	if err := forUpdate(tx).First(&v, "variant_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("variant %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

// UpdateProductQuantity persists a new quantity and the status derived
// from it. Callers compute both; nothing is recomputed here. The cache
// entry is NOT dropped here: tx is still open, and an eviction now
// would let a concurrent read repopulate the cache with the pre-commit
// row. Callers invalidate via InvalidateProduct after their
// transaction commits.
func (r *CatalogRepository) UpdateProductQuantity(tx *gorm.DB, id uint, qty int, status domain.StockStatus) error {
	return tx.Model(&catalogEntity.Product{}).
		Where("product_id = ?", id).
		Updates(map[string]interface{}{"stock_quantity": qty, "stock_status": status}).Error
}

// UpdateVariantQuantity persists a new variant quantity. Cache
// invalidation is the caller's post-commit duty, as above.
func (r *CatalogRepository) UpdateVariantQuantity(tx *gorm.DB, id uint, productID uint, qty int) error {
	return tx.Model(&catalogEntity.ProductVariant{}).
		Where("variant_id = ?", id).
		Update("stock_quantity", qty).Error
}

// ListActive returns active products, newest first.
func (r *CatalogRepository) ListActive(limit, offset int) ([]catalogEntity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	var products []catalogEntity.Product
	err := r.db.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&products).Error
	return products, err
}

// ListLowStock returns products currently classified low_stock or
// out_of_stock.
func (r *CatalogRepository) ListLowStock() ([]catalogEntity.Product, error) {
	var products []catalogEntity.Product
	err := r.db.Where("stock_status IN ?", []domain.StockStatus{domain.StockLowStock, domain.StockOutOfStock}).
		Order("stock_quantity ASC").
		Find(&products).Error
	return products, err
}

// Create inserts a product with its derived stock status.
func (r *CatalogRepository) Create(p *catalogEntity.Product) error {
	p.StockStatus = domain.ComputeStockStatus(p.StockQuantity, p.LowStockThreshold)
	return r.db.Create(p).Error
}

// Update saves catalog fields. Quantity is ledger-owned and not
// touched here.
func (r *CatalogRepository) Update(p *catalogEntity.Product) error {
	err := r.db.Model(p).
		Select("name", "slug", "description", "price", "compare_price", "brand",
			"is_active", "low_stock_threshold", "images", "meta_data").
		Updates(p).Error
	if err != nil {
		return err
	}
	r.InvalidateProduct(p.ProductID)
	return nil
}

// Delete soft-removes a product.
func (r *CatalogRepository) Delete(id uint) error {
	if err := r.db.Delete(&catalogEntity.Product{}, "product_id = ?", id).Error; err != nil {
		return err
	}
	r.InvalidateProduct(id)
	return nil
}

// --- read cache ---
// Redis when configured, in-process cache otherwise. Cached value is
// the JSON-encoded product row.

func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

// GetProductCached is GetProduct behind the read cache. Used by the
// read-only API paths; never by the ledger.
func (r *CatalogRepository) GetProductCached(id uint) (*catalogEntity.Product, error) {
	key := productCacheKey(id)

	if config.RedisClient != nil {
		raw, err := config.RedisClient.Get(config.RedisCtx(), key).Bytes()
		if err == nil {
			var p catalogEntity.Product
			if json.Unmarshal(raw, &p) == nil {
				return &p, nil
			}
		}
	} else if v, ok := cache.GetInstance().Get(key); ok {
		if p, ok := v.(*catalogEntity.Product); ok {
			return p, nil
		}
	}

	p, err := r.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if config.RedisClient != nil {
		if raw, err := json.Marshal(p); err == nil {
			config.RedisClient.Set(config.RedisCtx(), key, raw, productCacheTTL*time.Second)
		}
	} else {
		cache.GetInstance().Set(key, p, productCacheTTL, []string{"products"})
	}
	return p, nil
}

// InvalidateProduct drops the cached row for a product. Quantity
// writers call this after their transaction commits.
func (r *CatalogRepository) InvalidateProduct(id uint) {
	key := productCacheKey(id)
	if config.RedisClient != nil {
		config.RedisClient.Del(config.RedisCtx(), key)
		return
	}
	cache.GetInstance().Delete(key)
}
