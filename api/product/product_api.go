package product

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"commerce.GO/api"
	"commerce.GO/core/auth"
	"commerce.GO/model/domain"
	catalogEntity "commerce.GO/model/entity/catalog"
	catalogRepo "commerce.GO/model/repository/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
	inventoryService "commerce.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

var identity auth.IdentityProvider = auth.HeaderIdentity{}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	catalog := catalogRepo.NewCatalogRepository(db)
	inventory := inventoryRepo.NewInventoryRepository(db)
	ledger := inventoryService.NewLedger(catalog, inventory)

	g := apiGroup.Group("/products")

	// GET /api/products – active catalog listing
	g.GET("", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		offset, _ := strconv.Atoi(c.QueryParam("offset"))
		products, err := catalog.ListActive(limit, offset)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"products": products, "count": len(products)})
	})

	// GET /api/products/low-stock – must come before /:id
	g.GET("/low-stock", func(c echo.Context) error {
		products, err := catalog.ListLowStock()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"products": products, "count": len(products)})
	})

	// GET /api/products/:id – cached single read
	g.GET("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		p, err := catalog.GetProductCached(id)
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, p)
	})

	// GET /api/products/:id/inventory-history – ledger rows, newest first
	g.GET("/:id/inventory-history", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		if _, err := catalog.GetProduct(id); err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		txns, err := inventory.History(id, limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"transactions": txns, "count": len(txns)})
	})

	// PUT /api/products/:id/inventory – manual mutation through the ledger
	g.PUT("/:id/inventory", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		var body struct {
			VariantID *uint   `json:"variant_id,omitempty"`
			Quantity  int     `json:"quantity"`
			Type      string  `json:"type"`
			Notes     *string `json:"notes,omitempty"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Type == "" {
			body.Type = string(domain.TxnAdjustment)
		}
		switch domain.TxnType(body.Type) {
		case domain.TxnPurchase, domain.TxnReturn, domain.TxnAdjustment, domain.TxnDamage:
		default:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown mutation type " + body.Type})
		}

		ref := inventoryService.SKURef{ProductID: id, VariantID: body.VariantID}
		var res *inventoryService.MutationResult
		err = db.Transaction(func(tx *gorm.DB) error {
			var txErr error
			res, txErr = ledger.Apply(tx, ref, body.Quantity, domain.TxnType(body.Type), body.Notes, identity.CurrentActor(c))
			return txErr
		})
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		catalog.InvalidateProduct(id)
		return c.JSON(http.StatusOK, echo.Map{
			"quantity_before": res.QuantityBefore,
			"quantity_after":  res.QuantityAfter,
			"stock_status":    res.Status,
		})
	})

	// POST /api/products – create catalog entry
	g.POST("", func(c echo.Context) error {
		var p catalogEntity.Product
		if err := c.Bind(&p); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if p.Name == "" || p.SKU == "" || p.Slug == "" {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "name, slug and sku are required"})
		}
		if err := catalog.Create(&p); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, p)
	})

	// PUT /api/products/:id – update catalog fields (never quantity)
	g.PUT("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		existing, err := catalog.GetProduct(id)
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		var p catalogEntity.Product
		if err := c.Bind(&p); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		p.ProductID = existing.ProductID
		if err := catalog.Update(&p); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		updated, err := catalog.GetProduct(id)
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, updated)
	})

	// DELETE /api/products/:id – soft delete
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}
		if _, err := catalog.GetProduct(id); err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		if err := catalog.Delete(id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
