package order

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"commerce.GO/api"
	"commerce.GO/config"
	"commerce.GO/core/auth"
	"commerce.GO/event"
	"commerce.GO/model/domain"
	catalogRepo "commerce.GO/model/repository/catalog"
	inventoryRepo "commerce.GO/model/repository/inventory"
	salesRepo "commerce.GO/model/repository/sales"
	inventoryService "commerce.GO/service/inventory"
	invoiceService "commerce.GO/service/invoice"
	orderService "commerce.GO/service/order"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

var (
	sharedBus *event.Bus
	identity  auth.IdentityProvider = auth.HeaderIdentity{}
)

// SetBus wires the process-wide event bus before ApplyModules. Without
// it orders are still created, just silently.
func SetBus(b *event.Bus) {
	sharedBus = b
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	config.LoadAppConfig()
	orders := salesRepo.NewOrderRepository(db)
	catalog := catalogRepo.NewCatalogRepository(db)
	ledger := inventoryService.NewLedger(catalog, inventoryRepo.NewInventoryRepository(db))
	invoices := invoiceService.NewService(db, orders, invoiceService.NoopRenderer{
		BasePath: config.AppConfig.InvoiceBasePath,
	})
	engine := orderService.NewEngine(db, catalog, orders, ledger, sharedBus, invoices)

	g := apiGroup.Group("/orders")

	// POST /api/orders – place an order
	g.POST("", func(c echo.Context) error {
		var body struct {
			orderService.CreateOrderInput
			UserID uint `json:"user_id"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		userID := body.UserID
		if actor := identity.CurrentActor(c); actor != nil {
			userID = *actor
		}
		if userID == 0 {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "user_id is required"})
		}

		o, err := engine.CreateOrder(body.CreateOrderInput, userID)
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, o)
	})

	// GET /api/orders – filtered listing
	g.GET("", func(c echo.Context) error {
		f := parseFilters(c)
		orderList, total, err := orders.List(f)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		perPage := f.PerPage
		if perPage <= 0 {
			perPage = 15
		}
		page := f.Page
		if page <= 0 {
			page = 1
		}
		return c.JSON(http.StatusOK, echo.Map{
			"orders":   orderList,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		})
	})

	// GET /api/orders/statistics – must come before /:id
	g.GET("/statistics", func(c echo.Context) error {
		start := parseDate(c.QueryParam("start_date"))
		end := parseDate(c.QueryParam("end_date"))
		stats, err := orders.Statistics(start, end)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, stats)
	})

	// GET /api/orders/:id – full order graph
	g.GET("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}
		o, err := orders.FindByID(id)
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, o)
	})

	// GET /api/orders/:id/status-history
	g.GET("/:id/status-history", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}
		if _, err := orders.FindByID(id); err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		hs, err := orders.StatusHistory(id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"history": hs})
	})

	// PUT /api/orders/:id/status – status machine transition
	g.PUT("/:id/status", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}
		var body struct {
			Status string  `json:"status"`
			Notes  *string `json:"notes,omitempty"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Status == "" {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "status is required"})
		}
		o, err := engine.UpdateStatus(id, domain.OrderStatus(body.Status), body.Notes, identity.CurrentActor(c))
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, o)
	})

	// POST /api/orders/:id/cancel – cancel and restore stock
	g.POST("/:id/cancel", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Reason == "" {
			body.Reason = "Cancelled by customer"
		}
		o, err := engine.CancelOrder(id, body.Reason, identity.CurrentActor(c))
		if err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, o)
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

func parseFilters(c echo.Context) salesRepo.OrderFilters {
	f := salesRepo.OrderFilters{
		Status:        domain.OrderStatus(c.QueryParam("status")),
		PaymentStatus: domain.PaymentStatus(c.QueryParam("payment_status")),
		Search:        c.QueryParam("search"),
		SortBy:        c.QueryParam("sort_by"),
		SortDesc:      c.QueryParam("sort_dir") == "desc",
		StartDate:     parseDate(c.QueryParam("start_date")),
		EndDate:       parseDate(c.QueryParam("end_date")),
	}
	if v, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 32); err == nil {
		f.UserID = uint(v)
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("per_page")); err == nil {
		f.PerPage = v
	}
	return f
}
