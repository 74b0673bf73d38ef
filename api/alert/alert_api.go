package alert

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"commerce.GO/api"
	inventoryRepo "commerce.GO/model/repository/inventory"
)

func init() {
	api.RegisterModule(RegisterAlertRoutes)
}

func RegisterAlertRoutes(apiGroup *echo.Group, db *gorm.DB) {
	inventory := inventoryRepo.NewInventoryRepository(db)
	g := apiGroup.Group("/alerts")

	// GET /api/alerts?unresolved=true – low-stock alert listing
	g.GET("", func(c echo.Context) error {
		unresolvedOnly := c.QueryParam("unresolved") == "true"
		alerts, err := inventory.ListAlerts(unresolvedOnly)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"alerts": alerts, "count": len(alerts)})
	})

	// POST /api/alerts/:id/resolve – manual close
	g.POST("/:id/resolve", func(c echo.Context) error {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid alert id"})
		}
		if err := inventory.ResolveAlertByID(uint(id)); err != nil {
			return c.JSON(api.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"resolved": true})
	})
}
