package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runSupplierRouter(g *echo.Group, ctrl *controllers.SupplierController) {
	g.GET("/supplier", ctrl.GetSuppliers)
	g.GET("/supplier/:id", ctrl.FindSupplier)
	g.POST("/supplier", ctrl.CreateSupplier)
	g.PUT("/supplier/:id", ctrl.UpdateSupplier)
	g.DELETE("/supplier/:id", ctrl.DeleteSupplier)
}
