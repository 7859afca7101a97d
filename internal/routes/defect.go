package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runDefectRouter(g *echo.Group, ctrl *controllers.DefectController) {
	g.GET("/defect", ctrl.GetDefects)
	g.GET("/defect/:id", ctrl.FindDefect)
	g.POST("/defect", ctrl.CreateDefect)
	g.PUT("/defect/:id", ctrl.UpdateDefect)
	g.DELETE("/defect/:id", ctrl.DeleteDefect)
	g.POST("/defect/:id/recalculate", ctrl.RecalculateDefect)
}
