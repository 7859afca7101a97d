package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runReportRouter(g *echo.Group, ctrl *controllers.ReportController) {
	g.GET("/report", ctrl.GetReport)
}
