package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runDashboardRouter(g *echo.Group, ctrl *controllers.DashboardController) {
	g.GET("/dashboard", ctrl.GetDashboardStats)
}
