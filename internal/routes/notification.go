package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runNotificationRouter(g *echo.Group, ctrl *controllers.NotificationController) {
	g.GET("/notification", ctrl.GetNotifications)
}
