package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runWebhookRouter(g *echo.Group, ctrl *controllers.WebhookController) {
	g.GET("/webhook-config", ctrl.GetWebhookConfigs)
	g.GET("/webhook-config/:id", ctrl.FindWebhookConfig)
	g.POST("/webhook-config", ctrl.CreateWebhookConfig)
	g.PUT("/webhook-config/:id", ctrl.UpdateWebhookConfig)
	g.DELETE("/webhook-config/:id", ctrl.DeleteWebhookConfig)
	g.GET("/webhook-config/:id/logs", ctrl.GetWebhookLogs)
}
