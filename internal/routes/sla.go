package routes

import (
	"qtrack/internal/controllers"

	"github.com/labstack/echo/v4"
)

func runSlaRouter(g *echo.Group, configCtrl *controllers.SlaConfigController, monitorCtrl *controllers.SlaMonitorController) {
	g.GET("/sla-config", configCtrl.GetSlaConfigs)
	g.GET("/sla-config/:id", configCtrl.FindSlaConfig)
	g.POST("/sla-config", configCtrl.CreateSlaConfig)
	g.PUT("/sla-config/:id", configCtrl.UpdateSlaConfig)
	g.DELETE("/sla-config/:id", configCtrl.DeleteSlaConfig)

	g.GET("/sla/violations", monitorCtrl.GetViolations)
	g.POST("/sla/sweep", monitorCtrl.RunSweep)
}
