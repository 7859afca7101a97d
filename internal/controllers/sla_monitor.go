package controllers

import (
	"net/http"

	"qtrack/internal/services"
	"qtrack/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SlaMonitorController struct {
	slaMonitorService services.SlaMonitorServiceInterface
	logger            *zap.Logger
}

func NewSlaMonitorController(slaMonitorService services.SlaMonitorServiceInterface, logger *zap.Logger) *SlaMonitorController {
	return &SlaMonitorController{slaMonitorService: slaMonitorService, logger: logger}
}

// GetViolations — текущие нарушения SLA без побочных эффектов.
func (c *SlaMonitorController) GetViolations(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	today, err := asOfDate(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	violations, err := c.slaMonitorService.GetViolations(reqCtx, today)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, violations, "Нарушения SLA успешно получены", http.StatusOK)
}

// RunSweep — ручной запуск проверки SLA (та же логика, что и по расписанию).
func (c *SlaMonitorController) RunSweep(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	today, err := asOfDate(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.slaMonitorService.Sweep(reqCtx, today)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Проверка SLA выполнена", http.StatusOK)
}
