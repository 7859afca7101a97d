package controllers

import (
	"net/http"

	"qtrack/internal/services"
	"qtrack/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type NotificationController struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationController(notificationService services.NotificationServiceInterface, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: notificationService, logger: logger}
}

func (c *NotificationController) GetNotifications(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	status := ""
	if raw, ok := filter.Filter["status"]; ok {
		status, _ = raw.(string)
	}

	notifications, total, err := c.notificationService.GetNotifications(reqCtx, uint64(filter.Limit), uint64(filter.Offset), status)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, notifications, "Список уведомлений успешно получен", http.StatusOK, total)
}
