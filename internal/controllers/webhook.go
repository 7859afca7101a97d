package controllers

import (
	"net/http"

	"qtrack/internal/dto"
	"qtrack/internal/services"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type WebhookController struct {
	webhookService services.WebhookServiceInterface
	logger         *zap.Logger
}

func NewWebhookController(webhookService services.WebhookServiceInterface, logger *zap.Logger) *WebhookController {
	return &WebhookController{webhookService: webhookService, logger: logger}
}

func (c *WebhookController) GetWebhookConfigs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	configs, total, err := c.webhookService.GetWebhookConfigs(reqCtx, uint64(filter.Limit), uint64(filter.Offset))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, configs, "Список вебхуков успешно получен", http.StatusOK, total)
}

func (c *WebhookController) FindWebhookConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	config, err := c.webhookService.FindWebhookConfig(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, config, "Вебхук успешно найден", http.StatusOK)
}

func (c *WebhookController) CreateWebhookConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateWebhookConfigDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	config, err := c.webhookService.CreateWebhookConfig(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, config, "Вебхук успешно создан", http.StatusCreated)
}

func (c *WebhookController) UpdateWebhookConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateWebhookConfigDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	config, err := c.webhookService.UpdateWebhookConfig(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, config, "Вебхук успешно обновлен", http.StatusOK)
}

func (c *WebhookController) DeleteWebhookConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.webhookService.DeleteWebhookConfig(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Вебхук успешно удален", http.StatusOK)
}

func (c *WebhookController) GetWebhookLogs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	logs, total, err := c.webhookService.GetLogs(reqCtx, id, uint64(filter.Limit), uint64(filter.Offset))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, logs, "Журнал доставки успешно получен", http.StatusOK, total)
}
