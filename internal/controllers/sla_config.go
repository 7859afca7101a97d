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

type SlaConfigController struct {
	slaConfigService services.SlaConfigServiceInterface
	logger           *zap.Logger
}

func NewSlaConfigController(slaConfigService services.SlaConfigServiceInterface, logger *zap.Logger) *SlaConfigController {
	return &SlaConfigController{slaConfigService: slaConfigService, logger: logger}
}

func (c *SlaConfigController) GetSlaConfigs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	configs, total, err := c.slaConfigService.GetSlaConfigs(reqCtx, uint64(filter.Limit), uint64(filter.Offset))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, configs, "Список правил SLA успешно получен", http.StatusOK, total)
}

func (c *SlaConfigController) FindSlaConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	config, err := c.slaConfigService.FindSlaConfig(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, config, "Правило SLA успешно найдено", http.StatusOK)
}

func (c *SlaConfigController) CreateSlaConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateSlaConfigDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	config, err := c.slaConfigService.CreateSlaConfig(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, config, "Правило SLA успешно создано", http.StatusCreated)
}

func (c *SlaConfigController) UpdateSlaConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateSlaConfigDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	config, err := c.slaConfigService.UpdateSlaConfig(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, config, "Правило SLA успешно обновлено", http.StatusOK)
}

func (c *SlaConfigController) DeleteSlaConfig(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.slaConfigService.DeleteSlaConfig(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Правило SLA успешно удалено", http.StatusOK)
}
