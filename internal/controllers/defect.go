package controllers

import (
	"net/http"
	"strconv"
	"time"

	"qtrack/internal/dto"
	"qtrack/internal/services"
	apperrors "qtrack/pkg/errors"
	"qtrack/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DefectController struct {
	defectService services.DefectServiceInterface
	logger        *zap.Logger
}

func NewDefectController(defectService services.DefectServiceInterface, logger *zap.Logger) *DefectController {
	return &DefectController{defectService: defectService, logger: logger}
}

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный ID",
			err,
			map[string]interface{}{"param": ctx.Param("id")},
		)
	}
	return id, nil
}

// asOfDate определяет "сегодня" для расчета старения. По умолчанию это
// текущая дата сервера, но query-параметр as_of позволяет пересчитать
// метрики на любую дату (отчеты задним числом, тесты).
func asOfDate(ctx echo.Context) (time.Time, error) {
	raw := ctx.QueryParam("as_of")
	if raw == "" {
		return time.Now(), nil
	}
	return utils.ParseDate(raw)
}

func (c *DefectController) GetDefects(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	defects, total, err := c.defectService.GetDefects(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, defects, "Список дефектов успешно получен", http.StatusOK, total)
}

func (c *DefectController) FindDefect(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	defect, err := c.defectService.FindDefect(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, defect, "Дефект успешно найден", http.StatusOK)
}

func (c *DefectController) CreateDefect(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateDefectDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	today, err := asOfDate(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	defect, err := c.defectService.CreateDefect(reqCtx, payload, today)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, defect, "Дефект успешно зарегистрирован", http.StatusCreated)
}

func (c *DefectController) UpdateDefect(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateDefectDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	today, err := asOfDate(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	defect, err := c.defectService.UpdateDefect(reqCtx, id, payload, today)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, defect, "Дефект успешно обновлен", http.StatusOK)
}

func (c *DefectController) DeleteDefect(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.defectService.DeleteDefect(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Дефект успешно удален", http.StatusOK)
}

func (c *DefectController) RecalculateDefect(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	today, err := asOfDate(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	defect, err := c.defectService.RecalculateDefect(reqCtx, id, today)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, defect, "Старение дефекта пересчитано", http.StatusOK)
}
