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

type SupplierController struct {
	supplierService services.SupplierServiceInterface
	logger          *zap.Logger
}

func NewSupplierController(supplierService services.SupplierServiceInterface, logger *zap.Logger) *SupplierController {
	return &SupplierController{supplierService: supplierService, logger: logger}
}

func (c *SupplierController) GetSuppliers(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	suppliers, total, err := c.supplierService.GetSuppliers(reqCtx, uint64(filter.Limit), uint64(filter.Offset), filter.Search)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, suppliers, "Список поставщиков успешно получен", http.StatusOK, total)
}

func (c *SupplierController) FindSupplier(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	supplier, err := c.supplierService.FindSupplier(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, supplier, "Поставщик успешно найден", http.StatusOK)
}

func (c *SupplierController) CreateSupplier(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateSupplierDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	supplier, err := c.supplierService.CreateSupplier(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, supplier, "Поставщик успешно создан", http.StatusCreated)
}

func (c *SupplierController) UpdateSupplier(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateSupplierDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil), c.logger)
	}
	if err := ctx.Validate(payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	supplier, err := c.supplierService.UpdateSupplier(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, supplier, "Поставщик успешно обновлен", http.StatusOK)
}

func (c *SupplierController) DeleteSupplier(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.supplierService.DeleteSupplier(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Поставщик успешно удален", http.StatusOK)
}
