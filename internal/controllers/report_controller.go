package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"qtrack/internal/entities"
	"qtrack/internal/services"
	"qtrack/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// GetReport отдает реестр дефектов. format=xlsx переключает выдачу на Excel,
// фильтры те же, что и у списка дефектов.
func (c *ReportController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	rows, total, err := c.reportService.GetReportRows(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if ctx.QueryParam("format") == "xlsx" {
		return c.respondWithXLSX(ctx, rows)
	}

	list := make([]interface{}, 0, len(rows))
	for i := range rows {
		list = append(list, services.ToDefectDTO(&rows[i]))
	}
	return utils.SuccessResponse(ctx, list, "Отчет успешно сформирован", http.StatusOK, total)
}

var reportHeaders = []string{
	"№", "Номер дефекта", "Поставщик", "Серьезность", "Деталь", "Кол-во",
	"Дата открытия", "Этап", "Ответственный", "Статус",
	"Дней всего", "Дней на этапе", "Просрочка (дн.)", "Корзина", "Неделя", "Месяц",
	"Плановый срок", "Дата закрытия",
}

func defectToRow(index int, d *entities.Defect) []interface{} {
	dateFmt := "02.01.2006"
	var targetDate, closedDate string
	if d.TargetDate != nil {
		targetDate = d.TargetDate.Format(dateFmt)
	}
	if d.ValidationDate != nil {
		closedDate = d.ValidationDate.Format(dateFmt)
	}

	return []interface{}{
		index, d.DefectNo, d.SupplierName, string(d.Severity), utils.SafeDeref(d.PartNo), utils.SafeDeref(d.Quantity),
		d.OpenDate.Format(dateFmt), string(d.Step), string(d.Responsible), string(d.Status),
		d.AgingTotal, d.AgingByStep, d.DaysLate, string(d.AgingBucket), d.WeekKey, d.MonthName,
		targetDate, closedDate,
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, rows []entities.Defect) error {
	f := excelize.NewFile()
	sheet := "Реестр дефектов"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "R1", style)

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := defectToRow(i+1, &rows[i])
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "C", 25)
	f.SetColWidth(sheet, "G", "J", 20)

	fileName := fmt.Sprintf("defects_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
