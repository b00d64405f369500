package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
)

var ErrReportGenerateFail = errors.New("failed to generate workbook")

// ReportService spreadsheet exports
type ReportService interface {
	// PayrollWorkbook renders the payroll report as .xlsx with a suggested filename.
	PayrollWorkbook(ctx context.Context, req *dto.PayrollRequest) (*bytes.Buffer, string, error)
}

type reportService struct {
	stats  StatsService
	logger *zap.Logger
}

// NewReportService creates a ReportService on top of the payroll report.
func NewReportService(stats StatsService, logger *zap.Logger) ReportService {
	return &reportService{stats: stats, logger: logger}
}

// Layout: one sheet, a title row, then per employee a name row, one row per
// shift and a total row, separated by a blank row.
func (s *reportService) PayrollWorkbook(ctx context.Context, req *dto.PayrollRequest) (*bytes.Buffer, string, error) {
	report, err := s.stats.PayrollReport(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payroll"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", s.fail(err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "F", 12)

	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Payroll %s .. %s", report.From, report.To))
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellStyle(sheet, "A1", "A1", boldStyle)

	header := []string{"Date", "Client", "Start", "End", "Hours", "Payout"}
	row := 2
	for i, h := range header {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell("F", row), headerStyle)
	row++

	var grand float64
	for _, emp := range report.Employees {
		f.SetCellValue(sheet, cell("A", row), emp.FullName)
		f.MergeCell(sheet, cell("A", row), cell("F", row))
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), boldStyle)
		row++

		for _, sh := range emp.Shifts {
			f.SetCellValue(sheet, cell("A", row), model.DatePart(sh.Date))
			f.SetCellValue(sheet, cell("B", row), sh.Client)
			f.SetCellValue(sheet, cell("C", row), sh.Start)
			f.SetCellValue(sheet, cell("D", row), sh.End)
			f.SetCellValue(sheet, cell("E", row), sh.Hours)
			f.SetCellValue(sheet, cell("F", row), sh.Payout)
			row++
		}

		f.SetCellValue(sheet, cell("E", row), "Total")
		f.SetCellValue(sheet, cell("F", row), emp.TotalPayout)
		f.SetCellStyle(sheet, cell("E", row), cell("F", row), boldStyle)
		grand += emp.TotalPayout
		row += 2
	}

	f.SetCellValue(sheet, cell("E", row), "Grand total")
	f.SetCellValue(sheet, cell("F", row), grand)
	f.SetCellStyle(sheet, cell("E", row), cell("F", row), boldStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", s.fail(err)
	}

	return buf, fmt.Sprintf("payroll_%s_%s.xlsx", report.From, report.To), nil
}

func (s *reportService) fail(err error) error {
	s.logger.Error("failed to write workbook", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrReportGenerateFail, err)
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
