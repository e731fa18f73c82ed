package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	apperrors "worklog/internal/errors"
	"worklog/internal/logger"
	"worklog/internal/policy"
)

const exportSheet = "Reports"

var exportHeader = []string{"Employee Code", "Employee Name", "Type", "Period Start", "Period End", "Status", "Submitted On"}

// Export renders the reports visible to actor as an xlsx workbook: one row
// per report, one column per project code, then a total column.
func (s *reportService) Export(ctx context.Context, actor Actor, filter ReportFilter) (*bytes.Buffer, string, error) {
	repoFilter, err := s.scopedFilter(ctx, actor, policy.ReportExport, filter)
	if err != nil {
		return nil, "", err
	}
	reports, err := s.store.Reports().Find(ctx, repoFilter)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	details, err := s.details(ctx, reports)
	if err != nil {
		return nil, "", err
	}

	buf, err := buildReportWorkbook(details)
	if err != nil {
		logger.Get().Errorw("failed to build report workbook", "error", err, "reports", len(details))
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf, exportFilename(filter), nil
}

func buildReportWorkbook(details []ReportDetail) (*bytes.Buffer, error) {
	codeSet := map[string]struct{}{}
	for _, d := range details {
		for code := range d.WeeklyHours {
			codeSet[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := append(append([]string{}, exportHeader...), codes...)
	header = append(header, "Total")
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headerRow); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(exportSheet, "A", "B", 20)
	_ = f.SetColWidth(exportSheet, "C", "G", 14)

	for i, d := range details {
		submittedOn := ""
		if d.ReportDate != nil {
			submittedOn = d.ReportDate.String()
		}
		row := []any{
			d.EmployeeCode,
			d.EmployeeName,
			string(d.ReportType),
			d.WeekStartDate.String(),
			d.WeekEndDate.String(),
			string(d.Status),
			submittedOn,
		}
		for _, code := range codes {
			if h, ok := d.WeeklyHours[code]; ok {
				row = append(row, h.Float64())
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, d.WeeklyHours.Total().Float64())

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func exportFilename(filter ReportFilter) string {
	switch {
	case filter.WeekStartDate != nil && filter.WeekEndDate != nil:
		return fmt.Sprintf("reports_%s_%s.xlsx", filter.WeekStartDate, filter.WeekEndDate)
	case filter.WeekStartDate != nil:
		return fmt.Sprintf("reports_from_%s.xlsx", filter.WeekStartDate)
	default:
		return "reports.xlsx"
	}
}
