package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary       = "Summary"
	sheetByDepartment  = "By Department"
	sheetByMethod      = "By Payment Method"
	sheetDeductions    = "Deductions"
	xlsxDefaultSheet   = "Sheet1"
	xlsxMoneyNumFmtStr = "#,##0.00"
)

func (s *service) ExportReport(ctx context.Context, companyID, periodID string) ([]byte, error) {
	report, err := s.GenerateReport(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	return WriteReportXLSX(report)
}

// WriteReportXLSX renders report as a workbook with one sheet per section.
func WriteReportXLSX(report PeriodReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(xlsxDefaultSheet, sheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetByDepartment, sheetByMethod, sheetDeductions} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(xlsxMoneyNumFmtStr)})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	info := report.PeriodInfo
	sum := report.Summary
	summaryRows := [][]any{
		{"Period", info.Name},
		{"Start Date", info.StartDate},
		{"End Date", info.EndDate},
		{"Pay Date", info.PayDate},
		{"Type", info.Type},
		{"Status", info.Status},
		{"Total Employees", sum.TotalEmployees},
		{"Total Gross Pay", amount(sum.TotalGrossPay)},
		{"Total Deductions", amount(sum.TotalDeductions)},
		{"Total Net Pay", amount(sum.TotalNetPay)},
		{"Average Gross Pay", amount(sum.AverageGrossPay)},
		{"Average Net Pay", amount(sum.AverageNetPay)},
	}
	if err := writeRows(f, sheetSummary, summaryRows); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", fmt.Sprintf("A%d", len(summaryRows)), headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetSummary, "B8", "B12", moneyStyle); err != nil {
		return nil, err
	}

	if err := writeGroupSheet(f, sheetByDepartment, "Department", report.ByDepartment, headerStyle, moneyStyle); err != nil {
		return nil, err
	}
	if err := writeGroupSheet(f, sheetByMethod, "Payment Method", report.ByPaymentMethod, headerStyle, moneyStyle); err != nil {
		return nil, err
	}

	d := report.DeductionBreakdown
	deductionRows := [][]any{
		{"Deduction", "Amount"},
		{"Tax", amount(d.Tax)},
		{"Insurance", amount(d.Insurance)},
		{"Retirement", amount(d.Retirement)},
		{"Loan Repayment", amount(d.LoanRepayment)},
		{"Advance Salary", amount(d.AdvanceSalary)},
		{"Uniform", amount(d.Uniform)},
		{"Parking", amount(d.Parking)},
		{"Other", amount(d.Other)},
		{"Total", amount(d.Total)},
	}
	if err := writeRows(f, sheetDeductions, deductionRows); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetDeductions, "A1", "B1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetDeductions, "B2", fmt.Sprintf("B%d", len(deductionRows)), moneyStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write report workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGroupSheet(f *excelize.File, sheet, label string, groups []GroupTotals, headerStyle, moneyStyle int) error {
	rows := [][]any{{label, "Employees", "Total Gross Pay", "Total Net Pay"}}
	for _, g := range groups {
		rows = append(rows, []any{g.Name, g.EmployeeCount, amount(g.TotalGrossPay), amount(g.TotalNetPay)})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", headerStyle); err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, "C2", fmt.Sprintf("D%d", len(rows)), moneyStyle)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// amount converts a 2 dp money value to a spreadsheet number.
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func strPtr(s string) *string {
	return &s
}
