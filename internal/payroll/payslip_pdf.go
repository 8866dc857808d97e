package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/divan/num2words"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func payslipFileName(id uuid.UUID) string {
	return fmt.Sprintf("payslip_%s.pdf", id)
}

// RenderPayslip writes the PDF of an approved or paid payslip to storage
// and stamps its URL.
func (s *service) RenderPayslip(ctx context.Context, companyID, payslipID string) (PayslipResponse, error) {
	if _, err := uuid.Parse(payslipID); err != nil {
		return PayslipResponse{}, payrollerrors.ErrPayslipNotFound
	}

	slip, err := s.repo.FindPayslip(ctx, companyID, payslipID)
	if err != nil {
		return PayslipResponse{}, err
	}
	period, err := s.repo.FindPeriod(ctx, companyID, slip.PayrollPeriodID.String())
	if err != nil {
		return PayslipResponse{}, err
	}

	if err := s.renderAndStore(ctx, *period, slip); err != nil {
		return PayslipResponse{}, err
	}
	return mapPayslipResponse(*slip), nil
}

// RenderPeriodPayslips renders every approved or paid payslip of a period.
// One failing payslip does not stop the others.
func (s *service) RenderPeriodPayslips(ctx context.Context, companyID, periodID string) (int, error) {
	period, err := s.repo.FindPeriod(ctx, companyID, periodID)
	if err != nil {
		return 0, err
	}
	payslips, err := s.repo.ListPayslips(ctx, companyID, periodID, nil)
	if err != nil {
		return 0, err
	}

	rendered := 0
	var errs []error
	for i := range payslips {
		slip := &payslips[i]
		if slip.Status == PayslipStatusGenerated {
			continue
		}
		if err := s.renderAndStore(ctx, *period, slip); err != nil {
			s.log(ctx).Warn("render payslip failed",
				zap.String("period_id", periodID),
				zap.String("payslip_id", slip.ID.String()),
				zap.String("employee_id", slip.EmployeeID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("payslip %s: %w", slip.ID, err))
			continue
		}
		rendered++
	}
	return rendered, errors.Join(errs...)
}

func (s *service) renderAndStore(ctx context.Context, period PayrollPeriod, slip *Payslip) error {
	if slip.Status != PayslipStatusApproved && slip.Status != PayslipStatusPaid {
		return payrollerrors.ErrPayslipNotApproved
	}

	content, err := RenderPayslipPDF(period, *slip)
	if err != nil {
		return err
	}

	dir := s.storage.Dir
	if dir == "" {
		dir = filepath.Join("storage", "payslips")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create payslip storage: %w", err)
	}

	name := payslipFileName(slip.ID)
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return fmt.Errorf("write payslip pdf: %w", err)
	}

	url := name
	if base := strings.TrimRight(s.storage.PublicBaseURL, "/"); base != "" {
		url = base + "/" + name
	}
	now := s.clock.Now()
	slip.PayslipURL = &url
	slip.PayslipGeneratedAt = &now

	if err := s.repo.UpdatePayslipDocument(ctx, slip); err != nil {
		return fmt.Errorf("stamp payslip document: %w", err)
	}
	return nil
}

// RenderPayslipPDF lays out the snapshot, the earnings and deductions and
// the net pay in figures and words.
func RenderPayslipPDF(period PayrollPeriod, slip Payslip) ([]byte, error) {
	currency := slip.Metadata.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", slip.EmployeeNumber, period.Name), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		fmt.Sprintf("Period: %s (%s to %s)", period.Name, period.StartDate.Format(dateLayout), period.EndDate.Format(dateLayout)),
		fmt.Sprintf("Pay date: %s", period.PayDate.Format(dateLayout)),
		fmt.Sprintf("Employee: %s (%s)", slip.EmployeeName, slip.EmployeeNumber),
		fmt.Sprintf("Department: %s", orDash(slip.Department)),
		fmt.Sprintf("Position: %s", orDash(slip.Position)),
		fmt.Sprintf("Payment method: %s", slip.PaymentMethod),
	} {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	section := func(title string, rows [][2]string, total [2]string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, r := range rows {
			pdf.CellFormat(120, 7, r[0], "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, r[1], "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(120, 8, total[0], "T", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, total[1], "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	a := slip.Allowances
	section("Earnings", [][2]string{
		{"Basic salary", formatAmount(slip.BasicSalary, currency)},
		{fmt.Sprintf("Overtime (%s h)", slip.OvertimeHours.StringFixed(2)), formatAmount(slip.OvertimePay, currency)},
		{"Transportation allowance", formatAmount(a.Transportation, currency)},
		{"Housing allowance", formatAmount(a.Housing, currency)},
		{"Meal allowance", formatAmount(a.Meal, currency)},
		{"Communication allowance", formatAmount(a.Communication, currency)},
		{"Special allowance", formatAmount(a.Special, currency)},
		{"Bonuses", formatAmount(slip.Bonuses, currency)},
		{"Commissions", formatAmount(slip.Commissions, currency)},
	}, [2]string{"Gross pay", formatAmount(slip.GrossPay, currency)})

	o := slip.OtherDeductions
	section("Deductions", [][2]string{
		{"Income tax", formatAmount(slip.TaxDeductions, currency)},
		{"Insurance", formatAmount(slip.InsuranceDeductions, currency)},
		{"Retirement", formatAmount(slip.RetirementDeductions, currency)},
		{"Loan repayment", formatAmount(o.LoanRepayment, currency)},
		{"Advance salary", formatAmount(o.AdvanceSalary, currency)},
		{"Uniform", formatAmount(o.Uniform, currency)},
		{"Parking", formatAmount(o.Parking, currency)},
		{"Other", formatAmount(o.Other, currency)},
	}, [2]string{"Total deductions", formatAmount(slip.TotalDeductions, currency)})

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(120, 10, "Net pay", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 10, formatAmount(slip.NetPay, currency), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, AmountInWords(slip.NetPay, currency), "", "L", false)

	if slip.PaymentReference != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(0, 6, "Payment reference: "+*slip.PaymentReference)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// AmountInWords spells the whole part and keeps cents as a fraction, e.g.
// "Five Thousand Two Hundred And Thirty-Seven USD And 45/100".
func AmountInWords(d decimal.Decimal, currency string) string {
	d = d.Round(2)
	whole := d.Truncate(0)
	cents := d.Sub(whole).Mul(decimal.NewFromInt(100)).Abs().IntPart()

	words := num2words.ConvertAnd(int(whole.IntPart()))
	words = cases.Title(language.English).String(words)
	if currency != "" {
		words += " " + currency
	}
	return fmt.Sprintf("%s And %02d/100", words, cents)
}

func formatAmount(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(2)
	}
	return d.StringFixed(2) + " " + currency
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
