package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required,max=120"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	PayDate   string `json:"pay_date" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=weekly biweekly monthly"`
}

type GeneratePayslipsRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"omitempty,dive,uuid"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type PeriodFilter struct {
	Status   string `form:"status"`
	Type     string `form:"type"`
	Year     int    `form:"year"`
	Month    int    `form:"month"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// Pagination returns the page and page size with defaults applied.
func (f PeriodFilter) Pagination() (page, pageSize int) {
	page, pageSize = f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

type PeriodResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Name            string          `json:"name"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PayDate         string          `json:"pay_date"`
	Type            string          `json:"type"`
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	WeekNumber      int             `json:"week_number"`
	Status          string          `json:"status"`
	TotalEmployees  int             `json:"total_employees"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	CreatedBy       string          `json:"created_by"`
	ProcessedBy     *string         `json:"processed_by,omitempty"`
	ProcessedAt     *string         `json:"processed_at,omitempty"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ApprovedAt      *string         `json:"approved_at,omitempty"`
	PaidAt          *string         `json:"paid_at,omitempty"`
}

type PayslipResponse struct {
	ID              string `json:"id"`
	PayrollPeriodID string `json:"payroll_period_id"`
	EmployeeID      string `json:"employee_id"`
	EmployeeNumber  string `json:"employee_number"`
	EmployeeName    string `json:"employee_name"`
	Department      string `json:"department"`
	Position        string `json:"position"`

	BasicSalary   decimal.Decimal         `json:"basic_salary"`
	OvertimeHours decimal.Decimal         `json:"overtime_hours"`
	OvertimeRate  decimal.Decimal         `json:"overtime_rate"`
	OvertimePay   decimal.Decimal         `json:"overtime_pay"`
	Allowances    AllowanceBreakdown      `json:"allowances"`
	Bonuses       decimal.Decimal         `json:"bonuses"`
	Commissions   decimal.Decimal         `json:"commissions"`
	GrossPay      decimal.Decimal         `json:"gross_pay"`
	Tax           decimal.Decimal         `json:"tax_deductions"`
	Insurance     decimal.Decimal         `json:"insurance_deductions"`
	Retirement    decimal.Decimal         `json:"retirement_deductions"`
	Other         OtherDeductionBreakdown `json:"other_deductions"`
	TotalDeduct   decimal.Decimal         `json:"total_deductions"`
	NetPay        decimal.Decimal         `json:"net_pay"`

	BankAccount      *string             `json:"bank_account,omitempty"`
	PaymentMethod    string              `json:"payment_method"`
	Status           string              `json:"status"`
	GeneratedAt      string              `json:"generated_at"`
	PaidAt           *string             `json:"paid_at,omitempty"`
	PaymentReference *string             `json:"payment_reference,omitempty"`
	PayslipURL       *string             `json:"payslip_url,omitempty"`
	Metadata         CalculationSnapshot `json:"metadata"`
}

type GenerateResult struct {
	Period    PeriodResponse `json:"period"`
	Generated int            `json:"generated"`
	Warnings  []Warning      `json:"warnings"`
}

type PaymentFailure struct {
	PayslipID  string `json:"payslip_id"`
	EmployeeID string `json:"employee_id"`
	Employee   string `json:"employee"`
	Error      string `json:"error"`
	Kind       string `json:"kind"`
}

type PaymentResult struct {
	Attempted    int              `json:"attempted"`
	Successful   int              `json:"successful"`
	Failed       int              `json:"failed"`
	Errors       []PaymentFailure `json:"errors"`
	PeriodStatus string           `json:"period_status"`
}

type PeriodInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	PayDate   string `json:"pay_date"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

type ReportSummary struct {
	TotalEmployees  int             `json:"total_employees"`
	TotalGrossPay   decimal.Decimal `json:"total_gross_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	AverageGrossPay decimal.Decimal `json:"average_gross_pay"`
	AverageNetPay   decimal.Decimal `json:"average_net_pay"`
}

type GroupTotals struct {
	Name          string          `json:"name"`
	EmployeeCount int             `json:"employee_count"`
	TotalGrossPay decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay   decimal.Decimal `json:"total_net_pay"`
}

type DeductionBreakdown struct {
	Tax           decimal.Decimal `json:"tax"`
	Insurance     decimal.Decimal `json:"insurance"`
	Retirement    decimal.Decimal `json:"retirement"`
	LoanRepayment decimal.Decimal `json:"loan_repayment"`
	AdvanceSalary decimal.Decimal `json:"advance_salary"`
	Uniform       decimal.Decimal `json:"uniform"`
	Parking       decimal.Decimal `json:"parking"`
	Other         decimal.Decimal `json:"other"`
	Total         decimal.Decimal `json:"total"`
}

type PeriodReport struct {
	PeriodInfo         PeriodInfo         `json:"period_info"`
	Summary            ReportSummary      `json:"summary"`
	ByDepartment       []GroupTotals      `json:"by_department"`
	ByPaymentMethod    []GroupTotals      `json:"by_payment_method"`
	DeductionBreakdown DeductionBreakdown `json:"deduction_breakdown"`
}

func mapPeriodResponse(p PayrollPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:              p.ID.String(),
		CompanyID:       p.CompanyID.String(),
		Name:            p.Name,
		StartDate:       p.StartDate.Format(dateLayout),
		EndDate:         p.EndDate.Format(dateLayout),
		PayDate:         p.PayDate.Format(dateLayout),
		Type:            p.Type,
		Year:            p.Year,
		Month:           p.Month,
		WeekNumber:      p.WeekNumber,
		Status:          p.Status,
		TotalEmployees:  p.TotalEmployees,
		TotalGrossPay:   p.TotalGrossPay,
		TotalDeductions: p.TotalDeductions,
		TotalNetPay:     p.TotalNetPay,
		CreatedBy:       p.CreatedBy.String(),
		ProcessedAt:     formatTime(p.ProcessedAt),
		ApprovedAt:      formatTime(p.ApprovedAt),
		PaidAt:          formatTime(p.PaidAt),
	}
	if p.ProcessedBy != nil {
		v := p.ProcessedBy.String()
		resp.ProcessedBy = &v
	}
	if p.ApprovedBy != nil {
		v := p.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	return resp
}

func mapPeriodListResponse(periods []PayrollPeriod) []PeriodResponse {
	resp := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		resp[i] = mapPeriodResponse(p)
	}
	return resp
}

func mapPayslipResponse(s Payslip) PayslipResponse {
	return PayslipResponse{
		ID:               s.ID.String(),
		PayrollPeriodID:  s.PayrollPeriodID.String(),
		EmployeeID:       s.EmployeeID.String(),
		EmployeeNumber:   s.EmployeeNumber,
		EmployeeName:     s.EmployeeName,
		Department:       s.Department,
		Position:         s.Position,
		BasicSalary:      s.BasicSalary,
		OvertimeHours:    s.OvertimeHours,
		OvertimeRate:     s.OvertimeRate,
		OvertimePay:      s.OvertimePay,
		Allowances:       s.Allowances,
		Bonuses:          s.Bonuses,
		Commissions:      s.Commissions,
		GrossPay:         s.GrossPay,
		Tax:              s.TaxDeductions,
		Insurance:        s.InsuranceDeductions,
		Retirement:       s.RetirementDeductions,
		Other:            s.OtherDeductions,
		TotalDeduct:      s.TotalDeductions,
		NetPay:           s.NetPay,
		BankAccount:      s.BankAccount,
		PaymentMethod:    s.PaymentMethod,
		Status:           s.Status,
		GeneratedAt:      s.GeneratedAt.Format(time.RFC3339),
		PaidAt:           formatTime(s.PaidAt),
		PaymentReference: s.PaymentReference,
		PayslipURL:       s.PayslipURL,
		Metadata:         s.Metadata,
	}
}

func mapPayslipListResponse(payslips []Payslip) []PayslipResponse {
	resp := make([]PayslipResponse, len(payslips))
	for i, s := range payslips {
		resp[i] = mapPayslipResponse(s)
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
