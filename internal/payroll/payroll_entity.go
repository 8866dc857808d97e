package payroll

import (
	"time"

	"go-payroll/internal/attendance"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusDraft     = "draft"
	StatusProcessed = "processed"
	StatusApproved  = "approved"
	StatusPaid      = "paid"
)

const (
	PayslipStatusGenerated = "generated"
	PayslipStatusApproved  = "approved"
	PayslipStatusPaid      = "paid"
)

const (
	PeriodTypeWeekly   = "weekly"
	PeriodTypeBiweekly = "biweekly"
	PeriodTypeMonthly  = "monthly"
)

// periodTransitions lists the only allowed next status for each status.
var periodTransitions = map[string]string{
	StatusDraft:     StatusProcessed,
	StatusProcessed: StatusApproved,
	StatusApproved:  StatusPaid,
}

func CanTransition(from, to string) bool {
	next, ok := periodTransitions[from]
	return ok && next == to
}

type PayrollPeriod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_period_company_status"`
	Name       string    `gorm:"type:varchar(120);not null"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	PayDate    time.Time `gorm:"type:date;not null;index"`
	Type       string    `gorm:"type:varchar(20);not null"`
	Year       int       `gorm:"not null"`
	Month      int       `gorm:"not null"`
	WeekNumber int       `gorm:"not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:draft;index:idx_period_company_status"`

	TotalEmployees  int             `gorm:"not null;default:0"`
	TotalGrossPay   decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0"`
	TotalDeductions decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0"`
	TotalNetPay     decimal.Decimal `gorm:"type:numeric(16,2);not null;default:0"`

	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	ProcessedBy *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt *time.Time
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Payslips []Payslip `gorm:"foreignKey:PayrollPeriodID"`
}

// ApplyTotals recomputes the period aggregates from its payslips.
func (p *PayrollPeriod) ApplyTotals(payslips []Payslip) {
	p.TotalEmployees = len(payslips)
	p.TotalGrossPay = decimal.Zero
	p.TotalDeductions = decimal.Zero
	p.TotalNetPay = decimal.Zero
	for _, s := range payslips {
		p.TotalGrossPay = p.TotalGrossPay.Add(s.GrossPay)
		p.TotalDeductions = p.TotalDeductions.Add(s.TotalDeductions)
		p.TotalNetPay = p.TotalNetPay.Add(s.NetPay)
	}
}

type Payslip struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index"`
	PayrollPeriodID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslip_period_employee"`
	EmployeeID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslip_period_employee"`

	// Snapshot of the employee at generation time.
	EmployeeNumber string `gorm:"type:varchar(50);not null"`
	EmployeeName   string `gorm:"type:varchar(150);not null"`
	Department     string `gorm:"type:varchar(120);not null;default:''"`
	Position       string `gorm:"type:varchar(120);not null;default:''"`

	BasicSalary   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	OvertimeHours decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0"`
	OvertimeRate  decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0"`
	OvertimePay   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`

	Allowances  AllowanceBreakdown `gorm:"embedded;embeddedPrefix:allowance_"`
	Bonuses     decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0"`
	Commissions decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0"`
	GrossPay    decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0"`

	TaxDeductions        decimal.Decimal         `gorm:"type:numeric(14,2);not null;default:0"`
	InsuranceDeductions  decimal.Decimal         `gorm:"type:numeric(14,2);not null;default:0"`
	RetirementDeductions decimal.Decimal         `gorm:"type:numeric(14,2);not null;default:0"`
	OtherDeductions      OtherDeductionBreakdown `gorm:"embedded;embeddedPrefix:other_deduction_"`
	TotalDeductions      decimal.Decimal         `gorm:"type:numeric(14,2);not null;default:0"`
	NetPay               decimal.Decimal         `gorm:"type:numeric(14,2);not null;default:0"`

	BankAccount   *string `gorm:"type:varchar(50)"`
	PaymentMethod string  `gorm:"type:varchar(20);not null"`

	Status           string     `gorm:"type:varchar(20);not null;default:generated;index"`
	GeneratedAt      time.Time  `gorm:"not null"`
	PaidAt           *time.Time `gorm:"index"`
	PaymentReference *string    `gorm:"type:varchar(120)"`

	PayslipURL         *string
	PayslipGeneratedAt *time.Time

	Metadata CalculationSnapshot `gorm:"type:jsonb;serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type AllowanceBreakdown struct {
	Transportation decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"transportation"`
	Housing        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"housing"`
	Meal           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"meal"`
	Communication  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"communication"`
	Special        decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"special"`
	Total          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`
}

type OtherDeductionBreakdown struct {
	LoanRepayment decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"loan_repayment"`
	AdvanceSalary decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"advance_salary"`
	Uniform       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"uniform"`
	Parking       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"parking"`
	Other         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"other"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`
}

// CalculationSnapshot records the inputs and intermediate values behind a
// payslip so it can be audited after the employee record changes.
type CalculationSnapshot struct {
	Attendance           attendance.Summary `json:"attendance"`
	BaseSalary           decimal.Decimal    `json:"base_salary"`
	HourlyRate           decimal.Decimal    `json:"hourly_rate"`
	OvertimeRate         decimal.Decimal    `json:"overtime_rate"`
	AttendanceAdjustment decimal.Decimal    `json:"attendance_adjustment"`
	TaxLines             []TaxLine          `json:"tax_lines"`
	Currency             string             `json:"currency"`
	Warnings             []string           `json:"warnings,omitempty"`
}
