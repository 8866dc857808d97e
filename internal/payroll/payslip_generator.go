package payroll

import (
	"context"
	"fmt"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/clock"

	"github.com/google/uuid"
)

// Warning reports an incomplete employee record. The payslip is still
// generated with blank snapshot fields.
type Warning struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Message      string `json:"message"`
}

// BuildPayslip computes the payslip of one employee for one period. It
// performs no I/O.
func BuildPayslip(period PayrollPeriod, emp employee.Employee, summary attendance.Summary, c clock.Clock) (Payslip, []Warning) {
	salary := CalculateSalary(SalaryInput{
		BaseSalary:  emp.BaseSalary,
		Attendance:  summary,
		Allowances:  emp.Allowances,
		Bonuses:     emp.Bonuses,
		Commissions: emp.Commissions,
	})
	deductions := CalculateDeductions(salary.GrossPay, emp.Deductions)

	var warnings []Warning
	if emp.Department == nil {
		warnings = append(warnings, Warning{EmployeeID: emp.ID.String(), EmployeeName: emp.FullName, Message: "employee has no department"})
	}
	if emp.Position == nil {
		warnings = append(warnings, Warning{EmployeeID: emp.ID.String(), EmployeeName: emp.FullName, Message: "employee has no position"})
	}

	snapshot := CalculationSnapshot{
		Attendance:           summary.Rounded(),
		BaseSalary:           emp.BaseSalary,
		HourlyRate:           salary.HourlyRate.Round(4),
		OvertimeRate:         salary.OvertimeRate.Round(4),
		AttendanceAdjustment: salary.AttendanceAdjustment,
		TaxLines:             deductions.TaxLines,
		Currency:             emp.SalaryCurrency,
	}
	for _, w := range warnings {
		snapshot.Warnings = append(snapshot.Warnings, w.Message)
	}

	var bankAccount *string
	if emp.HasBankAccount() {
		acct := *emp.BankAccount
		bankAccount = &acct
	}

	return Payslip{
		ID:                   uuid.New(),
		CompanyID:            period.CompanyID,
		PayrollPeriodID:      period.ID,
		EmployeeID:           emp.ID,
		EmployeeNumber:       emp.EmployeeNumber,
		EmployeeName:         emp.FullName,
		Department:           emp.DepartmentName(),
		Position:             emp.PositionName(),
		BasicSalary:          salary.BasicSalary,
		OvertimeHours:        summary.OvertimeHours,
		OvertimeRate:         salary.OvertimeRate.Round(4),
		OvertimePay:          salary.OvertimePay,
		Allowances:           salary.Allowances,
		Bonuses:              salary.Bonuses,
		Commissions:          salary.Commissions,
		GrossPay:             salary.GrossPay,
		TaxDeductions:        deductions.TaxDeductions,
		InsuranceDeductions:  deductions.InsuranceDeductions,
		RetirementDeductions: deductions.RetirementDeductions,
		OtherDeductions:      deductions.OtherDeductions,
		TotalDeductions:      deductions.TotalDeductions,
		NetPay:               salary.GrossPay.Sub(deductions.TotalDeductions),
		BankAccount:          bankAccount,
		PaymentMethod:        emp.PaymentMethod,
		Status:               PayslipStatusGenerated,
		GeneratedAt:          c.Now(),
		Metadata:             snapshot,
	}, warnings
}

type payslipGenerator struct {
	clock clock.Clock
}

// Generate builds and persists the payslip through repo, which is expected
// to be bound to the caller's transaction. A second payslip for the same
// (period, employee) pair is rejected.
func (g payslipGenerator) Generate(
	ctx context.Context,
	repo Repository,
	period PayrollPeriod,
	emp employee.Employee,
	summary attendance.Summary,
) (Payslip, []Warning, error) {
	exists, err := repo.PayslipExists(ctx, period.ID.String(), emp.ID.String())
	if err != nil {
		return Payslip{}, nil, fmt.Errorf("check existing payslip: %w", err)
	}
	if exists {
		return Payslip{}, nil, payrollerrors.ErrPayslipAlreadyGenerated
	}

	slip, warnings := BuildPayslip(period, emp, summary, g.clock)
	if err := repo.CreatePayslip(ctx, &slip); err != nil {
		return Payslip{}, nil, err
	}
	return slip, warnings, nil
}
