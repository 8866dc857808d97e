package payroll

import (
	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/shared/money"

	"github.com/shopspring/decimal"
)

var (
	// 5 workdays x 8 hours x 4.33 weeks. Kept exact for numeric compatibility
	// with payslips already issued.
	monthlyWorkHours   = decimal.NewFromInt(5 * attendance.StandardWorkHours).Mul(decimal.RequireFromString("4.33"))
	overtimeMultiplier = decimal.RequireFromString("1.5")
)

type SalaryInput struct {
	BaseSalary  decimal.Decimal
	Attendance  attendance.Summary
	Allowances  employee.Allowances
	Bonuses     decimal.Decimal
	Commissions decimal.Decimal
}

type SalaryResult struct {
	BasicSalary          decimal.Decimal
	HourlyRate           decimal.Decimal
	OvertimeRate         decimal.Decimal
	OvertimePay          decimal.Decimal
	Allowances           AllowanceBreakdown
	Bonuses              decimal.Decimal
	Commissions          decimal.Decimal
	GrossPay             decimal.Decimal
	AttendanceAdjustment decimal.Decimal
}

// CalculateSalary derives the earnings side of a payslip. Every component
// is rounded before it is summed, so GrossPay always equals the sum of the
// stored components.
func CalculateSalary(in SalaryInput) SalaryResult {
	hourly := in.BaseSalary.Div(monthlyWorkHours)
	overtimeRate := hourly.Mul(overtimeMultiplier)
	overtimePay := money.Round(in.Attendance.OvertimeHours.Mul(overtimeRate))

	adjustment := AttendanceAdjustment(in.Attendance.AttendanceRate)
	basic := money.Round(in.BaseSalary.Mul(adjustment))

	allowances := BuildAllowances(in.Allowances)
	bonuses := money.Round(in.Bonuses)
	commissions := money.Round(in.Commissions)

	return SalaryResult{
		BasicSalary:          basic,
		HourlyRate:           hourly,
		OvertimeRate:         overtimeRate,
		OvertimePay:          overtimePay,
		Allowances:           allowances,
		Bonuses:              bonuses,
		Commissions:          commissions,
		GrossPay:             money.Sum(basic, overtimePay, allowances.Total, bonuses, commissions),
		AttendanceAdjustment: adjustment,
	}
}

// AttendanceAdjustment is rate/100 clamped to [0, 1]. Duplicate attendance
// rows can push the rate past 100.
func AttendanceAdjustment(rate decimal.Decimal) decimal.Decimal {
	adj := rate.Div(money.Hundred)
	if adj.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return money.NonNegative(adj)
}

func BuildAllowances(cfg employee.Allowances) AllowanceBreakdown {
	b := AllowanceBreakdown{
		Transportation: money.Round(cfg.Transportation),
		Housing:        money.Round(cfg.Housing),
		Meal:           money.Round(cfg.Meal),
		Communication:  money.Round(cfg.Communication),
		Special:        money.Round(cfg.Special),
	}
	b.Total = money.Sum(b.Transportation, b.Housing, b.Meal, b.Communication, b.Special)
	return b
}
