package payroll

import (
	"go-payroll/internal/employee"
	"go-payroll/internal/shared/money"

	"github.com/shopspring/decimal"
)

type TaxBracket struct {
	Lower decimal.Decimal
	// Upper is nil for the open top bracket.
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// TaxLine is the tax charged inside one bracket.
type TaxLine struct {
	Lower   decimal.Decimal  `json:"lower"`
	Upper   *decimal.Decimal `json:"upper,omitempty"`
	Rate    decimal.Decimal  `json:"rate"`
	Taxable decimal.Decimal  `json:"taxable"`
	Tax     decimal.Decimal  `json:"tax"`
}

var (
	insuranceRate  = decimal.NewFromInt(5)
	retirementRate = decimal.NewFromInt(8)
)

// TaxBrackets are marginal bands on gross pay.
var TaxBrackets = []TaxBracket{
	bracket(0, 1000, "0"),
	bracket(1000, 3000, "0.10"),
	bracket(3000, 5000, "0.15"),
	bracket(5000, 10000, "0.20"),
	{Lower: decimal.NewFromInt(10000), Rate: decimal.RequireFromString("0.25")},
}

func bracket(lower, upper int64, rate string) TaxBracket {
	u := decimal.NewFromInt(upper)
	return TaxBracket{Lower: decimal.NewFromInt(lower), Upper: &u, Rate: decimal.RequireFromString(rate)}
}

type DeductionResult struct {
	TaxDeductions        decimal.Decimal
	InsuranceDeductions  decimal.Decimal
	RetirementDeductions decimal.Decimal
	OtherDeductions      OtherDeductionBreakdown
	TotalDeductions      decimal.Decimal
	TaxLines             []TaxLine
}

func CalculateDeductions(gross decimal.Decimal, cfg employee.Deductions) DeductionResult {
	tax, lines := CalculateTax(gross)
	insurance := money.Percent(gross, insuranceRate)
	retirement := money.Percent(gross, retirementRate)
	other := BuildOtherDeductions(cfg)

	return DeductionResult{
		TaxDeductions:        tax,
		InsuranceDeductions:  insurance,
		RetirementDeductions: retirement,
		OtherDeductions:      other,
		TotalDeductions:      money.Sum(tax, insurance, retirement, other.Total),
		TaxLines:             lines,
	}
}

// CalculateTax applies TaxBrackets to gross and returns the tax rounded to
// 2 decimals along with the per-bracket lines that produced it.
func CalculateTax(gross decimal.Decimal) (decimal.Decimal, []TaxLine) {
	gross = money.NonNegative(gross)
	total := decimal.Zero
	lines := make([]TaxLine, 0, len(TaxBrackets))

	for _, b := range TaxBrackets {
		if !gross.GreaterThan(b.Lower) {
			break
		}
		top := gross
		if b.Upper != nil && b.Upper.LessThan(gross) {
			top = *b.Upper
		}
		taxable := top.Sub(b.Lower)
		tax := taxable.Mul(b.Rate)
		total = total.Add(tax)
		lines = append(lines, TaxLine{
			Lower:   b.Lower,
			Upper:   b.Upper,
			Rate:    b.Rate,
			Taxable: taxable,
			Tax:     money.Round(tax),
		})
	}

	return money.Round(total), lines
}

func BuildOtherDeductions(cfg employee.Deductions) OtherDeductionBreakdown {
	b := OtherDeductionBreakdown{
		LoanRepayment: money.Round(cfg.LoanRepayment),
		AdvanceSalary: money.Round(cfg.AdvanceSalary),
		Uniform:       money.Round(cfg.Uniform),
		Parking:       money.Round(cfg.Parking),
		Other:         money.Round(cfg.Other),
	}
	b.Total = money.Sum(b.LoanRepayment, b.AdvanceSalary, b.Uniform, b.Parking, b.Other)
	return b
}
