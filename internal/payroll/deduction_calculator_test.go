package payroll_test

import (
	"testing"

	"go-payroll/internal/employee"
	"go-payroll/internal/payroll"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTax_ProgressiveBrackets(t *testing.T) {
	tests := []struct {
		gross string
		want  string
	}{
		{"0", "0.00"},
		{"999.99", "0.00"},
		{"1000", "0.00"},
		{"1500", "50.00"},
		{"3000", "200.00"},
		{"4000", "350.00"},
		{"5000", "500.00"},
		{"10000", "1500.00"},
		{"12000", "2000.00"},
		{"1000.05", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.gross, func(t *testing.T) {
			tax, _ := payroll.CalculateTax(d(tt.gross))
			assert.Equal(t, tt.want, tax.StringFixed(2))
		})
	}
}

func TestCalculateTax_LinesForScenario(t *testing.T) {
	tax, lines := payroll.CalculateTax(d("4000"))

	assert.Equal(t, "350.00", tax.StringFixed(2))
	require.Len(t, lines, 3)
	assert.True(t, lines[0].Tax.IsZero())
	assert.Equal(t, "200.00", lines[1].Tax.StringFixed(2))
	assert.Equal(t, "150.00", lines[2].Tax.StringFixed(2))
	assert.Equal(t, "1000", lines[2].Taxable.String())
}

func TestCalculateTax_Monotonic(t *testing.T) {
	prev := decimal.Zero
	for gross := decimal.Zero; gross.LessThanOrEqual(d("15000")); gross = gross.Add(d("37.37")) {
		tax, _ := payroll.CalculateTax(gross)
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax dropped at gross %s", gross)
		prev = tax
	}
}

func TestCalculateDeductions(t *testing.T) {
	res := payroll.CalculateDeductions(d("4000"), employee.Deductions{
		LoanRepayment: d("200"),
		Parking:       d("25"),
	})

	assert.Equal(t, "350.00", res.TaxDeductions.StringFixed(2))
	assert.Equal(t, "200.00", res.InsuranceDeductions.StringFixed(2))
	assert.Equal(t, "320.00", res.RetirementDeductions.StringFixed(2))
	assert.True(t, res.OtherDeductions.Uniform.IsZero())
	assert.Equal(t, "225.00", res.OtherDeductions.Total.StringFixed(2))
	assert.Equal(t, "1095.00", res.TotalDeductions.StringFixed(2))
}

func TestCalculateDeductions_RoundsPercentages(t *testing.T) {
	res := payroll.CalculateDeductions(d("1234.57"), employee.Deductions{})

	assert.Equal(t, "61.73", res.InsuranceDeductions.StringFixed(2))
	assert.Equal(t, "98.77", res.RetirementDeductions.StringFixed(2))
	want := res.TaxDeductions.Add(res.InsuranceDeductions).Add(res.RetirementDeductions)
	assert.True(t, res.TotalDeductions.Equal(want))
}
