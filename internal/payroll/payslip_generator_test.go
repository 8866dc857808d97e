package payroll_test

import (
	"testing"

	"go-payroll/internal/employee"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayslip(t *testing.T) {
	companyID := uuid.New()
	period := periodWithStatus(companyID.String(), uuid.NewString(), payroll.StatusDraft)
	emp := testEmployee(companyID, "E001", "4000")
	emp.Deductions = employee.Deductions{Parking: d("25")}

	slip, warnings := payroll.BuildPayslip(*period, emp, fullAttendance("0"), clock.Fixed(fixedNow))

	assert.Empty(t, warnings)
	assert.Equal(t, payroll.PayslipStatusGenerated, slip.Status)
	assert.Equal(t, period.ID, slip.PayrollPeriodID)
	assert.Equal(t, "Engineering", slip.Department)
	assert.Equal(t, "4000.00", slip.GrossPay.StringFixed(2))
	assert.Equal(t, "350.00", slip.TaxDeductions.StringFixed(2))
	assert.Equal(t, "895.00", slip.TotalDeductions.StringFixed(2))
	assert.True(t, slip.NetPay.Equal(slip.GrossPay.Sub(slip.TotalDeductions)))
	assert.True(t, slip.GeneratedAt.Equal(fixedNow))
	require.NotNil(t, slip.BankAccount)
	assert.Equal(t, "USD", slip.Metadata.Currency)
	assert.Len(t, slip.Metadata.TaxLines, 3)
}

func TestBuildPayslip_IncompleteEmployee(t *testing.T) {
	companyID := uuid.New()
	period := periodWithStatus(companyID.String(), uuid.NewString(), payroll.StatusDraft)
	emp := testEmployee(companyID, "E002", "3000")
	emp.Department = nil
	emp.Position = nil
	emp.BankAccount = nil

	slip, warnings := payroll.BuildPayslip(*period, emp, fullAttendance("0"), clock.Fixed(fixedNow))

	require.Len(t, warnings, 2)
	assert.Equal(t, emp.ID.String(), warnings[0].EmployeeID)
	assert.Empty(t, slip.Department)
	assert.Empty(t, slip.Position)
	assert.Nil(t, slip.BankAccount)
	assert.Len(t, slip.Metadata.Warnings, 2)
}
