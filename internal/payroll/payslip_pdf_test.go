package payroll_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-payroll/internal/employee"
	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	got := payroll.AmountInWords(d("4905.45"), "USD")

	assert.True(t, strings.HasPrefix(got, "Four Thousand Nine Hundred"), got)
	assert.True(t, strings.HasSuffix(got, "USD And 45/100"), got)
	assert.Equal(t, "Zero And 00/100", payroll.AmountInWords(d("0"), ""))
}

func TestRenderPayslipPDF(t *testing.T) {
	period := periodWithStatus(uuid.NewString(), uuid.NewString(), payroll.StatusApproved)
	slip := payroll.Payslip{
		ID:              uuid.New(),
		PayrollPeriodID: period.ID,
		EmployeeID:      uuid.New(),
		EmployeeNumber:  "E001",
		EmployeeName:    "Jane Doe",
		BasicSalary:     d("6000"),
		GrossPay:        d("6519.63"),
		TotalDeductions: d("1000"),
		NetPay:          d("5519.63"),
		PaymentMethod:   employee.PaymentMethodBankTransfer,
		Status:          payroll.PayslipStatusApproved,
		Metadata:        payroll.CalculationSnapshot{Currency: "USD"},
	}

	content, err := payroll.RenderPayslipPDF(*period, slip)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestPayrollService_RenderPayslip(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	period := periodWithStatus(companyID, uuid.NewString(), payroll.StatusApproved)

	newSlip := func(status string) *payroll.Payslip {
		return &payroll.Payslip{
			ID:              uuid.New(),
			PayrollPeriodID: period.ID,
			EmployeeID:      uuid.New(),
			EmployeeNumber:  "E001",
			EmployeeName:    "Jane Doe",
			NetPay:          d("100"),
			PaymentMethod:   employee.PaymentMethodCash,
			Status:          status,
		}
	}

	t.Run("approved payslip is stored and stamped", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		dir := t.TempDir()
		deps.service = payroll.NewService(payroll.Dependencies{
			DB:      deps.db,
			Repo:    deps.repo,
			Storage: payroll.StorageConfig{Dir: dir, PublicBaseURL: "https://files.example.com/payslips/"},
		})

		slip := newSlip(payroll.PayslipStatusApproved)
		deps.repo.findPayslipFn = func(ctx context.Context, cid, id string) (*payroll.Payslip, error) {
			return slip, nil
		}
		deps.repo.findPeriodFn = func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
			return period, nil
		}
		stamped := false
		deps.repo.updatePayslipDocumentFn = func(ctx context.Context, p *payroll.Payslip) error {
			stamped = true
			assert.NotNil(t, p.PayslipGeneratedAt)
			return nil
		}

		resp, err := deps.service.RenderPayslip(ctx, companyID, slip.ID.String())

		require.NoError(t, err)
		assert.True(t, stamped)
		name := "payslip_" + slip.ID.String() + ".pdf"
		require.NotNil(t, resp.PayslipURL)
		assert.Equal(t, "https://files.example.com/payslips/"+name, *resp.PayslipURL)

		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	})

	t.Run("generated payslip is rejected", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		slip := newSlip(payroll.PayslipStatusGenerated)
		deps.repo.findPayslipFn = func(ctx context.Context, cid, id string) (*payroll.Payslip, error) {
			return slip, nil
		}
		deps.repo.findPeriodFn = func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
			return period, nil
		}

		_, err := deps.service.RenderPayslip(ctx, companyID, slip.ID.String())

		assert.ErrorIs(t, err, payrollerrors.ErrPayslipNotApproved)
	})

	t.Run("period render skips generated payslips", func(t *testing.T) {
		deps := setupPayrollServiceTest(t)
		defer deps.db.Close()

		deps.repo.findPeriodFn = func(ctx context.Context, cid, id string) (*payroll.PayrollPeriod, error) {
			return period, nil
		}
		deps.repo.listPayslipsFn = func(ctx context.Context, cid, pid string, status *string) ([]payroll.Payslip, error) {
			return []payroll.Payslip{
				*newSlip(payroll.PayslipStatusApproved),
				*newSlip(payroll.PayslipStatusGenerated),
				*newSlip(payroll.PayslipStatusPaid),
			}, nil
		}

		rendered, err := deps.service.RenderPeriodPayslips(ctx, companyID, period.ID.String())

		require.NoError(t, err)
		assert.Equal(t, 2, rendered)
	})
}
