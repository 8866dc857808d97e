package payroll_test

import (
	"context"
	"testing"

	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPayrollRepoTest(t *testing.T) (payroll.Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return payroll.NewRepository(gdb), mock
}

func TestPayrollRepository_MarkPayslipPaid(t *testing.T) {
	ctx := context.Background()
	ref := "PAY_1"
	slip := &payroll.Payslip{ID: uuid.New(), PaymentReference: &ref, PaidAt: &fixedNow}

	t.Run("updated", func(t *testing.T) {
		repo, mock := setupPayrollRepoTest(t)
		mock.ExpectExec(`UPDATE "payslips" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkPayslipPaid(ctx, slip))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no longer approved", func(t *testing.T) {
		repo, mock := setupPayrollRepoTest(t)
		mock.ExpectExec(`UPDATE "payslips" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkPayslipPaid(ctx, slip)

		assert.ErrorIs(t, err, payrollerrors.ErrPayslipPaymentStateChanged)
		assert.NotErrorIs(t, err, payrollerrors.ErrPayslipNotApproved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPayrollRepository_ReservePaymentReference(t *testing.T) {
	ctx := context.Background()
	ref := "PAY_1"
	slip := &payroll.Payslip{ID: uuid.New(), PaymentReference: &ref}

	t.Run("reserved", func(t *testing.T) {
		repo, mock := setupPayrollRepoTest(t)
		mock.ExpectExec(`UPDATE "payslips" SET .*payment_reference IS NULL`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ReservePaymentReference(ctx, slip))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already reserved", func(t *testing.T) {
		repo, mock := setupPayrollRepoTest(t)
		mock.ExpectExec(`UPDATE "payslips" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ReservePaymentReference(ctx, slip)

		assert.ErrorIs(t, err, payrollerrors.ErrPayslipPaymentStateChanged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPayrollRepository_ListPeriods_Paginates(t *testing.T) {
	repo, mock := setupPayrollRepoTest(t)
	companyID := uuid.NewString()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payroll_periods" WHERE company_id = \$1 AND status = \$2`).
		WithArgs(companyID, payroll.StatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT \* FROM "payroll_periods" WHERE company_id = \$1 AND status = \$2 ORDER BY start_date DESC LIMIT .* OFFSET`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(uuid.NewString(), "March 2024").
			AddRow(uuid.NewString(), "February 2024").
			AddRow(uuid.NewString(), "January 2024"))

	periods, total, err := repo.ListPeriods(context.Background(), companyID, payroll.PeriodFilter{
		Status:   payroll.StatusPaid,
		Page:     2,
		PageSize: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, periods, 3)
	assert.Equal(t, "March 2024", periods[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
