package payroll_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/payroll/mock"
	"go-payroll/internal/shared/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)

func testPaymentConfig() payroll.PaymentConfig {
	return payroll.PaymentConfig{Timeout: time.Second, MaxRetries: 3, Backoff: time.Millisecond}
}

func newDispatcher(gw payroll.PaymentGateway) *payroll.PaymentDispatcher {
	return payroll.NewPaymentDispatcher(gw, testPaymentConfig(), clock.Fixed(fixedNow), zap.NewNop())
}

func approvedSlip(method string, account *string) payroll.Payslip {
	return payroll.Payslip{
		ID:              uuid.New(),
		PayrollPeriodID: uuid.New(),
		EmployeeID:      uuid.New(),
		EmployeeName:    "Jane Doe",
		NetPay:          d("4905.00"),
		PaymentMethod:   method,
		BankAccount:     account,
		Status:          payroll.PayslipStatusApproved,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestDispatch_BankTransferSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	slip := approvedSlip(employee.PaymentMethodBankTransfer, strPtr("123-456"))
	wantRef := fmt.Sprintf("PAY_%s_%s_%d", slip.PayrollPeriodID, slip.EmployeeID, fixedNow.Unix())

	gw.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in payroll.PaymentInstruction) error {
			assert.Equal(t, wantRef, in.Reference)
			assert.Equal(t, "123-456", in.BankAccount)
			assert.True(t, in.Amount.Equal(d("4905")))
			return nil
		})

	ref, err := newDispatcher(gw).Dispatch(context.Background(), slip)

	require.NoError(t, err)
	assert.Equal(t, wantRef, ref)
}

func TestDispatch_BankTransferWithoutAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	_, err := newDispatcher(gw).Dispatch(context.Background(), approvedSlip(employee.PaymentMethodBankTransfer, strPtr("")))

	var pe *payroll.PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, payroll.PaymentErrorMissingData, pe.Kind)
	assert.ErrorIs(t, err, payrollerrors.ErrBankAccountMissing)
	assert.Equal(t, "Bank account information missing", err.Error())
}

func TestDispatch_CashAndChequeSkipGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)
	dispatcher := newDispatcher(gw)

	for _, method := range []string{employee.PaymentMethodCash, employee.PaymentMethodCheque} {
		ref, err := dispatcher.Dispatch(context.Background(), approvedSlip(method, nil))
		require.NoError(t, err)
		assert.Contains(t, ref, "PAY_")
	}
}

func TestDispatch_UnknownMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	_, err := newDispatcher(gw).Dispatch(context.Background(), approvedSlip("crypto", nil))

	var pe *payroll.PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, payroll.PaymentErrorConfiguration, pe.Kind)
	assert.ErrorIs(t, err, payrollerrors.ErrUnknownPaymentMethod)
	assert.Contains(t, err.Error(), "crypto")
}

func TestDispatch_RetriesUnavailableGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	gomock.InOrder(
		gw.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(payrollerrors.ErrPaymentGatewayUnavailable),
		gw.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded),
		gw.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := newDispatcher(gw).Dispatch(context.Background(), approvedSlip(employee.PaymentMethodDigitalWallet, nil))

	require.NoError(t, err)
}

func TestDispatch_GivesUpAfterMaxRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	gw.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		Return(payrollerrors.ErrPaymentGatewayUnavailable).
		Times(3)

	_, err := newDispatcher(gw).Dispatch(context.Background(), approvedSlip(employee.PaymentMethodBankTransfer, strPtr("123")))

	var pe *payroll.PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, payroll.PaymentErrorGateway, pe.Kind)
	assert.ErrorIs(t, err, payrollerrors.ErrPaymentGatewayUnavailable)
}

func TestDispatch_DoesNotRetryRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	rejected := errors.New("account closed")
	gw.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		Return(rejected).
		Times(1)

	_, err := newDispatcher(gw).Dispatch(context.Background(), approvedSlip(employee.PaymentMethodBankTransfer, strPtr("123")))

	assert.ErrorIs(t, err, rejected)
}

func TestDispatch_ReusesStoredReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockPaymentGateway(ctrl)

	slip := approvedSlip(employee.PaymentMethodDigitalWallet, nil)
	slip.PaymentReference = strPtr("PAY_earlier_run")

	gw.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in payroll.PaymentInstruction) error {
			assert.Equal(t, "PAY_earlier_run", in.Reference)
			return nil
		})

	ref, err := newDispatcher(gw).Dispatch(context.Background(), slip)

	require.NoError(t, err)
	assert.Equal(t, "PAY_earlier_run", ref)
}

func TestLoggingGateway_SettlesReferenceOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gw := payroll.NewLoggingGateway(zap.New(core))
	in := payroll.PaymentInstruction{Reference: "PAY_1", Amount: d("10")}

	require.NoError(t, gw.Transfer(context.Background(), in))
	require.NoError(t, gw.Transfer(context.Background(), in))

	assert.Equal(t, 1, logs.FilterMessage("payment instruction accepted").Len())
	assert.Equal(t, 1, logs.FilterMessage("payment instruction already settled").Len())
}
