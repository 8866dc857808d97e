package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/employee"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/clock"

	"go.uber.org/zap"
)

type PaymentErrorKind string

const (
	// Unknown payment method on the payslip.
	PaymentErrorConfiguration PaymentErrorKind = "configuration"
	// Required payment data missing, e.g. bank account for a transfer.
	PaymentErrorMissingData PaymentErrorKind = "missing_data"
	// Gateway rejected or timed out after retries.
	PaymentErrorGateway PaymentErrorKind = "gateway"
	// Funds moved but the paid status could not be written. The next run
	// resends the stored reference, which the gateway treats as settled.
	PaymentErrorSettledUnrecorded PaymentErrorKind = "settled_unrecorded"
	// The payslip row could not be read or written before dispatch.
	PaymentErrorPersistence PaymentErrorKind = "persistence"
)

// PaymentError is fatal to one payslip only.
type PaymentError struct {
	Kind PaymentErrorKind
	Err  error
}

func (e *PaymentError) Error() string {
	return e.Err.Error()
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

type PaymentConfig struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
	}
}

type paymentHandler func(ctx context.Context, in PaymentInstruction) error

type PaymentDispatcher struct {
	gateway  PaymentGateway
	cfg      PaymentConfig
	clock    clock.Clock
	logger   *zap.Logger
	handlers map[string]paymentHandler
}

func NewPaymentDispatcher(gateway PaymentGateway, cfg PaymentConfig, c clock.Clock, logger *zap.Logger) *PaymentDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = clock.System()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	d := &PaymentDispatcher{
		gateway: gateway,
		cfg:     cfg,
		clock:   c,
		logger:  logger.Named("payroll.dispatcher"),
	}
	d.handlers = map[string]paymentHandler{
		employee.PaymentMethodBankTransfer:  d.bankTransfer,
		employee.PaymentMethodCash:          d.cash,
		employee.PaymentMethodCheque:        d.cheque,
		employee.PaymentMethodDigitalWallet: d.digitalWallet,
	}
	return d
}

// Reference builds PAY_{period_id}_{employee_id}_{unix_timestamp}.
func Reference(slip Payslip, at time.Time) string {
	return fmt.Sprintf("PAY_%s_%s_%d", slip.PayrollPeriodID, slip.EmployeeID, at.Unix())
}

// Dispatch pays one payslip and returns its payment reference. A reference
// already stored on the payslip is reused.
func (d *PaymentDispatcher) Dispatch(ctx context.Context, slip Payslip) (string, error) {
	handler, ok := d.handlers[slip.PaymentMethod]
	if !ok {
		return "", &PaymentError{
			Kind: PaymentErrorConfiguration,
			Err:  fmt.Errorf("%w: %q", payrollerrors.ErrUnknownPaymentMethod, slip.PaymentMethod),
		}
	}

	reference := Reference(slip, d.clock.Now())
	if slip.PaymentReference != nil && *slip.PaymentReference != "" {
		reference = *slip.PaymentReference
	}

	in := PaymentInstruction{
		Reference:    reference,
		PayslipID:    slip.ID,
		PeriodID:     slip.PayrollPeriodID,
		EmployeeID:   slip.EmployeeID,
		EmployeeName: slip.EmployeeName,
		Method:       slip.PaymentMethod,
		Amount:       slip.NetPay,
	}
	if slip.BankAccount != nil {
		in.BankAccount = *slip.BankAccount
	}

	if err := handler(ctx, in); err != nil {
		return "", err
	}
	return in.Reference, nil
}

func (d *PaymentDispatcher) bankTransfer(ctx context.Context, in PaymentInstruction) error {
	if in.BankAccount == "" {
		return &PaymentError{Kind: PaymentErrorMissingData, Err: payrollerrors.ErrBankAccountMissing}
	}
	return d.transferWithRetry(ctx, in)
}

func (d *PaymentDispatcher) digitalWallet(ctx context.Context, in PaymentInstruction) error {
	return d.transferWithRetry(ctx, in)
}

func (d *PaymentDispatcher) cash(_ context.Context, in PaymentInstruction) error {
	d.logger.Info("cash payment recorded",
		zap.String("reference", in.Reference),
		zap.String("employee_id", in.EmployeeID.String()),
		zap.String("amount", in.Amount.StringFixed(2)),
	)
	return nil
}

func (d *PaymentDispatcher) cheque(_ context.Context, in PaymentInstruction) error {
	d.logger.Info("cheque issued",
		zap.String("reference", in.Reference),
		zap.String("employee_id", in.EmployeeID.String()),
		zap.String("amount", in.Amount.StringFixed(2)),
	)
	return nil
}

// transferWithRetry calls the gateway with a per-attempt timeout. Only
// gateway-unavailable errors and timeouts are retried.
func (d *PaymentDispatcher) transferWithRetry(ctx context.Context, in PaymentInstruction) error {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		err := d.gateway.Transfer(attemptCtx, in)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			break
		}

		d.logger.Warn("payment attempt failed, retrying",
			zap.String("reference", in.Reference),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", d.cfg.MaxRetries),
			zap.Error(err),
		)

		if attempt < d.cfg.MaxRetries && d.cfg.Backoff > 0 {
			select {
			case <-ctx.Done():
				return &PaymentError{Kind: PaymentErrorGateway, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * d.cfg.Backoff):
			}
		}
	}

	return &PaymentError{Kind: PaymentErrorGateway, Err: lastErr}
}

func retryable(err error) bool {
	return errors.Is(err, payrollerrors.ErrPaymentGatewayUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
