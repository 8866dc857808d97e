package payroll

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentInstruction struct {
	Reference    string
	PayslipID    uuid.UUID
	PeriodID     uuid.UUID
	EmployeeID   uuid.UUID
	EmployeeName string
	Method       string
	Amount       decimal.Decimal
	BankAccount  string
}

//go:generate mockgen -source=payment_gateway.go -destination=mock/payment_gateway_mock.go -package=mock
type PaymentGateway interface {
	// Transfer moves the funds. Errors wrapping
	// payrollerrors.ErrPaymentGatewayUnavailable are retried.
	// instruction.Reference is stable for a payslip across runs; a
	// reference that was already settled must succeed without moving
	// funds again.
	Transfer(ctx context.Context, instruction PaymentInstruction) error
}

// LoggingGateway accepts every instruction and only logs it. It is the
// default until a bank integration is configured.
type LoggingGateway struct {
	logger  *zap.Logger
	settled sync.Map
}

func NewLoggingGateway(logger *zap.Logger) *LoggingGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingGateway{logger: logger.Named("payroll.gateway")}
}

func (g *LoggingGateway) Transfer(_ context.Context, in PaymentInstruction) error {
	if _, dup := g.settled.LoadOrStore(in.Reference, struct{}{}); dup {
		g.logger.Info("payment instruction already settled", zap.String("reference", in.Reference))
		return nil
	}
	g.logger.Info("payment instruction accepted",
		zap.String("reference", in.Reference),
		zap.String("method", in.Method),
		zap.String("employee_id", in.EmployeeID.String()),
		zap.String("amount", in.Amount.StringFixed(2)),
	)
	return nil
}
