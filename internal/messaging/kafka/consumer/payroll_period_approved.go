package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-payroll/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PayslipRenderer interface {
	RenderPeriodPayslips(ctx context.Context, companyID, periodID string) (int, error)
}

// PayrollPeriodApprovedHandler renders the PDF payslips of every approved
// period it receives.
func PayrollPeriodApprovedHandler(renderer PayslipRenderer, logger *zap.Logger) HandlerFunc {
	log := logger.Named("kafka.consumer.payroll_period_approved")

	return func(ctx context.Context, msg kafkago.Message) error {
		var event events.PayrollPeriodApprovedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode payroll period approved event: %v", ErrDiscard, err)
		}
		if event.PeriodID == "" || event.CompanyID == "" {
			return fmt.Errorf("%w: payroll period approved event without ids", ErrDiscard)
		}

		rendered, err := renderer.RenderPeriodPayslips(ctx, event.CompanyID, event.PeriodID)
		if err != nil {
			return fmt.Errorf("render payslips for period %s: %w", event.PeriodID, err)
		}

		log.Info("payslips rendered",
			zap.String("period_id", event.PeriodID),
			zap.String("company_id", event.CompanyID),
			zap.Int("rendered", rendered),
		)
		return nil
	}
}
