package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const payslipRendererGroup = "go-payroll-payslip-renderer"

// RunConsumer renders payslip PDFs for every approved period.
func RunConsumer(cfg Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, connectRetries)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	service := newPayrollService(cfg, sqlDB, gormDB, nil, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.PayrollPeriodApprovedTopic,
		GroupID:        payslipRendererGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, reader, "payroll-period-approved", consumer.PayrollPeriodApprovedHandler(service, logger), logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
