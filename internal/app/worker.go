package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/producer"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/clock"
	"go-payroll/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	outboxPollInterval = 3 * time.Second
	dispatchJobTimeout = 30 * time.Minute
)

// RunWorker relays outbox rows to Kafka and runs the scheduled payment
// dispatch until SIGINT or SIGTERM.
func RunWorker(cfg Config) error {
	logger := zap.L().Named("app.worker")

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
	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, connectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries); err != nil {
			return err
		}
		defer rdb.Close()
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	service := newPayrollService(cfg, sqlDB, gormDB, rdb, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, outboxPollInterval)

	scheduler, err := newPaymentScheduler(ctx, cfg.PaymentDispatchCron, service, clock.System(), logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	<-scheduler.Stop().Done()
	cancel()

	return nil
}

// newPaymentScheduler registers DispatchDuePayments on spec. Overlapping
// runs are skipped.
func newPaymentScheduler(ctx context.Context, spec string, service payroll.Service, c clock.Clock, logger *zap.Logger) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))

	scheduler := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	_, err := scheduler.AddFunc(spec, func() {
		runDuePayments(ctx, service, c, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule payment dispatch %q: %w", spec, err)
	}
	return scheduler, nil
}

func runDuePayments(ctx context.Context, service payroll.Service, c clock.Clock, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, dispatchJobTimeout)
	defer cancel()

	asOf := c.Now().UTC()
	paid, err := service.DispatchDuePayments(ctx, asOf)
	if err != nil {
		logger.Error("scheduled payment dispatch finished with errors",
			zap.Int("periods_paid", paid),
			zap.Error(err),
		)
		return
	}
	logger.Info("scheduled payment dispatch finished",
		zap.Int("periods_paid", paid),
		zap.Time("as_of", asOf),
	)
}
