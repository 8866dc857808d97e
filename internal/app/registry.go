package app

import (
	"database/sql"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/clock"
	"go-payroll/internal/shared/lock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	globalRateLimit = 20
	globalRateBurst = 40
)

// newPayrollService wires the payroll engine the same way for the API, the
// worker and the consumer. rdb may be nil.
func newPayrollService(cfg Config, db *sql.DB, gormDB *gorm.DB, rdb *redis.Client, logger *zap.Logger) payroll.Service {
	c := clock.System()

	var locker lock.Locker
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb)
	} else {
		locker = lock.NewLocalLocker()
	}

	return payroll.NewService(payroll.Dependencies{
		DB:             db,
		Repo:           payroll.NewRepository(gormDB),
		Employees:      employee.NewRepository(gormDB),
		Attendance:     attendance.NewService(attendance.NewRepository(gormDB)),
		Outbox:         kafka.NewOutboxRepository(db),
		Redis:          rdb,
		Locker:         locker,
		Dispatcher:     payroll.NewPaymentDispatcher(payroll.NewLoggingGateway(logger), cfg.Payment, c, logger),
		Clock:          c,
		Storage:        cfg.Storage,
		ReportCacheTTL: cfg.ReportCacheTTL,
		Logger:         logger,
	})
}

func registerModules(router *gin.Engine, cfg Config, service payroll.Service, rdb *redis.Client, logger *zap.Logger) {
	router.Use(
		middleware.RequestID(),
		middleware.RateLimitByIP(globalRateLimit, globalRateBurst),
	)

	payrollHandler := payroll.NewHandler(service)

	api := router.Group("/api/v1")
	{
		payroll.RegisterRoutes(api, payrollHandler, payroll.RouteOptions{
			JWTSecret: cfg.JWTSecret,
			Redis:     rdb,
			Logger:    logger,
		})
	}
}
