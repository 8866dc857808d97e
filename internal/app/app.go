package app

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-payroll/internal/shared/connection"
)

// BuildApp connects the infrastructure and registers every route on router.
// The returned func closes the connections.
func BuildApp(router *gin.Engine, cfg Config) (func(), error) {
	logger := zap.L()

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, connectRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, connectRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	} else {
		logger.Warn("REDIS_ADDR not set, idempotency and report cache disabled")
	}

	service := newPayrollService(cfg, sqlDB, gormDB, rdb, logger)
	registerModules(router, cfg, service, rdb, logger)

	return func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = sqlDB.Close()
	}, nil
}
