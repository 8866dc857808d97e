package main

import (
	"time"

	"go-payroll/internal/app"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	r := gin.Default()

	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		bootstrap.NewStdoutAuditLogger(),
	)
}
