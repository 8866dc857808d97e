package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/connection"
)

const (
	defaultPort                = "3000"
	defaultPaymentDispatchCron = "0 6 * * *"
	defaultReportCacheTTL      = 10 * time.Minute
	defaultPayslipStorageDir   = "storage/payslips"
	connectRetries             = 5
)

type Config struct {
	Port      string
	JWTSecret string

	DB          connection.DBConfig
	RedisAddr   string
	KafkaBroker string

	Storage             payroll.StorageConfig
	Payment             payroll.PaymentConfig
	PaymentDispatchCron string
	ReportCacheTTL      time.Duration
}

// LoadConfig reads the process environment. Call godotenv.Load first to
// pick up a local .env file.
func LoadConfig() (Config, error) {
	payment := payroll.DefaultPaymentConfig()

	var err error
	if payment.Timeout, err = envDuration("PAYMENT_TIMEOUT", payment.Timeout); err != nil {
		return Config{}, err
	}
	if payment.MaxRetries, err = envInt("PAYMENT_MAX_RETRIES", payment.MaxRetries); err != nil {
		return Config{}, err
	}
	if payment.Backoff, err = envDuration("PAYMENT_RETRY_BACKOFF", payment.Backoff); err != nil {
		return Config{}, err
	}
	cacheTTL, err := envDuration("REPORT_CACHE_TTL", defaultReportCacheTTL)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:      envString("PORT", defaultPort),
		JWTSecret: os.Getenv("JWT_SECRET"),
		DB: connection.DBConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     envString("DB_PORT", "5432"),
			SSLMode:  envString("DB_SSLMODE", "disable"),
		},
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		Storage: payroll.StorageConfig{
			Dir:           envString("PAYSLIP_STORAGE_DIR", defaultPayslipStorageDir),
			PublicBaseURL: os.Getenv("PAYSLIP_PUBLIC_BASE_URL"),
		},
		Payment:             payment,
		PaymentDispatchCron: envString("PAYMENT_DISPATCH_CRON", defaultPaymentDispatchCron),
		ReportCacheTTL:      cacheTTL,
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
