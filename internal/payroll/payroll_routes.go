package payroll

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteOptions struct {
	JWTSecret string
	// Redis enables Idempotency-Key handling on generate and pay.
	Redis *redis.Client
	// MutationLimit and MutationBurst cap mutating calls per user.
	MutationLimit rate.Limit
	MutationBurst int
	Logger        *zap.Logger
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, opts RouteOptions) {
	limit := opts.MutationLimit
	if limit == 0 {
		limit = rate.Limit(2)
	}
	burst := opts.MutationBurst
	if burst == 0 {
		burst = 5
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}

	auth := []gin.HandlerFunc{
		middleware.AuthMiddleware(opts.JWTSecret),
		middleware.ContextLogger(logger),
	}
	throttle := middleware.RateLimitByUser(limit, burst)

	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{throttle}
		if opts.Redis != nil {
			chain = append(chain, middleware.Idempotency(opts.Redis))
		}
		return append(chain, h)
	}

	periods := r.Group("/payroll-periods")
	periods.Use(auth...)
	{
		periods.POST("", throttle, handler.CreatePeriod)
		periods.GET("", handler.ListPeriods)
		periods.GET("/:id", handler.GetPeriod)
		periods.DELETE("/:id", throttle, handler.DeletePeriod)
		periods.POST("/:id/generate", guarded(handler.GeneratePayslips)...)
		periods.POST("/:id/approve", throttle, handler.ApprovePeriod)
		periods.POST("/:id/pay", guarded(handler.ProcessPayments)...)
		periods.GET("/:id/payslips", handler.ListPayslips)
		periods.GET("/:id/report", handler.GetReport)
		periods.GET("/:id/report/export", handler.ExportReport)
	}

	payslips := r.Group("/payslips")
	payslips.Use(auth...)
	{
		payslips.GET("/:id", handler.GetPayslip)
		payslips.POST("/:id/render", throttle, handler.RenderPayslip)
		payslips.GET("/:id/download", handler.DownloadPayslip)
	}
}
