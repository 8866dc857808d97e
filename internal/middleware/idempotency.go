package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	idempotencyLockTTL   = 30 * time.Second
	idempotencyResultTTL = 24 * time.Hour
)

var ErrRequestInProgress = apperror.New(
	apperror.CodeConflict,
	"A request with this Idempotency-Key is still being processed",
	http.StatusConflict,
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// bodyRecorder tees the response body so it can be replayed.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST that carries a known
// Idempotency-Key. Keys are scoped by route and user. Only 2xx responses
// are stored, so a failed call can be retried with the same key.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, zap.L()).Named("middleware.idempotency")

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString("user_id"), key)
		lockKey := cacheKey + ":lock"

		raw, err := rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			if cached, ok := decodeCachedResponse(raw); ok {
				c.Header("Idempotent-Replayed", "true")
				c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
				c.Abort()
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn("idempotency lookup failed", zap.Error(err))
		}

		acquired, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			log.Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			response.AbortWithError(c, ErrRequestInProgress)
			return
		}
		defer rdb.Del(ctx, lockKey)

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder

		c.Next()

		status := recorder.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		payload, err := encodeCachedResponse(cachedResponse{Status: status, Body: recorder.body.Bytes()})
		if err != nil {
			return
		}
		if err := rdb.Set(ctx, cacheKey, string(payload), idempotencyResultTTL).Err(); err != nil {
			log.Warn("idempotency store failed", zap.Error(err))
		}
	}
}

func encodeCachedResponse(r cachedResponse) ([]byte, error) {
	return json.Marshal(r)
}

func decodeCachedResponse(raw []byte) (cachedResponse, bool) {
	var r cachedResponse
	if err := json.Unmarshal(raw, &r); err != nil || r.Status == 0 {
		return cachedResponse{}, false
	}
	return r, true
}
