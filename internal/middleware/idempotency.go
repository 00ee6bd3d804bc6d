package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyCacheKey = "idempotency_cache_key"
	IdempotencyLockKey  = "idempotency_lock_key"

	idempotencyLockTTL = 30 * time.Second
)

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key that already completed, and rejects a concurrent retry
// while the first one is still running. The handler is responsible for
// storing its response under IdempotencyCacheKey and releasing the lock.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost || rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		userID := c.GetString("user_id_validated")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			contextutil.GetLogger(ctx, zap.L()).Debug("idempotent replay", zap.String("key", cacheKey))
			response.Success(c, http.StatusOK, json.RawMessage(val), nil)
			c.Abort()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			// Redis unavailable: serve the request without the guarantee.
			contextutil.GetLogger(ctx, zap.L()).Warn("idempotency lock failed", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			abortWith(c, ErrRequestInProgress)
			return
		}

		c.Set(IdempotencyCacheKey, cacheKey)
		c.Set(IdempotencyLockKey, lockKey)

		c.Next()
	}
}
