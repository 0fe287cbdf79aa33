package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "orange:ratelimit"

// NewMemoryStore creates an in-process rate limit store
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
}

// NewRedisStore creates a rate limit store shared by every replica
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, errors.Wrap(err, "create redis rate limit store")
	}
	return store, nil
}

// RateLimitPerUser limits requests per authenticated user, falling back to the
// client IP. formatted uses limiter's "<limit>-<period>" notation, e.g. "60-M".
func RateLimitPerUser(formatted string, store limiter.Store, log logrus.FieldLogger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, errors.Wrapf(err, "parse rate %q", formatted)
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			if userID, err := GetUserID(c); err == nil {
				return "user:" + userID
			}
			return "ip:" + c.ClientIP()
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many messages, slow down",
				},
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// Fail open
			log.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
		}),
	), nil
}
