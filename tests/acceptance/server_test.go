package acceptance

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shreyasiddheshwar12/orangesample/config"
	"github.com/shreyasiddheshwar12/orangesample/controllers"
	"github.com/shreyasiddheshwar12/orangesample/middleware"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const acceptanceSecret = "acceptance-secret"

// loadTestConfig loads configuration the way the server does, from the environment
func loadTestConfig(setenv func(key, value string)) (*config.Config, error) {
	setenv("GO_ENV", "test")
	setenv("DATABASE_URL", "file::memory:")
	setenv("JWT_SECRET", acceptanceSecret)
	setenv("AUTH0_DOMAIN", "")
	setenv("LOG_LEVEL", "error")
	setenv("POLL_INTERVAL", "50ms")
	return config.Load()
}

// newIssuer mints tokens the server accepts
func newIssuer(cfg *config.Config) (*services.TokenIssuer, error) {
	return services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, time.Hour)
}

// createRouter wires the services to db and mounts the collaboration routes
func createRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	config.SetConfig(cfg)
	config.SetDB(db)
	profiles := services.InitProfileService(db)
	services.InitIdentityService(db)
	services.InitRequestService(db, profiles, log)
	services.InitMessageService(db, profiles, services.MessageServiceOptions{
		AllowOnDeclined: cfg.AllowMessagesOnDeclined,
		Logger:          log,
	})

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Orange marketplace API is running",
			})
		})

		protected := v1.Group("")
		protected.Use(middleware.EnsureValidToken(cfg))
		{
			protected.GET("/users/me", controllers.GetMyProfile)
			protected.POST("/requests", controllers.CreateRequest)
			protected.GET("/requests/sent", controllers.ListSentRequests)
			protected.GET("/requests/received", controllers.ListReceivedRequests)
			protected.GET("/requests/:id", controllers.GetRequest)
			protected.PATCH("/requests/:id/status", controllers.UpdateRequestStatus)
			protected.GET("/messages/:requestId", controllers.ListMessages)
			protected.POST("/messages/:requestId", controllers.SendMessage)
		}
	}

	return router
}
