package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shreyasiddheshwar12/orangesample/config"
	"github.com/shreyasiddheshwar12/orangesample/controllers"
	"github.com/shreyasiddheshwar12/orangesample/middleware"
	"github.com/shreyasiddheshwar12/orangesample/services"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := config.NewLogger(cfg)
	log.WithField("env", cfg.GoEnv).Info("Starting Orange marketplace API server...")

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := config.GetDB()
	if err := config.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Info("Database migration completed successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, db, log)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.WithError(err).Warn("Failed to release resources")
		}
	}()

	router, err := setupRouter(app, middleware.EnsureValidToken(cfg))
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Server is running on http://localhost:%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
	}
}

// application holds the process-wide collaborators built from configuration
type application struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *logrus.Logger
	redis    *redis.Client // nil without REDIS_URL
	notifier services.Notifier
}

// newApplication initializes every service singleton the controllers use
func newApplication(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*application, error) {
	config.SetConfig(cfg)
	config.SetDB(db)
	app := &application{cfg: cfg, db: db, log: log}

	if cfg.RedisURL != "" {
		notifier, err := services.NewRedisNotifier(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, errors.Wrap(err, "REDIS_URL")
		}
		app.redis = notifier.Client()
		app.notifier = notifier
		log.Info("Message notifications use redis pub/sub")
	} else {
		app.notifier = services.NewLocalNotifier()
	}

	profiles := services.InitProfileService(db)
	services.InitIdentityService(db)
	services.InitRequestService(db, profiles, log)
	services.InitMessageService(db, profiles, services.MessageServiceOptions{
		AllowOnDeclined: cfg.AllowMessagesOnDeclined,
		Notifier:        app.notifier,
		Logger:          log,
	})

	if cfg.UsesS3() {
		s3, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return nil, errors.Wrap(err, "initialize S3")
		}
		services.InitMediaService(services.NewS3MediaService(s3))
		log.WithField("bucket", cfg.AWSS3Bucket).Info("Uploads are stored in S3")
	} else {
		services.InitMediaService(services.NewLocalMediaService(cfg.UploadDir))
		log.WithField("dir", cfg.UploadDir).Info("Uploads are stored on local disk")
	}

	if cfg.UsesAuth0() {
		services.SetUserInfoService(services.NewAuth0UserInfoService(cfg.Auth0Domain))
	} else {
		services.SetUserInfoService(nil)
	}

	services.SetSeeder(nil)
	if cfg.CanSeed() {
		var tokens *services.TokenIssuer
		if cfg.JWTSecret != "" {
			issuer, err := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, services.DefaultTokenTTL)
			if err != nil {
				return nil, errors.Wrap(err, "create token issuer")
			}
			tokens = issuer
		}
		services.SetSeeder(services.NewSeedService(db, tokens))
	}

	return app, nil
}

// Close stops the notifier, which also releases the redis connection
func (a *application) Close() error {
	return a.notifier.Close()
}

// setupRouter mounts every route. auth authenticates the protected group.
func setupRouter(app *application, auth gin.HandlerFunc) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(app.log))
	router.Use(cors.New(corsConfig(app.cfg.CORSOrigins)))

	store := middleware.NewMemoryStore()
	if app.redis != nil {
		redisStore, err := middleware.NewRedisStore(app.redis)
		if err != nil {
			return nil, err
		}
		store = redisStore
	}
	messageLimit, err := middleware.RateLimitPerUser(app.cfg.MessageRateLimit, store, app.log)
	if err != nil {
		return nil, err
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// Public marketplace directory
		v1.GET("/creators", controllers.ListCreators)
		v1.GET("/creators/:id", controllers.GetCreator)
		v1.GET("/businesses/:id", controllers.GetBusiness)
		v1.GET("/uploads/:filename", controllers.GetUploadedMedia)

		if app.cfg.CanSeed() {
			v1.POST("/seed", controllers.SeedDatabase)
		}

		protected := v1.Group("")
		protected.Use(auth)
		{
			protected.POST("/users", controllers.CreateUser)
			protected.GET("/users/me", controllers.GetMyProfile)

			protected.POST("/creator/profile", controllers.UpsertCreatorProfile)
			protected.GET("/creator/profile", controllers.GetMyCreatorProfile)
			protected.POST("/business/profile", controllers.UpsertBusinessProfile)
			protected.GET("/business/profile", controllers.GetMyBusinessProfile)

			protected.POST("/requests", controllers.CreateRequest)
			protected.GET("/requests/sent", controllers.ListSentRequests)
			protected.GET("/requests/received", controllers.ListReceivedRequests)
			protected.GET("/requests/:id", controllers.GetRequest)
			protected.PATCH("/requests/:id/status", controllers.UpdateRequestStatus)

			protected.GET("/messages/:requestId", controllers.ListMessages)
			protected.POST("/messages/:requestId", messageLimit, controllers.SendMessage)
			protected.GET("/messages/:requestId/stream", controllers.StreamMessages)

			protected.POST("/upload", controllers.UploadMedia)
		}
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization")
	return cfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Orange marketplace API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
