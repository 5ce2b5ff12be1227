package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"uniride/internal/auth"
	"uniride/internal/config"
	"uniride/internal/domain"
	"uniride/internal/handler"
	"uniride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler    *handler.TripHandler
	VehicleHandler *handler.VehicleHandler
	UserHandler    *handler.UserHandler
	AuthHandler    *handler.AuthHandler
	TokenManager   *auth.TokenManager
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	CORS           config.CORSConfig
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	registerValidations()

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Public routes.
		api.POST("/register", deps.UserHandler.Register)
		api.POST("/login", deps.AuthHandler.Login)
		api.POST("/token/refresh", deps.AuthHandler.Refresh)
		api.GET("/token/verify", deps.AuthHandler.Verify)

		// Authenticated routes. Idempotency keys are scoped per caller, so
		// the middleware sits behind auth.
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(deps.TokenManager))
		authed.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
		{
			authed.GET("/me", deps.UserHandler.Me)
			authed.PATCH("/me", deps.UserHandler.UpdateMe)

			trips := authed.Group("/trips")
			{
				trips.GET("", deps.TripHandler.ListTrips)
				trips.POST("", deps.TripHandler.CreateTrip)
				trips.GET("/:id", deps.TripHandler.GetTrip)
				trips.PATCH("/:id", deps.TripHandler.UpdateTrip)
			}

			vehicles := authed.Group("/vehicles")
			{
				vehicles.GET("", deps.VehicleHandler.ListVehicles)
				vehicles.POST("", deps.VehicleHandler.RegisterVehicle)
				vehicles.DELETE("/:id", deps.VehicleHandler.DeleteVehicle)
			}
		}
	}

	return router
}

// registerValidations adds the custom binding rules used by the request DTOs.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		return domain.ValidPlate(domain.NormalizePlate(fl.Field().String()))
	})
}
