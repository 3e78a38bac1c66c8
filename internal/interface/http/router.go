package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitesapp/bites/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	api := router.Group("/api")
	{
		restaurants := api.Group("/restaurants")
		{
			restaurants.GET("", handler.ListRestaurants)
			restaurants.POST("", handler.CreateRestaurant)
			restaurants.GET("/:restaurantId", handler.GetRestaurant)
			restaurants.POST("/:restaurantId/details", handler.SetDetails)
			restaurants.GET("/:restaurantId/details", handler.GetDetails)
			restaurants.GET("/:restaurantId/weather", handler.GetWeather)
			restaurants.POST("/:restaurantId/reviews", handler.AddReview)
			restaurants.GET("/:restaurantId/reviews", handler.ListReviews)
			restaurants.DELETE("/:restaurantId/reviews/:reviewId", handler.DeleteReview)
		}
		cuisines := api.Group("/cuisines")
		{
			cuisines.GET("", handler.ListCuisines)
			cuisines.GET("/:cuisine", handler.RestaurantsByCuisine)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
