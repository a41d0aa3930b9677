package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/rose-backend-go/internal/handler"
	"github.com/jengzang/rose-backend-go/internal/middleware"
	"github.com/jengzang/rose-backend-go/internal/service"
)

// Options configures the router
type Options struct {
	JWTSecret string
	// Limiter is optional; nil disables rate limiting
	Limiter *middleware.RateLimiter
	Logger  *zap.SugaredLogger
}

// SetupRouter wires the HTTP routes onto the rose service
func SetupRouter(roseService *service.RoseService, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(middleware.Logger(opts.Logger))
	}
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Rose Backend API is running",
		})
	}
	r.GET("/health", health)

	datasets := handler.NewDatasetHandler(roseService)
	geometry := handler.NewGeometryHandler(roseService)
	auth := middleware.Auth(opts.JWTSecret)

	api := r.Group("/api/v1")
	{
		api.GET("/health", health)

		ds := api.Group("/datasets")
		{
			ds.GET("", datasets.List)
			ds.POST("", auth, datasets.Create)
			ds.POST("/import", auth, datasets.Import)
			ds.GET("/:id", datasets.Get)
			ds.PATCH("/:id", auth, datasets.Update)
			ds.DELETE("/:id", auth, datasets.Delete)
			ds.POST("/:id/values", auth, datasets.AppendValues)
			ds.GET("/:id/statistics", datasets.Statistics)
			ds.GET("/:id/histogram", datasets.Histogram)
			ds.GET("/:id/uniformity", datasets.Uniformity)
			ds.GET("/:id/report", datasets.Report)
		}

		geo := api.Group("/geometry")
		{
			geo.GET("", geometry.Get)
			geo.PUT("", auth, geometry.Update)
			geo.POST("/rescale", auth, geometry.Rescale)
			geo.GET("/radius", geometry.Radius)
			geo.GET("/spoke", geometry.Spoke)
			geo.GET("/position", geometry.Position)
			geo.GET("/rings", geometry.Rings)
		}
	}

	return r
}
