package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/tableqr-backend/config"
	"github.com/ikkim/tableqr-backend/internal/app/controller"
	"github.com/ikkim/tableqr-backend/internal/middleware"
	"github.com/ikkim/tableqr-backend/pkg/util"
)

type Router struct {
	restaurantController *controller.RestaurantController
	qrCodeController     *controller.QRCodeController
	qrFeeController      *controller.QRFeeController
	scanController       *controller.ScanController
	streamController     *controller.StreamController
	authMiddleware       *middleware.AuthMiddleware
	config               *config.Config
}

func NewRouter(
	restaurantController *controller.RestaurantController,
	qrCodeController *controller.QRCodeController,
	qrFeeController *controller.QRFeeController,
	scanController *controller.ScanController,
	streamController *controller.StreamController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		restaurantController: restaurantController,
		qrCodeController:     qrCodeController,
		qrFeeController:      qrFeeController,
		scanController:       scanController,
		streamController:     streamController,
		authMiddleware:       authMiddleware,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TableQR API is running",
		})
	})

	// Public scan redirect encoded into printed codes
	router.GET("/q/:id", r.scanController.Redirect)

	v1 := router.Group("/api/v1")
	{
		restaurants := v1.Group("/restaurants")
		restaurants.Use(r.authMiddleware.Authenticate())
		{
			restaurants.GET("", r.restaurantController.ListRestaurants)
			restaurants.POST("/sync",
				r.authMiddleware.RequireRole(util.RoleAdmin),
				r.restaurantController.SyncRestaurants,
			)

			restaurant := restaurants.Group("/:restaurant_id")
			restaurant.Use(r.authMiddleware.RequireRestaurantAccess())
			{
				restaurant.GET("", r.restaurantController.GetRestaurant)

				qrCodes := restaurant.Group("/qr-codes")
				{
					qrCodes.GET("", r.qrCodeController.ListQRCodes)
					qrCodes.POST("", r.qrCodeController.CreateQRCode)
					qrCodes.PUT("/preview", r.qrCodeController.PreviewQRCode)
					qrCodes.GET("/export", r.qrCodeController.ExportQRCodes)
					qrCodes.GET("/stream", r.streamController.Stream)
					qrCodes.GET("/:id", r.qrCodeController.GetQRCode)
					qrCodes.DELETE("/:id", r.qrCodeController.DeleteQRCode)
					qrCodes.GET("/:id/download", r.qrCodeController.DownloadQRCode)
				}

				qrConfig := restaurant.Group("/qr-config")
				{
					qrConfig.GET("", r.qrFeeController.GetConfig)
					qrConfig.PUT("", r.qrFeeController.UpdateConfig)
					qrConfig.GET("/quote", r.qrFeeController.QuoteFee)
				}
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Scan-Count, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
