package router

import (
	"github.com/gin-gonic/gin"

	"polisave/internal/domain"
	"polisave/internal/handler"
	"polisave/internal/middleware"
	"polisave/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	allowedOrigins []string,
	authH *handler.AuthHandler,
	documentH *handler.DocumentHandler,
	offerH *handler.OfferHandler,
	exportH *handler.ExportHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document routes
	documents := protected.Group("/documents")
	documents.POST("", documentH.Upload)
	documents.GET("", documentH.List)
	documents.GET("/:id", documentH.GetByID)
	documents.DELETE("/:id", documentH.Delete)
	documents.POST("/:id/retry", documentH.Retry)
	documents.GET("/:id/offer", offerH.GetByDocument)
	documents.DELETE("/:id/offer", offerH.DeleteByDocument)

	// Offer routes
	offers := protected.Group("/offers")
	offers.GET("", offerH.List)
	offers.POST("/export", exportH.Export)

	// User management
	users := protected.Group("/users")
	users.GET("/me", userH.Me)
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/:id", middleware.RequireRole(domain.RoleAdmin), userH.GetByID)

	return r
}
