package routes

import (
	"stockroom/internal/container"
	"stockroom/internal/middleware"
	"stockroom/pkg/security"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes wires endpoints reachable without a token.
func RegisterPublicRoutes(router *gin.Engine, c *container.Container) {
	c.LoginHandler.RegisterRoutes(router)
}

// RegisterProtectedRoutes wires the /api surface behind JWT authentication.
func RegisterProtectedRoutes(router *gin.Engine, c *container.Container) {
	api := router.Group("/api")
	api.Use(security.JWTMiddleware())

	c.ItemHandler.RegisterRoutes(api)
	c.RequestHandler.RegisterRoutes(api)
	c.NewItemHandler.RegisterRoutes(api)
	c.ReimbursementHandler.RegisterRoutes(api)
	c.UserHandler.RegisterRoutes(api)
	c.ReportHandler.RegisterRoutes(api)
}

func RegisterUtilityRoutes(router *gin.Engine) {
	router.GET("/health", middleware.HealthCheckMiddleware())
}
