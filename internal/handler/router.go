package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voyagent/voyagent/internal/middleware"
)

type RouterDeps struct {
	Assistant    *AssistantHandler
	Auth         *AuthHandler
	Destinations *DestinationHandler
	Documents    *DocumentHandler
	Files        *FileHandler
	JWTSecret    []byte
	RateLimit    time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)

	assistantGroup := api.Group("")
	assistantGroup.Use(middleware.OptionalAuth(deps.JWTSecret))
	if deps.RateLimit > 0 {
		assistantGroup.Use(middleware.RateLimit(deps.RateLimit))
	}
	assistantGroup.POST("/assistant", deps.Assistant.Handle)
	assistantGroup.GET("/chat/history", deps.Assistant.History)

	api.GET("/destinations", deps.Destinations.List)
	api.GET("/destinations/:id", deps.Destinations.Get)
	api.GET("/files/:key", deps.Files.Get)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/destinations", deps.Destinations.Create)
	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.POST("/documents/delete", deps.Documents.BulkDelete)
	authGroup.POST("/files/upload", deps.Files.Upload)
}
