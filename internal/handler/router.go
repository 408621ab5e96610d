package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vocabnote/internal/middleware"
	"github.com/xxxsen/vocabnote/internal/session"
)

type RouterDeps struct {
	Auth           *AuthHandler
	Words          *WordHandler
	Properties     *PropertiesHandler
	Health         *HealthHandler
	Metrics        http.Handler
	Gate           *session.Gate
	Sessions       middleware.SessionStore
	LoginRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", middleware.RateLimit(deps.LoginRateLimit), deps.Auth.Login)
	api.POST("/auth/logout", deps.Auth.Logout)

	api.GET("/healthz", deps.Health.Get)
	api.GET("/properties", deps.Properties.Get)
	if deps.Metrics != nil {
		api.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	authGroup := api.Group("")
	authGroup.Use(middleware.SessionAuth(deps.Gate, deps.Sessions))
	authGroup.GET("/words", deps.Words.List)
	authGroup.GET("/words/:id", deps.Words.Get)
	authGroup.POST("/words", deps.Words.Submit)
}
