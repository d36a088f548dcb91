package http

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func NewRouter(h *Handler, logger *zap.Logger, publicDir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// processed avatars are served straight off disk
	r.StaticFS("/avatars", http.Dir(filepath.Join(publicDir, "avatars")))

	users := r.Group("/api/users")
	{
		users.POST("/signup", RateLimit(h.Limiter, "signup"), h.Signup)
		users.GET("/verify/:token", h.Verify)
		users.POST("/verify", h.ResendVerification)
		users.POST("/login", RateLimit(h.Limiter, "login"), h.Login)

		authed := users.Group("", Auth(h.Accounts))
		authed.POST("/logout", h.Logout)
		authed.GET("/current", h.Current)
		authed.PATCH("/", h.UpdateSubscription)
		authed.PATCH("/avatars", h.UpdateAvatar)
	}

	r.POST("/api/orders", h.CreateOrder)

	return r
}
