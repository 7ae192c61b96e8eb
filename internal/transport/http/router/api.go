package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskhub/internal/core/config"
	"taskhub/internal/domain"
	"taskhub/internal/service"
	"taskhub/internal/transport/http/ez"
	"taskhub/internal/transport/http/handler"
	mdw "taskhub/internal/transport/http/middleware"
	resp "taskhub/internal/transport/http/response"
)

type Deps struct {
	Log   *zap.Logger
	HTTP  config.HTTP
	CORS  config.CORS
	Auth  *service.AuthService
	Users *service.UserService
	Tasks *service.TaskService
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()

	maxInFlight := d.HTTP.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 300
	}
	maxBody := int64(d.HTTP.MaxBodyMB) << 20
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	timeout := time.Duration(d.HTTP.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r.Use(
		mdw.RequestID(),
		corsMiddleware(d.CORS),
		mdw.ConcurrencyLimit(maxInFlight),
		mdw.MaxBodyBytes(maxBody),
		mdw.Timeout(timeout),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK("OK", nil)) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, http.StatusNotFound, "") })

	api := r.Group("/api")
	authed := api.Group("", mdw.Authenticate(d.Auth, d.Users, d.Log))
	admin := authed.Group("", mdw.Authorize(mdw.RoleConfig{AllowedRoles: []domain.Role{domain.RoleAdmin}}))

	MountAll(ez.Groups{Public: api, Authed: authed, Admin: admin},
		handler.NewAuthHandler(d.Auth, d.Log),
		handler.NewTaskHandler(d.Tasks, d.Log),
		handler.NewUserHandler(d.Users, d.Log),
	)
	return r
}

func corsMiddleware(c config.CORS) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", mdw.KeyRequestID},
		ExposeHeaders: []string{mdw.KeyRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range c.AllowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = c.AllowOrigins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
