package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taskhub/internal/core/auth"
	"taskhub/internal/core/cache"
	"taskhub/internal/core/config"
	"taskhub/internal/core/logger"
	"taskhub/internal/core/server"
	"taskhub/internal/repo"
	"taskhub/internal/service"
	"taskhub/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := repo.Open(ctx, cfg.DB, log)
	cancel()
	if err != nil {
		log.Fatal("store open", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	log.Info("store ready", zap.String("driver", store.Driver))

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, pcancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := c.Ping(pctx); err != nil {
			log.Warn("redis unreachable, principal cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
		pcancel()
	}
	defer c.Close()

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	users := service.NewUserService(store.Users, store.Tasks, c, time.Duration(cfg.Redis.UserTTLSec)*time.Second, log)
	tasks := service.NewTaskService(store.Tasks)
	authSvc := service.NewAuthService(users, jwter)

	if cfg.Admin.Email != "" {
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		u, created, err := users.EnsureAdmin(sctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		scancel()
		if err != nil {
			log.Fatal("admin seed", zap.String("email", cfg.Admin.Email), zap.Error(err))
		}
		log.Info("admin account ready", zap.String("email", u.Email), zap.Bool("created", created))
	}

	r := router.NewAPIEngine(router.Deps{
		Log:   log,
		HTTP:  cfg.App.HTTP,
		CORS:  cfg.CORS,
		Auth:  authSvc,
		Users: users,
		Tasks: tasks,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("task api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("task api start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := store.Close(sctx); err != nil {
		log.Warn("store close", zap.Error(err))
	}
	log.Info("task api stopped")
}
