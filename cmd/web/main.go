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

	"taskhub/internal/client"
	"taskhub/internal/core/config"
	"taskhub/internal/core/logger"
	"taskhub/internal/core/server"
	"taskhub/internal/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	api := client.New(cfg.App.Web.APIBaseURL, &http.Client{Timeout: 10 * time.Second})
	site, err := web.New(api, log, web.Options{
		CookieSecure: cfg.App.Web.CookieSecure,
		CookieTTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	})
	if err != nil {
		log.Fatal("templates", zap.Error(err))
	}

	addr := server.Addr(cfg.App.Web.Host, cfg.App.Web.Port)
	srv := server.BuildServer(addr, site.Handler(), 5*time.Second, 15*time.Second, 60*time.Second)
	log.Info("web starting",
		zap.String("addr", addr),
		zap.String("open", server.BaseURL(cfg.App.Web.Host, cfg.App.Web.Port)),
		zap.String("api", cfg.App.Web.APIBaseURL),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("web start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("web stopped")
}
