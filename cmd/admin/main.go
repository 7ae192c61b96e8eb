// Command admin creates an admin account, or promotes an existing one,
// directly in the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"taskhub/internal/core/config"
	"taskhub/internal/core/logger"
	"taskhub/internal/repo"
	"taskhub/internal/service"
)

func main() {
	_ = godotenv.Load()
	name := flag.String("name", "Administrator", "display name for a new account")
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "password for a new account")
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "config file")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load(*cfgPath)
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repo.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal("store open", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	users := service.NewUserService(store.Users, store.Tasks, nil, 0, log)
	u, created, err := users.EnsureAdmin(ctx, *name, *email, *password)
	if err != nil {
		log.Fatal("ensure admin", zap.String("email", *email), zap.Error(err))
	}
	if created {
		fmt.Printf("created admin %s (%s)\n", u.Email, u.ID)
	} else {
		fmt.Printf("%s is an admin (%s)\n", u.Email, u.ID)
	}
}
