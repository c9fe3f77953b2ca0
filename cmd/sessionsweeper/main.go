package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/auth-service/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/auth-service/internal/config"
	"github.com/vncsmyrnk/auth-service/internal/core/services"
	"github.com/vncsmyrnk/auth-service/internal/logger"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println(err)
	}

	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum duration of the sweep")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		zl.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		zl.Fatal("failed to reach database", zap.Error(err))
	}

	tokens, err := services.NewTokenService([]byte(cfg.JWTSecret))
	if err != nil {
		zl.Fatal("failed to build token service", zap.Error(err))
	}
	sweeper := services.NewSessionSweeper(postgres.NewUserRepository(db), tokens, zl)

	zl.Info("starting session sweep")
	swept, err := sweeper.SweepExpired(ctx)
	if err != nil {
		zl.Fatal("session sweep failed", zap.Int("swept", swept), zap.Error(err))
	}
	zl.Info("session sweep completed", zap.Int("swept", swept))
}
