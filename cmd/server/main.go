package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/auth-service/internal/adapters/handler/http"
	"github.com/vncsmyrnk/auth-service/internal/adapters/password"
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

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg.DB)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(ctx, db); err != nil {
			zl.Fatal("failed to apply migrations", zap.Error(err))
		}
		zl.Info("migrations applied")
	}

	hasher, err := password.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		zl.Fatal("failed to build password hasher", zap.Error(err))
	}
	tokens, err := services.NewTokenService([]byte(cfg.JWTSecret))
	if err != nil {
		zl.Fatal("failed to build token service", zap.Error(err))
	}

	userRepo := postgres.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, tokens, hasher, services.TokenLifetimes{
		Access:  cfg.AccessTTL(),
		Refresh: cfg.RefreshTTL(),
	}, zl)

	handler := http.NewHandler(http.Handlers{
		Auth:   http.NewAuthHandler(authService, zl),
		User:   http.NewUserHandler(),
		Health: http.NewHealthHandler(db, zl),
	}, authService, zl)

	server := &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown failed", zap.Error(err))
	}
}

func openDB(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
