package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bengalurutaxi/btc-backend/internal/config"
	"github.com/bengalurutaxi/btc-backend/internal/database"
	"github.com/bengalurutaxi/btc-backend/internal/handlers"
	"github.com/bengalurutaxi/btc-backend/internal/middleware"
	"github.com/bengalurutaxi/btc-backend/internal/reports"
	"github.com/bengalurutaxi/btc-backend/internal/services"
	"github.com/bengalurutaxi/btc-backend/pkg/log"
	"github.com/bengalurutaxi/btc-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.GetLogger().Error("main", err.Error(), "config", "")
		os.Exit(1)
	}
	log.InitLogger(cfg.AppName, cfg.LogLevel)
	logger := log.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.DB)
	if err != nil {
		logger.Error("main", err.Error(), "database", cfg.DB.Driver)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("main", err.Error(), "database", cfg.DB.Driver)
		os.Exit(1)
	}
	defer sqlDB.Close()

	store, err := reports.New(db)
	if err != nil {
		logger.Error("main", err.Error(), "reports", "")
		os.Exit(1)
	}

	hub := services.NewHub()
	go hub.Run(ctx)

	notifiers := services.Notifiers{hub}
	if cfg.RedisURL != "" {
		client, err := services.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("main", err.Error(), "redis", "ride events will not be published")
		} else {
			defer client.Close()
			notifiers = append(notifiers, services.NewRedisPublisher(client))
		}
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.Deps{
		DB:          db,
		Tokens:      tokens,
		Rides:       services.NewRideService(db, store, notifiers),
		Fleet:       services.NewFleetService(db, store),
		Accounts:    services.NewAccountService(db, tokens),
		Analytics:   services.NewAnalyticsService(store),
		Hub:         hub,
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("main", "server listening", "http", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("main", err.Error(), "http", srv.Addr)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("main", "shutting down", "http", srv.Addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main", err.Error(), "http", "shutdown")
	}
}
