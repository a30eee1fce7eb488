package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Thiahho/Resto-Bar-sub001/config"
	"github.com/Thiahho/Resto-Bar-sub001/database"
	"github.com/Thiahho/Resto-Bar-sub001/kds"
	"github.com/Thiahho/Resto-Bar-sub001/router"
	"github.com/Thiahho/Resto-Bar-sub001/services"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Info("no .env file, using process environment")
	}

	cfg := config.Load()
	utils.InitLoggerWithLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if cfg.SeedDemo {
		if err := database.SeedDemo(db); err != nil {
			utils.ErrorLogger.Errorf("demo seed failed: %v", err)
		}
	}

	var sequencer services.TicketSequencer = services.DBTicketSequencer{}
	if cfg.TicketSequence == "redis" {
		if rdb := config.NewRedisClient(cfg); rdb != nil {
			defer rdb.Close()
			sequencer = services.NewRedisTicketSequencer(rdb)
			utils.InfoLogger.WithField("addr", cfg.RedisAddr).Info("ticket numbers from redis")
		} else {
			utils.ErrorLogger.Warn("redis unavailable, ticket numbers from database")
		}
	}

	var pusher services.StationPusher
	if cfg.RabbitMQURL != "" {
		amqpPub := services.NewAMQPPublisher(cfg.RabbitMQURL, cfg.PushQueue)
		defer amqpPub.Close()
		pusher = services.NewStationPushNotifier(db, amqpPub)
		utils.InfoLogger.WithField("queue", cfg.PushQueue).Info("station push enabled")
	}

	hub := kds.NewHub()
	notifier := services.NewNotifier(hub, pusher)

	r := router.SetupRouter(router.Deps{
		Config:  cfg,
		DB:      db,
		Hub:     hub,
		Tables:  services.NewTableService(db, notifier, cfg.TableTokenTTL, cfg.PublicBaseURL),
		Orders:  services.NewOrderService(db, services.NewTicketRouter(sequencer), notifier),
		Kitchen: services.NewKitchenService(db, notifier),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("shutdown: %v", err)
	}
}
