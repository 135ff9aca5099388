package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/handler"
	"marketplace/internal/observability"
	"marketplace/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func setupLogging(cfg *config.Config) {
	if cfg.AppEnv == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	cfg := config.MustLoad()
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := db.Init(&cfg.DB)
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}()

	if err := db.Migrate(ctx, conn); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	rdb := cache.SetupRedis(&cfg.Redis)
	defer func() {
		if err := rdb.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close redis connection")
		}
	}()

	mq := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	defer func() {
		if err := mq.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}()

	ch, err := queue.CreateChannel(mq)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
	}
	if _, err := queue.DeclareQueue(ch, queue.NotificationQueue); err != nil {
		logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
	}
	if err := ch.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close RabbitMQ channel")
	}

	r, broker := handler.SetupHandler(conn, mq, rdb, cfg)

	go func() {
		if err := broker.Run(ctx); err != nil {
			logrus.WithError(err).Error("Realtime broker stopped")
		}
	}()
	go observability.WatchDBStats(ctx, conn, 15*time.Second)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on :%s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
}
