package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/notification"
	"marketplace/internal/queue"
	"marketplace/internal/user"
	"marketplace/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg := config.MustLoad()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn := db.Init(&cfg.DB)
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}()

	mq := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	defer func() {
		if err := mq.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}()

	consumerChannel, err := queue.CreateChannel(mq)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
	}
	if _, err := queue.DeclareQueue(consumerChannel, queue.NotificationQueue); err != nil {
		logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
	}
	if err := consumerChannel.Close(); err != nil {
		logrus.WithError(err).Fatal("Failed to close RabbitMQ channel")
	}

	dispatcher := notification.NewDispatcher(
		user.NewPushTokens(user.NewUserRepository(), conn),
		notification.NewRelaySender(&cfg.Push),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Worker.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.Infof("Worker metrics server started on :%s", cfg.Worker.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	for i := 1; i <= cfg.Worker.Concurrency; i++ {
		id := i
		g.Go(func() error {
			return worker.StartWorker(gctx, mq, dispatcher, id)
		})
	}

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Worker exited")
	}
	logrus.Info("Worker stopped")
}
