package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/config"
	kafkax "github.com/kingdavidadedeji10/float-business/internal/kafka"
	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/projector"
	"github.com/kingdavidadedeji10/float-business/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	}

	consumer := kafkax.NewConsumer(
		cfg.KafkaBrokers,
		cfg.ProjectorGroup,
		[]string{orders.TopicOrderPaid, orders.TopicDeliveryCreated, orders.TopicDeliveryStatus},
		cfg.ProjectorWorkers,
		logger,
	)

	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx, svc.Handle) }()

	logger.Info("projector running",
		zap.String("group", cfg.ProjectorGroup),
		zap.Int("workers", cfg.ProjectorWorkers))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		logger.Info("shutting down...")
		cancel()
		<-done
	case err := <-done:
		if err != nil {
			logger.Fatal("consumer stopped", zap.Error(err))
		}
	}
}
