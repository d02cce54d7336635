package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/checkout"
	"github.com/kingdavidadedeji10/float-business/internal/config"
	"github.com/kingdavidadedeji10/float-business/internal/httpx"
	kafkax "github.com/kingdavidadedeji10/float-business/internal/kafka"
	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/paystack"
	"github.com/kingdavidadedeji10/float-business/internal/postgres"
	"github.com/kingdavidadedeji10/float-business/internal/reconcile"
	"github.com/kingdavidadedeji10/float-business/internal/redisx"
	"github.com/kingdavidadedeji10/float-business/internal/sendbox"
	"github.com/kingdavidadedeji10/float-business/internal/shipping"
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
	if cfg.PaystackSecretKey == "" || cfg.PaystackWebhookSecret == "" {
		logger.Fatal("PAYSTACK_SECRET_KEY and PAYSTACK_WEBHOOK_SECRET are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPaid, 1024, logger)
	pPaid.Start(ctx)
	pDeliveryCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicDeliveryCreated, 1024, logger)
	pDeliveryCreated.Start(ctx)
	pDeliveryStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicDeliveryStatus, 1024, logger)
	pDeliveryStatus.Start(ctx)

	// Repos
	orderRepo := &orders.Repo{DB: db}
	catalogRepo := &orders.CatalogRepo{DB: db}
	deliveryRepo := &orders.DeliveryRepo{DB: db}

	// Provider clients
	paystackClient := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	sendboxClient := sendbox.NewClient(cfg.SendboxBaseURL, cfg.SendboxAPIKey)

	// Services
	dispatcher := &shipping.Dispatcher{
		Deliveries:  deliveryRepo,
		Courier:     sendboxClient,
		Producer:    pDeliveryCreated,
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	}
	tracker := &shipping.Tracker{
		Deliveries:  deliveryRepo,
		Producer:    pDeliveryStatus,
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	}
	reconciler := &reconcile.Service{
		Orders:      orderRepo,
		Catalog:     catalogRepo,
		Dispatcher:  dispatcher,
		Redis:       rdb,
		Producer:    pPaid,
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	}
	checkoutSvc := &checkout.Service{
		Orders:   orderRepo,
		Catalog:  catalogRepo,
		Payments: paystackClient,
		BaseURL:  cfg.AppBaseURL,
		Logger:   logger,
	}

	// Router & handlers
	router := httpx.NewRouter()
	(&httpx.CheckoutHandler{Checkout: checkoutSvc, Logger: logger}).Register(router)
	(&httpx.WebhooksHandler{
		Reconciler:     reconciler,
		Tracker:        tracker,
		PaystackSecret: cfg.PaystackWebhookSecret,
		SendboxSecret:  cfg.SendboxWebhookSecret,
		Logger:         logger,
	}).Register(router)
	(&httpx.DeliveryHandler{Courier: sendboxClient, Dispatcher: dispatcher, Logger: logger}).Register(router)
	(&httpx.OrdersHandler{
		Orders:     orderRepo,
		Deliveries: deliveryRepo,
		Catalog:    catalogRepo,
		Redis:      rdb,
		Logger:     logger,
	}).Register(router)
	(&httpx.StoresHandler{Catalog: catalogRepo, Payments: paystackClient, Logger: logger}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes -> flush & close writers, then drain
	pPaid.Close()
	pDeliveryCreated.Close()
	pDeliveryStatus.Close()
	pPaid.WaitClosed()
	pDeliveryCreated.WaitClosed()
	pDeliveryStatus.WaitClosed()
}
