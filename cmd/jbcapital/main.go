package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mthadube/jbcapital-sub001/internal/origination/application"
	"github.com/Mthadube/jbcapital-sub001/internal/origination/domain"
	"github.com/Mthadube/jbcapital-sub001/internal/origination/infrastructure/dispatch"
	"github.com/Mthadube/jbcapital-sub001/internal/origination/infrastructure/gateway"
	ohttp "github.com/Mthadube/jbcapital-sub001/internal/origination/interfaces/http"
	"github.com/Mthadube/jbcapital-sub001/pkg/config"
	"github.com/Mthadube/jbcapital-sub001/pkg/logger"
	"github.com/Mthadube/jbcapital-sub001/pkg/metrics"
	"github.com/Mthadube/jbcapital-sub001/pkg/middleware"
	"github.com/Mthadube/jbcapital-sub001/pkg/mq"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Init(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log.Info("starting domain engine", "service", cfg.ServiceName, "environment", cfg.Environment)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
	}

	restClient := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Gateway.BaseURL,
		APIKey:  cfg.Gateway.APIKey,
		Timeout: time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
	}, m, log)
	gateways := restClient.Gateways()

	var sms domain.SMSGateway
	if cfg.SMS.Enabled {
		sms = gateway.NewSMSClient(gateway.SMSConfig{
			BaseURL:  cfg.SMS.BaseURL,
			APIToken: cfg.SMS.APIToken,
			Sender:   cfg.SMS.Sender,
		}, log)
	} else {
		sms = gateway.NopSMS{Logger: log}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var queue application.TaskQueue
	var producer *mq.Producer
	if cfg.Dispatch.Kafka.Enabled {
		producer = mq.NewProducer(mq.ProducerConfig{Brokers: cfg.Dispatch.Kafka.Brokers})
		queue = dispatch.NewKafkaQueue(producer, cfg.Dispatch.Kafka.Topic, m, log)
		log.Info("side-effect dispatch via kafka", "topic", cfg.Dispatch.Kafka.Topic)
	} else {
		local := dispatch.NewQueue(cfg.Dispatch.QueueSize, sms, m, log)
		go local.Run(ctx)
		queue = local
	}

	store := application.NewStore(gateways, m, log)
	dispatcher := application.NewDispatcher(store, queue, m, log)
	workflow := application.NewWorkflow(store, dispatcher, cfg.Workflow.MaxTermMonths, m, log)
	payments := application.NewPayments(store, dispatcher, m, log)
	contracts := application.NewContracts(store, gateways.Contracts, dispatcher, log)

	// Populate the mirror before serving. A failed initial refresh is not
	// fatal; the mirror starts empty and an operator can retry.
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := store.RefreshAll(refreshCtx); err != nil {
		log.Warn("initial refresh failed, starting with empty mirror", "error", err)
	}
	cancel()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.Logging(log), middleware.CORS())

	router.GET("/sys/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})
	if m != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	handler := ohttp.NewHandler(store, workflow, payments, contracts, log)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("admin facade listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("kafka producer close failed", "error", err)
		}
	}
	log.Info("stopped")
}
