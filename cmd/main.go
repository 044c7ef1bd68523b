package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"autochase/internal/api"
	"autochase/internal/config"
	"autochase/internal/db"
	"autochase/internal/kafka"
	"autochase/internal/logging"
	"autochase/internal/outbox"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Connect to database
	dbConn, err := db.New(cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()

	// Delivery channels: email is the channel of record, telegram an
	// optional internal copy
	senders := []outbox.Sender{outbox.NewEmailSender(cfg)}
	if cfg.Telegram.Token != "" {
		tg, err := outbox.NewTelegramSender(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			logger.Errorf("Telegram init failed, continuing without it: %v", err)
		} else {
			senders = append(senders, tg)
		}
	}

	// Start the outbox service
	svc := outbox.New(dbConn, logger, cfg, senders...)
	var wg sync.WaitGroup
	svc.Start(&wg)

	// Start Kafka consumer when a broker is configured
	var consumer *kafka.Consumer
	if cfg.Kafka.Broker != "" {
		consumer = kafka.NewConsumer(kafka.Config{
			Broker:  cfg.Kafka.Broker,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, svc, logger)
		consumer.Start(&wg)
	}

	// Start API server
	h := api.NewHandler(dbConn, svc, nil, svc.WS(), logger, cfg)
	router := api.NewRouter(h, logger, cfg)
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API run failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Infof("Shutting down...")
	if consumer != nil {
		consumer.Close()
	}
	svc.Stop()
	wg.Wait()
	logger.Infof("Service stopped")
}
