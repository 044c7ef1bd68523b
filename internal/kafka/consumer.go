package kafka

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"autochase/internal/logging"
	"autochase/internal/outbox"
)

type Config struct {
	Broker  string
	Topic   string
	GroupID string
}

// Consumer listens for invoice lifecycle events and triggers a schedule
// regeneration for the affected workspace. The invoice-management system
// owns the data; this service only reacts.
type Consumer struct {
	reader *kafkago.Reader
	svc    *outbox.Service
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

type invoiceEvent struct {
	Type      string `json:"type"`
	Workspace string `json:"workspace"`
	InvoiceID string `json:"invoice_id"`
}

func NewConsumer(cfg Config, svc *outbox.Service, logger *logging.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{cfg.Broker},
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{reader: reader, svc: svc, logger: logger, ctx: ctx, cancel: cancel}
}

func (c *Consumer) Start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started")
		for {
			msg, err := c.reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var ev invoiceEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				c.logger.Errorf("Unmarshal message failed: %v", err)
				continue
			}
			if ev.Workspace == "" {
				c.logger.Errorf("Invalid message: missing workspace")
				continue
			}

			switch ev.Type {
			case "invoice.created", "invoice.updated", "invoice.paid":
				if _, err := c.svc.Regenerate(c.ctx, ev.Workspace); err != nil {
					c.logger.Errorf("Regenerate after %s failed for workspace %s: %v", ev.Type, ev.Workspace, err)
				}
			default:
				c.logger.Debugf("Ignoring event type %q", ev.Type)
			}
		}
	}()
}

func (c *Consumer) Close() {
	c.cancel()
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Kafka reader close failed: %v", err)
	}
}
