package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		FromName   string
	}
	Telegram struct {
		Token  string
		ChatID string
	}
	PayFast struct {
		MerchantID  string
		MerchantKey string
		Passphrase  string
		Sandbox     bool
		AllowedIPs  []string
	}
	Outbox struct {
		QueueSize        int
		MaxWorkers       int
		DispatchInterval int // seconds
	}
	Workspace string
	Logging   struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Database DSN
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Kafka settings; the consumer is skipped when no broker is set
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Email settings
	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.FromName = os.Getenv("EMAIL_FROM_NAME")

	// Telegram delivery channel (optional)
	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	cfg.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")

	// PayFast gateway
	cfg.PayFast.MerchantID = os.Getenv("PAYFAST_MERCHANT_ID")
	cfg.PayFast.MerchantKey = os.Getenv("PAYFAST_MERCHANT_KEY")
	cfg.PayFast.Passphrase = os.Getenv("PAYFAST_PASSPHRASE")
	cfg.PayFast.Sandbox = envBool("PAYFAST_SANDBOX", true)
	cfg.PayFast.AllowedIPs = splitCSV(os.Getenv("PAYFAST_IPS"))

	// Outbox dispatcher settings
	if qs, err := strconv.Atoi(os.Getenv("QUEUE_SIZE")); err == nil {
		cfg.Outbox.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("MAX_WORKERS")); err == nil {
		cfg.Outbox.MaxWorkers = mw
	}
	if di, err := strconv.Atoi(os.Getenv("DISPATCH_INTERVAL")); err == nil {
		cfg.Outbox.DispatchInterval = di
	}

	cfg.Workspace = os.Getenv("AC_WORKSPACE_ID")
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "invoice_events"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "autochase"
	}
	if cfg.Outbox.QueueSize == 0 {
		cfg.Outbox.QueueSize = 500
	}
	if cfg.Outbox.MaxWorkers == 0 {
		cfg.Outbox.MaxWorkers = 10
	}
	if cfg.Outbox.DispatchInterval == 0 {
		cfg.Outbox.DispatchInterval = 60
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "default"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
