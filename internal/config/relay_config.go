package config

import (
	"fmt"
	"os"
)

// RelayConfig holds configuration for the outbox relay service.
// This is a minimal config that only includes what the relay needs.
type RelayConfig struct {
	DatabaseURL       string
	RabbitMQURL       string
	ActivityQueueName string
	HealthPort        string
	LogLevel          string
	LogFormat         string
}

func LoadRelayConfig() (*RelayConfig, error) {
	cfg := &RelayConfig{
		DatabaseURL:       os.Getenv("DB_CONNECTION_STRING"),
		RabbitMQURL:       os.Getenv("RABBITMQ_URL"),
		ActivityQueueName: getEnv("ACTIVITY_QUEUE_NAME", "console_activity"),
		HealthPort:        getEnv("RELAY_HEALTH_PORT", "8090"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING environment variable is required")
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL environment variable is required")
	}
	return cfg, nil
}
