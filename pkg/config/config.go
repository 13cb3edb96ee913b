package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the matching core service.
type Config struct {
	Pair       string `env:"PAIR,required"` // Trading pair, e.g., BTC/USDT
	BaseAsset  string `env:"BASE_ASSET,required"`
	QuoteAsset string `env:"QUOTE_ASSET,required"`

	KafkaConfig `envPrefix:"KAFKA_"` // Kafka configuration
	RedisConfig `envPrefix:"REDIS_"` // Redis configuration
}

// KafkaConfig holds the configuration for Kafka consumer and producer.
type KafkaConfig struct {
	OrderTopic string   `env:"ORDER_TOPIC,required"`
	TradeTopic string   `env:"TRADE_TOPIC,required"`
	GroupID    string   `env:"GROUP_ID" envDefault:"default_group"`
	Brokers    []string `env:"BROKER,required"`
}

// RedisConfig holds the configuration for Redis client.
type RedisConfig struct {
	Addr     string `env:"ADDRESS,required"`
	Password string `env:"PASSWORD" envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}
