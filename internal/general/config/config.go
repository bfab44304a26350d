package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gt=0,lte=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Name     string `yaml:"database" validate:"required"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gt=0,lte=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

type ServicesConfig struct {
	TrackingServicePort int `yaml:"tracking_service" validate:"gt=0,lte=65535"`
}

type JWTConfig struct {
	SecretKey string `yaml:"secret_key" validate:"required"`
}

// SimulationConfig tunes the per-shipment playback loop and room fan-out.
type SimulationConfig struct {
	TickIntervalMS      int     `yaml:"tick_interval_ms" validate:"gte=0"`
	DefaultSpeedKMH     float64 `yaml:"default_speed_kmh" validate:"gte=0"`
	SubscriberQueueSize int     `yaml:"subscriber_queue_size" validate:"gte=0"`
}

type Config struct {
	Database   DatabaseConfig   `yaml:"database" validate:"required"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq" validate:"required"`
	Services   ServicesConfig   `yaml:"services"`
	JWT        JWTConfig        `yaml:"jwt" validate:"required"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// LoadFromFile loads config from a YAML file, applies defaults, and
// validates required fields.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	if cfg.Services.TrackingServicePort == 0 {
		cfg.Services.TrackingServicePort = 3002
	}

	if cfg.Simulation.TickIntervalMS == 0 {
		cfg.Simulation.TickIntervalMS = 250
	}
	if cfg.Simulation.DefaultSpeedKMH == 0 {
		cfg.Simulation.DefaultSpeedKMH = 90
	}
	if cfg.Simulation.SubscriberQueueSize == 0 {
		cfg.Simulation.SubscriberQueueSize = 64
	}
}

// TickInterval returns the simulator cadence as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Simulation.TickIntervalMS) * time.Millisecond
}
