package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type PaymentConfig struct {
	SSLCommerz struct {
		StoreID       string `yaml:"store_id"`
		StorePassword string `yaml:"store_password"`
		APIBase       string `yaml:"api_base"`
		Sandbox       bool   `yaml:"sandbox"`
		SuccessURL    string `yaml:"success_url"`
		FailURL       string `yaml:"fail_url"`
		CancelURL     string `yaml:"cancel_url"`
		IPNURL        string `yaml:"ipn_url"`
	} `yaml:"sslcommerz"`
}

type SchedulerConfig struct {
	ExpiryInterval     time.Duration `yaml:"expiry_interval"`
	ReconcileInterval  time.Duration `yaml:"reconcile_interval"`
	ReconcileStaleAge  time.Duration `yaml:"reconcile_stale_age"`
	ReconcileBatchSize int           `yaml:"reconcile_batch_size"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig() (*Config, error) {
	var configPath string
	var dev bool
	flag.StringVar(&configPath, "config", "config.yaml", "path to config yaml")
	flag.BoolVar(&dev, "dev", false, "development mode")
	flag.Parse()

	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Payment.SSLCommerz.StoreID == "" || cfg.Payment.SSLCommerz.StorePassword == "" {
		return nil, errors.New("payment.sslcommerz store credentials are required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Payment.SSLCommerz.APIBase == "" {
		if cfg.Payment.SSLCommerz.Sandbox {
			cfg.Payment.SSLCommerz.APIBase = "https://sandbox.sslcommerz.com"
		} else {
			cfg.Payment.SSLCommerz.APIBase = "https://securepay.sslcommerz.com"
		}
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = time.Hour
	}
	if cfg.Scheduler.ReconcileInterval <= 0 {
		cfg.Scheduler.ReconcileInterval = 15 * time.Minute
	}
	if cfg.Scheduler.ReconcileStaleAge <= 0 {
		cfg.Scheduler.ReconcileStaleAge = 30 * time.Minute
	}
	if cfg.Scheduler.ReconcileBatchSize <= 0 {
		cfg.Scheduler.ReconcileBatchSize = 50
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "companion-marketplace"
	}
}
