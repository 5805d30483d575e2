package config

import (
	"errors"
	"fmt"
	"os"

	"fomeninja/internal/models"
	"fomeninja/internal/schedule"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// RestaurantConfig describes the service day grid and its capacity model.
// Capacity overrides are keyed by slot label; every other label falls back
// to DefaultCapacity.
type RestaurantConfig struct {
	OpenHour        int            `yaml:"open_hour"`
	CloseHour       int            `yaml:"close_hour"`
	DefaultCapacity int            `yaml:"default_capacity"`
	Capacity        map[string]int `yaml:"capacity"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	QueueKey string `yaml:"queue_key"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; only the config file is required.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Restaurant.OpenHour < 0 || c.Restaurant.OpenHour > 23 {
		return fmt.Errorf("invalid open_hour: %d", c.Restaurant.OpenHour)
	}
	if c.Restaurant.CloseHour < c.Restaurant.OpenHour || c.Restaurant.CloseHour > 23 {
		return fmt.Errorf("invalid close_hour: %d", c.Restaurant.CloseHour)
	}
	return c.validateCapacity()
}

func (c *Config) validateCapacity() error {
	if len(c.Restaurant.Capacity) == 0 {
		return nil
	}

	labels := make(map[string]bool)
	for _, label := range schedule.GenerateSlots(c.Restaurant.OpenHour, c.Restaurant.CloseHour) {
		labels[label] = true
	}

	for label, capacity := range c.Restaurant.Capacity {
		if !labels[label] {
			return fmt.Errorf("capacity override %q is not a slot of the opening hours grid", label)
		}
		if capacity <= 0 {
			return fmt.Errorf("capacity override %q must be positive, got %d", label, capacity)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Restaurant.OpenHour == 0 && c.Restaurant.CloseHour == 0 {
		c.Restaurant.OpenHour = models.DefaultOpenHour
		c.Restaurant.CloseHour = models.DefaultCloseHour
	}
	if c.Restaurant.DefaultCapacity == 0 {
		c.Restaurant.DefaultCapacity = models.DefaultSlotCapacity
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
