package config

import (
	"os"
	"path/filepath"
	"testing"

	"fomeninja/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "fomeninja"
  environment: "test"
restaurant:
  open_hour: 11
  close_hour: 22
  default_capacity: 20
  capacity:
    "20:00": 30
database:
  path: "test.db"
api:
  port: 8085
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "fomeninja" {
		t.Errorf("expected app name fomeninja, got %s", cfg.App.Name)
	}
	if cfg.Restaurant.OpenHour != 11 || cfg.Restaurant.CloseHour != 22 {
		t.Errorf("expected opening hours 11..22, got %d..%d", cfg.Restaurant.OpenHour, cfg.Restaurant.CloseHour)
	}
	if cfg.Restaurant.Capacity["20:00"] != 30 {
		t.Errorf("expected capacity override 30 for 20:00, got %d", cfg.Restaurant.Capacity["20:00"])
	}
	if cfg.API.Port != 8085 {
		t.Errorf("expected API port 8085, got %d", cfg.API.Port)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_DB_PATH", "expanded.db")

	yamlContent := `
database:
  path: "${TEST_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "expanded.db" {
		t.Errorf("expected expanded database path, got %s", cfg.Database.Path)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Restaurant: RestaurantConfig{OpenHour: 11, CloseHour: 22, DefaultCapacity: 20},
				Database:   DatabaseConfig{Path: "test.db"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				Restaurant: RestaurantConfig{OpenHour: 11, CloseHour: 22},
			},
			wantErr: true,
		},
		{
			name: "close before open",
			cfg: Config{
				Restaurant: RestaurantConfig{OpenHour: 18, CloseHour: 11},
				Database:   DatabaseConfig{Path: "test.db"},
			},
			wantErr: true,
		},
		{
			name: "open hour out of range",
			cfg: Config{
				Restaurant: RestaurantConfig{OpenHour: -1, CloseHour: 22},
				Database:   DatabaseConfig{Path: "test.db"},
			},
			wantErr: true,
		},
		{
			name: "capacity override off the grid",
			cfg: Config{
				Restaurant: RestaurantConfig{
					OpenHour:  11,
					CloseHour: 22,
					Capacity:  map[string]int{"23:00": 10},
				},
				Database: DatabaseConfig{Path: "test.db"},
			},
			wantErr: true,
		},
		{
			name: "non-positive capacity override",
			cfg: Config{
				Restaurant: RestaurantConfig{
					OpenHour:  11,
					CloseHour: 22,
					Capacity:  map[string]int{"19:00": 0},
				},
				Database: DatabaseConfig{Path: "test.db"},
			},
			wantErr: true,
		},
		{
			name: "valid capacity override",
			cfg: Config{
				Restaurant: RestaurantConfig{
					OpenHour:  11,
					CloseHour: 22,
					Capacity:  map[string]int{"19:00": 30, "20:30": 25},
				},
				Database: DatabaseConfig{Path: "test.db"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Restaurant.OpenHour != models.DefaultOpenHour {
		t.Errorf("expected default open hour %d, got %d", models.DefaultOpenHour, cfg.Restaurant.OpenHour)
	}
	if cfg.Restaurant.CloseHour != models.DefaultCloseHour {
		t.Errorf("expected default close hour %d, got %d", models.DefaultCloseHour, cfg.Restaurant.CloseHour)
	}
	if cfg.Restaurant.DefaultCapacity != models.DefaultSlotCapacity {
		t.Errorf("expected default capacity %d, got %d", models.DefaultSlotCapacity, cfg.Restaurant.DefaultCapacity)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default API key header x-api-key, got %s", cfg.API.Auth.HeaderAPIKey)
	}
	if cfg.Exports.Path != "exports" {
		t.Errorf("expected default exports path, got %s", cfg.Exports.Path)
	}
}

func TestApplyDefaultsKeepsExplicitHours(t *testing.T) {
	cfg := &Config{Restaurant: RestaurantConfig{OpenHour: 9, CloseHour: 17}}
	cfg.applyDefaults()

	if cfg.Restaurant.OpenHour != 9 || cfg.Restaurant.CloseHour != 17 {
		t.Errorf("expected explicit hours 9..17 kept, got %d..%d", cfg.Restaurant.OpenHour, cfg.Restaurant.CloseHour)
	}
}

func TestApplyDefaultsPrometheusPort(t *testing.T) {
	cfg := &Config{Monitoring: MonitoringConfig{PrometheusEnabled: true}}
	cfg.applyDefaults()

	if cfg.Monitoring.PrometheusPort != 9090 {
		t.Errorf("expected default prometheus port 9090, got %d", cfg.Monitoring.PrometheusPort)
	}
}
