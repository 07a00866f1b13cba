package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. TABCLEAN_SERVER_PORT
const EnvPrefix = "TABCLEAN"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format    string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output    string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath  string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	AddSource bool   `yaml:"add_source" envconfig:"ADD_SOURCE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string          `yaml:"host" envconfig:"HOST"`
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gte=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"required_if=Enabled true,gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"required_if=Enabled true,gte=0"`
}

// OutputConfig controls how tables are written
type OutputConfig struct {
	CSVBOM          bool   `yaml:"csv_bom" envconfig:"CSV_BOM"`
	InvalidRowsName string `yaml:"invalid_rows_name" envconfig:"INVALID_ROWS_NAME" validate:"required,excludesall=/\\"`
	SheetNameLimit  int    `yaml:"sheet_name_limit" envconfig:"SHEET_NAME_LIMIT" validate:"min=1,max=31"`
	// DefaultDir is reported by the health check when set
	DefaultDir string `yaml:"default_dir" envconfig:"DEFAULT_DIR"`
}

// TelemetryConfig switches tracing and metrics on
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Tracing       bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	Metrics       bool   `yaml:"metrics" envconfig:"METRICS"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/tabclean.log",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Output: OutputConfig{
			InvalidRowsName: "Invalid_Rows",
			SheetNameLimit:  31,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "tabclean",
			TraceExporter: "none",
			Metrics:       true,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then TABCLEAN_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// no default tags: unset variables leave file values in place
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FindConfigFile returns the first config file found in the usual places, or ""
func FindConfigFile() string {
	for _, location := range []string{
		"tabclean.yaml",
		"configs/tabclean.yaml",
		"config.yaml",
	} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address of the server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
