package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"salesreport/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"104857600"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/salesreport.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// ReportConfig contains defaults for report runs
type ReportConfig struct {
	DefaultStartDate       string   `yaml:"default_start_date" envconfig:"DEFAULT_START_DATE" default:"2023-07-01"`
	DefaultEndDate         string   `yaml:"default_end_date" envconfig:"DEFAULT_END_DATE" default:"2023-12-31"`
	DefaultThresholdOffset float64  `yaml:"default_threshold_offset" envconfig:"DEFAULT_THRESHOLD_OFFSET" default:"-1"`
	Extensions             []string `yaml:"extensions" envconfig:"EXTENSIONS" default:".xlsx,.xlsm"`
	CacheSize              int      `yaml:"cache_size" envconfig:"CACHE_SIZE" default:"32"`
	MaxConcurrentRuns      int64    `yaml:"max_concurrent_runs" envconfig:"MAX_CONCURRENT_RUNS" default:"4"`
}

// TelemetryConfig contains OpenTelemetry exporter selection
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" default:"salesreport"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1"`
}

// Load loads configuration from .env, environment variables and the config
// file named by SALES_CONFIG_FILE (or the first default location found).
func Load() (*Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path. Keys present in the file
// override values from the environment.
func LoadFile(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv populates unset environment variables from a dotenv file, if any
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// overlayFile unmarshals the YAML file on top of cfg
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the first existing default config location
func findConfigFile() string {
	for _, location := range DefaultConfigLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Security.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("unsupported log output: %s", c.Logging.Output)
	}

	if _, err := c.Report.DefaultWindow(); err != nil {
		return err
	}
	if len(c.Report.Extensions) == 0 {
		return fmt.Errorf("at least one spreadsheet extension must be configured")
	}
	for _, ext := range c.Report.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Report.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.Report.MaxConcurrentRuns < 1 {
		return fmt.Errorf("max concurrent runs must be at least 1")
	}

	return nil
}

// DefaultWindow returns the configured default analysis window
func (r ReportConfig) DefaultWindow() (domain.DateRange, error) {
	start, err := time.Parse(domain.DateLayout, r.DefaultStartDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid default start date %q: %w", r.DefaultStartDate, err)
	}
	end, err := time.Parse(domain.DateLayout, r.DefaultEndDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("invalid default end date %q: %w", r.DefaultEndDate, err)
	}
	window := domain.DateRange{Start: start, End: end}
	if !window.Valid() {
		return domain.DateRange{}, fmt.Errorf("default start date %s is after end date %s", r.DefaultStartDate, r.DefaultEndDate)
	}
	return window, nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			MaxUploadBytes: 100 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/salesreport.log",
		},
		Report: ReportConfig{
			DefaultStartDate:       "2023-07-01",
			DefaultEndDate:         "2023-12-31",
			DefaultThresholdOffset: -1,
			Extensions:             []string{".xlsx", ".xlsm"},
			CacheSize:              32,
			MaxConcurrentRuns:      4,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "salesreport",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
		},
	}
}
