package config

import "time"

// Application constants
const (
	AppName    = "Sales Report"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. SALES_SERVER_PORT
	EnvPrefix = "SALES"
	// EnvConfigFile names the YAML file overlaid on top of env values
	EnvConfigFile = "SALES_CONFIG_FILE"
	// DotEnvFile is loaded before env processing when present
	DotEnvFile = ".env"


	// Operation timeouts
	ReportRunTimeout = 5 * time.Minute

	// API endpoints
	APIBasePath     = "/api"
	ReportsEndpoint = "/api/reports"
	HealthEndpoint  = "/health"
	MetricsEndpoint = "/metrics"
)

// DefaultConfigLocations are searched in order when no config file is named
var DefaultConfigLocations = []string{
	"salesreport.yaml",
	"config/salesreport.yaml",
}
