// Package config loads the sales report configuration.
//
// Values are resolved in this order, later sources winning:
//
//	1. struct defaults (the `default:` tags)
//	2. a .env file in the working directory, for variables not already set
//	3. SALES_* environment variables
//	4. the YAML file named by SALES_CONFIG_FILE, or salesreport.yaml
//
// Environment variables follow the struct layout:
//
//	SALES_SERVER_PORT=8080
//	SALES_LOGGING_LEVEL=debug
//	SALES_REPORT_DEFAULT_START_DATE=2023-07-01
//	SALES_REPORT_EXTENSIONS=.xlsx,.xlsm
//
// A YAML file mirrors the same sections:
//
//	report:
//	  default_start_date: "2024-01-01"
//	  default_end_date: "2024-06-30"
//	  default_threshold_offset: -1
//
// Load validates the result; an invalid default window or unknown log format
// is rejected before the application starts.
package config
