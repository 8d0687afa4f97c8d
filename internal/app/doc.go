// Package app wires the sales report server: configuration, logging,
// OpenTelemetry, the report and health services, the chi router and the
// HTTP server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, .env, environment, YAML file)
//	2. Initialize the slog logger and the OpenTelemetry providers
//	3. Create the report metrics and services
//	4. Build the router and its middleware chain
//	5. Create the HTTP server
//
// # Routes
//
//	POST /api/reports          compute a report from an uploaded archive
//	POST /api/reports/options  list filter values found in an archive
//	GET  /api/health           liveness, readiness under /live and /ready
//	GET  /api/version          build and format versions
//	GET  /metrics              Prometheus exposition
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests are drained within
// the configured shutdown timeout and telemetry providers are flushed.
// Initialization errors are returned to the caller; the package never
// calls os.Exit.
package app
