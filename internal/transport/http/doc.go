// Package http implements the HTTP handlers of the sales report service.
// Handlers stay thin: they parse the multipart upload, validate the form
// fields, call the services layer and render the result.
//
// # Endpoints
//
//	POST /api/reports          archive + filters -> Report (JSON) or CSV attachment
//	POST /api/reports/options  archive -> distinct brands, families and zones
//	GET  /api/health           overall health
//	GET  /api/health/live      liveness
//	GET  /api/health/ready     readiness
//	GET  /api/version          build information
//
// # Errors
//
// Every failure is rendered as RFC 7807 problem details by
// errors.ErrorHandler. Pipeline errors keep their file, column and row
// context under "details".
//
// # Output Format
//
// Reports are JSON unless the request carries ?format=csv or an Accept
// header naming text/csv. A run that ends without rows is always answered
// as JSON with status "no_rows".
package http
