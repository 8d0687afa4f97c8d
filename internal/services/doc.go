// Package services implements the business logic layer of the sales report
// application. It sits between the HTTP handlers and CLI on one side and
// the dataprocessing pipeline on the other.
//
// # Report Runs
//
// ReportService owns the lifecycle of a run:
//
//	report, err := svc.ComputeReport(ctx, archive, criteria, offset)
//
// Every run is assigned a run ID that is attached to the context, so all
// log lines emitted by the loader and analyzer carry it. The number of runs
// in progress is bounded by ReportConfig.MaxConcurrentRuns.
//
// # Dataset Cache
//
// Parsed datasets are cached by a blake2b fingerprint of the archive bytes,
// so an options request followed by several reports over the same upload
// parses the spreadsheets once. Concurrent uploads of the same archive share
// one parse.
//
// # Health
//
// HealthService answers the liveness, readiness and version endpoints.
package services
