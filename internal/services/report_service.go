package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"salesreport/internal/config"
	"salesreport/internal/dataprocessing"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/infrastructure"
	"salesreport/pkg/contracts/domain"
)

// datasetLoader parses an archive into a dataset
type datasetLoader interface {
	Load(ctx context.Context, r io.ReaderAt, size int64) (*domain.SalesDataset, error)
}

// ReportService loads uploaded archives and computes reports over them
type ReportService struct {
	loader   datasetLoader
	analyzer *dataprocessing.Analyzer
	cache    *datasetCache
	loads    singleflight.Group
	slots    *semaphore.Weighted
	tracer   trace.Tracer
	metrics  *infrastructure.ReportMetrics
	logger   *slog.Logger
	window   domain.DateRange
	offset   decimal.Decimal
}

// NewReportService creates a report service. A nil tracer uses the global
// provider; nil metrics disables recording.
func NewReportService(cfg config.ReportConfig, tracer trace.Tracer, metrics *infrastructure.ReportMetrics, logger *slog.Logger) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	window, err := cfg.DefaultWindow()
	if err != nil {
		return nil, apperrors.NewConfigError("invalid default report window", err)
	}
	slots := cfg.MaxConcurrentRuns
	if slots <= 0 {
		slots = 1
	}

	logger = infrastructure.WithComponent(logger, "report_service")
	logger.Info("ReportService initialized",
		slog.String("default_start", window.Start.Format(domain.DateLayout)),
		slog.String("default_end", window.End.Format(domain.DateLayout)),
		slog.Float64("default_offset", cfg.DefaultThresholdOffset),
		slog.Int("cache_size", cfg.CacheSize),
		slog.Int64("max_concurrent_runs", slots))

	return &ReportService{
		loader:   dataprocessing.NewArchiveLoader(logger, cfg.Extensions),
		analyzer: dataprocessing.NewAnalyzer(logger, tracer),
		cache:    newDatasetCache(cfg.CacheSize),
		slots:    semaphore.NewWeighted(slots),
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		window:   window,
		offset:   decimal.NewFromFloat(cfg.DefaultThresholdOffset),
	}, nil
}

// Defaults returns the window and threshold offset used when a request
// leaves them out.
func (s *ReportService) Defaults() (domain.DateRange, decimal.Decimal) {
	return s.window, s.offset
}

// ComputeReport runs the full pipeline over archive. Each call gets a fresh
// run ID, carried on the returned report and on every log line of the run.
func (s *ReportService) ComputeReport(ctx context.Context, archive []byte, criteria domain.FilterCriteria, offset decimal.Decimal) (*domain.Report, error) {
	runID := infrastructure.NewRunID()
	ctx = infrastructure.WithRunID(ctx, runID)
	ctx, span := s.tracer.Start(ctx, "report.compute", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("archive.bytes", len(archive)),
	))
	defer span.End()

	start := time.Now()
	report, err := s.compute(ctx, archive, criteria, offset)
	if err != nil {
		s.fail(ctx, err)
		return nil, err
	}
	report.RunID = runID

	rows, products := report.Diagnostics.Final(), 0
	if report.Table != nil {
		products = len(report.Table.Rows)
	}
	s.metrics.RecordReportRun(ctx, string(report.Status), time.Since(start), rows, products)
	span.SetAttributes(attribute.String("report.status", string(report.Status)))

	s.logger.InfoContext(ctx, "report run completed",
		slog.String("status", string(report.Status)),
		slog.Int("rows", rows),
		slog.Int("products", products),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

func (s *ReportService) compute(ctx context.Context, archive []byte, criteria domain.FilterCriteria, offset decimal.Decimal) (*domain.Report, error) {
	if err := dataprocessing.ValidateWindow(criteria.DateRange); err != nil {
		return nil, err
	}
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a report slot: %w", err)
	}
	defer s.slots.Release(1)

	s.metrics.TrackActiveRun(ctx, 1)
	defer s.metrics.TrackActiveRun(ctx, -1)

	ds, err := s.dataset(ctx, archive)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, ds, criteria, offset)
}

// Options lists the brands, families and zones found in archive
func (s *ReportService) Options(ctx context.Context, archive []byte) (domain.FilterOptions, error) {
	ctx, span := s.tracer.Start(ctx, "report.options")
	defer span.End()

	ds, err := s.dataset(ctx, archive)
	if err != nil {
		s.fail(ctx, err)
		return domain.FilterOptions{}, err
	}
	opts := dataprocessing.CollectOptions(ds)

	s.logger.DebugContext(ctx, "filter options collected",
		slog.Int("brands", len(opts.Brands)),
		slog.Int("families", len(opts.Families)),
		slog.Int("zones", len(opts.Zones)))
	return opts, nil
}

// dataset returns the parsed archive, from cache when the same bytes were
// seen before. Concurrent uploads of one archive share a single parse.
func (s *ReportService) dataset(ctx context.Context, archive []byte) (*domain.SalesDataset, error) {
	if len(archive) == 0 {
		return nil, apperrors.NewAppValidationError("no archive uploaded", ErrEmptyArchive)
	}

	key := Fingerprint(archive)
	if ds, ok := s.cache.get(key); ok {
		s.metrics.RecordCache(ctx, true)
		s.logger.DebugContext(ctx, "dataset cache hit", slog.String("fingerprint", key[:16]))
		return ds, nil
	}
	s.metrics.RecordCache(ctx, false)

	// The load outlives any single caller. Each caller waits on its own ctx.
	loads := s.loads.DoChan(key, func() (interface{}, error) {
		loadCtx, span := s.tracer.Start(context.WithoutCancel(ctx), "report.load")
		defer span.End()

		ds, err := s.loader.Load(loadCtx, bytes.NewReader(archive), int64(len(archive)))
		if err != nil {
			infrastructure.RecordError(loadCtx, err)
			return nil, err
		}
		span.SetAttributes(
			attribute.Int("files", len(ds.Sources)),
			attribute.Int("records", ds.Len()),
		)
		s.metrics.RecordIngest(loadCtx, len(ds.Sources), ds.Len())
		s.cache.put(key, ds)
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for archive load: %w", ctx.Err())
	case res := <-loads:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "dataset load shared with concurrent request", slog.String("fingerprint", key[:16]))
		}
		return res.Val.(*domain.SalesDataset), nil
	}
}

func (s *ReportService) fail(ctx context.Context, err error) {
	infrastructure.RecordError(ctx, err)

	errType := string(apperrors.TypeOf(err))
	if errType == "" {
		errType = "INTERNAL"
	}
	s.metrics.RecordError(ctx, errType)
	s.logger.WarnContext(ctx, "report run failed",
		slog.String("error_type", errType),
		slog.String("error", err.Error()))
}
