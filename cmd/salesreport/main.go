package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"salesreport/internal/config"
	"salesreport/internal/dataprocessing"
	"salesreport/internal/exporter"
	"salesreport/internal/infrastructure"
	"salesreport/internal/services"
	"salesreport/internal/validation"
	"salesreport/pkg/contracts"
	api "salesreport/pkg/contracts/api/v1"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitNoData = 2
)

// listFlag collects a repeatable, comma separated flag
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}

type options struct {
	archive    string
	start      string
	end        string
	brands     listFlag
	families   listFlag
	zones      listFlag
	offset     string
	out        string
	bom        bool
	listOnly   bool
	configPath string
	version    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one report and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return exitFailed
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitFailed
	}

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.TraceWriter = stderr
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return exitFailed
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateReportMetrics(providers.Meter)
	if err != nil {
		logger.Error("Failed to create metrics", slog.String("error", err.Error()))
		return exitFailed
	}

	svc, err := services.NewReportService(cfg.Report, providers.Tracer, metrics, logger)
	if err != nil {
		logger.Error("Failed to create report service", slog.String("error", err.Error()))
		return exitFailed
	}

	files := validation.NewFileValidator(logger)
	if err := files.ValidateArchive(opts.archive); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailed
	}
	if !opts.listOnly {
		if err := files.ValidateOutputFile(opts.out); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailed
		}
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	archive, err := os.ReadFile(opts.archive)
	if err != nil {
		logger.Error("Failed to read archive",
			slog.String("archive", opts.archive),
			slog.String("error", err.Error()))
		return exitFailed
	}

	if opts.listOnly {
		return printOptions(ctx, svc, archive, stdout, logger)
	}
	return runReport(ctx, svc, archive, opts, stdout, stderr, logger)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.archive, "archive", "", "zip archive of sales spreadsheets (required)")
	fs.StringVar(&opts.start, "start", "", "first day of the analysis window, YYYY-MM-DD")
	fs.StringVar(&opts.end, "end", "", "last day of the analysis window, YYYY-MM-DD")
	fs.Var(&opts.brands, "brand", "brand to keep (repeatable or comma separated)")
	fs.Var(&opts.families, "family", "family to keep (repeatable or comma separated)")
	fs.Var(&opts.zones, "zone", "zone to keep (repeatable or comma separated)")
	fs.StringVar(&opts.offset, "offset", "", "threshold offset added to the monthly average")
	fs.StringVar(&opts.out, "out", exporter.ReportFileName, "CSV output path, - for stdout")
	fs.BoolVar(&opts.bom, "bom", false, "prefix the CSV with a UTF-8 byte order mark")
	fs.BoolVar(&opts.listOnly, "options", false, "print the filter values found in the archive as JSON and exit")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.archive == "" && !opts.version {
		return nil, errors.New("-archive is required")
	}
	return opts, nil
}

func printOptions(ctx context.Context, svc *services.ReportService, archive []byte, stdout io.Writer, logger *slog.Logger) int {
	opts, err := svc.Options(ctx, archive)
	if err != nil {
		return failure(logger, err)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(opts); err != nil {
		logger.Error("Failed to write options", slog.String("error", err.Error()))
		return exitFailed
	}
	return exitOK
}

func runReport(ctx context.Context, svc *services.ReportService, archive []byte, opts *options, stdout, stderr io.Writer, logger *slog.Logger) int {
	req := api.ReportRequest{
		StartDate:       opts.start,
		EndDate:         opts.end,
		Brands:          opts.brands,
		Families:        opts.families,
		Zones:           opts.zones,
		ThresholdOffset: opts.offset,
	}
	window, offset := svc.Defaults()
	criteria, offset, err := req.Criteria(window, offset)
	if err != nil {
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		return exitFailed
	}

	report, err := svc.ComputeReport(ctx, archive, criteria, offset)
	if err != nil {
		return failure(logger, err)
	}

	d := report.Diagnostics
	fmt.Fprintf(stderr, "rows: %d total, %d after date, %d after brand, %d after family, %d after zone\n",
		d.Total, d.AfterDate, d.AfterBrand, d.AfterFamily, d.AfterZone)

	if report.Empty() {
		fmt.Fprintln(stderr, "no rows matched the filters")
		return exitOK
	}

	writer := exporter.NewCSVWriter(logger)
	if opts.out == "-" {
		err = writer.WriteReport(stdout, report.Table, opts.bom)
	} else {
		err = writer.WriteReportFile(opts.out, report.Table, opts.bom)
	}
	if err != nil {
		logger.Error("Failed to write report", slog.String("error", err.Error()))
		return exitFailed
	}

	fmt.Fprintf(stderr, "%d products written to %s\n", len(report.Table.Rows), opts.out)
	return exitOK
}

// failure logs err and maps it to an exit code
func failure(logger *slog.Logger, err error) int {
	logger.Error("Report failed", slog.String("error", err.Error()))
	if errors.Is(err, dataprocessing.ErrNoData) {
		return exitNoData
	}
	return exitFailed
}
