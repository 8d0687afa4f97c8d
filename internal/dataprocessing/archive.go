package dataprocessing

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"salesreport/pkg/contracts/domain"
)

// DefaultExtensions are the spreadsheet formats read from an archive
var DefaultExtensions = []string{".xlsx", ".xlsm"}

// ArchiveLoader combines every spreadsheet of a zip archive into a dataset
type ArchiveLoader struct {
	logger     *slog.Logger
	extensions map[string]struct{}
}

// NewArchiveLoader creates a loader accepting the given extensions
// (case-insensitive, with leading dot). Nil selects DefaultExtensions.
func NewArchiveLoader(logger *slog.Logger, extensions []string) *ArchiveLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &ArchiveLoader{
		logger:     logger.With(slog.String("component", "archive_loader")),
		extensions: exts,
	}
}

// Load reads the archive's spreadsheets in listing order and concatenates
// their normalized rows. An archive without eligible files yields ErrNoData.
func (l *ArchiveLoader) Load(ctx context.Context, r io.ReaderAt, size int64) (*domain.SalesDataset, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, malformedArchive(err)
	}

	ds := &domain.SalesDataset{}
	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !l.Eligible(entry) {
			l.logger.DebugContext(ctx, "skipping archive entry", slog.String("entry", entry.Name))
			continue
		}

		table, err := l.loadEntry(entry)
		if err != nil {
			return nil, err
		}

		ds.Records = append(ds.Records, table.Records...)
		ds.Columns |= table.Columns
		ds.Sources = append(ds.Sources, table.Source())

		l.logger.InfoContext(ctx, "spreadsheet normalized",
			slog.String("file", table.Name),
			slog.Int("rows", len(table.Records)),
			slog.Int("skipped_rows", table.SkippedRows),
			slog.String("columns", table.Columns.String()))
	}

	if len(ds.Sources) == 0 {
		return nil, noData(len(zr.File))
	}

	l.logger.InfoContext(ctx, "archive combined",
		slog.Int("files", len(ds.Sources)),
		slog.Int("records", ds.Len()))

	return ds, nil
}

// Eligible reports whether an archive entry is a spreadsheet to read
func (l *ArchiveLoader) Eligible(entry *zip.File) bool {
	if entry.FileInfo().IsDir() {
		return false
	}
	name := entry.Name
	if strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") {
		return false
	}
	base := path.Base(name)
	if strings.HasPrefix(base, "._") || strings.HasPrefix(base, "~$") {
		return false
	}
	_, ok := l.extensions[strings.ToLower(path.Ext(base))]
	return ok
}

// loadEntry owns the entry stream for the duration of normalization
func (l *ArchiveLoader) loadEntry(entry *zip.File) (*NormalizedTable, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, malformedArchive(fmt.Errorf("open %s: %w", entry.Name, err))
	}
	defer rc.Close()

	return NormalizeWorkbook(entry.Name, rc)
}
