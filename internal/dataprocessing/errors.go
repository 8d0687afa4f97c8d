package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	apperrors "salesreport/internal/errors"
	"salesreport/pkg/contracts/domain"
)

var (
	// ErrNoData means the archive held no eligible spreadsheet
	ErrNoData = errors.New("archive contains no spreadsheet files")
	// ErrMalformedArchive means the upload is not a readable zip
	ErrMalformedArchive = errors.New("malformed zip archive")
	// ErrInvalidDateRange means the start date is after the end date
	ErrInvalidDateRange = apperrors.ErrInvalidDateRange
)

// FieldError reports a cell that could not be parsed. Row is 1-based and
// counts the header, matching what a spreadsheet user sees.
type FieldError struct {
	File   string
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: row %d, column %q: cannot parse %q: %v", e.File, e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// MissingColumnError reports a file that lacks a required column
type MissingColumnError struct {
	File    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Columns))
	for i, col := range e.Columns {
		names[i] = col
		if canonical := canonicalName(col); canonical != "" && canonical != col {
			names[i] = fmt.Sprintf("%s (%s)", col, canonical)
		}
	}
	return fmt.Sprintf("%s: missing required column(s) %s", e.File, strings.Join(names, ", "))
}

// parseFailure wraps a cell error so the HTTP layer can report its location
func parseFailure(fe *FieldError) *apperrors.AppError {
	return apperrors.NewParsingError("failed to parse spreadsheet value", fe).
		WithContext("file", fe.File).
		WithContext("column", fe.Column).
		WithContext("row", fe.Row).
		WithContext("value", fe.Value)
}

func missingColumns(file string, cols []string) *apperrors.AppError {
	return apperrors.NewParsingError("spreadsheet is missing required columns",
		&MissingColumnError{File: file, Columns: cols}).
		WithContext("file", file).
		WithContext("columns", cols)
}

func noData(archiveEntries int) *apperrors.AppError {
	return apperrors.NewNoDataError("no data", ErrNoData).
		WithContext("entries", archiveEntries)
}

func malformedArchive(cause error) *apperrors.AppError {
	return apperrors.NewArchiveError("cannot read upload", fmt.Errorf("%w: %v", ErrMalformedArchive, cause))
}

func invalidDateRange(start, end string) *apperrors.AppError {
	return apperrors.NewAppValidationError("invalid date range", ErrInvalidDateRange).
		WithContext("start_date", start).
		WithContext("end_date", end)
}

// ValidateWindow rejects an inverted date range.
func ValidateWindow(window domain.DateRange) error {
	if !window.Valid() {
		return invalidDateRange(window.Start.Format(domain.DateLayout), window.End.Format(domain.DateLayout))
	}
	return nil
}
