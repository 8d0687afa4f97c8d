package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "salesreport/internal/errors"
	"salesreport/internal/exporter"
	"salesreport/internal/middleware"
	api "salesreport/pkg/contracts/api/v1"
)

const (
	archiveField     = "archive"
	multipartMemory  = 8 << 20
	contentTypeCSV   = "text/csv"
	formatCSV        = "csv"
	formatJSON       = "json"
	reportStatusHdr  = "X-Report-Status"
	reportRunIDHdr   = "X-Report-Run-ID"
	multipartRequest = "multipart/form-data"
)

// ReportHandler serves report computation over uploaded archives
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.Validator
	csv          *exporter.CSVWriter
	maxUpload    int64
	csvBOM       bool
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler. maxUpload bounds the request
// body in bytes.
func NewReportHandler(service ReportServiceInterface, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	logger = logger.With(slog.String("component", "report_handler"))
	return &ReportHandler{
		service:      service,
		validator:    middleware.NewValidator(),
		csv:          exporter.NewCSVWriter(logger),
		maxUpload:    maxUpload,
		csvBOM:       true,
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.logger, h.errorHandler, multipartRequest))

	r.Post("/", h.CreateReport)
	r.Post("/options", h.GetOptions)
	return r
}

// CreateReport handles POST /api/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	archive, err := h.readArchive(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	req := reportRequestFromForm(r)
	if req.Format == "" {
		req.Format = negotiateFormat(r)
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	window, offset := h.service.Defaults()
	criteria, offset, err := req.Criteria(window, offset)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	report, err := h.service.ComputeReport(ctx, archive, criteria, offset)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set(reportStatusHdr, string(report.Status))
	w.Header().Set(reportRunIDHdr, report.RunID)

	// A run without rows has no table to export; it is answered as JSON
	if req.Format == formatCSV && !report.Empty() {
		w.Header().Set("Content-Type", contentTypeCSV+"; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exporter.ReportFileName}))
		if err := h.csv.WriteReport(w, report.Table, h.csvBOM); err != nil {
			h.logger.ErrorContext(ctx, "failed to stream report CSV",
				slog.String("run_id", report.RunID),
				slog.String("error", err.Error()))
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, report)
}

// GetOptions handles POST /api/reports/options
func (h *ReportHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	archive, err := h.readArchive(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	opts, err := h.service.Options(r.Context(), archive)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// readArchive parses the multipart body and returns the uploaded archive
func (h *ReportHandler) readArchive(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			return nil, apierrors.ErrPayloadTooLarge
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(archiveField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, apierrors.ErrValidation(archiveField, "archive file is required")
		}
		return nil, apierrors.InvalidRequestWithError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apierrors.InvalidRequestWithError(fmt.Errorf("reading %s: %w", header.Filename, err))
	}

	h.logger.DebugContext(r.Context(), "archive received",
		slog.String("filename", header.Filename),
		slog.Int("bytes", len(data)))
	return data, nil
}

// reportRequestFromForm collects the report fields of a parsed multipart form
func reportRequestFromForm(r *http.Request) api.ReportRequest {
	return api.ReportRequest{
		StartDate:       strings.TrimSpace(r.FormValue("start_date")),
		EndDate:         strings.TrimSpace(r.FormValue("end_date")),
		Brands:          formValues(r, "brands"),
		Families:        formValues(r, "families"),
		Zones:           formValues(r, "zones"),
		ThresholdOffset: strings.TrimSpace(r.FormValue("threshold_offset")),
		Format:          strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))),
	}
}

// formValues returns the trimmed non-blank values of a repeatable field
func formValues(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.Form[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// negotiateFormat picks CSV when the client accepts text/csv
func negotiateFormat(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == contentTypeCSV {
			return formatCSV
		}
	}
	return formatJSON
}
