package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "salesreport/internal/errors"
	"salesreport/internal/exporter"
	"salesreport/internal/shared/testutil"
	"salesreport/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ComputeReport(ctx context.Context, archive []byte, criteria domain.FilterCriteria, offset decimal.Decimal) (*domain.Report, error) {
	args := m.Called(archive, criteria, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Options(ctx context.Context, archive []byte) (domain.FilterOptions, error) {
	args := m.Called(archive)
	return args.Get(0).(domain.FilterOptions), args.Error(1)
}

func (m *MockReportService) Defaults() (domain.DateRange, decimal.Decimal) {
	return domain.DateRange{
		Start: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
	}, decimal.NewFromInt(-1)
}

var (
	jul = domain.Month{Year: 2023, Month: time.July}
	aug = domain.Month{Year: 2023, Month: time.August}
)

func okReport() *domain.Report {
	return &domain.Report{
		RunID:  "run-1",
		Status: domain.ReportStatusOK,
		Table: &domain.ResultTable{
			Months:        []domain.Month{jul, aug},
			MonthsInRange: 6,
			Rows: []domain.ProductSummary{{
				Reference:                   "X1",
				TotalQuantity:               decimal.NewFromInt(18),
				MonthlyAverage:              decimal.NewFromInt(3),
				ThresholdValue:              decimal.NewFromInt(2),
				BelowThresholdMonthCount:    0,
				BelowThresholdMonths:        []domain.Month{},
				BelowThresholdTotalQuantity: decimal.Zero,
				MonthlyQuantities: []domain.MonthQuantity{
					{Month: jul, Quantity: decimal.Zero},
					{Month: aug, Quantity: decimal.Zero},
				},
			}},
		},
	}
}

type upload struct {
	archive []byte
	fields  map[string][]string
}

func (u upload) request(t *testing.T, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if u.archive != nil {
		part, err := mw.CreateFormFile(archiveField, "sales.zip")
		require.NoError(t, err)
		_, err = part.Write(u.archive)
		require.NoError(t, err)
	}
	for key, values := range u.fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func newRouter(t *testing.T, svc ReportServiceInterface, maxUpload int64) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewReportHandler(svc, maxUpload, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/reports", h.Routes())
	return r
}

func TestCreateReportJSON(t *testing.T) {
	svc := new(MockReportService)
	archive := []byte("zip-bytes")

	wantCriteria := domain.FilterCriteria{
		DateRange: domain.DateRange{
			Start: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2023, 8, 31, 0, 0, 0, 0, time.UTC),
		},
		Brands: []string{"Acme", "Beta"},
		Zones:  []string{"North"},
	}
	svc.On("ComputeReport", archive, wantCriteria, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("-0.5"))
	})).Return(okReport(), nil)

	w := httptest.NewRecorder()
	newRouter(t, svc, 1<<20).ServeHTTP(w, upload{
		archive: archive,
		fields: map[string][]string{
			"end_date":         {"2023-08-31"},
			"brands":           {"Acme", " Beta ", ""},
			"zones":            {"North"},
			"threshold_offset": {"-0.5"},
		},
	}.request(t, "/api/reports"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ok", w.Header().Get(reportStatusHdr))
	assert.Equal(t, "run-1", w.Header().Get(reportRunIDHdr))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	table := body["table"].(map[string]interface{})
	assert.Equal(t, []interface{}{"2023-07", "2023-08"}, table["months"])
	svc.AssertExpectations(t)
}

func TestCreateReportCSV(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
	}{
		{name: "query", target: "/api/reports?format=csv"},
		{name: "accept header", target: "/api/reports", accept: "text/csv, application/json;q=0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			svc.On("ComputeReport", mock.Anything, mock.Anything, mock.Anything).Return(okReport(), nil)

			r := upload{archive: []byte("zip")}.request(t, tt.target)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			newRouter(t, svc, 0).ServeHTTP(w, r)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), exporter.ReportFileName)

			table, err := exporter.ParseReportCSV(w.Body)
			require.NoError(t, err)
			require.Len(t, table.Rows, 1)
			assert.Equal(t, "X1", table.Rows[0].Reference)
			assert.Equal(t, "18", table.Rows[0].TotalQuantity.String())
		})
	}
}

func TestCreateReportNoRowsIsJSON(t *testing.T) {
	svc := new(MockReportService)
	svc.On("ComputeReport", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Report{RunID: "run-2", Status: domain.ReportStatusNoRows}, nil)

	w := httptest.NewRecorder()
	newRouter(t, svc, 0).ServeHTTP(w, upload{archive: []byte("zip")}.request(t, "/api/reports?format=csv"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no_rows", w.Header().Get(reportStatusHdr))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.NotContains(t, w.Body.String(), `"table"`)
}

func TestCreateReportErrors(t *testing.T) {
	tests := []struct {
		name       string
		upload     upload
		target     string
		serviceErr error
		wantStatus int
		wantType   string
	}{
		{
			name:       "missing archive",
			upload:     upload{fields: map[string][]string{"start_date": {"2023-07-01"}}},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "bad date",
			upload:     upload{archive: []byte("zip"), fields: map[string][]string{"start_date": {"July"}}},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "bad offset",
			upload:     upload{archive: []byte("zip"), fields: map[string][]string{"threshold_offset": {"lots"}}},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "bad format",
			upload:     upload{archive: []byte("zip")},
			target:     "/api/reports?format=xml",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "no data",
			upload:     upload{archive: []byte("zip")},
			serviceErr: apierrors.NewNoDataError("no data", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeNoData,
		},
		{
			name:       "parse failure",
			upload:     upload{archive: []byte("zip")},
			serviceErr: apierrors.NewParsingError("cannot parse", nil).WithContext("file", "a.xlsx"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeParseFailed,
		},
		{
			name:       "inverted range",
			upload:     upload{archive: []byte("zip")},
			serviceErr: apierrors.NewAppValidationError("invalid date range", apierrors.ErrInvalidDateRange),
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeInvalidDateRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			if tt.serviceErr != nil {
				svc.On("ComputeReport", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}
			target := tt.target
			if target == "" {
				target = "/api/reports"
			}

			w := httptest.NewRecorder()
			newRouter(t, svc, 0).ServeHTTP(w, tt.upload.request(t, target))

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem["type"])
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "ComputeReport", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCreateReportTooLarge(t *testing.T) {
	svc := new(MockReportService)
	w := httptest.NewRecorder()
	newRouter(t, svc, 64).ServeHTTP(w, upload{archive: bytes.Repeat([]byte("x"), 1024)}.request(t, "/api/reports"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	svc.AssertNotCalled(t, "ComputeReport", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReportRejectsJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newRouter(t, new(MockReportService), 0).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestGetOptions(t *testing.T) {
	svc := new(MockReportService)
	archive := []byte("zip")
	svc.On("Options", archive).Return(domain.FilterOptions{
		Brands:   []string{"Acme"},
		Families: []string{},
		Zones:    []string{"North", "South"},
		Records:  3,
	}, nil)

	w := httptest.NewRecorder()
	newRouter(t, svc, 0).ServeHTTP(w, upload{archive: archive}.request(t, "/api/reports/options"))

	require.Equal(t, http.StatusOK, w.Code)
	var opts domain.FilterOptions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Acme"}, opts.Brands)
	assert.Equal(t, []string{}, opts.Families)
	assert.Equal(t, 3, opts.Records)
	svc.AssertExpectations(t)
}
