package http_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/traffic-insights/internal/adapter/http"
	"github.com/couchcryptid/traffic-insights/internal/domain"
)

type mockState struct {
	report *domain.Report
}

func (m *mockState) Report() *domain.Report { return m.report }

func newTestServer(state *mockState) *httpadapter.Server {
	return httpadapter.NewServer(":0", state, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func sampleReport(t *testing.T) *domain.Report {
	t.Helper()
	matrix, err := domain.GenerateMatrix(domain.DefaultMatrixSpec())
	require.NoError(t, err)
	return &domain.Report{
		GeneratedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		Cleaning:    domain.CleanStats{RawRows: 10, DroppedMissing: 1, DroppedExcluded: 2, CleanRows: 7},
		Skipped:     []domain.SkippedSummary{{Name: "Weather Summary", Reason: "missing column"}},
		Matrix:      matrix,
	}
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockState{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockState{report: sampleReport(t)}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "2025-03-14T09:30:00Z", body["generated_at"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(&mockState{}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "report not available yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockState{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestReportReturns503BeforeRun(t *testing.T) {
	srv := newTestServer(&mockState{})

	for _, path := range []string{"/report", "/report/matrix"} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "report not available yet")
	}
}

func TestReportReturnsJSON(t *testing.T) {
	srv := newTestServer(&mockState{report: sampleReport(t)})

	rec := get(t, srv, "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		GeneratedAt time.Time         `json:"generated_at"`
		Cleaning    domain.CleanStats `json:"cleaning"`
		Skipped     []domain.SkippedSummary
		Matrix      domain.Matrix `json:"holiday_weather_matrix"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Cleaning.CleanRows)
	assert.Equal(t, "Weather Summary", body.Skipped[0].Name)
	assert.Len(t, body.Matrix.Values, 8)
	assert.True(t, body.GeneratedAt.Equal(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)))
}

func TestReportMatrix(t *testing.T) {
	report := sampleReport(t)
	rec := get(t, newTestServer(&mockState{report: report}), "/report/matrix")
	require.Equal(t, http.StatusOK, rec.Code)

	var matrix domain.Matrix
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matrix))
	assert.Equal(t, report.Matrix, matrix)
}

func TestReportRejectsPost(t *testing.T) {
	srv := newTestServer(&mockState{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
