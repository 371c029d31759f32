package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmerge/domain/market"
	"propmerge/internal/errors"
	"propmerge/internal/logging"
	"propmerge/internal/merge"
	"propmerge/internal/report"
	"propmerge/internal/testkit"
)

func newTestServer() *Server {
	merger := merge.NewMerger(merge.DefaultOptions(), logging.Nop())
	return NewServer(merger, report.NewRenderer(), logging.Nop())
}

func mergeRequestBody(t *testing.T, seed int64, n, parts int, analysisID string) *bytes.Buffer {
	t.Helper()
	gen := testkit.NewGenerator(seed)
	props := gen.Properties(n)
	req := MergeRequest{
		AnalysisID: analysisID,
		Responses:  gen.Responses(props, parts),
		Properties: props,
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMergeEndpoint(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/merge", mergeRequestBody(t, 42, 30, 2, "analysis-http"))
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result market.MergedAnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "analysis-http", result.AnalysisID.String())
	assert.Len(t, result.Targets, 4)
	assert.Len(t, result.CombinedRanking.Entries, 30)
}

func TestMergeEndpoint_BadJSON(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/merge", bytes.NewBufferString("{not json"))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMergeEndpoint_EmptyInputs(t *testing.T) {
	srv := newTestServer()

	body, err := json.Marshal(MergeRequest{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/merge", bytes.NewBuffer(body))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeMergeFailed, resp.Code)
}

func TestMergeReportEndpoint(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/merge/report", mergeRequestBody(t, 9, 24, 2, "analysis-rep"))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Market Analysis analysis-rep")
}
