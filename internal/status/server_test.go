package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/checkpoint"
	"github.com/r-uben/baltic-shipping/internal/runner"
)

type stubSource struct{ snap runner.Snapshot }

func (s stubSource) Snapshot() runner.Snapshot { return s.snap }

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", nil, zap.NewNop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatuszReportsSnapshot(t *testing.T) {
	t.Parallel()

	src := stubSource{snap: runner.Snapshot{
		RunID:     "run-7",
		LastIMO:   9104999,
		Counters:  checkpoint.Counters{Checked: 5000, Found: 312, Extracted: 300},
		Rate:      41.5,
		StartedAt: time.Unix(1700000000, 0).UTC(),
	}}
	srv := NewServer(":0", src, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statusz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got runner.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "run-7", got.RunID)
	require.Equal(t, 9104999, got.LastIMO)
	require.Equal(t, int64(312), got.Counters.Found)
}

func TestStatuszWithoutRun(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", nil, zap.NewNop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statusz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointServesPrometheus(t *testing.T) {
	t.Parallel()

	srv := NewServer(":0", nil, zap.NewNop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
