package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOllamaGenerate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "qwen3:8b", req.Model)
		require.False(t, req.Stream)
		require.InDelta(t, 0.1, req.Options.Temperature, 1e-9)

		json.NewEncoder(w).Encode(ollamaResponse{
			Response: `{"name": "ADHAR"}`,
			Done:     true,
		})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(OllamaConfig{Host: srv.URL})
	out, err := g.Generate(context.Background(), "extract fields")
	require.NoError(t, err)
	require.Equal(t, `{"name": "ADHAR"}`, out)
}

func TestOllamaGenerateServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(OllamaConfig{Host: srv.URL})
	_, err := g.Generate(context.Background(), "extract fields")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

type slowGenerator struct {
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (s *slowGenerator) Generate(ctx context.Context, _ string) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return "ok", nil
}

func TestLimitedCapsConcurrency(t *testing.T) {
	t.Parallel()

	inner := &slowGenerator{}
	g := Limited(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := g.Generate(context.Background(), "p")
			require.NoError(t, err)
			require.Equal(t, "ok", out)
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, inner.peak.Load(), int64(2))
}

func TestLimitedZeroMeansUnbounded(t *testing.T) {
	t.Parallel()

	inner := &slowGenerator{}
	require.Same(t, Generator(inner), Limited(inner, 0))
}

func TestLimitedHonorsCancellation(t *testing.T) {
	t.Parallel()

	inner := &slowGenerator{}
	g := Limited(inner, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, "p")
	require.ErrorIs(t, err, context.Canceled)
}
