package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/seerrpad/internal/adapter"
	"github.com/mmcdole/seerrpad/internal/domain"
	"github.com/mmcdole/seerrpad/internal/task"
)

func TestNewBackend_CheckAndSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/api/v1/status":
			w.Write([]byte(`{"version":"2.1.0"}`))
		case "/api/v1/search":
			w.Write([]byte(`{"page":1,"results":[
				{"id":2,"mediaType":"movie","title":"The Animatrix"},
				{"id":1,"mediaType":"movie","title":"Matrix"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := adapter.TestConfig()
	cfg.Server.URL = server.URL
	cfg.Server.APIKey = "key"
	cfg.Cache.Dir = t.TempDir()

	backend, err := NewBackend(cfg, nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.True(t, backend.Store.Enabled())

	version, err := backend.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", version)

	var catalog domain.Catalog = backend.Catalog
	items, err := catalog.SearchByQuery(context.Background(), domain.MediaTypeMovie, "matrix", 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Matrix", items[0].Title)
}

func TestNewBackend_FallsBackOnBadPosterSize(t *testing.T) {
	cfg := adapter.TestConfig()
	cfg.Cache.PosterSize = "w9999"

	backend, err := NewBackend(cfg, nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.Contains(t, backend.Catalog.PosterURL("/p.jpg"), "/w500/p.jpg")
	assert.False(t, backend.Store.Enabled())
}

func TestNewBackend_RequiresURL(t *testing.T) {
	cfg := adapter.TestConfig()
	cfg.Server.URL = ""
	_, err := NewBackend(cfg, nil)
	assert.Error(t, err)

	_, err = NewBackend(nil, nil)
	assert.Error(t, err)
}

func TestBackend_CallTimeoutLeavesRoomForRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// First attempt hangs past the per-attempt timeout
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		w.Write([]byte(`{"page":1,"results":[{"id":1,"mediaType":"movie","title":"Matrix"}]}`))
	}))
	defer server.Close()

	cfg := adapter.TestConfig()
	cfg.Server.URL = server.URL
	cfg.Server.RequestTimeout = 200 * time.Millisecond
	cfg.Server.MaxRetries = 1

	backend, err := NewBackend(cfg, nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.Greater(t, backend.CallTimeout(), 2*cfg.Server.RequestTimeout)

	coord := task.NewCoordinator(context.Background(), backend.Catalog, task.Options{Timeout: backend.CallTimeout()}, nil)
	coord.Dispatch(task.KindSearch, task.Params{MediaType: domain.MediaTypeMovie, Query: "matrix", Page: 1})
	coord.Wait()

	results := coord.Drain()
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Items, 1)
	assert.Equal(t, "Matrix", results[0].Items[0].Title)
	assert.Equal(t, int32(2), calls.Load())
}
