package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ctes", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("t"), "cache buster missing")
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(ctesCSV))
	})
	mux.HandleFunc("/targets", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Unidade,Meta\nMATRIZ,10000\n"))
	})
	mux.HandleFunc("/calendar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Mes,,,,,,21,15\n1,,,,15/03/2024\n"))
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Usuario,Senha,Unidade\nadmin,s3cret,\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testURLs(base string) URLs {
	return URLs{
		Ctes:     base + "/ctes",
		Targets:  base + "/targets",
		Calendar: base + "/calendar",
		Users:    base + "/users",
	}
}

func TestLoaderLoad(t *testing.T) {
	srv := feedServer(t, http.StatusOK)
	loader := NewLoader(NewClient(5*time.Second, nil), testURLs(srv.URL), nil)

	data, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, data.Ctes, 2)
	require.Len(t, data.Targets, 1)
	assert.Equal(t, "MATRIZ", data.Targets[0].Unit)
	assert.Equal(t, 21, data.FixedDays.Total)
	assert.Equal(t, 15, data.FixedDays.Elapsed)
	assert.Equal(t, "2024-03-15", data.RefDate.Format("2006-01-02"))

	// LastUpdate comes from the data, not the clock.
	assert.Equal(t, "2024-03-02", data.LastUpdate.Format("2006-01-02"))
	assert.False(t, data.LoadedAt.IsZero())
}

func TestLoaderLoadAllOrNothing(t *testing.T) {
	srv := feedServer(t, http.StatusServiceUnavailable)
	loader := NewLoader(NewClient(5*time.Second, nil), testURLs(srv.URL), nil)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shipments feed")
}

func TestLoaderLoadContextCancelled(t *testing.T) {
	srv := feedServer(t, http.StatusOK)
	loader := NewLoader(NewClient(5*time.Second, nil), testURLs(srv.URL), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx)
	require.Error(t, err)
}

func TestLoaderLoadCredentials(t *testing.T) {
	srv := feedServer(t, http.StatusOK)
	loader := NewLoader(NewClient(5*time.Second, nil), testURLs(srv.URL), nil)

	creds, err := loader.LoadCredentials(context.Background())
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "admin", creds[0].Username)
}

func TestFetchRejectsBadURL(t *testing.T) {
	c := NewClient(time.Second, nil)
	_, err := c.Fetch(context.Background(), "://bad")
	require.Error(t, err)
}
