package imageloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmidyy/ImageLoader/internal/testutil"
)

// TestNewHTTPRemote tests the default HTTPRemote constructor
func TestNewHTTPRemote(t *testing.T) {
	remote := NewHTTPRemote(15 * time.Second)
	require.NotNil(t, remote)
	require.NotNil(t, remote.client)
	assert.Equal(t, 15*time.Second, remote.client.Timeout)
	assert.Equal(t, defaultUserAgent, remote.userAgent)
}

// TestNewHTTPRemoteWithClient tests injecting a custom HTTP client
func TestNewHTTPRemoteWithClient(t *testing.T) {
	client := &http.Client{Timeout: 3 * time.Second}
	remote := NewHTTPRemoteWithClient(client)
	require.NotNil(t, remote)
	assert.Same(t, client, remote.client)
}

// TestHTTPRemote_FetchBytes tests a successful fetch and the request headers
func TestHTTPRemote_FetchBytes(t *testing.T) {
	pngData, err := testutil.GeneratePNG(4, 4)
	require.NoError(t, err)

	var gotMethod, gotUserAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngData)
	}))
	defer server.Close()

	remote := NewHTTPRemoteWithClient(server.Client())
	data, err := remote.FetchBytes(context.Background(), server.URL+"/banner.png")
	require.NoError(t, err)
	assert.Equal(t, pngData, data)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, defaultUserAgent, gotUserAgent)
	assert.Equal(t, "image/*", gotAccept)
}

// TestHTTPRemote_FetchBytes_NotFound tests the non-2xx status handling
func TestHTTPRemote_FetchBytes_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	remote := NewHTTPRemoteWithClient(server.Client())
	_, err := remote.FetchBytes(context.Background(), server.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

// TestHTTPRemote_FetchBytes_ServerError tests that 5xx responses fail
func TestHTTPRemote_FetchBytes_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	remote := NewHTTPRemoteWithClient(server.Client())
	_, err := remote.FetchBytes(context.Background(), server.URL+"/broken.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

// TestHTTPRemote_FetchBytes_MalformedLocator tests request construction errors
func TestHTTPRemote_FetchBytes_MalformedLocator(t *testing.T) {
	remote := NewHTTPRemote(time.Second)

	_, err := remote.FetchBytes(context.Background(), "http://bad url with spaces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create request")
}

// TestHTTPRemote_FetchBytes_ContextCancelled tests cancellation mid-request
func TestHTTPRemote_FetchBytes_ContextCancelled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	remote := NewHTTPRemoteWithClient(server.Client())
	_, err := remote.FetchBytes(ctx, server.URL+"/slow.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
