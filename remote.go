// Package imageloader provides client-side image retrieval and caching.
// This file defines the network client collaborator and its HTTP default.
package imageloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

//go:generate go run github.com/matryer/moq@v0.5.3 -out mocks_test.go . RemoteClient Codec

// defaultUserAgent identifies this library in outbound HTTP requests.
const defaultUserAgent = "imageloader/1.0"

// RemoteClient fetches raw image bytes for a locator. The cache calls it only
// on a full miss (no memory entry, no usable disk blob), and guarantees at
// most one concurrent invocation per locator.
//
// Errors returned by FetchBytes propagate to Fetch callers verbatim (wrapped
// in a FetchError for context but never reinterpreted), so implementations
// are free to return transport-specific error types.
//
// Implementations must be safe for concurrent use: distinct locators are
// fetched in parallel.
type RemoteClient interface {
	// FetchBytes retrieves the encoded image bytes for the given locator.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - locator: The image locator, e.g. "https://img.example.com/banner.jpg"
	//
	// Returns the raw response bytes, or an error if the fetch fails.
	FetchBytes(ctx context.Context, locator string) ([]byte, error)
}

// HTTPRemote is the default RemoteClient. It treats locators as HTTP(S) URLs
// and fetches them with a pooled client from go-cleanhttp, so transports are
// never shared with other packages through http.DefaultClient.
type HTTPRemote struct {
	// client is the underlying HTTP client used for all requests.
	client *http.Client

	// userAgent is sent as the User-Agent header on every request.
	userAgent string
}

// NewHTTPRemote creates an HTTPRemote backed by a pooled HTTP client.
//
// Parameters:
//   - timeout: Per-request timeout; zero means no client-side timeout
//     (cancellation is then driven entirely by the request context).
//
// Returns a pointer to the new HTTPRemote.
func NewHTTPRemote(timeout time.Duration) *HTTPRemote {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout
	return &HTTPRemote{
		client:    client,
		userAgent: defaultUserAgent,
	}
}

// NewHTTPRemoteWithClient creates an HTTPRemote using the provided HTTP
// client. This gives callers full control over transport settings, proxies,
// and TLS configuration.
func NewHTTPRemoteWithClient(client *http.Client) *HTTPRemote {
	return &HTTPRemote{
		client:    client,
		userAgent: defaultUserAgent,
	}
}

// FetchBytes performs a GET request for the locator and returns the response
// body. Responses outside the 2xx range produce a descriptive error; request
// construction failures (malformed locators) are reported with context, while
// transport errors are returned as-is.
func (r *HTTPRemote) FetchBytes(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", locator, err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s fetching %s", resp.Status, locator)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", locator, err)
	}
	return data, nil
}

// Compile-time interface check.
var _ RemoteClient = (*HTTPRemote)(nil)
