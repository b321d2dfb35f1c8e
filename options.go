// Package imageloader provides client-side image retrieval and caching.
// This file contains functional options for configuration.
package imageloader

import (
	"log/slog"
	"time"

	"github.com/jmgilman/go/fs/core"
)

const (
	// DefaultPrefetchLimit is the number of locators Prefetch resolves
	// concurrently when no limit is configured.
	DefaultPrefetchLimit = 4

	// DefaultHTTPTimeout is the per-request timeout of the default HTTP
	// client. Zero disables the client-side timeout entirely.
	DefaultHTTPTimeout = 30 * time.Second
)

// Options contains configuration options for the Cache.
type Options struct {
	// FS provides filesystem operations for the disk tier.
	// If nil, a default OS-backed filesystem will be used.
	FS core.FS

	// StorageRoot is the directory holding persisted image blobs.
	// If empty, a per-user default under os.UserCacheDir() is used,
	// resolved lazily the first time a storage path is derived.
	StorageRoot string

	// Remote fetches image bytes on a full cache miss.
	// If nil, an HTTPRemote with HTTPTimeout is used.
	Remote RemoteClient

	// Codec decodes downloaded bytes and encodes images for persistence.
	// If nil, a JPEGCodec at the default quality is used.
	Codec Codec

	// Logger receives structured operation logs.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// PrefetchLimit bounds Prefetch's concurrent fetches. Must be positive.
	PrefetchLimit int

	// HTTPTimeout is the per-request timeout applied when constructing the
	// default HTTP client. Ignored when Remote is set explicitly.
	HTTPTimeout time.Duration
}

// Option is a functional option for configuring the Cache.
type Option func(*Options)

// DefaultOptions returns the default cache options.
func DefaultOptions() *Options {
	return &Options{
		FS:            nil, // Filled by constructor if unset
		StorageRoot:   "",  // Resolved lazily from os.UserCacheDir()
		Remote:        nil, // Filled by constructor if unset
		Codec:         nil, // Filled by constructor if unset
		Logger:        nil, // Logging disabled by default
		PrefetchLimit: DefaultPrefetchLimit,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

// WithFilesystem injects a custom filesystem implementation for the disk tier.
// This is how tests and embedded environments substitute an in-memory
// filesystem for the real one.
//
// Example usage:
//
//	cache, err := imageloader.NewWithOptions(
//	    imageloader.WithFilesystem(billy.NewMemory()),
//	    imageloader.WithStorageRoot("/cache"),
//	)
func WithFilesystem(fsys core.FS) Option {
	return func(opts *Options) {
		opts.FS = fsys
	}
}

// WithStorageRoot sets the directory holding persisted image blobs.
// The directory is created on first write if it does not exist.
func WithStorageRoot(root string) Option {
	return func(opts *Options) {
		opts.StorageRoot = root
	}
}

// WithRemoteClient configures the cache to use a custom network client.
// This is primarily used for testing to inject mock implementations, and
// for production setups with custom transports or authentication.
func WithRemoteClient(client RemoteClient) Option {
	return func(opts *Options) {
		opts.Remote = client
	}
}

// WithCodec configures the codec used to decode downloads and encode blobs
// for persistence. The same codec serves both directions so that persisted
// bytes round-trip through the disk check.
func WithCodec(codec Codec) Option {
	return func(opts *Options) {
		opts.Codec = codec
	}
}

// WithLogger enables structured logging through the provided slog logger.
// Without it the cache is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithPrefetchLimit bounds the number of concurrent fetches issued by
// Prefetch. The limit must be positive; it does not affect Fetch callers,
// which are only ever bounded by the deduplication per locator.
func WithPrefetchLimit(limit int) Option {
	return func(opts *Options) {
		opts.PrefetchLimit = limit
	}
}

// WithHTTPTimeout sets the per-request timeout used when the cache constructs
// its default HTTP client. It has no effect when WithRemoteClient is used.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.HTTPTimeout = timeout
	}
}

// FetchOptions contains options for a single Fetch call.
type FetchOptions struct {
	// Client overrides the cache's network client for this call only.
	// If nil, the configured client is used. The override applies to the
	// network operation this call starts; a call that joins an already
	// in-flight operation does not re-dispatch it.
	Client RemoteClient
}

// FetchOption is a functional option for configuring a single Fetch call.
type FetchOption func(*FetchOptions)

// DefaultFetchOptions returns the default per-call fetch options.
func DefaultFetchOptions() *FetchOptions {
	return &FetchOptions{
		Client: nil, // Use the cache's configured client
	}
}

// WithClient overrides the network client for one Fetch call. Useful for
// per-request authentication or routing without reconfiguring the cache.
func WithClient(client RemoteClient) FetchOption {
	return func(opts *FetchOptions) {
		opts.Client = client
	}
}
