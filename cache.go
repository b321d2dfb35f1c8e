// Package imageloader provides client-side image retrieval and caching.
// This file contains the cache core: the entry state machine, Fetch, and Prefetch.
package imageloader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/jmgilman/go/fs/billy"
	"golang.org/x/sync/errgroup"

	"github.com/schmidyy/ImageLoader/internal/logging"
	"github.com/schmidyy/ImageLoader/internal/store"
)

// entry is the recorded state of one locator in the memory tier.
//
// An open done channel marks an in-flight fetch; once resolve closes it, img
// and err are immutable and readable by any goroutine (the close is the
// happens-before edge). An entry resolves at most once and never reverts.
type entry struct {
	done chan struct{}
	img  image.Image
	err  error
}

// newEntry creates an in-flight entry whose outcome is not yet known.
func newEntry() *entry {
	return &entry{done: make(chan struct{})}
}

// resolvedEntry creates an entry that already holds its outcome.
func resolvedEntry(img image.Image, err error) *entry {
	e := &entry{done: make(chan struct{}), img: img, err: err}
	close(e.done)
	return e
}

// resolve publishes the outcome and wakes all waiters.
// Must be called at most once per entry.
func (e *entry) resolve(img image.Image, err error) {
	e.img = img
	e.err = err
	close(e.done)
}

// Cache retrieves images by locator, serving repeated requests from memory,
// then disk, before going to the network. Concurrent requests for the same
// locator collapse into one network fetch; distinct locators proceed in
// parallel. Cache is safe for concurrent use.
type Cache struct {
	options *Options

	// remote fetches bytes on a full miss (injected for testability)
	remote RemoteClient

	// codec decodes downloads and encodes blobs for persistence
	codec Codec

	// store provides the disk tier
	store *store.Store

	logger  *logging.Logger
	metrics *metrics

	// mu guards entries; the map holds at most one entry per locator
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a new Cache with default configuration: OS filesystem, per-user
// storage root, pooled HTTP client, and JPEG codec.
func New() (*Cache, error) {
	return NewWithOptions()
}

// NewWithOptions creates a new Cache with custom configuration.
// It accepts functional options to customize storage, transport, and codec.
//
// Example usage:
//
//	cache, err := NewWithOptions(
//	    WithStorageRoot("/var/cache/thumbnails"),
//	    WithCodec(&PNGCodec{}),
//	)
//	if err != nil {
//	    return err
//	}
func NewWithOptions(opts ...Option) (*Cache, error) {
	options := DefaultOptions()

	// Apply functional options
	for _, opt := range opts {
		opt(options)
	}

	// Ensure collaborator defaults
	if options.FS == nil {
		options.FS = billy.NewLocal()
	}
	if options.Remote == nil {
		options.Remote = NewHTTPRemote(options.HTTPTimeout)
	}
	if options.Codec == nil {
		options.Codec = NewJPEGCodec()
	}

	// Validate options
	if err := validateOptions(options); err != nil {
		return nil, fmt.Errorf("invalid cache options: %w", err)
	}

	blobStore, err := store.New(options.FS, options.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	c := &Cache{
		options: options,
		remote:  options.Remote,
		codec:   options.Codec,
		store:   blobStore,
		logger:  logging.FromSlog(options.Logger),
		metrics: newMetrics(),
		entries: make(map[string]*entry),
	}

	// Leftovers from interrupted writes are dead weight; failing to remove
	// them (read-only filesystem, unresolvable root) does not affect reads.
	if err := c.store.CleanupTempFiles(context.Background()); err != nil {
		c.logger.Debug(context.Background(), "temp file cleanup skipped", "error", err.Error())
	}

	return c, nil
}

// validateOptions validates the cache options for correctness.
// It checks for missing collaborators and out-of-range values.
//
// Parameters:
//   - opts: The cache options to validate
//
// Returns an error if validation fails, nil if options are valid.
func validateOptions(opts *Options) error {
	if opts == nil {
		return fmt.Errorf("cache options cannot be nil")
	}
	if opts.FS == nil {
		return fmt.Errorf("filesystem cannot be nil")
	}
	if opts.Remote == nil {
		return fmt.Errorf("remote client cannot be nil")
	}
	if opts.Codec == nil {
		return fmt.Errorf("codec cannot be nil")
	}
	if opts.PrefetchLimit < 1 {
		return fmt.Errorf("prefetch limit must be positive, got %d", opts.PrefetchLimit)
	}
	if opts.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout cannot be negative, got %s", opts.HTTPTimeout)
	}
	return nil
}

// Fetch returns the image for locator, consulting the memory tier, then the
// disk tier, then the network.
//
// Repeated and concurrent calls for one locator share a single network fetch:
// the first caller dispatches it, everyone else awaits the same outcome. A
// successful fetch persists the encoded image to disk before returning, so a
// later cold-start hit decodes locally instead of downloading.
//
// ctx bounds only this caller's wait. If it expires, Fetch returns ctx.Err()
// while the fetch itself keeps running for other callers; its outcome still
// lands in the cache. An already resolved entry is returned without
// consulting ctx.
//
// Known limitation: a failed fetch records its error in the memory tier, and
// every later Fetch for that locator returns the recorded error for the life
// of the Cache. There is no retry; construct a new Cache to clear the state.
func (c *Cache) Fetch(ctx context.Context, locator string, opts ...FetchOption) (image.Image, error) {
	if locator == "" {
		return nil, ErrEmptyLocator
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchOpts := DefaultFetchOptions()
	for _, opt := range opts {
		opt(fetchOpts)
	}

	// Memory tier
	c.mu.RLock()
	e, ok := c.entries[locator]
	c.mu.RUnlock()
	if ok {
		return c.await(ctx, locator, e, true)
	}
	logging.LogMiss(ctx, c.logger, logging.TierMemory, locator, "no entry")

	// Disk tier: probe outside the lock, then double-check the map when
	// recording the result. Losing the race means another caller owns the
	// locator now, so defer to its entry.
	if img, found := c.readFromDisk(ctx, locator); found {
		e, inserted := c.insertResolved(locator, img)
		if !inserted {
			return c.await(ctx, locator, e, true)
		}
		c.metrics.recordDiskHit()
		return img, nil
	}

	// Network tier: record the in-flight entry atomically, then fetch
	// outside the lock. After the insert every concurrent caller joins
	// this operation instead of dispatching its own.
	e, inserted := c.insertInFlight(locator)
	if !inserted {
		return c.await(ctx, locator, e, true)
	}

	client := c.remote
	if fetchOpts.Client != nil {
		client = fetchOpts.Client
	}

	// The operation runs on a context detached from this caller: waiters
	// may outlive it, and the recorded outcome must not depend on which
	// caller gave up first.
	opCtx := context.WithoutCancel(ctx)
	go c.fetchAndPersist(opCtx, locator, client, e)

	return c.await(ctx, locator, e, false)
}

// await blocks until e resolves or the caller's context expires. existing
// marks entries found in the map rather than created by this caller, which is
// what the hit/join accounting is based on.
func (c *Cache) await(ctx context.Context, locator string, e *entry, existing bool) (image.Image, error) {
	// Resolved entries return immediately, without consulting ctx.
	select {
	case <-e.done:
		if existing {
			c.metrics.recordMemoryHit()
			if e.err != nil {
				c.logger.Debug(ctx, "returning recorded failure",
					"locator", locator, "error", e.err.Error())
			} else {
				logging.LogHit(ctx, c.logger, logging.TierMemory, locator, 0)
			}
		}
		return e.img, e.err
	default:
	}

	if existing {
		c.metrics.recordJoin()
		logging.LogJoin(ctx, c.logger, locator)
	}

	select {
	case <-e.done:
		return e.img, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readFromDisk attempts the disk tier. Every failure (underivable path,
// absent or unreadable file, undecodable bytes) is an ordinary miss: the
// caller falls through to the network, which overwrites a corrupt blob with
// fresh bytes.
func (c *Cache) readFromDisk(ctx context.Context, locator string) (image.Image, bool) {
	data, err := c.store.Read(ctx, locator)
	if err != nil {
		logging.LogMiss(ctx, c.logger, logging.TierDisk, locator, "blob absent or unreadable")
		return nil, false
	}

	img, err := c.codec.Decode(data)
	if err != nil {
		logging.LogMiss(ctx, c.logger, logging.TierDisk, locator, "blob does not decode")
		c.logger.Debug(ctx, "disk blob decode failed",
			"locator", locator, "error", err.Error())
		return nil, false
	}

	logging.LogHit(ctx, c.logger, logging.TierDisk, locator, int64(len(data)))
	return img, true
}

// insertResolved records a resolved entry for locator unless one already
// exists. It returns the entry now in the map and whether it is ours.
func (c *Cache) insertResolved(locator string, img image.Image) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[locator]; ok {
		return existing, false
	}
	e := resolvedEntry(img, nil)
	c.entries[locator] = e
	return e, true
}

// insertInFlight records an in-flight entry for locator unless one already
// exists. It returns the entry now in the map and whether it is ours; the
// caller that inserted owns dispatching the operation.
func (c *Cache) insertInFlight(locator string) (*entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[locator]; ok {
		return existing, false
	}
	e := newEntry()
	c.entries[locator] = e
	return e, true
}

// fetchAndPersist is the single network operation for a locator. It runs in
// its own goroutine and resolves e exactly once; waiters observe the outcome
// through the entry.
func (c *Cache) fetchAndPersist(ctx context.Context, locator string, client RemoteClient, e *entry) {
	start := time.Now()

	img, err := c.downloadAndStore(ctx, locator, client)
	if err != nil {
		c.metrics.recordFailure()
	}
	logging.LogFetchOperation(ctx, c.logger.WithLocator(locator),
		logging.OpFetch, time.Since(start), err == nil, 0, err)

	e.resolve(img, err)
}

// downloadAndStore runs the fetch pipeline: download, decode, re-encode,
// persist. The image is returned only if every stage succeeds; in particular
// a persist failure discards the downloaded image rather than returning a
// result the disk tier does not have.
func (c *Cache) downloadAndStore(ctx context.Context, locator string, client RemoteClient) (image.Image, error) {
	data, err := client.FetchBytes(ctx, locator)
	c.metrics.recordNetworkFetch(int64(len(data)))
	if err != nil {
		return nil, NewFetchError("fetch", locator, err)
	}

	img, err := c.codec.Decode(data)
	if err != nil {
		c.logger.Debug(ctx, "downloaded bytes do not decode",
			"locator", locator, "error", err.Error())
		return nil, NewFetchError("decode", locator, ErrUnableToDecodeImage)
	}

	encoded, err := c.codec.Encode(img)
	if err != nil {
		c.logger.Debug(ctx, "decoded image does not re-encode",
			"locator", locator, "error", err.Error())
		return nil, NewFetchError("encode", locator, ErrUnableToEncodeImage)
	}

	writeStart := time.Now()
	dgst, err := c.store.Write(ctx, locator, encoded)
	if err != nil {
		logging.LogFetchOperation(ctx, c.logger.WithLocator(locator),
			logging.OpDiskWrite, time.Since(writeStart), false, 0, err)
		if errors.Is(err, store.ErrNoStorageRoot) || errors.Is(err, store.ErrUnsafeName) {
			return nil, NewFetchError("persist", locator,
				fmt.Errorf("%w: %v", ErrUnableToGenerateStoragePath, err))
		}
		return nil, NewFetchError("persist", locator, err)
	}
	c.metrics.recordPersisted(int64(len(encoded)))

	blobPath, _ := c.store.Path(locator) // cannot fail after a successful write
	logging.LogPersisted(ctx, c.logger, locator, blobPath, dgst, int64(len(encoded)))

	return img, nil
}

// Prefetch warms the cache for the given locators. Fetches run concurrently,
// bounded by the configured prefetch limit; duplicate locators and already
// cached ones collapse the same way concurrent Fetch calls do. The first
// error, if any, is returned after all fetches settle.
func (c *Cache) Prefetch(ctx context.Context, locators ...string) error {
	if len(locators) == 0 {
		return nil
	}

	start := time.Now()
	c.logger.Debug(ctx, "prefetch started",
		"operation", string(logging.OpPrefetch), "count", len(locators))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.options.PrefetchLimit)
	for _, locator := range locators {
		g.Go(func() error {
			_, err := c.Fetch(gctx, locator)
			return err
		})
	}

	err := g.Wait()
	c.logger.Debug(ctx, "prefetch completed",
		"operation", string(logging.OpPrefetch),
		"count", len(locators),
		"duration_ms", time.Since(start).Milliseconds(),
		"success", err == nil)
	return err
}

// Stats returns a snapshot of cache activity counters.
func (c *Cache) Stats() CacheStats {
	return c.metrics.snapshot()
}

// DiskSize reports the total bytes of blobs persisted in the disk tier.
// A storage root that does not exist yet reports zero.
func (c *Cache) DiskSize(ctx context.Context) (int64, error) {
	return c.store.Size(ctx)
}

// Persisted lists the locators currently holding blobs in the disk tier.
// A storage root that does not exist yet reports an empty list.
func (c *Cache) Persisted(ctx context.Context) ([]string, error) {
	return c.store.Locators(ctx)
}
