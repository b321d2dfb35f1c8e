// Package imageloader provides client-side image retrieval with transparent
// two-tier caching.
//
// Given a locator (typically a URL), the cache returns the decoded image,
// consulting an in-memory tier, then an on-disk tier, before fetching from
// the network. Key features:
//   - Concurrent requests for one locator collapse into a single fetch
//   - Unrelated locators fetch fully in parallel
//   - Fetched images are persisted to disk for cold-start reuse
//   - Deterministic locator-to-path mapping (percent encoding)
//   - Pluggable network client, codec, and filesystem for testing
//
// Basic usage:
//
//	cache, err := imageloader.New()
//	if err != nil {
//	    return err
//	}
//
//	// Fetch an image (network on first call, memory afterwards)
//	img, err := cache.Fetch(ctx, "https://img.example.com/banner.jpg")
//
//	// Warm the cache ahead of time
//	err = cache.Prefetch(ctx, urls...)
//
//	// Custom storage location and codec
//	cache, err = imageloader.NewWithOptions(
//	    imageloader.WithStorageRoot("/var/cache/thumbnails"),
//	    imageloader.WithCodec(&imageloader.PNGCodec{}),
//	)
//
// See the README for detailed documentation and examples.
package imageloader
