// Package imageloader provides client-side image retrieval and caching.
// This file contains benchmark tests for the fetch hot path.
package imageloader

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmgilman/go/fs/billy"

	"github.com/schmidyy/ImageLoader/internal/testutil"
)

// BenchmarkCache_Fetch_MemoryHit benchmarks the memory-hit path, the case
// every repeated fetch of a cached image takes. The image dimensions vary to
// confirm the hit cost does not scale with image size.
func BenchmarkCache_Fetch_MemoryHit(b *testing.B) {
	dimensions := []int{16, 64, 256}

	for _, dim := range dimensions {
		b.Run(fmt.Sprintf("%dx%d", dim, dim), func(b *testing.B) {
			cache := newBenchmarkCache(b, dim)
			locator := benchmarkLocator(dim)
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := cache.Fetch(ctx, locator); err != nil {
					b.Fatalf("Fetch failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkCache_Fetch_MemoryHitParallel benchmarks concurrent readers
// hammering one warmed entry, the contention profile of an image list UI.
func BenchmarkCache_Fetch_MemoryHitParallel(b *testing.B) {
	cache := newBenchmarkCache(b, 64)
	locator := benchmarkLocator(64)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := cache.Fetch(ctx, locator); err != nil {
				b.Fatalf("Fetch failed: %v", err)
			}
		}
	})
}

// newBenchmarkCache creates a cache over an in-memory filesystem with one
// warmed entry: a dim x dim generated image.
func newBenchmarkCache(b *testing.B, dim int) *Cache {
	b.Helper()

	data, err := testutil.GeneratePNG(dim, dim)
	if err != nil {
		b.Fatalf("Failed to generate test image: %v", err)
	}

	cache, err := NewWithOptions(
		WithFilesystem(billy.NewMemory()),
		WithStorageRoot("/cache"),
		WithCodec(&PNGCodec{}),
		WithRemoteClient(&RemoteClientMock{
			FetchBytesFunc: func(ctx context.Context, locator string) ([]byte, error) {
				return data, nil
			},
		}),
	)
	if err != nil {
		b.Fatalf("Failed to create cache: %v", err)
	}

	if _, err := cache.Fetch(context.Background(), benchmarkLocator(dim)); err != nil {
		b.Fatalf("Warmup fetch failed: %v", err)
	}
	return cache
}

// benchmarkLocator names the warmed image for a given dimension.
func benchmarkLocator(dim int) string {
	return fmt.Sprintf("https://img.example.com/bench-%d.png", dim)
}
