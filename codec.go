// Package imageloader provides client-side image retrieval and caching.
// This file defines the image codec collaborator and its default implementations.
package imageloader

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// DefaultJPEGQuality is the JPEG encoding quality used when none is specified.
// The value balances visual fidelity against on-disk footprint.
const DefaultJPEGQuality = 85

// Codec converts between raw bytes and decoded images. The cache uses one
// codec for both directions: decoding downloaded (or disk-cached) bytes into
// an image, and encoding a freshly fetched image for persistence.
//
// Implementations must be pure and safe for concurrent use: no internal
// state, no I/O. The cache maps any failure onto its error taxonomy
// (ErrUnableToDecodeImage, ErrUnableToEncodeImage) and logs the codec's own
// error detail separately, so implementations should return plain descriptive
// errors rather than wrapping cache sentinels themselves.
//
// Example usage with a custom codec:
//
//	cache, err := imageloader.NewWithOptions(
//	    imageloader.WithCodec(&imageloader.PNGCodec{}),
//	)
type Codec interface {
	// Decode parses encoded image bytes into a decoded image.
	//
	// Parameters:
	//   - data: Raw encoded bytes (from the network or the disk tier)
	//
	// Returns the decoded image, or an error if data is not a valid image.
	Decode(data []byte) (image.Image, error)

	// Encode serializes a decoded image into the codec's output format.
	//
	// Parameters:
	//   - img: The decoded image to serialize
	//
	// Returns the encoded bytes, or an error if the image cannot be encoded.
	Encode(img image.Image) ([]byte, error)
}

// JPEGCodec encodes images as JPEG. Decoding accepts any format registered
// with the standard image package (JPEG and PNG via this package's imports),
// so a PNG downloaded from the network still decodes and is persisted as JPEG.
//
// JPEG is lossy: the persisted bytes re-decode to an image that is visually
// but not bit-for-bit identical to the original download.
type JPEGCodec struct {
	// Quality is the JPEG encoding quality, 1-100. Values outside the range
	// are clamped by the encoder. Zero means DefaultJPEGQuality.
	Quality int
}

// NewJPEGCodec creates a JPEGCodec with the default quality.
func NewJPEGCodec() *JPEGCodec {
	return &JPEGCodec{Quality: DefaultJPEGQuality}
}

// Decode parses encoded image bytes in any registered format.
func (c *JPEGCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Encode serializes the image as JPEG at the configured quality.
func (c *JPEGCodec) Encode(img image.Image) ([]byte, error) {
	quality := c.Quality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// PNGCodec encodes images as PNG. Decoding accepts any format registered with
// the standard image package. PNG is lossless, so a persisted blob re-decodes
// to pixel-identical image data.
type PNGCodec struct{}

// NewPNGCodec creates a PNGCodec.
func NewPNGCodec() *PNGCodec {
	return &PNGCodec{}
}

// Decode parses encoded image bytes in any registered format.
func (c *PNGCodec) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Encode serializes the image as PNG.
func (c *PNGCodec) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Compile-time interface checks.
var (
	_ Codec = (*JPEGCodec)(nil)
	_ Codec = (*PNGCodec)(nil)
)
