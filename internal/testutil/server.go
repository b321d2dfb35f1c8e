// Package testutil provides testing utilities for the image cache library.
// This file contains an HTTP image origin for hermetic integration tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// ImageServer provides an HTTP origin serving registered image payloads.
// It is backed by net/http/httptest, so tests run hermetically without
// real network access.
//
// Payloads are registered by name and served at /images/<name>; every
// request is counted, so tests can assert exactly how many network fetches
// a cache performed for each image.
//
// Example usage:
//
//	server := testutil.NewImageServer()
//	defer server.Close()
//
//	server.Add("banner.png", pngBytes)
//	locator := server.LocatorFor("banner.png")
//	// Fetch locator through the cache, then assert server.Requests("banner.png")
type ImageServer struct {
	server *httptest.Server

	mu       sync.RWMutex
	payloads map[string][]byte
	requests map[string]int
}

// NewImageServer creates and starts an image server with no payloads.
// Unregistered names answer 404, which doubles as a permanent-failure
// origin for error-path tests.
func NewImageServer() *ImageServer {
	s := &ImageServer{
		payloads: make(map[string][]byte),
		requests: make(map[string]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// handle serves GET /images/<name> from the registered payloads.
func (s *ImageServer) handle(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutPrefix(r.URL.Path, "/images/")
	if !ok || name == "" {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.requests[name]++
	data, found := s.payloads[name]
	s.mu.Unlock()

	if !found {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// Add registers a payload under the given name, replacing any previous one.
func (s *ImageServer) Add(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[name] = data
}

// AddGenerated registers a deterministic PNG of the given dimensions under
// the given name.
func (s *ImageServer) AddGenerated(name string, width, height int) error {
	data, err := GeneratePNG(width, height)
	if err != nil {
		return fmt.Errorf("failed to generate payload for %q: %w", name, err)
	}
	s.Add(name, data)
	return nil
}

// URL returns the server's base URL, e.g. "http://127.0.0.1:53422".
func (s *ImageServer) URL() string {
	return s.server.URL
}

// LocatorFor returns the full locator under which name is served.
func (s *ImageServer) LocatorFor(name string) string {
	return s.server.URL + "/images/" + name
}

// Requests returns how many times name has been requested, hit or miss.
func (s *ImageServer) Requests(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests[name]
}

// TotalRequests returns the request count across all names.
func (s *ImageServer) TotalRequests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

// Client returns an HTTP client wired to the server.
func (s *ImageServer) Client() *http.Client {
	return s.server.Client()
}

// Close shuts the server down. It should be called in test cleanup
// (defer statement).
func (s *ImageServer) Close() {
	s.server.Close()
}
