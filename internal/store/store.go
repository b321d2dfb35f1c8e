// Package store persists encoded image blobs on a filesystem abstraction,
// keyed by a deterministic encoding of their locator.
//
// Blobs are stored verbatim: the bytes written for a locator are exactly the
// bytes a later read returns, so a persisted file decodes without any
// unwrapping. Writes are atomic via a temp directory and rename, so readers
// never observe partial files.
package store

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmgilman/go/fs/core"
	"github.com/opencontainers/go-digest"
)

// tempDirName is the directory under the storage root holding in-progress writes.
const tempDirName = ".temp"

// Store provides atomic blob persistence for the image cache.
// It uses core.FS for filesystem abstraction, supporting both OS and
// in-memory filesystems.
type Store struct {
	fs   core.FS
	root string // optional explicit root; default resolved lazily

	resolveOnce sync.Once
	resolved    string
	resolveErr  error

	rootOnce sync.Once
	rootErr  error

	fileLocks  *sync.Map // map[string]*sync.Mutex for per-file locking
	globalLock sync.RWMutex
}

// New creates a store over the given filesystem. An empty root defers to
// DefaultRoot, resolved on first use so that a resolution failure surfaces
// from the operation that hit it rather than from construction.
func New(fsys core.FS, root string) (*Store, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}

	return &Store{
		fs:        fsys,
		root:      root,
		fileLocks: &sync.Map{},
	}, nil
}

// Root returns the storage root directory, resolving the default lazily.
func (s *Store) Root() (string, error) {
	s.resolveOnce.Do(func() {
		if s.root != "" {
			s.resolved = s.root
			return
		}
		s.resolved, s.resolveErr = DefaultRoot()
	})
	return s.resolved, s.resolveErr
}

// Path derives the blob location for a locator: Root joined with
// EncodeLocator(locator). The derivation is deterministic and performs no
// filesystem access, so the read and write sides always agree on where a
// locator's blob lives.
func (s *Store) Path(locator string) (string, error) {
	root, err := s.Root()
	if err != nil {
		return "", err
	}

	name := EncodeLocator(locator)
	if err := ValidateName(name); err != nil {
		return "", err
	}

	return filepath.Join(root, name), nil
}

// getFileLock returns a mutex for the given file path, creating one if necessary.
func (s *Store) getFileLock(path string) *sync.Mutex {
	// Use sync.Map to safely store per-file locks
	lock, _ := s.fileLocks.LoadOrStore(path, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// ensureRoot creates the root directory once, before the first write.
func (s *Store) ensureRoot() error {
	s.rootOnce.Do(func() {
		root, err := s.Root()
		if err != nil {
			s.rootErr = err
			return
		}

		s.globalLock.Lock()
		defer s.globalLock.Unlock()
		if err := s.fs.MkdirAll(root, 0o755); err != nil {
			s.rootErr = fmt.Errorf("failed to create root directory: %w", err)
		}
	})
	return s.rootErr
}

// createTempDir creates a unique directory for one atomic write, using the
// TempFS interface when the backend provides it. Callers hold the global
// write lock.
func (s *Store) createTempDir(dir, pattern string) (string, error) {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if tfs, ok := s.fs.(core.TempFS); ok {
		return tfs.TempDir(dir, pattern)
	}

	// Fallback: derive a unique name manually, retrying on collisions
	for i := 0; i < 10; i++ {
		seed := fmt.Sprintf("%s-%d-%d-%d", pattern, os.Getpid(), time.Now().UnixNano(), i)
		name := pattern + digest.FromString(seed).Encoded()[:16]
		path := filepath.Join(dir, name)

		exists, err := s.fs.Exists(path)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		if err := s.fs.MkdirAll(path, 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("failed to create unique temp directory after 10 attempts")
}

// Write persists data as the blob for locator and returns the content digest
// of the written bytes. The write is atomic: data lands in a temp file first
// and is renamed into place, so a concurrent read sees either the complete
// blob or nothing.
func (s *Store) Write(ctx context.Context, locator string, data []byte) (digest.Digest, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context cancelled: %w", err)
	}

	fullPath, err := s.Path(locator)
	if err != nil {
		return "", err
	}

	if err := s.ensureRoot(); err != nil {
		return "", err
	}

	// Acquire file lock to prevent concurrent writes to the same blob
	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	s.globalLock.Lock()
	tempDir, err := s.createTempDir(filepath.Join(filepath.Dir(fullPath), tempDirName), "write_")
	s.globalLock.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	tempFile := filepath.Join(tempDir, "blob")

	s.globalLock.Lock()
	err = s.fs.WriteFile(tempFile, data, 0o644)
	s.globalLock.Unlock()
	if err != nil {
		s.globalLock.Lock()
		_ = s.fs.Remove(tempFile) // Ignore errors
		_ = s.fs.Remove(tempDir)
		s.globalLock.Unlock()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename: this is atomic on POSIX filesystems
	s.globalLock.Lock()
	err = s.fs.Rename(tempFile, fullPath)
	s.globalLock.Unlock()
	if err != nil {
		s.globalLock.Lock()
		_ = s.fs.Remove(tempFile)
		_ = s.fs.Remove(tempDir)
		s.globalLock.Unlock()
		return "", fmt.Errorf("failed to rename temp file to %q: %w", fullPath, err)
	}

	// The blob was renamed out, so the temp directory is empty
	s.globalLock.Lock()
	_ = s.fs.Remove(tempDir)
	s.globalLock.Unlock()

	return digest.FromBytes(data), nil
}

// Read returns the blob bytes for locator exactly as they were written.
func (s *Store) Read(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	fullPath, err := s.Path(locator)
	if err != nil {
		return nil, err
	}

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	s.globalLock.RLock()
	data, err := s.fs.ReadFile(fullPath)
	s.globalLock.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %q: %w", fullPath, err)
	}

	return data, nil
}

// Exists reports whether a blob for locator has been persisted.
func (s *Store) Exists(ctx context.Context, locator string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context cancelled: %w", err)
	}

	fullPath, err := s.Path(locator)
	if err != nil {
		return false, err
	}

	s.globalLock.RLock()
	exists, err := s.fs.Exists(fullPath)
	s.globalLock.RUnlock()
	if err != nil {
		return false, fmt.Errorf("failed to check blob existence: %w", err)
	}
	return exists, nil
}

// Locators lists the locators that currently have persisted blobs, by
// decoding the stored file names. Files that do not decode are skipped.
func (s *Store) Locators(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	root, err := s.Root()
	if err != nil {
		return nil, err
	}

	s.globalLock.RLock()
	exists, err := s.fs.Exists(root)
	if err != nil {
		s.globalLock.RUnlock()
		return nil, fmt.Errorf("failed to check root directory: %w", err)
	}
	if !exists {
		s.globalLock.RUnlock()
		return nil, nil
	}

	entries, err := s.fs.ReadDir(root)
	s.globalLock.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	var locators []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		locator, err := url.PathUnescape(entry.Name())
		if err != nil {
			continue
		}
		locators = append(locators, locator)
	}

	return locators, nil
}

// Size returns the total bytes of persisted blobs, excluding in-progress
// temp files.
func (s *Store) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}

	root, err := s.Root()
	if err != nil {
		return 0, err
	}

	s.globalLock.RLock()
	exists, err := s.fs.Exists(root)
	s.globalLock.RUnlock()
	if err != nil {
		return 0, fmt.Errorf("failed to check root directory: %w", err)
	}
	if !exists {
		return 0, nil
	}

	var totalSize int64
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == tempDirName {
				return fs.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalSize += info.Size()
		return nil
	}

	s.globalLock.RLock()
	err = s.fs.Walk(root, walkFn)
	s.globalLock.RUnlock()
	if err != nil {
		return 0, fmt.Errorf("failed to calculate storage size: %w", err)
	}

	return totalSize, nil
}

// CleanupTempFiles removes leftovers from interrupted writes. Safe to call at
// startup; a missing temp directory is not an error.
func (s *Store) CleanupTempFiles(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	root, err := s.Root()
	if err != nil {
		return err
	}
	tempDir := filepath.Join(root, tempDirName)

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	exists, err := s.fs.Exists(tempDir)
	if err != nil {
		return fmt.Errorf("failed to check temp directory: %w", err)
	}
	if !exists {
		return nil
	}

	if err := s.fs.RemoveAll(tempDir); err != nil {
		return fmt.Errorf("failed to clean temp directory: %w", err)
	}
	return nil
}
