package store

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// maxNameLength is the longest encoded file name the store accepts. Common
// filesystems cap individual names at 255 bytes.
const maxNameLength = 255

// defaultRootDirName is the directory created under the user cache directory
// when no explicit storage root is configured.
const defaultRootDirName = "imageloader"

// EncodeLocator converts a locator into the file name its blob is stored
// under. The encoding is url.PathEscape: deterministic, free of path
// separators, and collision-free (distinct locators always produce distinct
// names because '%' itself is escaped).
func EncodeLocator(locator string) string {
	return url.PathEscape(locator)
}

// ValidateName checks that an encoded file name is usable on disk.
// It rejects empty and reserved names, names over the filesystem limit,
// and names carrying separators or control characters.
func ValidateName(name string) error {
	if name == "" || isWhitespaceOnly(name) {
		return fmt.Errorf("%w: empty name", ErrUnsafeName)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("%w: reserved name %q", ErrUnsafeName, name)
	}

	// Dot-prefixed names are reserved for the store's own bookkeeping
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: hidden name %q", ErrUnsafeName, name)
	}

	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d bytes", ErrUnsafeName, maxNameLength)
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: separator in name %q", ErrUnsafeName, name)
	}

	for _, r := range name {
		if r < 32 || r == 127 {
			return fmt.Errorf("%w: control character in name (U+%04X)", ErrUnsafeName, r)
		}
	}

	return nil
}

// IsNameSafe is a convenience wrapper that reports whether a name validates.
func IsNameSafe(name string) bool {
	return ValidateName(name) == nil
}

// isWhitespaceOnly checks if a name contains only whitespace characters.
func isWhitespaceOnly(name string) bool {
	for _, r := range name {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// DefaultRoot returns the per-user directory where images are persisted when
// no explicit root is configured.
func DefaultRoot() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoStorageRoot, err)
	}
	return filepath.Join(base, defaultRootDirName), nil
}
