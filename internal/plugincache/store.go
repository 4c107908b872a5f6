package plugincache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store is a key-addressed archive store for directories.
type Store interface {
	// Restore fills paths from the entry stored under primaryKey, or else
	// from the newest entry whose key starts with one of restoreKeys. It
	// returns the key that matched, or "" on a miss.
	Restore(ctx context.Context, paths []string, primaryKey string, restoreKeys []string) (string, error)

	// Save stores paths under key and returns the new entry's id. Saving
	// to a key that already exists fails with *ReserveCacheError.
	Save(ctx context.Context, paths []string, key string) (int64, error)
}

// ReserveCacheError reports that a key is already taken, usually by a
// concurrent job that saved first.
type ReserveCacheError struct {
	Key string
}

func (e *ReserveCacheError) Error() string {
	return fmt.Sprintf("unable to reserve cache with key %s, another job may be creating this cache", e.Key)
}

const blobSuffix = ".tar.gz"

// FileStore keeps one tar.gz blob per key in a directory.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Root returns the store directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) blobPath(key string) string {
	return filepath.Join(s.root, url.PathEscape(key)+blobSuffix)
}

// Restore implements Store.
func (s *FileStore) Restore(ctx context.Context, paths []string, primaryKey string, restoreKeys []string) (string, error) {
	key, err := s.lookup(primaryKey, restoreKeys)
	if err != nil || key == "" {
		return "", err
	}

	f, err := os.Open(s.blobPath(key))
	if err != nil {
		return "", fmt.Errorf("open cache entry %s: %w", key, err)
	}
	defer f.Close()

	if err := readArchive(ctx, f, paths); err != nil {
		return "", fmt.Errorf("restore cache entry %s: %w", key, err)
	}
	return key, nil
}

// lookup finds the exact key first, then the newest prefix match for each
// restore key in order. Reserved but unwritten entries are skipped.
func (s *FileStore) lookup(primaryKey string, restoreKeys []string) (string, error) {
	if info, err := os.Stat(s.blobPath(primaryKey)); err == nil && info.Size() > 0 {
		return primaryKey, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read cache directory: %w", err)
	}

	for _, prefix := range restoreKeys {
		var (
			best     string
			bestTime time.Time
		)
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, blobSuffix) {
				continue
			}
			key, err := url.PathUnescape(strings.TrimSuffix(name, blobSuffix))
			if err != nil || !strings.HasPrefix(key, prefix) {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.Size() == 0 {
				continue
			}
			if best == "" || info.ModTime().After(bestTime) {
				best, bestTime = key, info.ModTime()
			}
		}
		if best != "" {
			return best, nil
		}
	}

	return "", nil
}

// Save implements Store. The key is reserved with an exclusive create
// before any data is written.
func (s *FileStore) Save(ctx context.Context, paths []string, key string) (int64, error) {
	if !anyExists(paths) {
		return -1, fmt.Errorf("path validation error: none of %v exist, not saving cache", paths)
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return -1, fmt.Errorf("create cache directory: %w", err)
	}

	blob := s.blobPath(key)
	reservation, err := os.OpenFile(blob, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return -1, &ReserveCacheError{Key: key}
		}
		return -1, fmt.Errorf("reserve cache entry: %w", err)
	}
	reservation.Close()

	tmp, err := os.CreateTemp(s.root, ".save-*")
	if err != nil {
		os.Remove(blob)
		return -1, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeArchive(ctx, tmp, paths); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		os.Remove(blob)
		return -1, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		os.Remove(blob)
		return -1, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, blob); err != nil {
		os.Remove(tmpPath)
		os.Remove(blob)
		return -1, fmt.Errorf("commit cache entry: %w", err)
	}

	return entryID(key), nil
}

func anyExists(paths []string) bool {
	for _, p := range paths {
		if _, err := os.Lstat(p); err == nil {
			return true
		}
	}
	return false
}

// entryID derives a stable positive id from the key.
func entryID(key string) int64 {
	sum := sha256.Sum256([]byte(key))
	return int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
}
