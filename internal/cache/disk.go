package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const diskSuffix = ".json"

// DiskCache persists each key as its own JSON file under dir, named by the
// sha256 of the key
type DiskCache struct {
	dir        string
	defaultTTL time.Duration
	now        func() time.Time
}

// record is the on-disk form of one entry. Expires is unix milliseconds;
// zero means the entry never expires.
type record struct {
	Value   []byte `json:"value"`
	Expires int64  `json:"expires_ms,omitempty"`
}

// NewDiskCache creates a disk cache rooted at dir. Settings and history use
// NoExpiration as the default TTL.
func NewDiskCache(dir string, defaultTTL time.Duration) *DiskCache {
	return &DiskCache{dir: dir, defaultTTL: defaultTTL, now: time.Now}
}

// Get returns the stored value. Unreadable and expired entries are misses;
// expired files are removed.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	file := c.file(key)
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}

	var rec record
	if json.Unmarshal(raw, &rec) != nil {
		return nil, false
	}
	if rec.Expires != 0 && c.now().UnixMilli() >= rec.Expires {
		_ = os.Remove(file)
		return nil, false
	}
	return rec.Value, true
}

// Set writes value under key. A zero ttl uses the default; a negative ttl
// never expires.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	rec := record{Value: value}
	if ttl > 0 {
		rec.Expires = c.now().Add(ttl).UnixMilli()
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("cache temp file: %w", err)
	}
	_, werr := tmp.Write(raw)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), c.file(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete removes key; a missing key is not an error
func (c *DiskCache) Delete(key string) error {
	if err := os.Remove(c.file(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry file in dir and leaves other files alone
func (c *DiskCache) Clear() error {
	files, err := filepath.Glob(filepath.Join(c.dir, "*"+diskSuffix))
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// file maps key to <sha256 hex of key>.json
func (c *DiskCache) file(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+diskSuffix)
}
