package cache

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// entryMagic opens every file cache entry.
const entryMagic = "cola-cache/1"

// FileCache keeps entries on disk, one file per key, for the CLI.
//
// An entry is a header line followed by the payload, unencoded, so a cached
// layout.json can be read straight off disk:
//
//	cola-cache/1<TAB>expiry-unix-nanos<TAB>key
//	{"nodes":[...], ...}
//
// An expiry of 0 never expires. Files live under a two character fan-out
// directory taken from the key hash.
type FileCache struct {
	dir string
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Get returns the payload stored under key. Expired, corrupt and colliding
// entries are misses; expired and corrupt ones are removed.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expiry, owner, payload, ok := parseEntry(raw)
	if !ok {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if owner != key {
		return nil, false, nil
	}
	if !expiry.IsZero() && time.Now().After(expiry) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return payload, true, nil
}

// Set stores data under key. The entry is written to a temporary file and
// renamed into place so that concurrent readers never see a partial entry.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if strings.ContainsAny(key, "\t\n") {
		return fmt.Errorf("cache: key %q contains a tab or newline", key)
	}
	var expiry int64
	if ttl > 0 {
		expiry = time.Now().Add(ttl).UnixNano()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%s\t%d\t%s\n", entryMagic, expiry, key)
	w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes key. Deleting a missing key is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Clear removes every entry.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".entry")
}

// parseEntry splits an entry file into its header fields and payload.
func parseEntry(raw []byte) (expiry time.Time, key string, payload []byte, ok bool) {
	header, payload, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return time.Time{}, "", nil, false
	}
	fields := strings.SplitN(string(header), "\t", 3)
	if len(fields) != 3 || fields[0] != entryMagic {
		return time.Time{}, "", nil, false
	}
	nanos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return time.Time{}, "", nil, false
	}
	if nanos != 0 {
		expiry = time.Unix(0, nanos)
	}
	return expiry, fields[2], payload, true
}

var _ Cache = (*FileCache)(nil)
