package metadata

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/logging"
	"github.com/arthur-debert/gamelink/pkg/types"
	"github.com/rs/zerolog"
)

var validID = regexp.MustCompile(`^[0-9]+$`)

// Cache is a directory of <id> files each holding one display name
type Cache struct {
	fs     types.FS
	dir    string
	maxAge time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewCache returns a cache rooted at dir. A zero maxAge means entries never
// expire.
func NewCache(fsys types.FS, dir string, maxAge time.Duration) *Cache {
	return &Cache{
		fs:     fsys,
		dir:    dir,
		maxAge: maxAge,
		now:    time.Now,
		logger: logging.GetLogger("metadata.cache"),
	}
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path(id string) (string, error) {
	if !validID.MatchString(id) {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid item id %q", id)
	}
	return filepath.Join(c.dir, id), nil
}

// Get returns the cached name for id. Missing, empty, or expired entries
// are misses.
func (c *Cache) Get(id string) (string, bool) {
	p, err := c.path(id)
	if err != nil {
		return "", false
	}

	if c.maxAge > 0 {
		info, err := c.fs.Stat(p)
		if err != nil {
			return "", false
		}
		if c.now().Sub(info.ModTime()) > c.maxAge {
			c.logger.Debug().Str("id", id).Msg("Cache entry expired")
			return "", false
		}
	}

	data, err := c.fs.ReadFile(p)
	if err != nil {
		return "", false
	}
	name := strings.TrimSpace(string(data))
	return name, name != ""
}

// Put stores name for id, replacing any previous entry
func (c *Cache) Put(id, name string) error {
	p, err := c.path(id)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "refusing to cache empty name for %s", id)
	}

	if err := c.fs.MkdirAll(c.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create cache directory %s", c.dir)
	}
	tmp := p + ".tmp"
	if err := c.fs.WriteFile(tmp, []byte(name), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write cache entry %s", id)
	}
	if err := c.fs.Rename(tmp, p); err != nil {
		_ = c.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to store cache entry %s", id)
	}
	c.logger.Trace().Str("id", id).Str("name", name).Msg("Cached name")
	return nil
}

// Delete removes the entry for id. Deleting a missing entry is not an error.
func (c *Cache) Delete(id string) error {
	p, err := c.path(id)
	if err != nil {
		return err
	}
	if err := c.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to delete cache entry %s", id)
	}
	return nil
}

// Clear removes every entry and returns how many were removed
func (c *Cache) Clear() (int, error) {
	entries, err := c.fs.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, errors.ErrFileAccess, "failed to list cache %s", c.dir)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !validID.MatchString(e.Name()) {
			continue
		}
		if err := c.fs.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return removed, errors.Wrapf(err, errors.ErrFileWrite, "failed to delete cache entry %s", e.Name())
		}
		removed++
	}
	return removed, nil
}
