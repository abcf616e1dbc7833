package cloudapi

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/tritoncli/triton/util"
)

// cacheTTLs maps resource kinds to how long a cached listing stays fresh.
// Kinds without an entry are not cached: the cache is only worthwhile for
// slow-changing listings.
var cacheTTLs = map[string]time.Duration{
	"images": time.Hour,
}

// Cache is a per-profile, per-kind on-disk cache of list payloads. All
// operations are best-effort: I/O and parse failures degrade to a miss (on
// read) or are logged and swallowed (on write). It is never a source of
// authoritative state.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at the profile-scoped dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) kindPath(kind string) string {
	return filepath.Join(c.dir, kind+".json")
}

// Get returns the cached payload for kind, or miss=false when the file is
// absent, unparseable, older than the kind's TTL, or the kind is uncached.
func (c *Cache) Get(kind string) ([]json.RawMessage, bool) {
	ttl := cacheTTLs[kind]
	if ttl <= 0 {
		return nil, false
	}

	path := c.kindPath(kind)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var payload []json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		// garbled cache file; treat as miss and drop it
		c.Invalidate(kind)
		return nil, false
	}
	return payload, true
}

// Put stores a list payload for kind. Failures are logged at debug and
// swallowed.
func (c *Cache) Put(kind string, payload []json.RawMessage) {
	if cacheTTLs[kind] <= 0 {
		return
	}
	if err := util.WriteJSONFileAtomic(c.kindPath(kind), payload, 0600); err != nil {
		grip.Debug(message.WrapError(err, message.Fields{
			"message": "writing list cache",
			"kind":    kind,
		}))
	}
}

// Invalidate removes the cached payload for kind.
func (c *Cache) Invalidate(kind string) {
	err := os.Remove(c.kindPath(kind))
	if err != nil && !os.IsNotExist(err) {
		grip.Debug(message.WrapError(err, message.Fields{
			"message": "invalidating list cache",
			"kind":    kind,
		}))
	}
}

// cachedList serves a full (unfiltered) listing for kind through the cache
// when one is configured, falling back to the network and repopulating on
// miss.
func (c *Client) cachedList(ctx context.Context, kind, path string) ([]json.RawMessage, error) {
	if c.cache != nil {
		if payload, ok := c.cache.Get(kind); ok {
			return payload, nil
		}
	}
	payload, err := c.listAll(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Put(kind, payload)
	}
	return payload, nil
}

// invalidateCache drops the cached listings for the given kinds after a
// mutation.
func (c *Client) invalidateCache(kinds ...string) {
	if c.cache == nil {
		return
	}
	for _, kind := range kinds {
		c.cache.Invalidate(kind)
	}
}
