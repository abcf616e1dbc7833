package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())

	_, ok := cache.Get("images")
	assert.False(t, ok)

	payload := []json.RawMessage{
		json.RawMessage(`{"id":"a","name":"base"}`),
		json.RawMessage(`{"id":"b","name":"minimal"}`),
	}
	cache.Put("images", payload)

	got, ok := cache.Get("images")
	require.True(t, ok)
	require.Len(t, got, 2)
	// the on-disk form is reindented, so compare JSON values, not bytes
	assert.JSONEq(t, string(payload[0]), string(got[0]))
	assert.JSONEq(t, string(payload[1]), string(got[1]))

	cache.Invalidate("images")
	_, ok = cache.Get("images")
	assert.False(t, ok)
}

func TestCacheIgnoresUncachedKinds(t *testing.T) {
	cache := NewCache(t.TempDir())

	cache.Put("machines", []json.RawMessage{json.RawMessage(`{}`)})
	_, ok := cache.Get("machines")
	assert.False(t, ok)
	assert.NoFileExists(t, cache.kindPath("machines"))
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(t.TempDir())
	cache.Put("images", []json.RawMessage{json.RawMessage(`{}`)})

	// age the file past the images TTL
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(cache.kindPath("images"), stale, stale))

	_, ok := cache.Get("images")
	assert.False(t, ok)
}

func TestCacheGarbledFileIsAMissAndDropped(t *testing.T) {
	cache := NewCache(t.TempDir())
	require.NoError(t, os.WriteFile(cache.kindPath("images"), []byte("{not json"), 0600))

	_, ok := cache.Get("images")
	assert.False(t, ok)
	assert.NoFileExists(t, cache.kindPath("images"))
}

func TestCachedListServesFromDisk(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode([]map[string]string{{"id": "a", "name": "base", "state": "active"}})
	}))
	t.Cleanup(srv.Close)

	c, err := New(ClientOptions{
		URL:      srv.URL,
		Account:  "admin",
		Signer:   testSigner{},
		CacheDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	ctx := context.Background()

	first, err := c.cachedList(ctx, "images", "/admin/images")
	require.NoError(t, err)
	second, err := c.cachedList(ctx, "images", "/admin/images")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	assert.JSONEq(t, string(first[0]), string(second[0]))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// a mutation invalidates, so the next list refetches
	c.invalidateCache("images")
	_, err = c.cachedList(ctx, "images", "/admin/images")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
