package cloudapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

func TestListAllSinglePage(t *testing.T) {
	var queries []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		w.Header().Set("x-resource-count", "3")
		json.NewEncoder(w).Encode([]map[string]string{{"id": "a"}, {"id": "b"}, {"id": "c"}})
	}))

	items, err := c.listAll(context.Background(), "/admin/machines", nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0], "limit=1000")
}

func TestListAllPaginates(t *testing.T) {
	total := streamPageSize + 7
	var offsets []int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		page := make([]map[string]string, 0, streamPageSize)
		for i := offset; i < total && i < offset+streamPageSize; i++ {
			page = append(page, map[string]string{"id": fmt.Sprintf("m%d", i)})
		}
		w.Header().Set("x-resource-count", strconv.Itoa(total))
		json.NewEncoder(w).Encode(page)
	}))

	items, err := c.listAll(context.Background(), "/admin/machines", nil)
	require.NoError(t, err)
	assert.Len(t, items, total)
	assert.Equal(t, []int{0, streamPageSize}, offsets)
}

func TestStreamDeliversLazily(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-resource-count", "2")
		json.NewEncoder(w).Encode([]map[string]string{{"id": "a"}, {"id": "b"}})
	}))

	items, finish := c.stream(context.Background(), "/admin/machines", nil)
	var ids []string
	for item := range items {
		var body struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(item, &body))
		ids = append(ids, body.ID)
	}
	require.NoError(t, finish())
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestStreamPropagatesServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"ResourceNotFound","message":"no such collection"}`, http.StatusNotFound)
	}))

	_, err := c.listAll(context.Background(), "/admin/nothere", nil)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestStreamStopsOnCancel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := make([]map[string]string, streamPageSize)
		for i := range page {
			page[i] = map[string]string{"id": fmt.Sprintf("m%d", i)}
		}
		json.NewEncoder(w).Encode(page)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	items, finish := c.stream(ctx, "/admin/machines", nil)

	// read a few, then walk away
	for i := 0; i < 3; i++ {
		<-items
	}
	cancel()
	for range items {
	}
	assert.Equal(t, errs.KindCanceled, errs.KindOf(finish()))
}

func TestMoreAvailable(t *testing.T) {
	withCount := func(v string) http.Header {
		h := http.Header{}
		if v != "" {
			h.Set("x-resource-count", v)
		}
		return h
	}

	assert.True(t, moreAvailable(withCount(""), 1000))
	assert.True(t, moreAvailable(withCount("garbage"), 1000))
	assert.True(t, moreAvailable(withCount("1500"), 1000))
	assert.False(t, moreAvailable(withCount("1000"), 1000))
	assert.False(t, moreAvailable(withCount("900"), 1000))
}
