package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDatacenters(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/datacenters", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"east-1": "https://cloudapi.east-1.example.com",
			"west-1": "https://cloudapi.west-1.example.com",
		})
	}))

	dcs, err := c.ListDatacenters(context.Background())
	require.NoError(t, err)
	assert.Len(t, dcs, 2)
	assert.Equal(t, "https://cloudapi.east-1.example.com", dcs["east-1"])
}

func TestPing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/--ping", r.URL.Path)
		// the ping route is unauthenticated
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Api-Version", "9.0.0")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ping":     "pong",
			"cloudapi": map[string][]string{"versions": {"8.0.0", "9.0.0"}},
		})
	}))

	res, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", res.Ping)
	assert.Equal(t, "9.0.0", res.APIVersion)
	assert.Contains(t, res.CloudAPI.Versions, "9.0.0")
}

func TestPingRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"ping": "pong"})
	}))

	res, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", res.Ping)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
