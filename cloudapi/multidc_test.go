package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

func TestParseDCs(t *testing.T) {
	dcs, err := ParseDCs([]string{
		"east-1=https://cloudapi.east-1.example.com",
		"https://cloudapi.west-1.example.com",
	})
	require.NoError(t, err)
	require.Len(t, dcs, 2)
	assert.Equal(t, DC{Name: "east-1", URL: "https://cloudapi.east-1.example.com"}, dcs[0])
	assert.Equal(t, DC{Name: "cloudapi.west-1.example.com", URL: "https://cloudapi.west-1.example.com"}, dcs[1])

	_, err = ParseDCs([]string{"east-1="})
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
}

func listServer(t *testing.T, machines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := make([]map[string]string, 0, len(machines))
		for _, name := range machines {
			out = append(out, map[string]string{"name": name})
		}
		json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListAcrossDCsMergesAndTags(t *testing.T) {
	east := listServer(t, "db0", "db1")
	west := listServer(t, "web")

	c, err := New(ClientOptions{URL: east.URL, Account: "admin", Signer: testSigner{}})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	dcs := []DC{{Name: "east-1", URL: east.URL}, {Name: "west-1", URL: west.URL}}
	items, err := c.ListAcrossDCs(context.Background(), dcs, MultiDCOptions{},
		func(ctx context.Context, dc *Client) ([]json.RawMessage, error) {
			return dc.listAll(ctx, dc.path("/machines"), nil)
		})
	require.NoError(t, err)
	require.Len(t, items, 3)

	perDC := map[string]int{}
	for _, item := range items {
		perDC[item.DC]++
	}
	assert.Equal(t, map[string]int{"east-1": 2, "west-1": 1}, perDC)
}

func TestListAcrossDCsPartialFailure(t *testing.T) {
	east := listServer(t, "db0")
	west := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"ResourceNotFound","message":"no machines here"}`, http.StatusNotFound)
	}))
	t.Cleanup(west.Close)

	c, err := New(ClientOptions{URL: east.URL, Account: "admin", Signer: testSigner{}})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	var (
		mu     sync.Mutex
		failed []string
	)
	dcs := []DC{{Name: "east-1", URL: east.URL}, {Name: "west-1", URL: west.URL}}
	items, err := c.ListAcrossDCs(context.Background(), dcs, MultiDCOptions{
		OnDCError: func(dc string, err error) {
			mu.Lock()
			failed = append(failed, dc)
			mu.Unlock()
		},
	}, func(ctx context.Context, dc *Client) ([]json.RawMessage, error) {
		return dc.listAll(ctx, dc.path("/machines"), nil)
	})

	// partial data comes back alongside the failure
	require.Error(t, err)
	assert.Contains(t, err.Error(), "west-1")
	require.Len(t, items, 1)
	assert.Equal(t, "east-1", items[0].DC)
	assert.Equal(t, []string{"west-1"}, failed)
}

func TestListAcrossDCsAllFail(t *testing.T) {
	fail := func() *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"code":"ServiceUnavailable","message":"maintenance"}`, http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)
		return srv
	}
	east, west := fail(), fail()

	c, err := New(ClientOptions{URL: east.URL, Account: "admin", Signer: testSigner{}})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	dcs := []DC{{Name: "east-1", URL: east.URL}, {Name: "west-1", URL: west.URL}}
	items, err := c.ListAcrossDCs(context.Background(), dcs, MultiDCOptions{},
		func(ctx context.Context, dc *Client) ([]json.RawMessage, error) {
			return dc.listAll(ctx, dc.path("/machines"), nil)
		})
	require.Error(t, err)
	assert.Equal(t, errs.KindMulti, errs.KindOf(err))
	assert.Empty(t, items)
}
