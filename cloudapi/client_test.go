package cloudapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

type testSigner struct{}

func (testSigner) Sign([]byte) ([]byte, error) { return []byte("test-signature"), nil }
func (testSigner) Algorithm() string           { return "rsa-sha256" }
func (testSigner) Fingerprint() string {
	return "2f:13:1a:92:ca:57:59:9e:31:47:21:2e:fc:d3:5a:a5"
}

// newTestClient builds a Client against an httptest server with fast retry
// settings and no cache.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(ClientOptions{
		URL:            srv.URL,
		Account:        "admin",
		Signer:         testSigner{},
		RequestTimeout: 10 * time.Second,
		MaxRetries:     2,
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(ClientOptions{Account: "admin", Signer: testSigner{}})
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))

	_, err = New(ClientOptions{URL: "https://example.com", Signer: testSigner{}})
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))

	_, err = New(ClientOptions{URL: "https://example.com", Account: "admin"})
	assert.Equal(t, errs.KindConfig, errs.KindOf(err))
}

func TestAccountActAs(t *testing.T) {
	c, err := New(ClientOptions{URL: "https://example.com", Account: "admin", Signer: testSigner{}})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "admin", c.Account())
	assert.Equal(t, "/admin/machines", c.path("/machines"))

	masq, err := New(ClientOptions{
		URL: "https://example.com", Account: "admin", ActAsAccount: "customer", Signer: testSigner{},
	})
	require.NoError(t, err)
	defer masq.Close()
	assert.Equal(t, "customer", masq.Account())
	assert.Equal(t, "/customer/machines", masq.path("/machines"))
}

func TestRequestSignsEveryAttempt(t *testing.T) {
	var authz []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = append(authz, r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("Date"))
		w.Write([]byte(`{"ok":true}`))
	}))

	var out map[string]bool
	require.NoError(t, c.get(context.Background(), "/admin/ok", nil, &out))
	require.Len(t, authz, 1)
	assert.Contains(t, authz[0], `keyId="/admin/keys/`)
	assert.True(t, out["ok"])
}

func TestRequestRetriesIdempotentOn5xx(t *testing.T) {
	var calls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, `{"code":"InternalError","message":"try later"}`, http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))

	var out []struct{}
	require.NoError(t, c.get(context.Background(), "/admin/machines", nil, &out))
	assert.Equal(t, 3, calls)
}

func TestRequestNeverRetriesPost(t *testing.T) {
	var calls int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"code":"InternalError","message":"boom"}`, http.StatusInternalServerError)
	}))

	err := c.post(context.Background(), "/admin/machines", nil, map[string]string{"name": "db0"}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errs.KindServer, errs.KindOf(err))
}

func TestRequestErrorMapping(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/gone":
			http.Error(w, `{"code":"ResourceNotFound","message":"machine not found"}`, http.StatusNotFound)
		case "/admin/unauth":
			http.Error(w, `{"code":"InvalidCredentials","message":"signature rejected"}`, http.StatusUnauthorized)
		default:
			http.Error(w, `{"message":"invalid argument"}`, http.StatusUnprocessableEntity)
		}
	}))
	ctx := context.Background()

	err := c.get(ctx, "/admin/gone", nil, nil)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, "ResourceNotFound", errs.CodeOf(err))

	err = c.get(ctx, "/admin/unauth", nil, nil)
	assert.Equal(t, errs.KindAuth, errs.KindOf(err))

	err = c.get(ctx, "/admin/bad", nil, nil)
	assert.Equal(t, errs.KindServer, errs.KindOf(err))
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestRequestCanceledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.get(ctx, "/admin/machines", nil, nil)
	assert.Equal(t, errs.KindCanceled, errs.KindOf(err))
}
