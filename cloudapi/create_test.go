package cloudapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

const (
	createImageID   = "7b5981c4-1889-11e6-b4f5-000000000001"
	createPackageID = "14aea8fc-1889-11e6-b4f5-000000000002"
	createInstID    = "b6979942-1889-11e6-b4f5-000000000003"
)

func TestCreateInstanceDryRun(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request during dry run: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"code":"InternalError","message":"dry run must not reach the server"}`)
	}))

	inst, err := c.CreateInstance(context.Background(), &CreateInstanceOptions{
		Image:   createImageID,
		Package: createPackageID,
		DryRun:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "provisioning", inst.State)
	assert.Equal(t, createImageID, inst.Image)
	assert.Equal(t, createPackageID, inst.Package)
	assert.True(t, strings.HasPrefix(inst.Name, "dry-run-"), "synthetic name, got %q", inst.Name)
	assert.NotEmpty(t, inst.ID)

	named, err := c.CreateInstance(context.Background(), &CreateInstanceOptions{
		Name:    "test-1",
		Image:   createImageID,
		Package: createPackageID,
		DryRun:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "test-1", named.Name)
}

func TestCreateInstanceComposesAndPosts(t *testing.T) {
	var posts int32
	var body map[string]interface{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/images":
			assert.Equal(t, "base-64", r.URL.Query().Get("name"))
			w.Header().Set("x-resource-count", "1")
			fmt.Fprintf(w, `[{"id":%q,"name":"base-64","state":"active","published_at":"2026-01-01T00:00:00Z"}]`, createImageID)
		case r.Method == http.MethodPost && r.URL.Path == "/admin/machines":
			atomic.AddInt32(&posts, 1)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			fmt.Fprintf(w, `{"id":%q,"name":"test-1","state":"provisioning"}`, createInstID)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":"ResourceNotFound","message":"no route"}`)
		}
	}))

	inst, err := c.CreateInstance(context.Background(), &CreateInstanceOptions{
		Name:            "test-1",
		Image:           "base-64",
		Package:         createPackageID,
		Metadata:        map[string]interface{}{"foo": "bar"},
		Tags:            map[string]interface{}{"env": "test"},
		FirewallEnabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
	assert.Equal(t, createInstID, inst.ID)
	assert.Equal(t, "provisioning", inst.State)

	// Image and package references arrive resolved to canonical ids, and
	// metadata and tags flatten into dotted keys.
	assert.Equal(t, createImageID, body["image"])
	assert.Equal(t, createPackageID, body["package"])
	assert.Equal(t, "test-1", body["name"])
	assert.Equal(t, "bar", body["metadata.foo"])
	assert.Equal(t, "test", body["tag.env"])
	assert.Equal(t, true, body["firewall_enabled"])
}

func TestCreateInstanceWaitsForRunning(t *testing.T) {
	var polls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/admin/machines":
			fmt.Fprintf(w, `{"id":%q,"name":"test-1","state":"provisioning"}`, createInstID)
		case r.Method == http.MethodGet && r.URL.Path == "/admin/machines/"+createInstID:
			atomic.AddInt32(&polls, 1)
			fmt.Fprintf(w, `{"id":%q,"name":"test-1","state":"running"}`, createInstID)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":"ResourceNotFound","message":"no route"}`)
		}
	}))

	inst, err := c.CreateInstance(context.Background(), &CreateInstanceOptions{
		Name:        "test-1",
		Image:       createImageID,
		Package:     createPackageID,
		Wait:        true,
		WaitTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "running", inst.State)
	assert.Equal(t, int32(1), atomic.LoadInt32(&polls))
}

func TestCreateInstanceRequiresImageAndPackage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))

	_, err := c.CreateInstance(context.Background(), &CreateInstanceOptions{Package: createPackageID})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))

	_, err = c.CreateInstance(context.Background(), &CreateInstanceOptions{Image: createImageID})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}
