package cloudapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

const (
	instID1 = "b6979942-7d5d-4fe6-a2ec-b812e950625a"
	instID2 = "b6970aaf-22c2-4bf5-a0ee-f92c40bed6fb"
	instID3 = "190e8fee-ea93-4f9e-a131-d1b32f757ae7"
)

// machinesHandler serves a fixed machine collection with CloudAPI's listing
// semantics: ?name= filters exactly, /machines/:id fetches one.
func machinesHandler(machines []map[string]interface{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/machines" {
			out := machines
			if name := r.URL.Query().Get("name"); name != "" {
				out = nil
				for _, m := range machines {
					if m["name"] == name {
						out = append(out, m)
					}
				}
			}
			json.NewEncoder(w).Encode(out)
			return
		}
		for _, m := range machines {
			if r.URL.Path == "/admin/machines/"+m["id"].(string) {
				json.NewEncoder(w).Encode(m)
				return
			}
		}
		http.Error(w, `{"code":"ResourceNotFound","message":"no such machine"}`, http.StatusNotFound)
	})
}

func testMachines() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": instID1, "name": "db0", "state": "running"},
		{"id": instID2, "name": "db1", "state": "running"},
		{"id": instID3, "name": "web", "state": "stopped"},
	}
}

func resolvedID(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.ID
}

func TestResolveFullUUID(t *testing.T) {
	c := newTestClient(t, machinesHandler(testMachines()))

	raw, err := c.Resolve(context.Background(), KindInstance, instID1, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID1, resolvedID(t, raw))
}

func TestResolveByName(t *testing.T) {
	c := newTestClient(t, machinesHandler(testMachines()))

	raw, err := c.Resolve(context.Background(), KindInstance, "web", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID3, resolvedID(t, raw))
}

func TestResolveShortID(t *testing.T) {
	c := newTestClient(t, machinesHandler(testMachines()))
	ctx := context.Background()

	raw, err := c.Resolve(ctx, KindInstance, "190e8fee", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID3, resolvedID(t, raw))

	// both db instances share the b697 prefix
	_, err = c.Resolve(ctx, KindInstance, "b697", ResolveOptions{})
	assert.Equal(t, errs.KindAmbiguousShortID, errs.KindOf(err))

	// one more hex digit disambiguates
	raw, err = c.Resolve(ctx, KindInstance, "b6979", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID1, resolvedID(t, raw))
}

func TestResolveAmbiguousName(t *testing.T) {
	machines := testMachines()
	machines = append(machines, map[string]interface{}{
		"id": "aaaa1111-0000-4000-8000-000000000000", "name": "web", "state": "running",
	})
	c := newTestClient(t, machinesHandler(machines))

	_, err := c.Resolve(context.Background(), KindInstance, "web", ResolveOptions{})
	assert.Equal(t, errs.KindAmbiguousName, errs.KindOf(err))
}

func TestResolveNotFound(t *testing.T) {
	c := newTestClient(t, machinesHandler(testMachines()))

	_, err := c.Resolve(context.Background(), KindInstance, "nothere", ResolveOptions{})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestResolveNameShadowsShortID(t *testing.T) {
	// "cafe" is a valid hex prefix but also an exact instance name; the name
	// match must win
	machines := []map[string]interface{}{
		{"id": "cafe0000-1111-4222-8333-444455556666", "name": "api0", "state": "running"},
		{"id": instID1, "name": "cafe", "state": "running"},
	}
	c := newTestClient(t, machinesHandler(machines))

	raw, err := c.Resolve(context.Background(), KindInstance, "cafe", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID1, resolvedID(t, raw))
}

func TestResolveImagePicksLatestPublished(t *testing.T) {
	images := []map[string]interface{}{
		{"id": instID1, "name": "base", "state": "active", "published_at": "2024-01-01T00:00:00Z"},
		{"id": instID2, "name": "base", "state": "active", "published_at": "2025-06-01T00:00:00Z"},
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(images)
	}))

	raw, err := c.Resolve(context.Background(), KindImage, "base", ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID2, resolvedID(t, raw))
}

func TestResolveSkipsInactive(t *testing.T) {
	images := []map[string]interface{}{
		{"id": instID1, "name": "base", "state": "unactivated", "published_at": "2024-01-01T00:00:00Z"},
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/images" {
			http.Error(w, `{"code":"ResourceNotFound","message":"no such image"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(images)
	}))
	ctx := context.Background()

	_, err := c.Resolve(ctx, KindImage, "base", ResolveOptions{})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	raw, err := c.Resolve(ctx, KindImage, "base", ResolveOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, instID1, resolvedID(t, raw))
}

func TestResolveIDSkipsRoundTripForUUID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request for a canonical UUID")
	}))

	id, err := c.ResolveID(context.Background(), KindInstance, instID1, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, instID1, id)
}

func TestNormalizeShortID(t *testing.T) {
	for input, want := range map[string]string{
		"190e8fee":  "190e8fee",
		"190E8FEE":  "190e8fee",
		"190e-8fee": "190e8fee",
		"beef":      "beef",
		"abc":       "", // too short
		"notahex":   "",
		fmt.Sprintf("%064d", 0): "00000000000000000000000000000000",
	} {
		assert.Equal(t, want, normalizeShortID(input), "input %q", input)
	}
}
