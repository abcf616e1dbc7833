package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

func fastWait(states ...string) WaitOptions {
	return WaitOptions{
		States:       states,
		Timeout:      5 * time.Second,
		PollInterval: 5 * time.Millisecond,
	}
}

func TestWaitForStateReachesTerminal(t *testing.T) {
	var polls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := "provisioning"
		if atomic.AddInt32(&polls, 1) >= 3 {
			state = "running"
		}
		json.NewEncoder(w).Encode(map[string]string{"id": instID1, "state": state})
	}))

	raw, err := c.WaitForState(context.Background(), KindInstance, instID1, fastWait("running", "failed"))
	require.NoError(t, err)

	var body struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "running", body.State)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestWaitForStateFailedIsTerminalNotError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": instID1, "state": "failed"})
	}))

	raw, err := c.WaitForState(context.Background(), KindInstance, instID1, fastWait("running", "failed"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "failed")
}

func TestWaitForStateGoneCountsAsDeleted(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"ResourceNotFound","message":"machine reaped"}`, http.StatusGone)
	}))

	raw, err := c.WaitForState(context.Background(), KindInstance, instID1, fastWait("deleted"))
	require.NoError(t, err)

	var body struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, instID1, body.ID)
	assert.Equal(t, "deleted", body.State)
}

func TestWaitForStateGoneWithoutDeletedFails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"ResourceNotFound","message":"machine reaped"}`, http.StatusGone)
	}))

	_, err := c.WaitForState(context.Background(), KindInstance, instID1, fastWait("running"))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestWaitForStateTimeoutReportsLastState(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": instID1, "state": "provisioning"})
	}))

	opts := fastWait("running")
	opts.Timeout = 50 * time.Millisecond
	_, err := c.WaitForState(context.Background(), KindInstance, instID1, opts)
	require.Error(t, err)
	assert.Equal(t, errs.KindTimeout, errs.KindOf(err))
	assert.Contains(t, err.Error(), "provisioning")
}

func TestWaitForStateRequiresStates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := c.WaitForState(context.Background(), KindInstance, instID1, WaitOptions{})
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}

func TestWaitForInstanceDisk(t *testing.T) {
	diskID := "dddd1111-2222-4333-8444-555566667777"
	var polls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := "resizing"
		if atomic.AddInt32(&polls, 1) >= 2 {
			state = "running"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": instID1,
			"disks": []map[string]string{
				{"id": diskID, "state": state},
			},
		})
	}))

	raw, err := c.WaitForInstanceDisk(context.Background(), instID1, diskID, fastWait("running"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), diskID)
}

func TestWaitForFirewallRuleEnabled(t *testing.T) {
	var polls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enabled := atomic.AddInt32(&polls, 1) >= 2
		json.NewEncoder(w).Encode(map[string]interface{}{"id": instID1, "enabled": enabled})
	}))

	opts := fastWait()
	_, err := c.WaitForFirewallRuleEnabled(context.Background(), instID1, true, opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(2))
}

func TestGrowInterval(t *testing.T) {
	assert.Equal(t, 4500*time.Millisecond, growInterval(3*time.Second))
	assert.Equal(t, maxPollInterval, growInterval(25*time.Second))
}
