package cloudapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"

	"github.com/tritoncli/triton/errs"
)

const (
	defaultWaitTimeout     = 120 * time.Second
	defaultPollInterval    = 3 * time.Second
	maxPollInterval        = 30 * time.Second
	pollGrowthFactor       = 1.5
	transportFailureWindow = 30 * time.Second
)

// WaitOptions controls WaitForState. States is required; everything else
// has defaults.
type WaitOptions struct {
	// States are the terminal states; the first poll observing one of them
	// ends the wait. "failed" here is a terminal outcome, not an error.
	States []string

	// Timeout bounds the whole wait (default 120s).
	Timeout time.Duration

	// PollInterval is the initial poll period (default 3s). It grows
	// gently on server 5xx, capped at 30s.
	PollInterval time.Duration

	// StateOf extracts the observed state from the polled resource.
	// Defaults to the top-level "state" field. Specialized waiters (disk
	// sub-states, firewall rule enablement, migration phases) substitute
	// their own extractor.
	StateOf func(raw json.RawMessage) (string, error)

	// GetPath overrides the polled path; defaults to the kind's get path
	// for the id.
	GetPath string
}

func topLevelState(raw json.RawMessage) (string, error) {
	var body struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", errs.Wrap(errs.KindTransport, err, "parsing polled resource")
	}
	return body.State, nil
}

func stateIn(state string, states []string) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// WaitForState polls the resource until its state is in opts.States, the
// timeout elapses, or ctx is canceled. For waits that include "deleted", a
// 410 Gone (or 404 after the resource is reaped) counts as reaching
// "deleted" and yields a synthetic terminal resource.
func (c *Client) WaitForState(ctx context.Context, kind Kind, id string, opts WaitOptions) (json.RawMessage, error) {
	if len(opts.States) == 0 {
		return nil, errs.New(errs.KindUsage, "wait: no terminal states given")
	}
	spec, ok := kindSpecs[kind]
	if !ok && opts.GetPath == "" {
		return nil, errs.New(errs.KindUsage, "wait: unknown resource kind %q", kind)
	}

	path := opts.GetPath
	if path == "" {
		path = spec.getPath(c, id)
	}
	stateOf := opts.StateOf
	if stateOf == nil {
		stateOf = topLevelState
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	wantDeleted := stateIn("deleted", opts.States)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastState string
	var failingSince time.Time

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, c.waitCtxError(ctx, kind, id, lastState, timeout)
		case <-timer.C:
		}

		var raw json.RawMessage
		err := c.get(ctx, path, nil, &raw)
		switch {
		case err == nil:
			failingSince = time.Time{}
			state, serr := stateOf(raw)
			if serr != nil {
				return nil, serr
			}
			lastState = state
			grip.Debug(message.Fields{
				"message": "wait poll",
				"kind":    string(kind),
				"id":      id,
				"state":   state,
			})
			if stateIn(state, opts.States) {
				return raw, nil
			}

		case errs.KindOf(err) == errs.KindNotFound && wantDeleted:
			// the resource is gone, which is what we were waiting for
			return json.RawMessage(fmt.Sprintf(`{"id":%q,"state":"deleted"}`, id)), nil

		case errs.KindOf(err) == errs.KindCanceled || errs.KindOf(err) == errs.KindTimeout:
			return nil, c.waitCtxError(ctx, kind, id, lastState, timeout)

		case errs.KindOf(err) == errs.KindServer:
			// server is struggling; poll less aggressively
			interval = growInterval(interval)

		case errs.KindOf(err) == errs.KindTransport:
			if failingSince.IsZero() {
				failingSince = time.Now()
			} else if time.Since(failingSince) > transportFailureWindow {
				return nil, errs.Wrap(errs.KindTransport, err,
					"wait for %s %s aborted after %s of consecutive transport failures",
					kindNoun(kind), id, transportFailureWindow)
			}

		default:
			return nil, err
		}

		timer.Reset(interval)
	}
}

func (c *Client) waitCtxError(ctx context.Context, kind Kind, id, lastState string, timeout time.Duration) error {
	if ctx.Err() == context.DeadlineExceeded {
		msg := fmt.Sprintf("timed out after %s waiting on %s %s", timeout, kindNoun(kind), id)
		if lastState != "" {
			msg += fmt.Sprintf(" (last observed state %q)", lastState)
		}
		return errs.New(errs.KindTimeout, "%s", msg)
	}
	return errs.New(errs.KindCanceled, "wait on %s %s canceled", kindNoun(kind), id)
}

func growInterval(interval time.Duration) time.Duration {
	interval = time.Duration(float64(interval) * pollGrowthFactor)
	if interval > maxPollInterval {
		interval = maxPollInterval
	}
	return interval
}

// WaitForInstanceDisk polls an instance until the named disk reaches one of
// the given states; a disk that disappears counts as "deleted".
func (c *Client) WaitForInstanceDisk(ctx context.Context, instanceID, diskID string, opts WaitOptions) (json.RawMessage, error) {
	opts.GetPath = c.path("/machines/%s", instanceID)
	opts.StateOf = func(raw json.RawMessage) (string, error) {
		var body struct {
			Disks []struct {
				ID    string `json:"id"`
				State string `json:"state"`
			} `json:"disks"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", errs.Wrap(errs.KindTransport, err, "parsing polled instance disks")
		}
		for _, d := range body.Disks {
			if d.ID == diskID {
				return d.State, nil
			}
		}
		return "deleted", nil
	}
	return c.WaitForState(ctx, KindInstance, instanceID, opts)
}

// WaitForFirewallRuleEnabled polls a firewall rule until its enabled flag
// matches enabled.
func (c *Client) WaitForFirewallRuleEnabled(ctx context.Context, ruleID string, enabled bool, opts WaitOptions) (json.RawMessage, error) {
	want := "disabled"
	if enabled {
		want = "enabled"
	}
	opts.States = []string{want}
	opts.StateOf = func(raw json.RawMessage) (string, error) {
		var body struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", errs.Wrap(errs.KindTransport, err, "parsing polled firewall rule")
		}
		if body.Enabled {
			return "enabled", nil
		}
		return "disabled", nil
	}
	return c.WaitForState(ctx, KindFirewallRule, ruleID, opts)
}

// WaitForMigration polls an instance's migration until its state is in
// opts.States (typically successful/failed/paused). The migration endpoint
// returns a migration record rather than the instance, so the state is read
// off that record.
func (c *Client) WaitForMigration(ctx context.Context, instanceID string, opts WaitOptions) (json.RawMessage, error) {
	opts.GetPath = c.path("/machines/%s/migrate", instanceID)
	opts.StateOf = func(raw json.RawMessage) (string, error) {
		var body struct {
			State string `json:"state"`
			Phase string `json:"phase"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", errs.Wrap(errs.KindTransport, err, "parsing polled migration")
		}
		return body.State, nil
	}
	return c.WaitForState(ctx, KindInstance, instanceID, opts)
}
