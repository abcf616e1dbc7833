package cloudapi

import (
	"context"
	"net/url"
	"time"
)

// ListInstanceSnapshots returns an instance's snapshots.
func (c *Client) ListInstanceSnapshots(ctx context.Context, instanceIDOrName string) ([]*Snapshot, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/machines/%s/snapshots", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Snapshot](items, "snapshot")
}

// GetInstanceSnapshot returns one snapshot by name.
func (c *Client) GetInstanceSnapshot(ctx context.Context, instanceIDOrName, name string) (*Snapshot, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Snapshot{}
	if err := c.get(ctx, c.path("/machines/%s/snapshots/%s", id, url.PathEscape(name)), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SnapshotOptions controls snapshot creation.
type SnapshotOptions struct {
	Name        string
	Wait        bool
	WaitTimeout time.Duration
}

// CreateInstanceSnapshot snapshots an instance. With Wait it blocks until
// the snapshot is created or failed.
func (c *Client) CreateInstanceSnapshot(ctx context.Context, instanceIDOrName string, opts SnapshotOptions) (*Snapshot, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	var body interface{}
	if opts.Name != "" {
		body = map[string]string{"name": opts.Name}
	}
	out := &Snapshot{}
	if err := c.post(ctx, c.path("/machines/%s/snapshots", id), nil, body, out); err != nil {
		return nil, err
	}
	if opts.Wait {
		raw, err := c.WaitForState(ctx, KindInstance, id, WaitOptions{
			States:  []string{"created", "failed"},
			Timeout: opts.WaitTimeout,
			GetPath: c.path("/machines/%s/snapshots/%s", id, url.PathEscape(out.Name)),
		})
		if err != nil {
			return out, err
		}
		return decodeOne[Snapshot](raw, "snapshot")
	}
	return out, nil
}

// DeleteInstanceSnapshot deletes a snapshot by name.
func (c *Client) DeleteInstanceSnapshot(ctx context.Context, instanceIDOrName, name string) error {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/machines/%s/snapshots/%s", id, url.PathEscape(name)))
}

// StartInstanceFromSnapshot boots an instance from one of its snapshots.
func (c *Client) StartInstanceFromSnapshot(ctx context.Context, instanceIDOrName, name string, opts ActionOptions) (*Instance, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := c.request(ctx, "POST", c.path("/machines/%s/snapshots/%s", id, url.PathEscape(name)), nil); err != nil {
		return nil, err
	}
	if !opts.Wait {
		return nil, nil
	}
	raw, err := c.WaitForState(ctx, KindInstance, id, WaitOptions{
		States:  []string{"running", "failed"},
		Timeout: opts.WaitTimeout,
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[Instance](raw, "machine")
}
