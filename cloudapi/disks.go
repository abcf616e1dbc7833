package cloudapi

import (
	"context"
	"time"
)

// ListInstanceDisks returns a bhyve instance's disks.
func (c *Client) ListInstanceDisks(ctx context.Context, instanceIDOrName string) ([]*Disk, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/machines/%s/disks", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Disk](items, "disk")
}

// GetInstanceDisk returns one disk by id.
func (c *Client) GetInstanceDisk(ctx context.Context, instanceIDOrName, diskID string) (*Disk, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Disk{}
	if err := c.get(ctx, c.path("/machines/%s/disks/%s", id, diskID), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DiskOptions controls disk add/resize/delete waiting.
type DiskOptions struct {
	Wait        bool
	WaitTimeout time.Duration
}

// AddInstanceDisk creates a disk of size MiB on a stopped bhyve instance.
// With Wait it blocks until the disk reaches state "running".
func (c *Client) AddInstanceDisk(ctx context.Context, instanceIDOrName string, size int64, opts DiskOptions) (*Disk, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Disk{}
	body := map[string]interface{}{"size": size}
	if err := c.post(ctx, c.path("/machines/%s/disks", id), nil, body, out); err != nil {
		return nil, err
	}
	if opts.Wait {
		raw, err := c.WaitForInstanceDisk(ctx, id, out.ID, WaitOptions{
			States:  []string{"running", "stopped", "failed"},
			Timeout: opts.WaitTimeout,
		})
		if err != nil {
			return out, err
		}
		return decodeOne[Disk](raw, "disk")
	}
	return out, nil
}

// ResizeInstanceDisk resizes a disk to size MiB. Shrinking requires
// dangerousAllowShrink.
func (c *Client) ResizeInstanceDisk(ctx context.Context, instanceIDOrName, diskID string, size int64, dangerousAllowShrink bool, opts DiskOptions) (*Disk, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{"size": size}
	if dangerousAllowShrink {
		body["dangerous_allow_shrink"] = true
	}
	out := &Disk{}
	if err := c.post(ctx, c.path("/machines/%s/disks/%s", id, diskID), nil, body, out); err != nil {
		return nil, err
	}
	if opts.Wait {
		raw, err := c.WaitForInstanceDisk(ctx, id, diskID, WaitOptions{
			States:  []string{"running", "stopped", "failed"},
			Timeout: opts.WaitTimeout,
		})
		if err != nil {
			return out, err
		}
		return decodeOne[Disk](raw, "disk")
	}
	return out, nil
}

// DeleteInstanceDisk deletes a disk from a stopped instance. With Wait it
// blocks until the disk is gone.
func (c *Client) DeleteInstanceDisk(ctx context.Context, instanceIDOrName, diskID string, opts DiskOptions) error {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	if err := c.del(ctx, c.path("/machines/%s/disks/%s", id, diskID)); err != nil {
		return err
	}
	if opts.Wait {
		_, err = c.WaitForInstanceDisk(ctx, id, diskID, WaitOptions{
			States:  []string{"deleted"},
			Timeout: opts.WaitTimeout,
		})
	}
	return err
}
