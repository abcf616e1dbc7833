package cloudapi

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// ListVolumesOptions are the server-side filters on the volume listing.
type ListVolumesOptions struct {
	Name  string
	Size  int64
	State string
	Type  string
}

func (o ListVolumesOptions) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Size > 0 {
		q.Set("size", strconv.FormatInt(o.Size, 10))
	}
	if o.State != "" {
		q.Set("state", o.State)
	}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	return q
}

// ListVolumes returns volumes matching opts.
func (c *Client) ListVolumes(ctx context.Context, opts ListVolumesOptions) ([]*Volume, error) {
	items, err := c.listAll(ctx, c.path("/volumes"), opts.query())
	if err != nil {
		return nil, err
	}
	return decodeAll[Volume](items, "volume")
}

// GetVolume resolves idOrName and returns the volume.
func (c *Client) GetVolume(ctx context.Context, idOrName string) (*Volume, error) {
	raw, err := c.Resolve(ctx, KindVolume, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[Volume](raw, "volume")
}

// CreateVolumeOptions describes a new volume.
type CreateVolumeOptions struct {
	Name     string
	Type     string // default "tritonnfs"
	Size     int64  // MiB
	Networks []string
	Affinity []string
	Tags     map[string]interface{}

	Wait        bool
	WaitTimeout time.Duration
}

// CreateVolume creates a volume. With Wait it blocks until the volume is
// ready or failed.
func (c *Client) CreateVolume(ctx context.Context, opts CreateVolumeOptions) (*Volume, error) {
	body := map[string]interface{}{}
	if opts.Name != "" {
		body["name"] = opts.Name
	}
	volType := opts.Type
	if volType == "" {
		volType = "tritonnfs"
	}
	body["type"] = volType
	if opts.Size > 0 {
		body["size"] = opts.Size
	}
	if len(opts.Networks) > 0 {
		networkIDs := make([]string, 0, len(opts.Networks))
		for _, ref := range opts.Networks {
			id, err := c.ResolveID(ctx, KindNetwork, ref, ResolveOptions{})
			if err != nil {
				return nil, err
			}
			networkIDs = append(networkIDs, id)
		}
		body["networks"] = networkIDs
	}
	if len(opts.Affinity) > 0 {
		body["affinity"] = opts.Affinity
	}
	if len(opts.Tags) > 0 {
		body["tags"] = opts.Tags
	}

	out := &Volume{}
	if err := c.post(ctx, c.path("/volumes"), nil, body, out); err != nil {
		return nil, err
	}
	if opts.Wait {
		raw, err := c.WaitForState(ctx, KindVolume, out.ID, WaitOptions{
			States:  []string{"ready", "failed"},
			Timeout: opts.WaitTimeout,
		})
		if err != nil {
			return out, err
		}
		return decodeOne[Volume](raw, "volume")
	}
	return out, nil
}

// DeleteVolumeOptions controls DeleteVolume.
type DeleteVolumeOptions struct {
	Wait        bool
	WaitTimeout time.Duration
}

// DeleteVolume deletes a volume; with Wait it blocks until the volume is
// gone.
func (c *Client) DeleteVolume(ctx context.Context, idOrName string, opts DeleteVolumeOptions) error {
	id, err := c.ResolveID(ctx, KindVolume, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	if err := c.del(ctx, c.path("/volumes/%s", id)); err != nil {
		return err
	}
	if opts.Wait {
		_, err = c.WaitForState(ctx, KindVolume, id, WaitOptions{
			States:  []string{"deleted", "failed"},
			Timeout: opts.WaitTimeout,
		})
	}
	return err
}
