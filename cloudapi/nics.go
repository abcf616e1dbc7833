package cloudapi

import (
	"context"
	"strings"
	"time"
)

// ListInstanceNICs returns an instance's NICs.
func (c *Client) ListInstanceNICs(ctx context.Context, instanceIDOrName string) ([]*NIC, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/machines/%s/nics", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[NIC](items, "nic")
}

// GetInstanceNIC returns one NIC by MAC (colons optional).
func (c *Client) GetInstanceNIC(ctx context.Context, instanceIDOrName, mac string) (*NIC, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &NIC{}
	if err := c.get(ctx, c.path("/machines/%s/nics/%s", id, macPath(mac)), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddNICOptions controls AddInstanceNIC.
type AddNICOptions struct {
	// Network is the network to attach, by id, short id, or name.
	Network string

	Wait        bool
	WaitTimeout time.Duration
}

// AddInstanceNIC attaches a new NIC on the given network. The instance
// reboots as a side effect; with Wait the call blocks until the NIC reaches
// state "running".
func (c *Client) AddInstanceNIC(ctx context.Context, instanceIDOrName string, opts AddNICOptions) (*NIC, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	networkID, err := c.ResolveID(ctx, KindNetwork, opts.Network, ResolveOptions{})
	if err != nil {
		return nil, err
	}

	out := &NIC{}
	body := map[string]string{"network": networkID}
	if err := c.post(ctx, c.path("/machines/%s/nics", id), nil, body, out); err != nil {
		return nil, err
	}
	if opts.Wait {
		raw, err := c.WaitForState(ctx, KindInstance, id, WaitOptions{
			States:  []string{"running"},
			Timeout: opts.WaitTimeout,
			GetPath: c.path("/machines/%s/nics/%s", id, macPath(out.MAC)),
		})
		if err != nil {
			return out, err
		}
		return decodeOne[NIC](raw, "nic")
	}
	return out, nil
}

// RemoveInstanceNIC detaches a NIC by MAC. The instance reboots as a side
// effect.
func (c *Client) RemoveInstanceNIC(ctx context.Context, instanceIDOrName, mac string) error {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/machines/%s/nics/%s", id, macPath(mac)))
}

// macPath renders a MAC the way the NIC endpoints want it: lowercase hex
// with no separators.
func macPath(mac string) string {
	return strings.ToLower(strings.NewReplacer(":", "", "-", "").Replace(mac))
}
