package cloudapi

import (
	"context"
	"net/url"
)

// ListNetworks returns the networks viewable by the caller.
func (c *Client) ListNetworks(ctx context.Context) ([]*Network, error) {
	items, err := c.listAll(ctx, c.path("/networks"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Network](items, "network")
}

// GetNetwork resolves idOrName and returns the network.
func (c *Client) GetNetwork(ctx context.Context, idOrName string) (*Network, error) {
	raw, err := c.Resolve(ctx, KindNetwork, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[Network](raw, "network")
}

// ListNetworkIPs lists the IPs on a network the caller can see.
func (c *Client) ListNetworkIPs(ctx context.Context, idOrName string) ([]*NetworkIP, error) {
	id, err := c.ResolveID(ctx, KindNetwork, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/networks/%s/ips", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[NetworkIP](items, "network IP")
}

// GetNetworkIP returns one IP on a network.
func (c *Client) GetNetworkIP(ctx context.Context, idOrName, ip string) (*NetworkIP, error) {
	id, err := c.ResolveID(ctx, KindNetwork, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &NetworkIP{}
	if err := c.get(ctx, c.path("/networks/%s/ips/%s", id, url.PathEscape(ip)), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateNetworkIP updates an IP's reservation state.
func (c *Client) UpdateNetworkIP(ctx context.Context, idOrName, ip string, reserved bool) (*NetworkIP, error) {
	id, err := c.ResolveID(ctx, KindNetwork, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &NetworkIP{}
	body := map[string]interface{}{"reserved": reserved}
	if err := c.put(ctx, c.path("/networks/%s/ips/%s", id, url.PathEscape(ip)), body, out); err != nil {
		return nil, err
	}
	return out, nil
}
