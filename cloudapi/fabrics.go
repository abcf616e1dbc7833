package cloudapi

import (
	"context"
	"strconv"

	"github.com/tritoncli/triton/errs"
)

// ListFabricVLANs returns the account's fabric VLANs.
func (c *Client) ListFabricVLANs(ctx context.Context) ([]*FabricVLAN, error) {
	items, err := c.listAll(ctx, c.path("/fabrics/default/vlans"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[FabricVLAN](items, "fabric VLAN")
}

// GetFabricVLAN returns one fabric VLAN by numeric id or name.
func (c *Client) GetFabricVLAN(ctx context.Context, idOrName string) (*FabricVLAN, error) {
	if id, err := strconv.Atoi(idOrName); err == nil {
		out := &FabricVLAN{}
		if err := c.get(ctx, c.path("/fabrics/default/vlans/%d", id), nil, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	// VLANs are not UUID-keyed, so resolution is a straight name scan
	vlans, err := c.ListFabricVLANs(ctx)
	if err != nil {
		return nil, err
	}
	var match *FabricVLAN
	matches := 0
	for _, vlan := range vlans {
		if vlan.Name == idOrName {
			match = vlan
			matches++
		}
	}
	switch matches {
	case 0:
		return nil, errs.New(errs.KindNotFound, "no fabric VLAN matches %q", idOrName)
	case 1:
		return match, nil
	default:
		return nil, errs.New(errs.KindAmbiguousName,
			"fabric VLAN name %q matches %d VLANs; use the VLAN id instead", idOrName, matches)
	}
}

// CreateFabricVLAN creates a fabric VLAN.
func (c *Client) CreateFabricVLAN(ctx context.Context, vlan FabricVLAN) (*FabricVLAN, error) {
	out := &FabricVLAN{}
	if err := c.post(ctx, c.path("/fabrics/default/vlans"), nil, vlan, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFabricVLAN updates a fabric VLAN's name or description.
func (c *Client) UpdateFabricVLAN(ctx context.Context, vlanID int, fields map[string]interface{}) (*FabricVLAN, error) {
	out := &FabricVLAN{}
	if err := c.put(ctx, c.path("/fabrics/default/vlans/%d", vlanID), fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFabricVLAN deletes a fabric VLAN. Its networks must be deleted
// first.
func (c *Client) DeleteFabricVLAN(ctx context.Context, vlanID int) error {
	return c.del(ctx, c.path("/fabrics/default/vlans/%d", vlanID))
}

// ListFabricNetworks returns the networks on a fabric VLAN.
func (c *Client) ListFabricNetworks(ctx context.Context, vlanID int) ([]*Network, error) {
	items, err := c.listAll(ctx, c.path("/fabrics/default/vlans/%d/networks", vlanID), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Network](items, "fabric network")
}

// CreateFabricNetworkOptions describes a new fabric network.
type CreateFabricNetworkOptions struct {
	Name             string   `json:"name"`
	Subnet           string   `json:"subnet"`
	ProvisionStartIP string   `json:"provision_start_ip"`
	ProvisionEndIP   string   `json:"provision_end_ip"`
	Gateway          string   `json:"gateway,omitempty"`
	Resolvers        []string `json:"resolvers,omitempty"`
	Description      string   `json:"description,omitempty"`
	InternetNAT      *bool    `json:"internet_nat,omitempty"`
}

// CreateFabricNetwork creates a network on a fabric VLAN.
func (c *Client) CreateFabricNetwork(ctx context.Context, vlanID int, opts CreateFabricNetworkOptions) (*Network, error) {
	out := &Network{}
	if err := c.post(ctx, c.path("/fabrics/default/vlans/%d/networks", vlanID), nil, opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFabricNetwork deletes a fabric network.
func (c *Client) DeleteFabricNetwork(ctx context.Context, vlanID int, networkIDOrName string) error {
	id, err := c.ResolveID(ctx, KindNetwork, networkIDOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/fabrics/default/vlans/%d/networks/%s", vlanID, id))
}

// ListVPCs returns the account's fabric VPCs.
func (c *Client) ListVPCs(ctx context.Context) ([]*VPC, error) {
	items, err := c.listAll(ctx, c.path("/vpcs"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[VPC](items, "VPC")
}

// GetVPC resolves idOrName and returns the VPC.
func (c *Client) GetVPC(ctx context.Context, idOrName string) (*VPC, error) {
	raw, err := c.Resolve(ctx, KindVPC, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[VPC](raw, "VPC")
}

// CreateVPC creates a fabric VPC.
func (c *Client) CreateVPC(ctx context.Context, vpc VPC) (*VPC, error) {
	out := &VPC{}
	if err := c.post(ctx, c.path("/vpcs"), nil, vpc, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateVPC updates a VPC's name or description.
func (c *Client) UpdateVPC(ctx context.Context, idOrName string, fields map[string]interface{}) (*VPC, error) {
	id, err := c.ResolveID(ctx, KindVPC, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &VPC{}
	if err := c.put(ctx, c.path("/vpcs/%s", id), fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVPC deletes a fabric VPC.
func (c *Client) DeleteVPC(ctx context.Context, idOrName string) error {
	id, err := c.ResolveID(ctx, KindVPC, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/vpcs/%s", id))
}
