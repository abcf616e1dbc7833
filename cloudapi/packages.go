package cloudapi

import (
	"context"
	"net/url"
	"strconv"
)

// ListPackagesOptions are the server-side filters on the package listing.
type ListPackagesOptions struct {
	Name   string
	Memory int64
	Disk   int64
	Swap   int64
	VCPUs  int64
	Group  string
}

func (o ListPackagesOptions) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Memory > 0 {
		q.Set("memory", strconv.FormatInt(o.Memory, 10))
	}
	if o.Disk > 0 {
		q.Set("disk", strconv.FormatInt(o.Disk, 10))
	}
	if o.Swap > 0 {
		q.Set("swap", strconv.FormatInt(o.Swap, 10))
	}
	if o.VCPUs > 0 {
		q.Set("vcpus", strconv.FormatInt(o.VCPUs, 10))
	}
	if o.Group != "" {
		q.Set("group", o.Group)
	}
	return q
}

// ListPackages returns packages matching opts.
func (c *Client) ListPackages(ctx context.Context, opts ListPackagesOptions) ([]*Package, error) {
	items, err := c.listAll(ctx, c.path("/packages"), opts.query())
	if err != nil {
		return nil, err
	}
	return decodeAll[Package](items, "package")
}

// GetPackage resolves idOrName and returns the package. Inactive packages
// only resolve when includeInactive is set.
func (c *Client) GetPackage(ctx context.Context, idOrName string, includeInactive bool) (*Package, error) {
	raw, err := c.Resolve(ctx, KindPackage, idOrName, ResolveOptions{IncludeInactive: includeInactive})
	if err != nil {
		return nil, err
	}
	return decodeOne[Package](raw, "package")
}
