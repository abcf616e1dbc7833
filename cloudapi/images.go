package cloudapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// ListImagesOptions are the server-side filters on the image listing.
type ListImagesOptions struct {
	Name    string
	Version string
	OS      string
	Type    string
	State   string // "all" lists every state
	Public  *bool
	Owner   string
}

func (o ListImagesOptions) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Version != "" {
		q.Set("version", o.Version)
	}
	if o.OS != "" {
		q.Set("os", o.OS)
	}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.State != "" {
		q.Set("state", o.State)
	}
	if o.Public != nil {
		q.Set("public", strconv.FormatBool(*o.Public))
	}
	if o.Owner != "" {
		q.Set("owner", o.Owner)
	}
	return q
}

func (o ListImagesOptions) empty() bool {
	return o == ListImagesOptions{}
}

// ListImages returns images matching opts. Unfiltered listings are served
// through the on-disk cache (1 hour TTL).
func (c *Client) ListImages(ctx context.Context, opts ListImagesOptions) ([]*Image, error) {
	var items []json.RawMessage
	var err error
	if opts.empty() {
		items, err = c.cachedList(ctx, string(KindImage), c.path("/images"))
	} else {
		items, err = c.listAll(ctx, c.path("/images"), opts.query())
	}
	if err != nil {
		return nil, err
	}
	return decodeAll[Image](items, "image")
}

// GetImage resolves idOrName and returns the image. Inactive images only
// resolve by name/short id when includeInactive is set.
func (c *Client) GetImage(ctx context.Context, idOrName string, includeInactive bool) (*Image, error) {
	raw, err := c.Resolve(ctx, KindImage, idOrName, ResolveOptions{IncludeInactive: includeInactive})
	if err != nil {
		return nil, err
	}
	return decodeOne[Image](raw, "image")
}

// CreateImageOptions describes CreateImageFromMachine.
type CreateImageOptions struct {
	Instance    string // id, short id, or name
	Name        string
	Version     string
	Description string
	HomePage    string
	EULA        string
	ACL         []string
	Tags        map[string]interface{}

	Wait        bool
	WaitTimeout time.Duration
}

// CreateImage creates a custom image from a stopped instance. The
// provisional image is returned; with Wait it is polled until active or
// failed.
func (c *Client) CreateImage(ctx context.Context, opts CreateImageOptions) (*Image, error) {
	machineID, err := c.ResolveID(ctx, KindInstance, opts.Instance, ResolveOptions{})
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"machine": machineID,
		"name":    opts.Name,
		"version": opts.Version,
	}
	if opts.Description != "" {
		body["description"] = opts.Description
	}
	if opts.HomePage != "" {
		body["homepage"] = opts.HomePage
	}
	if opts.EULA != "" {
		body["eula"] = opts.EULA
	}
	if len(opts.ACL) > 0 {
		body["acl"] = opts.ACL
	}
	if len(opts.Tags) > 0 {
		body["tags"] = opts.Tags
	}

	img := &Image{}
	if err := c.post(ctx, c.path("/images"), nil, body, img); err != nil {
		return nil, err
	}
	c.invalidateCache(string(KindImage))

	if opts.Wait {
		raw, err := c.WaitForState(ctx, KindImage, img.ID, WaitOptions{
			States:  []string{"active", "failed"},
			Timeout: opts.WaitTimeout,
		})
		if err != nil {
			return img, err
		}
		return decodeOne[Image](raw, "image")
	}
	return img, nil
}

// UpdateImage updates modifiable image fields (name, version, description,
// acl, tags, ...).
func (c *Client) UpdateImage(ctx context.Context, idOrName string, fields map[string]interface{}) (*Image, error) {
	id, err := c.ResolveID(ctx, KindImage, idOrName, ResolveOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	img := &Image{}
	q := url.Values{"action": []string{"update"}}
	if err := c.post(ctx, c.path("/images/%s", id), q, fields, img); err != nil {
		return nil, err
	}
	c.invalidateCache(string(KindImage))
	return img, nil
}

// DeleteImage deletes an image.
func (c *Client) DeleteImage(ctx context.Context, idOrName string) error {
	id, err := c.ResolveID(ctx, KindImage, idOrName, ResolveOptions{IncludeInactive: true})
	if err != nil {
		return err
	}
	if err := c.del(ctx, c.path("/images/%s", id)); err != nil {
		return err
	}
	c.invalidateCache(string(KindImage))
	return nil
}

// ExportImage exports an image to a Manta path.
func (c *Client) ExportImage(ctx context.Context, idOrName, mantaPath string) (json.RawMessage, error) {
	id, err := c.ResolveID(ctx, KindImage, idOrName, ResolveOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	q := url.Values{"action": []string{"export"}, "manta_path": []string{mantaPath}}
	var out json.RawMessage
	resp, err := c.request(ctx, "POST", c.path("/images/%s", id), &requestOptions{query: q})
	if err != nil {
		return nil, err
	}
	if err := resp.decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// CloneImage clones a shared image into the caller's account.
func (c *Client) CloneImage(ctx context.Context, idOrName string) (*Image, error) {
	id, err := c.ResolveID(ctx, KindImage, idOrName, ResolveOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	img := &Image{}
	q := url.Values{"action": []string{"clone"}}
	if err := c.post(ctx, c.path("/images/%s", id), q, nil, img); err != nil {
		return nil, err
	}
	c.invalidateCache(string(KindImage))
	return img, nil
}

// CopyImage copies one of the caller's images from another datacenter.
func (c *Client) CopyImage(ctx context.Context, id, fromDC string) (*Image, error) {
	img := &Image{}
	q := url.Values{
		"action":     []string{"import-from-datacenter"},
		"datacenter": []string{fromDC},
	}
	if err := c.post(ctx, c.path("/images/%s", id), q, nil, img); err != nil {
		return nil, err
	}
	c.invalidateCache(string(KindImage))
	return img, nil
}

// ShareImage adds an account to the image's ACL; UnshareImage removes it.
func (c *Client) ShareImage(ctx context.Context, idOrName, account string) (*Image, error) {
	return c.imageACL(ctx, idOrName, account, "add")
}

// UnshareImage removes an account from the image's ACL.
func (c *Client) UnshareImage(ctx context.Context, idOrName, account string) (*Image, error) {
	return c.imageACL(ctx, idOrName, account, "remove")
}

func (c *Client) imageACL(ctx context.Context, idOrName, account, aclAction string) (*Image, error) {
	id, err := c.ResolveID(ctx, KindImage, idOrName, ResolveOptions{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	img := &Image{}
	q := url.Values{"action": []string{aclAction}}
	body := []string{account}
	if err := c.post(ctx, c.path("/images/%s/acl", id), q, body, img); err != nil {
		return nil, err
	}
	c.invalidateCache(string(KindImage))
	return img, nil
}
