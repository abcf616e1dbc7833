package cloudapi

import (
	"context"
	"net/url"
)

// ListAccessKeys returns the account's S3-style access keys. Secrets are
// only returned at creation time.
func (c *Client) ListAccessKeys(ctx context.Context) ([]*AccessKey, error) {
	items, err := c.listAll(ctx, c.path("/accesskeys"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[AccessKey](items, "access key")
}

// GetAccessKey returns one access key by id.
func (c *Client) GetAccessKey(ctx context.Context, accessKeyID string) (*AccessKey, error) {
	out := &AccessKey{}
	if err := c.get(ctx, c.path("/accesskeys/%s", url.PathEscape(accessKeyID)), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAccessKey mints a new access key. The returned record includes the
// secret; it cannot be fetched again afterwards.
func (c *Client) CreateAccessKey(ctx context.Context) (*AccessKey, error) {
	out := &AccessKey{}
	if err := c.post(ctx, c.path("/accesskeys"), nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAccessKey revokes an access key.
func (c *Client) DeleteAccessKey(ctx context.Context, accessKeyID string) error {
	return c.del(ctx, c.path("/accesskeys/%s", url.PathEscape(accessKeyID)))
}
