package cloudapi

import (
	"context"
	"net/url"
)

// ListKeys returns the account's SSH keys.
func (c *Client) ListKeys(ctx context.Context) ([]*Key, error) {
	items, err := c.listAll(ctx, c.path("/keys"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Key](items, "key")
}

// GetKey returns one SSH key by name or fingerprint.
func (c *Client) GetKey(ctx context.Context, nameOrFingerprint string) (*Key, error) {
	out := &Key{}
	if err := c.get(ctx, c.path("/keys/%s", url.PathEscape(nameOrFingerprint)), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddKey uploads an SSH public key. Name is optional; the server derives one
// from the key comment when empty.
func (c *Client) AddKey(ctx context.Context, name, publicKey string) (*Key, error) {
	body := map[string]string{"key": publicKey}
	if name != "" {
		body["name"] = name
	}
	out := &Key{}
	if err := c.post(ctx, c.path("/keys"), nil, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteKey removes an SSH key by name or fingerprint.
func (c *Client) DeleteKey(ctx context.Context, nameOrFingerprint string) error {
	return c.del(ctx, c.path("/keys/%s", url.PathEscape(nameOrFingerprint)))
}

// ListUserKeys returns a sub-user's SSH keys.
func (c *Client) ListUserKeys(ctx context.Context, userIDOrLogin string) ([]*Key, error) {
	id, err := c.ResolveID(ctx, KindUser, userIDOrLogin, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/users/%s/keys", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Key](items, "key")
}

// GetUserKey returns one of a sub-user's SSH keys.
func (c *Client) GetUserKey(ctx context.Context, userIDOrLogin, nameOrFingerprint string) (*Key, error) {
	id, err := c.ResolveID(ctx, KindUser, userIDOrLogin, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Key{}
	if err := c.get(ctx, c.path("/users/%s/keys/%s", id, url.PathEscape(nameOrFingerprint)), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddUserKey uploads an SSH public key for a sub-user.
func (c *Client) AddUserKey(ctx context.Context, userIDOrLogin, name, publicKey string) (*Key, error) {
	id, err := c.ResolveID(ctx, KindUser, userIDOrLogin, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	body := map[string]string{"key": publicKey}
	if name != "" {
		body["name"] = name
	}
	out := &Key{}
	if err := c.post(ctx, c.path("/users/%s/keys", id), nil, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUserKey removes a sub-user's SSH key.
func (c *Client) DeleteUserKey(ctx context.Context, userIDOrLogin, nameOrFingerprint string) error {
	id, err := c.ResolveID(ctx, KindUser, userIDOrLogin, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/users/%s/keys/%s", id, url.PathEscape(nameOrFingerprint)))
}
