package cloudapi

import (
	"context"
)

// ListUsers returns the account's RBAC sub-users.
func (c *Client) ListUsers(ctx context.Context) ([]*User, error) {
	items, err := c.listAll(ctx, c.path("/users"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[User](items, "user")
}

// GetUser resolves idOrLogin and returns the sub-user.
func (c *Client) GetUser(ctx context.Context, idOrLogin string) (*User, error) {
	raw, err := c.Resolve(ctx, KindUser, idOrLogin, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[User](raw, "user")
}

// UserFields are the mutable sub-user attributes. Nil-valued pointers are
// left unchanged on update.
type UserFields struct {
	Login       *string `json:"login,omitempty"`
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// CreateUser creates a sub-user. Login, Email, and Password are required by
// the server.
func (c *Client) CreateUser(ctx context.Context, fields UserFields) (*User, error) {
	out := &User{}
	if err := c.post(ctx, c.path("/users"), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser patches a sub-user's attributes.
func (c *Client) UpdateUser(ctx context.Context, idOrLogin string, fields UserFields) (*User, error) {
	id, err := c.ResolveID(ctx, KindUser, idOrLogin, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &User{}
	if err := c.post(ctx, c.path("/users/%s", id), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeUserPassword sets a sub-user's password.
func (c *Client) ChangeUserPassword(ctx context.Context, idOrLogin, password string) error {
	id, err := c.ResolveID(ctx, KindUser, idOrLogin, ResolveOptions{})
	if err != nil {
		return err
	}
	body := map[string]string{
		"password":              password,
		"password_confirmation": password,
	}
	return c.post(ctx, c.path("/users/%s/change_password", id), nil, body, nil)
}

// DeleteUser removes a sub-user.
func (c *Client) DeleteUser(ctx context.Context, idOrLogin string) error {
	id, err := c.ResolveID(ctx, KindUser, idOrLogin, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/users/%s", id))
}

// ListRoles returns the account's RBAC roles.
func (c *Client) ListRoles(ctx context.Context) ([]*Role, error) {
	items, err := c.listAll(ctx, c.path("/roles"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Role](items, "role")
}

// GetRole resolves idOrName and returns the role.
func (c *Client) GetRole(ctx context.Context, idOrName string) (*Role, error) {
	raw, err := c.Resolve(ctx, KindRole, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[Role](raw, "role")
}

// RoleFields are the mutable role attributes.
type RoleFields struct {
	Name           *string   `json:"name,omitempty"`
	Policies       *[]string `json:"policies,omitempty"`
	Members        *[]string `json:"members,omitempty"`
	DefaultMembers *[]string `json:"default_members,omitempty"`
}

// CreateRole creates a role.
func (c *Client) CreateRole(ctx context.Context, fields RoleFields) (*Role, error) {
	out := &Role{}
	if err := c.post(ctx, c.path("/roles"), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRole patches a role's attributes.
func (c *Client) UpdateRole(ctx context.Context, idOrName string, fields RoleFields) (*Role, error) {
	id, err := c.ResolveID(ctx, KindRole, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Role{}
	if err := c.post(ctx, c.path("/roles/%s", id), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, idOrName string) error {
	id, err := c.ResolveID(ctx, KindRole, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/roles/%s", id))
}

// ListPolicies returns the account's RBAC policies.
func (c *Client) ListPolicies(ctx context.Context) ([]*Policy, error) {
	items, err := c.listAll(ctx, c.path("/policies"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Policy](items, "policy")
}

// GetPolicy resolves idOrName and returns the policy.
func (c *Client) GetPolicy(ctx context.Context, idOrName string) (*Policy, error) {
	raw, err := c.Resolve(ctx, KindPolicy, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[Policy](raw, "policy")
}

// PolicyFields are the mutable policy attributes.
type PolicyFields struct {
	Name        *string   `json:"name,omitempty"`
	Rules       *[]string `json:"rules,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// CreatePolicy creates a policy from aperture rule sentences.
func (c *Client) CreatePolicy(ctx context.Context, fields PolicyFields) (*Policy, error) {
	out := &Policy{}
	if err := c.post(ctx, c.path("/policies"), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePolicy patches a policy's attributes.
func (c *Client) UpdatePolicy(ctx context.Context, idOrName string, fields PolicyFields) (*Policy, error) {
	id, err := c.ResolveID(ctx, KindPolicy, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &Policy{}
	if err := c.post(ctx, c.path("/policies/%s", id), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeletePolicy removes a policy.
func (c *Client) DeletePolicy(ctx context.Context, idOrName string) error {
	id, err := c.ResolveID(ctx, KindPolicy, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/policies/%s", id))
}

// SetRoleTags sets the role-tags on an arbitrary resource path, enabling the
// named roles on it.
func (c *Client) SetRoleTags(ctx context.Context, resourcePath string, roles []string) ([]string, error) {
	body := map[string]interface{}{"role-tag": roles}
	var out struct {
		RoleTag []string `json:"role-tag"`
	}
	if err := c.put(ctx, resourcePath, body, &out); err != nil {
		return nil, err
	}
	return out.RoleTag, nil
}
