package cloudapi

import (
	"context"
)

// GetAccount returns the account record.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	out := &Account{}
	if err := c.get(ctx, c.path(""), nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AccountFields are the mutable account attributes. Nil-valued pointers are
// left unchanged.
type AccountFields struct {
	Email            *string `json:"email,omitempty"`
	CompanyName      *string `json:"companyName,omitempty"`
	FirstName        *string `json:"firstName,omitempty"`
	LastName         *string `json:"lastName,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	TritonCNSEnabled *bool   `json:"triton_cns_enabled,omitempty"`
}

// UpdateAccount patches the account record.
func (c *Client) UpdateAccount(ctx context.Context, fields AccountFields) (*Account, error) {
	out := &Account{}
	if err := c.post(ctx, c.path(""), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProvisioningLimit is one entry from the account's provisioning limits.
type ProvisioningLimit struct {
	By    string `json:"by"`
	Value int64  `json:"value"`
	Used  int64  `json:"used,omitempty"`
	Check string `json:"check,omitempty"`
	OS    string `json:"os,omitempty"`
	Image string `json:"image,omitempty"`
}

// GetAccountLimits returns the account's provisioning limits.
func (c *Client) GetAccountLimits(ctx context.Context) ([]*ProvisioningLimit, error) {
	items, err := c.listAll(ctx, c.path("/limits"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[ProvisioningLimit](items, "limit")
}
