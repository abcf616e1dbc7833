package cloudapi

import (
	"context"
	"time"
)

// ListFirewallRules returns the account's firewall rules.
func (c *Client) ListFirewallRules(ctx context.Context) ([]*FirewallRule, error) {
	items, err := c.listAll(ctx, c.path("/fwrules"), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[FirewallRule](items, "firewall rule")
}

// GetFirewallRule resolves id or short id (rules have no names) and returns
// the rule.
func (c *Client) GetFirewallRule(ctx context.Context, idOrShortID string) (*FirewallRule, error) {
	raw, err := c.Resolve(ctx, KindFirewallRule, idOrShortID, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	return decodeOne[FirewallRule](raw, "firewall rule")
}

// CreateFirewallRuleOptions describes a new firewall rule.
type CreateFirewallRuleOptions struct {
	Rule        string `json:"rule"`
	Enabled     bool   `json:"enabled"`
	Log         bool   `json:"log,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateFirewallRule creates a firewall rule.
func (c *Client) CreateFirewallRule(ctx context.Context, opts CreateFirewallRuleOptions) (*FirewallRule, error) {
	out := &FirewallRule{}
	if err := c.post(ctx, c.path("/fwrules"), nil, opts, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateFirewallRule updates rule text, description, log, or enablement.
func (c *Client) UpdateFirewallRule(ctx context.Context, idOrShortID string, fields map[string]interface{}) (*FirewallRule, error) {
	id, err := c.ResolveID(ctx, KindFirewallRule, idOrShortID, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &FirewallRule{}
	if err := c.post(ctx, c.path("/fwrules/%s", id), nil, fields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FirewallRuleActionOptions controls enable/disable waiting.
type FirewallRuleActionOptions struct {
	Wait        bool
	WaitTimeout time.Duration
}

// EnableFirewallRule enables a rule.
func (c *Client) EnableFirewallRule(ctx context.Context, idOrShortID string, opts FirewallRuleActionOptions) (*FirewallRule, error) {
	return c.fwruleAction(ctx, idOrShortID, "enable", true, opts)
}

// DisableFirewallRule disables a rule.
func (c *Client) DisableFirewallRule(ctx context.Context, idOrShortID string, opts FirewallRuleActionOptions) (*FirewallRule, error) {
	return c.fwruleAction(ctx, idOrShortID, "disable", false, opts)
}

func (c *Client) fwruleAction(ctx context.Context, idOrShortID, action string, enabled bool, opts FirewallRuleActionOptions) (*FirewallRule, error) {
	id, err := c.ResolveID(ctx, KindFirewallRule, idOrShortID, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := &FirewallRule{}
	if err := c.post(ctx, c.path("/fwrules/%s/%s", id, action), nil, nil, out); err != nil {
		return nil, err
	}
	if opts.Wait {
		raw, err := c.WaitForFirewallRuleEnabled(ctx, id, enabled, WaitOptions{Timeout: opts.WaitTimeout})
		if err != nil {
			return out, err
		}
		return decodeOne[FirewallRule](raw, "firewall rule")
	}
	return out, nil
}

// DeleteFirewallRule deletes a rule.
func (c *Client) DeleteFirewallRule(ctx context.Context, idOrShortID string) error {
	id, err := c.ResolveID(ctx, KindFirewallRule, idOrShortID, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/fwrules/%s", id))
}

// ListInstanceFirewallRules returns the rules applying to an instance.
func (c *Client) ListInstanceFirewallRules(ctx context.Context, instanceIDOrName string) ([]*FirewallRule, error) {
	id, err := c.ResolveID(ctx, KindInstance, instanceIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/machines/%s/fwrules", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[FirewallRule](items, "firewall rule")
}

// ListFirewallRuleInstances returns the instances a rule applies to.
func (c *Client) ListFirewallRuleInstances(ctx context.Context, idOrShortID string) ([]*Instance, error) {
	id, err := c.ResolveID(ctx, KindFirewallRule, idOrShortID, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	items, err := c.listAll(ctx, c.path("/fwrules/%s/machines", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeAll[Instance](items, "machine")
}
