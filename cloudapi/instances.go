package cloudapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/tritoncli/triton/errs"
)

// ListInstancesOptions are the server-side filters on the machine listing.
type ListInstancesOptions struct {
	Name      string
	Image     string
	State     string
	Brand     string
	Memory    int64
	Docker    bool
	Tags      map[string]string
	Tombstone bool
}

func (o ListInstancesOptions) query() url.Values {
	q := url.Values{}
	if o.Name != "" {
		q.Set("name", o.Name)
	}
	if o.Image != "" {
		q.Set("image", o.Image)
	}
	if o.State != "" {
		q.Set("state", o.State)
	}
	if o.Brand != "" {
		q.Set("brand", o.Brand)
	}
	if o.Memory > 0 {
		q.Set("memory", strconv.FormatInt(o.Memory, 10))
	}
	if o.Docker {
		q.Set("docker", "true")
	}
	if o.Tombstone {
		q.Set("tombstone", "true")
	}
	for k, v := range o.Tags {
		q.Set("tag."+k, v)
	}
	return q
}

// ListInstances returns all machines matching opts.
func (c *Client) ListInstances(ctx context.Context, opts ListInstancesOptions) ([]*Instance, error) {
	items, err := c.listAll(ctx, c.path("/machines"), opts.query())
	if err != nil {
		return nil, err
	}
	return decodeAll[Instance](items, "machine")
}

// StreamInstances lazily yields machines matching opts one at a time. Call
// the returned finish func after draining the channel.
func (c *Client) StreamInstances(ctx context.Context, opts ListInstancesOptions) (<-chan *Instance, func() error) {
	raws, finish := c.stream(ctx, c.path("/machines"), opts.query())
	out := make(chan *Instance)
	var decodeErr error
	go func() {
		defer close(out)
		for raw := range raws {
			inst := &Instance{}
			if err := json.Unmarshal(raw, inst); err != nil {
				decodeErr = errs.Wrap(errs.KindTransport, err, "parsing machine")
				return
			}
			select {
			case out <- inst:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() error {
		if decodeErr != nil {
			return decodeErr
		}
		return finish()
	}
}

// GetInstance resolves idOrName (id, short id, or unique name) and returns
// the machine.
func (c *Client) GetInstance(ctx context.Context, idOrName string) (*Instance, error) {
	raw, err := c.Resolve(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	inst := &Instance{}
	if err := json.Unmarshal(raw, inst); err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "parsing machine")
	}
	return inst, nil
}

// DeleteInstanceOptions controls DeleteInstance.
type DeleteInstanceOptions struct {
	// Wait blocks until the machine reaches state "deleted" (a 410 while
	// polling counts as deleted).
	Wait        bool
	WaitTimeout time.Duration
}

// DeleteInstance resolves and deletes a machine.
func (c *Client) DeleteInstance(ctx context.Context, idOrName string, opts DeleteInstanceOptions) error {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	if err := c.del(ctx, c.path("/machines/%s", id)); err != nil {
		return err
	}
	if opts.Wait {
		_, err = c.WaitForState(ctx, KindInstance, id, WaitOptions{
			States:  []string{"deleted", "failed"},
			Timeout: opts.WaitTimeout,
		})
	}
	return err
}

// ActionOptions controls the simple machine actions (start, stop, reboot).
type ActionOptions struct {
	// Wait blocks until the action's terminal state is reached.
	Wait        bool
	WaitTimeout time.Duration
}

func (c *Client) instanceAction(ctx context.Context, idOrName, action string, states []string, opts ActionOptions) (*Instance, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	q := url.Values{"action": []string{action}}
	if _, err := c.request(ctx, "POST", c.path("/machines/%s", id), &requestOptions{query: q}); err != nil {
		return nil, err
	}
	if !opts.Wait {
		return nil, nil
	}
	raw, err := c.WaitForState(ctx, KindInstance, id, WaitOptions{States: states, Timeout: opts.WaitTimeout})
	if err != nil {
		return nil, err
	}
	inst := &Instance{}
	if err := json.Unmarshal(raw, inst); err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "parsing machine")
	}
	return inst, nil
}

// StartInstance starts a stopped machine.
func (c *Client) StartInstance(ctx context.Context, idOrName string, opts ActionOptions) (*Instance, error) {
	return c.instanceAction(ctx, idOrName, "start", []string{"running", "failed"}, opts)
}

// StopInstance stops a running machine.
func (c *Client) StopInstance(ctx context.Context, idOrName string, opts ActionOptions) (*Instance, error) {
	return c.instanceAction(ctx, idOrName, "stop", []string{"stopped", "failed"}, opts)
}

// RebootInstance reboots a machine.
func (c *Client) RebootInstance(ctx context.Context, idOrName string, opts ActionOptions) (*Instance, error) {
	return c.instanceAction(ctx, idOrName, "reboot", []string{"running", "failed"}, opts)
}

// RenameInstance renames a machine.
func (c *Client) RenameInstance(ctx context.Context, idOrName, newName string) error {
	if newName == "" {
		return errs.New(errs.KindUsage, "no new instance name given")
	}
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	q := url.Values{"action": []string{"rename"}, "name": []string{newName}}
	_, err = c.request(ctx, "POST", c.path("/machines/%s", id), &requestOptions{query: q})
	return err
}

// ResizeInstance resizes a machine to the given package (id, short id, or
// name).
func (c *Client) ResizeInstance(ctx context.Context, idOrName, packageIDOrName string, opts ActionOptions) (*Instance, error) {
	pkgID, err := c.ResolveID(ctx, KindPackage, packageIDOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	q := url.Values{"action": []string{"resize"}, "package": []string{pkgID}}
	if _, err := c.request(ctx, "POST", c.path("/machines/%s", id), &requestOptions{query: q}); err != nil {
		return nil, err
	}
	if !opts.Wait {
		return nil, nil
	}
	raw, err := c.WaitForState(ctx, KindInstance, id, WaitOptions{
		States:  []string{"running", "stopped", "failed"},
		Timeout: opts.WaitTimeout,
	})
	if err != nil {
		return nil, err
	}
	inst := &Instance{}
	if err := json.Unmarshal(raw, inst); err != nil {
		return nil, errs.Wrap(errs.KindTransport, err, "parsing machine")
	}
	return inst, nil
}

// EnableInstanceFirewall turns on the cloud firewall for a machine.
func (c *Client) EnableInstanceFirewall(ctx context.Context, idOrName string) error {
	return c.firewallAction(ctx, idOrName, "enable_firewall")
}

// DisableInstanceFirewall turns off the cloud firewall for a machine.
func (c *Client) DisableInstanceFirewall(ctx context.Context, idOrName string) error {
	return c.firewallAction(ctx, idOrName, "disable_firewall")
}

func (c *Client) firewallAction(ctx context.Context, idOrName, action string) error {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	q := url.Values{"action": []string{action}}
	_, err = c.request(ctx, "POST", c.path("/machines/%s", id), &requestOptions{query: q})
	return err
}

// GetInstanceMetadata returns one metadata value.
func (c *Client) GetInstanceMetadata(ctx context.Context, idOrName, key string) (interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = c.get(ctx, c.path("/machines/%s/metadata/%s", id, url.PathEscape(key)), nil, &out)
	return out, err
}

// ListInstanceMetadata returns all metadata on a machine.
func (c *Client) ListInstanceMetadata(ctx context.Context, idOrName string, includeCredentials bool) (map[string]interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if includeCredentials {
		q.Set("credentials", "true")
	}
	out := map[string]interface{}{}
	err = c.get(ctx, c.path("/machines/%s/metadata", id), q, &out)
	return out, err
}

// UpdateInstanceMetadata merges the given metadata onto the machine and
// returns the updated metadata.
func (c *Client) UpdateInstanceMetadata(ctx context.Context, idOrName string, md map[string]interface{}) (map[string]interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	err = c.post(ctx, c.path("/machines/%s/metadata", id), nil, md, &out)
	return out, err
}

// DeleteInstanceMetadata deletes one metadata key.
func (c *Client) DeleteInstanceMetadata(ctx context.Context, idOrName, key string) error {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/machines/%s/metadata/%s", id, url.PathEscape(key)))
}

// DeleteAllInstanceMetadata deletes every metadata key on a machine.
func (c *Client) DeleteAllInstanceMetadata(ctx context.Context, idOrName string) error {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/machines/%s/metadata", id))
}

// ListInstanceTags returns all tags on a machine.
func (c *Client) ListInstanceTags(ctx context.Context, idOrName string) (map[string]interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	err = c.get(ctx, c.path("/machines/%s/tags", id), nil, &out)
	return out, err
}

// GetInstanceTag returns one tag value.
func (c *Client) GetInstanceTag(ctx context.Context, idOrName, key string) (interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = c.get(ctx, c.path("/machines/%s/tags/%s", id, url.PathEscape(key)), nil, &out)
	return out, err
}

// SetInstanceTags merges tags onto a machine; ReplaceInstanceTags replaces
// the whole set.
func (c *Client) SetInstanceTags(ctx context.Context, idOrName string, tags map[string]interface{}) (map[string]interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	err = c.post(ctx, c.path("/machines/%s/tags", id), nil, tags, &out)
	return out, err
}

// ReplaceInstanceTags replaces all tags on a machine.
func (c *Client) ReplaceInstanceTags(ctx context.Context, idOrName string, tags map[string]interface{}) (map[string]interface{}, error) {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	err = c.put(ctx, c.path("/machines/%s/tags", id), tags, &out)
	return out, err
}

// DeleteInstanceTag deletes one tag.
func (c *Client) DeleteInstanceTag(ctx context.Context, idOrName, key string) error {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/machines/%s/tags/%s", id, url.PathEscape(key)))
}

// DeleteAllInstanceTags deletes every tag on a machine.
func (c *Client) DeleteAllInstanceTags(ctx context.Context, idOrName string) error {
	id, err := c.ResolveID(ctx, KindInstance, idOrName, ResolveOptions{})
	if err != nil {
		return err
	}
	return c.del(ctx, c.path("/machines/%s/tags", id))
}
