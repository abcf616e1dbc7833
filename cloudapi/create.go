package cloudapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tritoncli/triton/errs"
)

// CreateInstanceOptions is the structured input to the create pipeline.
// Image, Package, and Networks accept ids, short ids, or names; they are
// resolved before the provision request is composed.
type CreateInstanceOptions struct {
	Name     string
	Image    string
	Package  string
	Networks []string

	Metadata map[string]interface{}
	Tags     map[string]interface{}

	// Affinity rules, passed through verbatim (e.g. "inst!=db*").
	Affinity []string

	// FirewallEnabled turns on the cloud firewall at provision time.
	FirewallEnabled bool

	// Disks optionally overrides the package's disk layout (bhyve flexible
	// disks). Size is in MiB; the boot disk may use the "remaining" size
	// convention server-side, which callers express with Size 0.
	Disks []DiskSpec

	// Volumes to mount at provision time.
	Volumes []VolumeMount

	// DelegateDataset requests a delegated ZFS dataset.
	DelegateDataset bool

	// DryRun composes and validates the request, then returns a synthetic
	// instance without POSTing.
	DryRun bool

	// Wait blocks until the machine reaches running or failed.
	Wait        bool
	WaitTimeout time.Duration
}

// DiskSpec describes one disk for flexible-disk provisioning.
type DiskSpec struct {
	Size int64 `json:"size,omitempty"`
	Boot bool  `json:"boot,omitempty"`
}

// VolumeMount attaches a volume at provision time.
type VolumeMount struct {
	Name       string `json:"name"`
	Mountpoint string `json:"mountpoint,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Type       string `json:"type,omitempty"`
}

// createInstanceBody is the wire shape of CreateMachine: metadata and tags
// flatten into metadata.K / tag.K keys.
type createInstanceBody map[string]interface{}

// composeCreateBody resolves references and assembles the CreateMachine
// request body.
func (c *Client) composeCreateBody(ctx context.Context, opts *CreateInstanceOptions) (createInstanceBody, error) {
	if opts.Image == "" {
		return nil, errs.New(errs.KindUsage, "no image given for instance create")
	}
	if opts.Package == "" {
		return nil, errs.New(errs.KindUsage, "no package given for instance create")
	}

	imageID, err := c.ResolveID(ctx, KindImage, opts.Image, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	packageID, err := c.ResolveID(ctx, KindPackage, opts.Package, ResolveOptions{})
	if err != nil {
		return nil, err
	}

	body := createInstanceBody{
		"image":   imageID,
		"package": packageID,
	}
	if opts.Name != "" {
		body["name"] = opts.Name
	}

	if len(opts.Networks) > 0 {
		networkIDs := make([]string, 0, len(opts.Networks))
		for _, ref := range opts.Networks {
			id, err := c.ResolveID(ctx, KindNetwork, ref, ResolveOptions{})
			if err != nil {
				return nil, err
			}
			networkIDs = append(networkIDs, id)
		}
		body["networks"] = networkIDs
	}

	for k, v := range opts.Metadata {
		body["metadata."+k] = v
	}
	for k, v := range opts.Tags {
		body["tag."+k] = v
	}
	if len(opts.Affinity) > 0 {
		body["affinity"] = opts.Affinity
	}
	if opts.FirewallEnabled {
		body["firewall_enabled"] = true
	}
	if len(opts.Disks) > 0 {
		body["disks"] = opts.Disks
	}
	if len(opts.Volumes) > 0 {
		body["volumes"] = opts.Volumes
	}
	if opts.DelegateDataset {
		body["delegate_dataset"] = true
	}
	return body, nil
}

// dryRunWait approximates the provision delay so --dry-run exercises the
// caller's wait handling.
const dryRunWait = 5 * time.Second

// CreateInstance runs the create pipeline: resolve references, compose the
// provision request, POST it, and (with Wait) block until the machine
// reaches running or failed. DryRun short-circuits the POST with a
// synthetic instance and a simulated provision delay.
func (c *Client) CreateInstance(ctx context.Context, opts *CreateInstanceOptions) (*Instance, error) {
	body, err := c.composeCreateBody(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		inst := &Instance{
			ID:      uuid.NewString(),
			Name:    opts.Name,
			State:   "provisioning",
			Image:   body["image"].(string),
			Package: body["package"].(string),
			Created: time.Now().UTC(),
		}
		if inst.Name == "" {
			inst.Name = fmt.Sprintf("dry-run-%s", inst.ID[:8])
		}
		if opts.Wait {
			select {
			case <-time.After(dryRunWait):
				inst.State = "running"
			case <-ctx.Done():
				return nil, errs.New(errs.KindCanceled, "instance create canceled")
			}
		}
		return inst, nil
	}

	inst := &Instance{}
	if err := c.post(ctx, c.path("/machines"), nil, body, inst); err != nil {
		return nil, err
	}

	if opts.Wait {
		raw, err := c.WaitForState(ctx, KindInstance, inst.ID, WaitOptions{
			States:  []string{"running", "failed"},
			Timeout: opts.WaitTimeout,
		})
		if err != nil {
			return inst, err
		}
		return decodeOne[Instance](raw, "machine")
	}
	return inst, nil
}
