package operations

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func instanceCreate() cli.Command {
	const (
		nameFlagName            = "name"
		networkFlagName         = "network"
		metadataFlagName        = "metadata"
		metadataFileFlagName    = "metadata-file"
		scriptFlagName          = "script"
		tagFlagName             = "tag"
		affinityFlagName        = "affinity"
		firewallFlagName        = "firewall"
		diskFlagName            = "disk"
		volumeFlagName          = "volume"
		delegateDatasetFlagName = "delegate-dataset"
		dryRunFlagName          = "dry-run"
	)

	return cli.Command{
		Name:      "create",
		Usage:     "provision a new instance from an image and package",
		ArgsUsage: "IMAGE PACKAGE",
		Flags: waitFlags(jsonFlag(
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "instance name; the server picks one when omitted",
			},
			cli.StringSliceFlag{
				Name:  networkFlagName + ", N",
				Usage: "network (id, short id, or name) to attach; may be repeated",
			},
			cli.StringSliceFlag{
				Name:  metadataFlagName + ", m",
				Usage: "metadata as key=value, a JSON object, or @file; may be repeated",
			},
			cli.StringSliceFlag{
				Name:  metadataFileFlagName + ", M",
				Usage: "metadata KEY=FILE, binding the file contents to KEY; may be repeated",
			},
			cli.StringFlag{
				Name:  scriptFlagName,
				Usage: "file whose contents become the user-script metadata",
			},
			cli.StringSliceFlag{
				Name:  tagFlagName + ", t",
				Usage: "tag as key=value, a JSON object, or @file; may be repeated",
			},
			cli.StringSliceFlag{
				Name:  affinityFlagName + ", a",
				Usage: "affinity rule (e.g. 'inst!=db*'); may be repeated",
			},
			cli.BoolFlag{
				Name:  firewallFlagName,
				Usage: "enable the cloud firewall at provision time",
			},
			cli.StringSliceFlag{
				Name:  diskFlagName,
				Usage: "disk size in MiB for flexible-disk provisioning; may be repeated, first is boot",
			},
			cli.StringSliceFlag{
				Name:  volumeFlagName,
				Usage: "volume mount as VOLUME[:MOUNTPOINT[:MODE]]; may be repeated",
			},
			cli.BoolFlag{
				Name:  delegateDatasetFlagName,
				Usage: "request a delegated ZFS dataset",
			},
			cli.BoolFlag{
				Name:  dryRunFlagName,
				Usage: "validate and compose the request without provisioning",
			})...),
		Before: requireNArgs(2, []string{"IMAGE", "PACKAGE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			opts, err := composeCreateOptions(c)
			if err != nil {
				return err
			}

			inst, err := client.CreateInstance(context.Background(), opts)
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(inst)
			}
			if opts.DryRun {
				fmt.Printf("Dry run: would create instance %q (id %s)\n", inst.Name, inst.ID)
				return nil
			}
			fmt.Printf("Creating instance %s (%s)\n", inst.Name, shortID(inst.ID))
			if opts.Wait {
				fmt.Printf("Instance %s is %s\n", inst.Name, inst.State)
			}
			return nil
		},
	}
}

func composeCreateOptions(c *cli.Context) (*cloudapi.CreateInstanceOptions, error) {
	const flagContext = "instance create"

	md, warnings, err := cloudapi.ParseKeyValues(c.StringSlice("metadata"))
	if err != nil {
		return nil, err
	}
	fileWarnings, err := cloudapi.ParseMetadataFiles(md, c.StringSlice("metadata-file"))
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, fileWarnings...)
	scriptWarnings, err := cloudapi.ApplyScript(md, c.String("script"))
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, scriptWarnings...)

	tags, tagWarnings, err := cloudapi.ParseKeyValues(c.StringSlice("tag"))
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, tagWarnings...)
	cloudapi.WriteWarnings(os.Stderr, warnings)

	var disks []cloudapi.DiskSpec
	for i, spec := range c.StringSlice("disk") {
		size, err := parseMiB(spec)
		if err != nil {
			return nil, errs.Wrap(errs.KindUsage, err, "%s: invalid disk size %q", flagContext, spec)
		}
		disks = append(disks, cloudapi.DiskSpec{Size: size, Boot: i == 0})
	}

	var volumes []cloudapi.VolumeMount
	for _, spec := range c.StringSlice("volume") {
		mount, err := parseVolumeMount(spec)
		if err != nil {
			return nil, err
		}
		volumes = append(volumes, mount)
	}

	return &cloudapi.CreateInstanceOptions{
		Name:            c.String("name"),
		Image:           c.Args().Get(0),
		Package:         c.Args().Get(1),
		Networks:        c.StringSlice("network"),
		Metadata:        md,
		Tags:            tags,
		Affinity:        c.StringSlice("affinity"),
		FirewallEnabled: c.Bool("firewall"),
		Disks:           disks,
		Volumes:         volumes,
		DelegateDataset: c.Bool("delegate-dataset"),
		DryRun:          c.Bool("dry-run"),
		Wait:            c.Bool(waitFlagName),
		WaitTimeout:     waitTimeout(c),
	}, nil
}

func parseVolumeMount(spec string) (cloudapi.VolumeMount, error) {
	parts := strings.SplitN(spec, ":", 3)
	mount := cloudapi.VolumeMount{Name: parts[0]}
	if mount.Name == "" {
		return mount, errs.New(errs.KindUsage, "invalid volume mount %q: expected VOLUME[:MOUNTPOINT[:MODE]]", spec)
	}
	if len(parts) > 1 {
		mount.Mountpoint = parts[1]
	}
	if len(parts) > 2 {
		mode := parts[2]
		if mode != "ro" && mode != "rw" {
			return mount, errs.New(errs.KindUsage, "invalid volume mode %q: expected ro or rw", mode)
		}
		mount.Mode = mode
	}
	return mount, nil
}

func parseMiB(v string) (int64, error) {
	var size int64
	if _, err := fmt.Sscanf(v, "%d", &size); err != nil || size < 0 {
		return 0, fmt.Errorf("not a MiB count: %q", v)
	}
	return size, nil
}
