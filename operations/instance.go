package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/config"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func Instance() cli.Command {
	return cli.Command{
		Name:    "instance",
		Aliases: []string{"inst"},
		Usage:   "manage compute instances",
		Subcommands: []cli.Command{
			instanceList(),
			instanceGet(),
			instanceCreate(),
			instanceDelete(),
			instanceAction("start", "start a stopped instance"),
			instanceAction("stop", "stop a running instance"),
			instanceAction("reboot", "reboot an instance"),
			instanceRename(),
			instanceResize(),
			instanceWait(),
			instanceIP(),
			instanceSSH(),
			instanceFirewallToggle("enable-firewall", "turn on the cloud firewall"),
			instanceFirewallToggle("disable-firewall", "turn off the cloud firewall"),
			instanceFwrules(),
			instanceMetadata(),
			instanceTag(),
			instanceSnapshot(),
			instanceNIC(),
			instanceDisk(),
			instanceMigration(),
		},
	}
}

func instanceRows(insts []*cloudapi.Instance, long bool) []row {
	rows := make([]row, 0, len(insts))
	for _, inst := range insts {
		id := inst.ID
		if !long {
			id = shortID(id)
		}
		flags := ""
		if inst.Docker {
			flags += "D"
		}
		if inst.FirewallEnabled {
			flags += "F"
		}
		rows = append(rows, row{
			"id":        id,
			"name":      inst.Name,
			"img":       shortID(inst.Image),
			"image":     inst.Image,
			"brand":     inst.Brand,
			"package":   inst.Package,
			"state":     inst.State,
			"flags":     flags,
			"primaryip": inst.PrimaryIP,
			"memory":    mibSize(inst.Memory),
			"age":       shortAge(inst.Created),
		})
	}
	return rows
}

var instanceListColumns = []string{"id", "name", "img", "brand", "package", "state", "flags", "age"}
var instanceListLongColumns = []string{"id", "name", "image", "brand", "package", "state", "flags", "primaryip", "memory", "age"}

func instanceList() cli.Command {
	const (
		nameFlagName   = "name"
		stateFlagName  = "state"
		brandFlagName  = "brand"
		imageFlagName  = "image"
		tagFlagName    = "tag"
		dcsFlagName    = "dcs"
		streamFlagName = "stream"
	)

	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list instances",
		Flags: listOutputFlags(
			cli.StringFlag{
				Name:  nameFlagName,
				Usage: "filter by exact name",
			},
			cli.StringFlag{
				Name:  stateFlagName,
				Usage: "filter by state",
			},
			cli.StringFlag{
				Name:  brandFlagName,
				Usage: "filter by brand",
			},
			cli.StringFlag{
				Name:  imageFlagName,
				Usage: "filter by image id",
			},
			cli.StringSliceFlag{
				Name:  tagFlagName,
				Usage: "filter by tag key=value; may be repeated",
			},
			cli.BoolFlag{
				Name:  dcsFlagName,
				Usage: "aggregate across the profile's datacenters",
			},
			cli.BoolFlag{
				Name:  strictFlagName,
				Usage: "with --dcs, fail when any datacenter errors instead of rendering partial results",
			},
			cli.BoolFlag{
				Name:  streamFlagName,
				Usage: "with --json, emit one instance per line as pages arrive",
			}),
		Action: func(c *cli.Context) error {
			conf, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			opts := cloudapi.ListInstancesOptions{
				Name:  c.String(nameFlagName),
				State: c.String(stateFlagName),
				Brand: c.String(brandFlagName),
				Image: c.String(imageFlagName),
			}
			for _, t := range c.StringSlice(tagFlagName) {
				k, v, ok := strings.Cut(t, "=")
				if !ok {
					return errs.New(errs.KindUsage, "invalid tag filter %q: expected key=value", t)
				}
				if opts.Tags == nil {
					opts.Tags = map[string]string{}
				}
				opts.Tags[k] = v
			}

			if c.Bool(dcsFlagName) {
				return listInstancesAcrossDCs(ctx, c, conf, client, opts)
			}

			if c.Bool(streamFlagName) && c.Bool(jsonFlagName) {
				insts, finish := client.StreamInstances(ctx, opts)
				for inst := range insts {
					if err := printJSONLine(inst); err != nil {
						return err
					}
				}
				return finish()
			}

			insts, err := client.ListInstances(ctx, opts)
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(insts)
			}
			return renderList(c, instanceListColumns, instanceListLongColumns, instanceRows(insts, c.Bool(longFlagName)))
		},
	}
}

// listInstancesAcrossDCs fans the listing out to every datacenter in the
// profile's dcs setting. Partial results still render; per-datacenter
// failures go to stderr as they happen and fail the command only under
// --strict.
func listInstancesAcrossDCs(ctx context.Context, c *cli.Context, conf *config.Config, client *cloudapi.Client, opts cloudapi.ListInstancesOptions) error {
	if len(conf.Profile.DCs) == 0 {
		return errs.New(errs.KindUsage, "profile %q has no dcs configured", conf.Profile.Name)
	}
	dcs, err := cloudapi.ParseDCs(conf.Profile.DCs)
	if err != nil {
		return err
	}

	items, listErr := client.ListAcrossDCs(ctx, dcs, cloudapi.MultiDCOptions{
		OnDCError: func(dc string, err error) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", err)
		},
	}, func(ctx context.Context, dc *cloudapi.Client) ([]json.RawMessage, error) {
		insts, err := dc.ListInstances(ctx, opts)
		if err != nil {
			return nil, err
		}
		raws := make([]json.RawMessage, 0, len(insts))
		for _, inst := range insts {
			raw, err := json.Marshal(inst)
			if err != nil {
				return nil, err
			}
			raws = append(raws, raw)
		}
		return raws, nil
	})

	if c.Bool(jsonFlagName) {
		if err := printJSON(items); err != nil {
			return err
		}
		return multiDCListErr(c, listErr)
	}

	rows := make([]row, 0, len(items))
	for _, item := range items {
		inst := &cloudapi.Instance{}
		if err := json.Unmarshal(item.Resource, inst); err != nil {
			return errs.Wrap(errs.KindTransport, err, "parsing machine from dc %s", item.DC)
		}
		r := instanceRows([]*cloudapi.Instance{inst}, c.Bool(longFlagName))[0]
		r["dc"] = item.DC
		rows = append(rows, r)
	}
	if err := renderList(c, append([]string{"dc"}, instanceListColumns...),
		append([]string{"dc"}, instanceListLongColumns...), rows); err != nil {
		return err
	}
	return multiDCListErr(c, listErr)
}

// multiDCListErr maps the fan-out's collected per-datacenter error to the
// command's exit contract: partial failure is non-fatal unless --strict.
func multiDCListErr(c *cli.Context, listErr error) error {
	if c.Bool(strictFlagName) {
		return listErr
	}
	return nil
}

func instanceGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one instance by id, short id, or name",
		ArgsUsage: "INST",
		Flags:     jsonFlag(),
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			inst, err := client.GetInstance(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(inst)
		},
	}
}

func instanceDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete one or more instances",
		ArgsUsage: "INST [INST...]",
		Flags:     forceFlag(waitFlags()...),
		Before:    requireAtLeastNArgs(1, "INST [INST...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			var multi errs.Multi
			for _, arg := range c.Args() {
				if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete instance %q?", arg)) {
					fmt.Println("Skipping", arg)
					continue
				}
				err := client.DeleteInstance(ctx, arg, cloudapi.DeleteInstanceOptions{
					Wait:        c.Bool(waitFlagName),
					WaitTimeout: waitTimeout(c),
				})
				if err != nil {
					multi.Add(err)
					continue
				}
				fmt.Printf("Deleted instance %s\n", arg)
			}
			return multi.Resolve()
		},
	}
}

func instanceAction(name, usage string) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "INST",
		Flags:     waitFlags(),
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			opts := cloudapi.ActionOptions{
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			}
			arg := c.Args().First()

			var inst *cloudapi.Instance
			switch name {
			case "start":
				inst, err = client.StartInstance(ctx, arg, opts)
			case "stop":
				inst, err = client.StopInstance(ctx, arg, opts)
			case "reboot":
				inst, err = client.RebootInstance(ctx, arg, opts)
			}
			if err != nil {
				return err
			}
			if inst != nil {
				fmt.Printf("%s instance %s (state %s)\n", pastTense(name), arg, inst.State)
			} else {
				fmt.Printf("Requested %s of instance %s\n", name, arg)
			}
			return nil
		},
	}
}

func pastTense(action string) string {
	switch action {
	case "stop":
		return "Stopped"
	case "reboot":
		return "Rebooted"
	default:
		return "Started"
	}
}

func instanceRename() cli.Command {
	return cli.Command{
		Name:      "rename",
		Usage:     "rename an instance",
		ArgsUsage: "INST NEW-NAME",
		Before:    requireNArgs(2, []string{"INST", "NEW-NAME"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.RenameInstance(context.Background(), c.Args().Get(0), c.Args().Get(1)); err != nil {
				return err
			}
			fmt.Printf("Renamed instance %s to %q\n", c.Args().Get(0), c.Args().Get(1))
			return nil
		},
	}
}

func instanceResize() cli.Command {
	return cli.Command{
		Name:      "resize",
		Usage:     "resize an instance to a new package",
		ArgsUsage: "INST PACKAGE",
		Flags:     waitFlags(),
		Before:    requireNArgs(2, []string{"INST", "PACKAGE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			_, err = client.ResizeInstance(context.Background(), c.Args().Get(0), c.Args().Get(1), cloudapi.ActionOptions{
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Resized instance %s to package %s\n", c.Args().Get(0), c.Args().Get(1))
			return nil
		},
	}
}

func instanceWait() cli.Command {
	const statesFlagName = "states"

	return cli.Command{
		Name:      "wait",
		Usage:     "block until an instance reaches a target state",
		ArgsUsage: "INST",
		Flags: waitFlags(cli.StringFlag{
			Name:  statesFlagName,
			Usage: "comma-separated target states",
			Value: "running,failed",
		}),
		Before: requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			id, err := client.ResolveID(ctx, cloudapi.KindInstance, c.Args().First(), cloudapi.ResolveOptions{})
			if err != nil {
				return err
			}
			raw, err := client.WaitForState(ctx, cloudapi.KindInstance, id, cloudapi.WaitOptions{
				States:  splitFields(c.String(statesFlagName)),
				Timeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			inst := &cloudapi.Instance{}
			if err := json.Unmarshal(raw, inst); err != nil {
				return errs.Wrap(errs.KindTransport, err, "parsing machine")
			}
			fmt.Printf("Instance %s reached state %q\n", c.Args().First(), inst.State)
			return nil
		},
	}
}

func instanceIP() cli.Command {
	return cli.Command{
		Name:      "ip",
		Usage:     "print an instance's primary IP",
		ArgsUsage: "INST",
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			inst, err := client.GetInstance(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if inst.PrimaryIP == "" {
				return errs.New(errs.KindNotFound, "instance %q has no primary IP", c.Args().First())
			}
			fmt.Println(inst.PrimaryIP)
			return nil
		},
	}
}

func instanceSSH() cli.Command {
	const userFlagName = "user"

	return cli.Command{
		Name:      "ssh-info",
		Usage:     "print connection details for SSHing into an instance",
		ArgsUsage: "INST",
		Flags: jsonFlag(cli.StringFlag{
			Name:  userFlagName,
			Usage: "remote user",
			Value: "root",
		}),
		Before: requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			inst, err := client.GetInstance(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if inst.PrimaryIP == "" {
				return errs.New(errs.KindNotFound, "instance %q has no primary IP", c.Args().First())
			}

			user := c.String(userFlagName)
			if c.Bool(jsonFlagName) {
				return printJSON(map[string]interface{}{
					"user":     user,
					"ip":       inst.PrimaryIP,
					"dnsNames": inst.DNSNames,
				})
			}
			fmt.Printf("ssh %s@%s\n", user, inst.PrimaryIP)
			return nil
		},
	}
}

func instanceFirewallToggle(name, usage string) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "INST",
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			arg := c.Args().First()
			if name == "enable-firewall" {
				err = client.EnableInstanceFirewall(ctx, arg)
			} else {
				err = client.DisableInstanceFirewall(ctx, arg)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Updated firewall on instance %s\n", arg)
			return nil
		},
	}
}

func instanceFwrules() cli.Command {
	return cli.Command{
		Name:      "fwrules",
		Usage:     "list firewall rules affecting an instance",
		ArgsUsage: "INST",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			rules, err := client.ListInstanceFirewallRules(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(rules)
			}
			return renderList(c, fwruleListColumns, nil, fwruleRows(rules, c.Bool(longFlagName)))
		},
	}
}
