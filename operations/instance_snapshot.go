package operations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func instanceSnapshot() cli.Command {
	return cli.Command{
		Name:  "snapshot",
		Usage: "manage instance snapshots",
		Subcommands: []cli.Command{
			instanceSnapshotList(),
			instanceSnapshotGet(),
			instanceSnapshotCreate(),
			instanceSnapshotDelete(),
			instanceSnapshotStart(),
		},
	}
}

func instanceSnapshotList() cli.Command {
	return cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list an instance's snapshots",
		ArgsUsage: "INST",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			snaps, err := client.ListInstanceSnapshots(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(snaps)
			}
			rows := make([]row, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, row{
					"name":  s.Name,
					"state": s.State,
					"age":   shortAge(s.Created),
				})
			}
			return renderList(c, []string{"name", "state", "age"}, nil, rows)
		},
	}
}

func instanceSnapshotGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one snapshot",
		ArgsUsage: "INST NAME",
		Before:    requireNArgs(2, []string{"INST", "NAME"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			snap, err := client.GetInstanceSnapshot(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			return printJSON(snap)
		},
	}
}

func instanceSnapshotCreate() cli.Command {
	const nameFlagName = "name"

	return cli.Command{
		Name:      "create",
		Usage:     "snapshot an instance",
		ArgsUsage: "INST",
		Flags: waitFlags(cli.StringFlag{
			Name:  nameFlagName + ", n",
			Usage: "snapshot name; the server picks one when omitted",
		}),
		Before: requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			snap, err := client.CreateInstanceSnapshot(context.Background(), c.Args().First(), cloudapi.SnapshotOptions{
				Name:        c.String(nameFlagName),
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created snapshot %q (state %s)\n", snap.Name, snap.State)
			return nil
		},
	}
}

func instanceSnapshotDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete a snapshot",
		ArgsUsage: "INST NAME",
		Flags:     forceFlag(),
		Before:    requireNArgs(2, []string{"INST", "NAME"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			name := c.Args().Get(1)
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete snapshot %q?", name)) {
				return nil
			}
			if err := client.DeleteInstanceSnapshot(context.Background(), c.Args().Get(0), name); err != nil {
				return err
			}
			fmt.Printf("Deleted snapshot %q\n", name)
			return nil
		},
	}
}

func instanceSnapshotStart() cli.Command {
	return cli.Command{
		Name:      "start",
		Usage:     "boot an instance from a snapshot",
		ArgsUsage: "INST NAME",
		Flags:     waitFlags(),
		Before:    requireNArgs(2, []string{"INST", "NAME"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			_, err = client.StartInstanceFromSnapshot(context.Background(), c.Args().Get(0), c.Args().Get(1),
				cloudapi.ActionOptions{
					Wait:        c.Bool(waitFlagName),
					WaitTimeout: waitTimeout(c),
				})
			if err != nil {
				return err
			}
			fmt.Printf("Started instance %s from snapshot %q\n", c.Args().Get(0), c.Args().Get(1))
			return nil
		},
	}
}

func instanceNIC() cli.Command {
	return cli.Command{
		Name:  "nic",
		Usage: "manage instance network interfaces",
		Subcommands: []cli.Command{
			instanceNICList(),
			instanceNICGet(),
			instanceNICAdd(),
			instanceNICRemove(),
		},
	}
}

func instanceNICList() cli.Command {
	return cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list an instance's NICs",
		ArgsUsage: "INST",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			nics, err := client.ListInstanceNICs(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(nics)
			}
			rows := make([]row, 0, len(nics))
			for _, nic := range nics {
				rows = append(rows, row{
					"mac":     nic.MAC,
					"ip":      nic.IP,
					"state":   nic.State,
					"network": shortID(nic.Network),
					"primary": strconv.FormatBool(nic.Primary),
				})
			}
			return renderList(c, []string{"mac", "ip", "state", "network", "primary"}, nil, rows)
		},
	}
}

func instanceNICGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one NIC by MAC",
		ArgsUsage: "INST MAC",
		Before:    requireNArgs(2, []string{"INST", "MAC"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			nic, err := client.GetInstanceNIC(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			return printJSON(nic)
		},
	}
}

func instanceNICAdd() cli.Command {
	return cli.Command{
		Name:      "add",
		Usage:     "attach a NIC on a network (reboots the instance)",
		ArgsUsage: "INST NETWORK",
		Flags:     waitFlags(),
		Before:    requireNArgs(2, []string{"INST", "NETWORK"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			nic, err := client.AddInstanceNIC(context.Background(), c.Args().Get(0), cloudapi.AddNICOptions{
				Network:     c.Args().Get(1),
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added NIC %s to instance %s\n", nic.MAC, c.Args().Get(0))
			return nil
		},
	}
}

func instanceNICRemove() cli.Command {
	return cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "detach a NIC by MAC (reboots the instance)",
		ArgsUsage: "INST MAC",
		Flags:     forceFlag(),
		Before:    requireNArgs(2, []string{"INST", "MAC"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			mac := c.Args().Get(1)
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Remove NIC %q (this reboots the instance)?", mac)) {
				return nil
			}
			if err := client.RemoveInstanceNIC(context.Background(), c.Args().Get(0), mac); err != nil {
				return err
			}
			fmt.Printf("Removed NIC %s from instance %s\n", mac, c.Args().Get(0))
			return nil
		},
	}
}

func instanceDisk() cli.Command {
	return cli.Command{
		Name:  "disk",
		Usage: "manage bhyve instance disks",
		Subcommands: []cli.Command{
			instanceDiskList(),
			instanceDiskGet(),
			instanceDiskAdd(),
			instanceDiskResize(),
			instanceDiskDelete(),
		},
	}
}

func instanceDiskList() cli.Command {
	return cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list an instance's disks",
		ArgsUsage: "INST",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			disks, err := client.ListInstanceDisks(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(disks)
			}
			rows := make([]row, 0, len(disks))
			for _, d := range disks {
				rows = append(rows, row{
					"id":    shortID(d.ID),
					"size":  mibSize(d.Size),
					"boot":  strconv.FormatBool(d.Boot),
					"state": d.State,
				})
			}
			return renderList(c, []string{"id", "size", "boot", "state"}, nil, rows)
		},
	}
}

func instanceDiskGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one disk by id",
		ArgsUsage: "INST DISK",
		Before:    requireNArgs(2, []string{"INST", "DISK"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			disk, err := client.GetInstanceDisk(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			return printJSON(disk)
		},
	}
}

func instanceDiskAdd() cli.Command {
	return cli.Command{
		Name:      "add",
		Usage:     "add a disk to a stopped bhyve instance",
		ArgsUsage: "INST SIZE-MIB",
		Flags:     waitFlags(),
		Before:    requireNArgs(2, []string{"INST", "SIZE-MIB"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			size, err := parseMiB(c.Args().Get(1))
			if err != nil {
				return errs.Wrap(errs.KindUsage, err, "invalid disk size")
			}
			disk, err := client.AddInstanceDisk(context.Background(), c.Args().Get(0), size, cloudapi.DiskOptions{
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added disk %s to instance %s\n", shortID(disk.ID), c.Args().Get(0))
			return nil
		},
	}
}

func instanceDiskResize() cli.Command {
	const allowShrinkFlagName = "dangerous-allow-shrink"

	return cli.Command{
		Name:      "resize",
		Usage:     "resize a disk",
		ArgsUsage: "INST DISK SIZE-MIB",
		Flags: waitFlags(cli.BoolFlag{
			Name:  allowShrinkFlagName,
			Usage: "permit shrinking, which can destroy data",
		}),
		Before: requireNArgs(3, []string{"INST", "DISK", "SIZE-MIB"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			size, err := parseMiB(c.Args().Get(2))
			if err != nil {
				return errs.Wrap(errs.KindUsage, err, "invalid disk size")
			}
			_, err = client.ResizeInstanceDisk(context.Background(), c.Args().Get(0), c.Args().Get(1), size,
				c.Bool(allowShrinkFlagName), cloudapi.DiskOptions{
					Wait:        c.Bool(waitFlagName),
					WaitTimeout: waitTimeout(c),
				})
			if err != nil {
				return err
			}
			fmt.Printf("Resized disk %s on instance %s\n", c.Args().Get(1), c.Args().Get(0))
			return nil
		},
	}
}

func instanceDiskDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete a disk from a stopped instance",
		ArgsUsage: "INST DISK",
		Flags:     forceFlag(waitFlags()...),
		Before:    requireNArgs(2, []string{"INST", "DISK"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			diskID := c.Args().Get(1)
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete disk %q?", diskID)) {
				return nil
			}
			err = client.DeleteInstanceDisk(context.Background(), c.Args().Get(0), diskID, cloudapi.DiskOptions{
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Deleted disk %s from instance %s\n", diskID, c.Args().Get(0))
			return nil
		},
	}
}

func instanceMigration() cli.Command {
	return cli.Command{
		Name:  "migration",
		Usage: "manage instance migrations",
		Subcommands: []cli.Command{
			instanceMigrationList(),
			instanceMigrationGet(),
			instanceMigrationAction(cloudapi.MigrationBegin, "reserve a target and start a migration"),
			instanceMigrationAction(cloudapi.MigrationSync, "sync the target with the source"),
			instanceMigrationAction(cloudapi.MigrationPause, "pause a sync in progress"),
			instanceMigrationAction(cloudapi.MigrationSwitch, "switch over to the target"),
			instanceMigrationAction(cloudapi.MigrationAbort, "abort the migration"),
			instanceMigrationAction(cloudapi.MigrationFinalize, "clean up the source after switch"),
			instanceMigrationAction(cloudapi.MigrationAutomatic, "run the full migration automatically"),
		},
	}
}

func instanceMigrationList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list the account's migrations",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			migrations, err := client.ListMigrations(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(migrations)
			}
			rows := make([]row, 0, len(migrations))
			for _, m := range migrations {
				rows = append(rows, row{
					"machine": shortID(m.MachineID),
					"state":   m.State,
					"phase":   m.Phase,
					"age":     shortAge(m.Created),
				})
			}
			return renderList(c, []string{"machine", "state", "phase", "age"}, nil, rows)
		},
	}
}

func instanceMigrationGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show an instance's migration record",
		ArgsUsage: "INST",
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			m, err := client.GetMigration(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(m)
		},
	}
}

func instanceMigrationAction(action, usage string) cli.Command {
	const affinityFlagName = "affinity"

	return cli.Command{
		Name:      action,
		Usage:     usage,
		ArgsUsage: "INST",
		Flags: waitFlags(cli.StringSliceFlag{
			Name:  affinityFlagName + ", a",
			Usage: "affinity rule constraining target selection; may be repeated",
		}),
		Before: requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			m, err := client.MigrateInstance(context.Background(), c.Args().First(), action,
				cloudapi.MigrationActionOptions{
					Affinity:    c.StringSlice(affinityFlagName),
					Wait:        c.Bool(waitFlagName),
					WaitTimeout: waitTimeout(c),
				})
			if err != nil {
				return err
			}
			fmt.Printf("Migration %s of instance %s: state %s\n", action, c.Args().First(), m.State)
			return nil
		},
	}
}
