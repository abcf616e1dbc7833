package operations

import (
	"context"
	"fmt"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func Volume() cli.Command {
	return cli.Command{
		Name:    "volume",
		Aliases: []string{"vol"},
		Usage:   "manage NFS volumes",
		Subcommands: []cli.Command{
			volumeList(),
			volumeGet(),
			volumeCreate(),
			volumeDelete(),
		},
	}
}

func volumeList() cli.Command {
	const (
		nameFlagName  = "name"
		stateFlagName = "state"
	)

	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list volumes",
		Flags: listOutputFlags(
			cli.StringFlag{
				Name:  nameFlagName,
				Usage: "filter by exact name",
			},
			cli.StringFlag{
				Name:  stateFlagName,
				Usage: "filter by state",
			}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vols, err := client.ListVolumes(context.Background(), cloudapi.ListVolumesOptions{
				Name:  c.String(nameFlagName),
				State: c.String(stateFlagName),
			})
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(vols)
			}
			rows := make([]row, 0, len(vols))
			for _, v := range vols {
				id := v.ID
				if !c.Bool(longFlagName) {
					id = shortID(id)
				}
				rows = append(rows, row{
					"id":    id,
					"name":  v.Name,
					"type":  v.Type,
					"size":  mibSize(v.Size),
					"state": v.State,
					"age":   shortAge(v.Created),
				})
			}
			return renderList(c, []string{"id", "name", "type", "size", "state", "age"}, nil, rows)
		},
	}
}

func volumeGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one volume by id, short id, or name",
		ArgsUsage: "VOLUME",
		Before:    requireNArgs(1, []string{"VOLUME"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vol, err := client.GetVolume(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(vol)
		},
	}
}

func volumeCreate() cli.Command {
	const (
		nameFlagName     = "name"
		typeFlagName     = "type"
		sizeFlagName     = "size"
		networkFlagName  = "network"
		affinityFlagName = "affinity"
		tagFlagName      = "tag"
	)

	return cli.Command{
		Name:  "create",
		Usage: "create a volume",
		Flags: waitFlags(jsonFlag(
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "volume name; the server picks one when omitted",
			},
			cli.StringFlag{
				Name:  typeFlagName,
				Usage: "volume type",
				Value: "tritonnfs",
			},
			cli.StringFlag{
				Name:  sizeFlagName + ", s",
				Usage: "size in MiB",
			},
			cli.StringSliceFlag{
				Name:  networkFlagName + ", N",
				Usage: "fabric network (id, short id, or name); may be repeated",
			},
			cli.StringSliceFlag{
				Name:  affinityFlagName + ", a",
				Usage: "affinity rule; may be repeated",
			},
			cli.StringSliceFlag{
				Name:  tagFlagName + ", t",
				Usage: "tag as key=value; may be repeated",
			})...),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			var size int64
			if v := c.String(sizeFlagName); v != "" {
				if size, err = parseMiB(v); err != nil {
					return errs.Wrap(errs.KindUsage, err, "invalid volume size")
				}
			}
			tags, _, err := cloudapi.ParseKeyValues(c.StringSlice(tagFlagName))
			if err != nil {
				return err
			}

			vol, err := client.CreateVolume(context.Background(), cloudapi.CreateVolumeOptions{
				Name:        c.String(nameFlagName),
				Type:        c.String(typeFlagName),
				Size:        size,
				Networks:    c.StringSlice(networkFlagName),
				Affinity:    c.StringSlice(affinityFlagName),
				Tags:        tags,
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(vol)
			}
			fmt.Printf("Created volume %s (%s, state %s)\n", vol.Name, shortID(vol.ID), vol.State)
			return nil
		},
	}
}

func volumeDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete one or more volumes",
		ArgsUsage: "VOLUME [VOLUME...]",
		Flags:     forceFlag(waitFlags()...),
		Before:    requireAtLeastNArgs(1, "VOLUME [VOLUME...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			var multi errs.Multi
			for _, arg := range c.Args() {
				if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete volume %q?", arg)) {
					fmt.Println("Skipping", arg)
					continue
				}
				err := client.DeleteVolume(ctx, arg, cloudapi.DeleteVolumeOptions{
					Wait:        c.Bool(waitFlagName),
					WaitTimeout: waitTimeout(c),
				})
				if err != nil {
					multi.Add(err)
					continue
				}
				fmt.Printf("Deleted volume %s\n", arg)
			}
			return multi.Resolve()
		},
	}
}
