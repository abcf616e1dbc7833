package operations

import (
	"context"
	"strconv"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/urfave/cli"
)

func Package() cli.Command {
	return cli.Command{
		Name:    "package",
		Aliases: []string{"pkg"},
		Usage:   "view provisioning packages",
		Subcommands: []cli.Command{
			packageList(),
			packageGet(),
		},
	}
}

func packageList() cli.Command {
	const (
		nameFlagName   = "name"
		memoryFlagName = "memory"
		diskFlagName   = "disk"
		vcpusFlagName  = "vcpus"
	)

	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list packages",
		Flags: listOutputFlags(
			cli.StringFlag{
				Name:  nameFlagName,
				Usage: "filter by exact name",
			},
			cli.Int64Flag{
				Name:  memoryFlagName,
				Usage: "filter by memory (MiB)",
			},
			cli.Int64Flag{
				Name:  diskFlagName,
				Usage: "filter by disk (MiB)",
			},
			cli.Int64Flag{
				Name:  vcpusFlagName,
				Usage: "filter by vcpu count",
			}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			pkgs, err := client.ListPackages(context.Background(), cloudapi.ListPackagesOptions{
				Name:   c.String(nameFlagName),
				Memory: c.Int64(memoryFlagName),
				Disk:   c.Int64(diskFlagName),
				VCPUs:  c.Int64(vcpusFlagName),
			})
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(pkgs)
			}
			rows := make([]row, 0, len(pkgs))
			for _, pkg := range pkgs {
				id := pkg.ID
				if !c.Bool(longFlagName) {
					id = shortID(id)
				}
				rows = append(rows, row{
					"id":     id,
					"name":   pkg.Name,
					"memory": mibSize(pkg.Memory),
					"disk":   mibSize(pkg.Disk),
					"swap":   mibSize(pkg.Swap),
					"vcpus":  vcpusOf(pkg),
					"group":  pkg.Group,
				})
			}
			return renderList(c, []string{"id", "name", "memory", "disk", "vcpus", "group"},
				[]string{"id", "name", "memory", "disk", "swap", "vcpus", "group"}, rows)
		},
	}
}

func vcpusOf(pkg *cloudapi.Package) string {
	if pkg.VCPUs <= 0 {
		return "-"
	}
	return strconv.FormatInt(pkg.VCPUs, 10)
}

func packageGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one package by id, short id, or name",
		ArgsUsage: "PACKAGE",
		Before:    requireNArgs(1, []string{"PACKAGE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			pkg, err := client.GetPackage(context.Background(), c.Args().First(), false)
			if err != nil {
				return err
			}
			return printJSON(pkg)
		},
	}
}
