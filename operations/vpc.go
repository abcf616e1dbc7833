package operations

import (
	"context"
	"fmt"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func VPC() cli.Command {
	return cli.Command{
		Name:  "vpc",
		Usage: "manage fabric virtual private clouds",
		Subcommands: []cli.Command{
			vpcList(),
			vpcGet(),
			vpcCreate(),
			vpcUpdate(),
			vpcDelete(),
		},
	}
}

func vpcList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list VPCs",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vpcs, err := client.ListVPCs(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(vpcs)
			}
			rows := make([]row, 0, len(vpcs))
			for _, v := range vpcs {
				rows = append(rows, row{
					"id":     shortID(v.ID),
					"name":   v.Name,
					"subnet": v.Subnet,
				})
			}
			return renderList(c, []string{"id", "name", "subnet"}, nil, rows)
		},
	}
}

func vpcGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one VPC by id, short id, or name",
		ArgsUsage: "VPC",
		Before:    requireNArgs(1, []string{"VPC"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vpc, err := client.GetVPC(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(vpc)
		},
	}
}

func vpcCreate() cli.Command {
	const (
		subnetFlagName = "subnet"
		descFlagName   = "description"
	)

	return cli.Command{
		Name:      "create",
		Usage:     "create a VPC",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  subnetFlagName,
				Usage: "CIDR subnet for the VPC (required)",
			},
			cli.StringFlag{
				Name:  descFlagName + ", d",
				Usage: "VPC description",
			},
		},
		Before: requireNArgs(1, []string{"NAME"}),
		Action: func(c *cli.Context) error {
			if c.String(subnetFlagName) == "" {
				return errs.New(errs.KindUsage, "vpc create requires --subnet")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vpc, err := client.CreateVPC(context.Background(), cloudapi.VPC{
				Name:        c.Args().First(),
				Subnet:      c.String(subnetFlagName),
				Description: c.String(descFlagName),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created VPC %s (%s)\n", vpc.Name, shortID(vpc.ID))
			return nil
		},
	}
}

func vpcUpdate() cli.Command {
	return cli.Command{
		Name:      "update",
		Usage:     "update VPC fields given as key=value arguments",
		ArgsUsage: "VPC [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(2, "VPC FIELD=VALUE [FIELD=VALUE...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			fields, _, err := cloudapi.ParseKeyValues(c.Args().Tail())
			if err != nil {
				return err
			}
			vpc, err := client.UpdateVPC(context.Background(), c.Args().First(), fields)
			if err != nil {
				return err
			}
			return printJSON(vpc)
		},
	}
}

func vpcDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete a VPC",
		ArgsUsage: "VPC",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"VPC"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete VPC %q?", arg)) {
				return nil
			}
			if err := client.DeleteVPC(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Deleted VPC %s\n", arg)
			return nil
		},
	}
}
