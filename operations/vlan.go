package operations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func VLAN() cli.Command {
	return cli.Command{
		Name:  "vlan",
		Usage: "manage fabric VLANs and their networks",
		Subcommands: []cli.Command{
			vlanList(),
			vlanGet(),
			vlanCreate(),
			vlanUpdate(),
			vlanDelete(),
			vlanNetworks(),
			vlanCreateNetwork(),
			vlanDeleteNetwork(),
		},
	}
}

// vlanArg resolves the VLAN positional (numeric id or name) to its id.
func vlanArg(ctx context.Context, client *cloudapi.Client, arg string) (int, error) {
	vlan, err := client.GetFabricVLAN(ctx, arg)
	if err != nil {
		return 0, err
	}
	return vlan.VLANID, nil
}

func vlanList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list fabric VLANs",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vlans, err := client.ListFabricVLANs(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(vlans)
			}
			rows := make([]row, 0, len(vlans))
			for _, v := range vlans {
				rows = append(rows, row{
					"vlan":        strconv.Itoa(v.VLANID),
					"name":        v.Name,
					"description": v.Description,
				})
			}
			return renderList(c, []string{"vlan", "name", "description"}, nil, rows)
		},
	}
}

func vlanGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one fabric VLAN by id or name",
		ArgsUsage: "VLAN",
		Before:    requireNArgs(1, []string{"VLAN"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vlan, err := client.GetFabricVLAN(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(vlan)
		},
	}
}

func vlanCreate() cli.Command {
	const (
		nameFlagName        = "name"
		descriptionFlagName = "description"
	)

	return cli.Command{
		Name:      "create",
		Usage:     "create a fabric VLAN",
		ArgsUsage: "VLAN-ID",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "VLAN name (required)",
			},
			cli.StringFlag{
				Name:  descriptionFlagName + ", d",
				Usage: "VLAN description",
			},
		},
		Before: requireNArgs(1, []string{"VLAN-ID"}),
		Action: func(c *cli.Context) error {
			vlanID, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return errs.New(errs.KindUsage, "VLAN id must be numeric, got %q", c.Args().First())
			}
			if c.String(nameFlagName) == "" {
				return errs.New(errs.KindUsage, "vlan create requires --name")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			vlan, err := client.CreateFabricVLAN(context.Background(), cloudapi.FabricVLAN{
				VLANID:      vlanID,
				Name:        c.String(nameFlagName),
				Description: c.String(descriptionFlagName),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created VLAN %d (%s)\n", vlan.VLANID, vlan.Name)
			return nil
		},
	}
}

func vlanUpdate() cli.Command {
	return cli.Command{
		Name:      "update",
		Usage:     "update VLAN fields given as key=value arguments",
		ArgsUsage: "VLAN [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(2, "VLAN FIELD=VALUE [FIELD=VALUE...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			vlanID, err := vlanArg(ctx, client, c.Args().First())
			if err != nil {
				return err
			}
			fields, _, err := cloudapi.ParseKeyValues(c.Args().Tail())
			if err != nil {
				return err
			}
			vlan, err := client.UpdateFabricVLAN(ctx, vlanID, fields)
			if err != nil {
				return err
			}
			return printJSON(vlan)
		},
	}
}

func vlanDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete a fabric VLAN (its networks must be gone first)",
		ArgsUsage: "VLAN",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"VLAN"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			vlanID, err := vlanArg(ctx, client, c.Args().First())
			if err != nil {
				return err
			}
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete VLAN %d?", vlanID)) {
				return nil
			}
			if err := client.DeleteFabricVLAN(ctx, vlanID); err != nil {
				return err
			}
			fmt.Printf("Deleted VLAN %d\n", vlanID)
			return nil
		},
	}
}

func vlanNetworks() cli.Command {
	return cli.Command{
		Name:      "networks",
		Usage:     "list the networks on a fabric VLAN",
		ArgsUsage: "VLAN",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"VLAN"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			vlanID, err := vlanArg(ctx, client, c.Args().First())
			if err != nil {
				return err
			}
			networks, err := client.ListFabricNetworks(ctx, vlanID)
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(networks)
			}
			rows := make([]row, 0, len(networks))
			for _, n := range networks {
				rows = append(rows, row{
					"id":     shortID(n.ID),
					"name":   n.Name,
					"subnet": n.Subnet,
				})
			}
			return renderList(c, []string{"id", "name", "subnet"}, nil, rows)
		},
	}
}

func vlanCreateNetwork() cli.Command {
	const (
		nameFlagName     = "name"
		subnetFlagName   = "subnet"
		startIPFlagName  = "start-ip"
		endIPFlagName    = "end-ip"
		gatewayFlagName  = "gateway"
		resolverFlagName = "resolver"
		noNATFlagName    = "no-nat"
		descFlagName     = "description"
	)

	return cli.Command{
		Name:      "create-network",
		Usage:     "create a network on a fabric VLAN",
		ArgsUsage: "VLAN",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "network name (required)",
			},
			cli.StringFlag{
				Name:  subnetFlagName,
				Usage: "CIDR subnet (required)",
			},
			cli.StringFlag{
				Name:  startIPFlagName,
				Usage: "first provisionable IP (required)",
			},
			cli.StringFlag{
				Name:  endIPFlagName,
				Usage: "last provisionable IP (required)",
			},
			cli.StringFlag{
				Name:  gatewayFlagName,
				Usage: "gateway IP",
			},
			cli.StringSliceFlag{
				Name:  resolverFlagName,
				Usage: "DNS resolver; may be repeated",
			},
			cli.BoolFlag{
				Name:  noNATFlagName,
				Usage: "disable internet NAT on the gateway",
			},
			cli.StringFlag{
				Name:  descFlagName + ", d",
				Usage: "network description",
			},
		},
		Before: requireNArgs(1, []string{"VLAN"}),
		Action: func(c *cli.Context) error {
			for _, required := range []string{nameFlagName, subnetFlagName, startIPFlagName, endIPFlagName} {
				if c.String(required) == "" {
					return errs.New(errs.KindUsage, "vlan create-network requires --%s", required)
				}
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			vlanID, err := vlanArg(ctx, client, c.Args().First())
			if err != nil {
				return err
			}
			opts := cloudapi.CreateFabricNetworkOptions{
				Name:             c.String(nameFlagName),
				Subnet:           c.String(subnetFlagName),
				ProvisionStartIP: c.String(startIPFlagName),
				ProvisionEndIP:   c.String(endIPFlagName),
				Gateway:          c.String(gatewayFlagName),
				Resolvers:        c.StringSlice(resolverFlagName),
				Description:      c.String(descFlagName),
			}
			if c.Bool(noNATFlagName) {
				f := false
				opts.InternetNAT = &f
			}
			n, err := client.CreateFabricNetwork(ctx, vlanID, opts)
			if err != nil {
				return err
			}
			fmt.Printf("Created network %s (%s) on VLAN %d\n", n.Name, shortID(n.ID), vlanID)
			return nil
		},
	}
}

func vlanDeleteNetwork() cli.Command {
	return cli.Command{
		Name:      "delete-network",
		Usage:     "delete a network from a fabric VLAN",
		ArgsUsage: "VLAN NETWORK",
		Flags:     forceFlag(),
		Before:    requireNArgs(2, []string{"VLAN", "NETWORK"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			vlanID, err := vlanArg(ctx, client, c.Args().First())
			if err != nil {
				return err
			}
			network := c.Args().Get(1)
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete network %q from VLAN %d?", network, vlanID)) {
				return nil
			}
			if err := client.DeleteFabricNetwork(ctx, vlanID, network); err != nil {
				return err
			}
			fmt.Printf("Deleted network %s from VLAN %d\n", network, vlanID)
			return nil
		},
	}
}
