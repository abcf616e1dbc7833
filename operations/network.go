package operations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func Network() cli.Command {
	return cli.Command{
		Name:  "network",
		Usage: "view networks and manage IP reservations",
		Subcommands: []cli.Command{
			networkList(),
			networkGet(),
			networkIPCmd(),
		},
	}
}

func networkList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list viewable networks",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			networks, err := client.ListNetworks(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(networks)
			}
			rows := make([]row, 0, len(networks))
			for _, n := range networks {
				id := n.ID
				if !c.Bool(longFlagName) {
					id = shortID(id)
				}
				vlan := "-"
				if n.VLANID != nil {
					vlan = strconv.Itoa(*n.VLANID)
				}
				rows = append(rows, row{
					"id":      id,
					"name":    n.Name,
					"subnet":  n.Subnet,
					"gateway": n.Gateway,
					"public":  strconv.FormatBool(n.Public),
					"fabric":  strconv.FormatBool(n.Fabric),
					"vlan":    vlan,
				})
			}
			return renderList(c, []string{"id", "name", "subnet", "public", "fabric", "vlan"},
				[]string{"id", "name", "subnet", "gateway", "public", "fabric", "vlan"}, rows)
		},
	}
}

func networkGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one network by id, short id, or name",
		ArgsUsage: "NETWORK",
		Before:    requireNArgs(1, []string{"NETWORK"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.GetNetwork(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(n)
		},
	}
}

func networkIPCmd() cli.Command {
	return cli.Command{
		Name:  "ip",
		Usage: "view and reserve IPs on a network",
		Subcommands: []cli.Command{
			networkIPList(),
			networkIPGet(),
			networkIPUpdate(),
		},
	}
}

func networkIPList() cli.Command {
	return cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "list the IPs on a network",
		ArgsUsage: "NETWORK",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"NETWORK"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			ips, err := client.ListNetworkIPs(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(ips)
			}
			rows := make([]row, 0, len(ips))
			for _, ip := range ips {
				rows = append(rows, row{
					"ip":       ip.IP,
					"reserved": strconv.FormatBool(ip.Reserved),
					"free":     strconv.FormatBool(ip.Free),
					"managed":  strconv.FormatBool(ip.Managed),
					"owner":    shortID(ip.BelongsTo),
				})
			}
			return renderList(c, []string{"ip", "reserved", "free", "managed", "owner"}, nil, rows)
		},
	}
}

func networkIPGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one IP on a network",
		ArgsUsage: "NETWORK IP",
		Before:    requireNArgs(2, []string{"NETWORK", "IP"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			ip, err := client.GetNetworkIP(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			return printJSON(ip)
		},
	}
}

func networkIPUpdate() cli.Command {
	const reservedFlagName = "reserved"

	return cli.Command{
		Name:      "update",
		Usage:     "set or clear an IP's reservation",
		ArgsUsage: "NETWORK IP",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  reservedFlagName,
				Usage: "true to reserve, false to release",
			},
		},
		Before: requireNArgs(2, []string{"NETWORK", "IP"}),
		Action: func(c *cli.Context) error {
			reserved, err := strconv.ParseBool(c.String(reservedFlagName))
			if err != nil {
				return errs.New(errs.KindUsage, "--reserved must be true or false")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			ip, err := client.UpdateNetworkIP(context.Background(), c.Args().Get(0), c.Args().Get(1), reserved)
			if err != nil {
				return err
			}
			fmt.Printf("Updated IP %s (reserved %t)\n", ip.IP, ip.Reserved)
			return nil
		},
	}
}
