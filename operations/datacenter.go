package operations

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli"
)

func Datacenters() cli.Command {
	return cli.Command{
		Name:  "datacenters",
		Usage: "list datacenters in this cloud",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			dcs, err := client.ListDatacenters(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(dcs)
			}
			rows := make([]row, 0, len(dcs))
			for name, url := range dcs {
				rows = append(rows, row{"name": name, "url": url})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i]["name"] < rows[j]["name"] })
			return renderList(c, []string{"name", "url"}, nil, rows)
		},
	}
}

func Services() cli.Command {
	return cli.Command{
		Name:  "services",
		Usage: "list service endpoints in this datacenter",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			svcs, err := client.ListServices(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(svcs)
			}
			rows := make([]row, 0, len(svcs))
			for name, endpoint := range svcs {
				rows = append(rows, row{"name": name, "endpoint": endpoint})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i]["name"] < rows[j]["name"] })
			return renderList(c, []string{"name", "endpoint"}, nil, rows)
		},
	}
}

func Ping() cli.Command {
	return cli.Command{
		Name:  "ping",
		Usage: "check that the CloudAPI endpoint is reachable",
		Flags: jsonFlag(),
		Action: func(c *cli.Context) error {
			conf, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Ping(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(res)
			}
			fmt.Printf("%s: %s", conf.Profile.URL, res.Ping)
			if res.APIVersion != "" {
				fmt.Printf(" (api-version %s)", res.APIVersion)
			}
			fmt.Println()
			return nil
		},
	}
}

// Env prints shell export lines so other tools can pick up the profile.
func Env() cli.Command {
	return cli.Command{
		Name:      "env",
		Usage:     "print TRITON_* environment exports for a profile",
		ArgsUsage: "[PROFILE]",
		Action: func(c *cli.Context) error {
			conf, err := loadConfig(c)
			if err != nil {
				return err
			}
			if name := c.Args().First(); name != "" && name != conf.Profile.Name {
				store, err := setupStore(c)
				if err != nil {
					return err
				}
				p, err := store.Get(name)
				if err != nil {
					return err
				}
				conf.Profile = p
			}

			p := conf.Profile
			fmt.Printf("export TRITON_PROFILE=%q\n", p.Name)
			fmt.Printf("export TRITON_URL=%q\n", p.URL)
			fmt.Printf("export TRITON_ACCOUNT=%q\n", p.Account)
			fmt.Printf("export TRITON_KEY_ID=%q\n", p.KeyID)
			if p.ActAsAccount != "" {
				fmt.Printf("export TRITON_ACT_AS=%q\n", p.ActAsAccount)
			}
			if p.Insecure {
				fmt.Println("export TRITON_TLS_INSECURE=1")
			} else {
				fmt.Println("unset TRITON_TLS_INSECURE")
			}
			return nil
		},
	}
}
