package operations

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func Key() cli.Command {
	return cli.Command{
		Name:  "key",
		Usage: "manage the account's SSH keys",
		Subcommands: []cli.Command{
			keyList(),
			keyGet(),
			keyAdd(),
			keyDelete(),
		},
	}
}

func keyList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list SSH keys",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.ListKeys(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(keys)
			}
			rows := make([]row, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, row{
					"name":        k.Name,
					"fingerprint": k.Fingerprint,
				})
			}
			return renderList(c, []string{"name", "fingerprint"}, nil, rows)
		},
	}
}

func keyGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "print one SSH public key by name or fingerprint",
		ArgsUsage: "KEY",
		Flags:     jsonFlag(),
		Before:    requireNArgs(1, []string{"KEY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.GetKey(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(key)
			}
			fmt.Println(strings.TrimSpace(key.Key))
			return nil
		},
	}
}

func keyAdd() cli.Command {
	const nameFlagName = "name"

	return cli.Command{
		Name:      "add",
		Usage:     "upload an SSH public key file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "key name; derived from the key comment when omitted",
			},
		},
		Before: requireNArgs(1, []string{"FILE"}),
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return errs.Wrap(errs.KindUsage, err, "reading public key file")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.AddKey(context.Background(), c.String(nameFlagName), strings.TrimSpace(string(data)))
			if err != nil {
				return err
			}
			fmt.Printf("Added key %q (%s)\n", key.Name, key.Fingerprint)
			return nil
		},
	}
}

func keyDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete an SSH key by name or fingerprint",
		ArgsUsage: "KEY",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"KEY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete key %q?", arg)) {
				return nil
			}
			if err := client.DeleteKey(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Deleted key %s\n", arg)
			return nil
		},
	}
}

func AccessKey() cli.Command {
	return cli.Command{
		Name:  "access-key",
		Usage: "manage S3-style access keys",
		Subcommands: []cli.Command{
			accessKeyList(),
			accessKeyGet(),
			accessKeyCreate(),
			accessKeyDelete(),
		},
	}
}

func accessKeyList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list access keys (secrets are never listed)",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.ListAccessKeys(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(keys)
			}
			rows := make([]row, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, row{
					"id":     k.AccessKeyID,
					"status": k.Status,
					"age":    shortAge(k.Created),
				})
			}
			return renderList(c, []string{"id", "status", "age"}, nil, rows)
		},
	}
}

func accessKeyGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one access key by id",
		ArgsUsage: "ACCESS-KEY-ID",
		Before:    requireNArgs(1, []string{"ACCESS-KEY-ID"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.GetAccessKey(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(key)
		},
	}
}

func accessKeyCreate() cli.Command {
	return cli.Command{
		Name:  "create",
		Usage: "mint an access key; the secret is only shown once",
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.CreateAccessKey(context.Background())
			if err != nil {
				return err
			}
			return printJSON(key)
		},
	}
}

func accessKeyDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "revoke an access key",
		ArgsUsage: "ACCESS-KEY-ID",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"ACCESS-KEY-ID"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Revoke access key %q?", arg)) {
				return nil
			}
			if err := client.DeleteAccessKey(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Revoked access key %s\n", arg)
			return nil
		},
	}
}
