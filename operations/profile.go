package operations

import (
	"fmt"
	"strings"

	"github.com/tritoncli/triton/config"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func Profile() cli.Command {
	return cli.Command{
		Name:  "profile",
		Usage: "manage CloudAPI connection profiles",
		Subcommands: []cli.Command{
			profileList(),
			profileGet(),
			profileCreate(),
			profileEdit(),
			profileSetCurrent(),
			profileDelete(),
		},
	}
}

func profileList() cli.Command {
	return cli.Command{
		Name:  "list",
		Usage: "list profiles; the current one is marked with an asterisk",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			store, err := setupStore(c)
			if err != nil {
				return err
			}
			profiles, err := store.List()
			if err != nil {
				return err
			}
			current, err := store.CurrentName()
			if err != nil {
				return err
			}

			if c.Bool(jsonFlagName) {
				return printJSON(profiles)
			}
			rows := make([]row, 0, len(profiles))
			for _, p := range profiles {
				name := p.Name
				if p.Name == current {
					name = "*" + name
				}
				rows = append(rows, row{
					"name":    name,
					"url":     p.URL,
					"account": p.Account,
					"key":     p.KeyID,
				})
			}
			return renderList(c, []string{"name", "url", "account", "key"}, nil, rows)
		},
	}
}

func profileGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one profile (defaults to the current one)",
		ArgsUsage: "[NAME]",
		Flags:     jsonFlag(),
		Action: func(c *cli.Context) error {
			store, err := setupStore(c)
			if err != nil {
				return err
			}
			name := c.Args().First()
			if name == "" {
				if name, err = store.CurrentName(); err != nil {
					return err
				}
			}

			var p *config.Profile
			if name == config.EnvProfileName {
				conf, err := loadConfig(c)
				if err != nil {
					return err
				}
				p = conf.Profile
			} else if p, err = store.Get(name); err != nil {
				return err
			}

			if c.Bool(jsonFlagName) {
				return printJSON(p)
			}
			fmt.Printf("name: %s\n", p.Name)
			fmt.Printf("url: %s\n", p.URL)
			fmt.Printf("account: %s\n", p.Account)
			if p.ActAsAccount != "" {
				fmt.Printf("actAsAccount: %s\n", p.ActAsAccount)
			}
			fmt.Printf("keyId: %s\n", p.KeyID)
			if p.PrivKeyPath != "" {
				fmt.Printf("privKeyPath: %s\n", p.PrivKeyPath)
			}
			if p.Insecure {
				fmt.Println("insecure: true")
			}
			if len(p.DCs) > 0 {
				fmt.Printf("dcs: %s\n", strings.Join(p.DCs, ","))
			}
			return nil
		},
	}
}

func profileCreate() cli.Command {
	const (
		nameFlagName    = "name"
		copyFlagName    = "copy"
		currentFlagName = "set-current"
	)

	return cli.Command{
		Name:  "create",
		Usage: "create a profile from flags, optionally copying an existing one",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "profile name",
			},
			cli.StringFlag{
				Name:  copyFlagName,
				Usage: "start from a copy of this profile",
			},
			cli.StringFlag{
				Name:  urlFlagName,
				Usage: "CloudAPI endpoint URL",
			},
			cli.StringFlag{
				Name:  accountFlagName,
				Usage: "account login",
			},
			cli.StringFlag{
				Name:  keyIDFlagName,
				Usage: "SSH key fingerprint (md5 or SHA256 form)",
			},
			cli.StringFlag{
				Name:  "priv-key-path",
				Usage: "path to a PEM private key; omit to use the SSH agent",
			},
			cli.BoolFlag{
				Name:  insecureFlagName,
				Usage: "skip TLS certificate validation",
			},
			cli.BoolFlag{
				Name:  currentFlagName,
				Usage: "make the new profile current",
			},
		},
		Action: func(c *cli.Context) error {
			store, err := setupStore(c)
			if err != nil {
				return err
			}

			p := &config.Profile{}
			if src := c.String(copyFlagName); src != "" {
				copied, err := store.Get(src)
				if err != nil {
					return err
				}
				p = copied
			}
			p.Name = c.String(nameFlagName)
			if v := c.String(urlFlagName); v != "" {
				p.URL = v
			}
			if v := c.String(accountFlagName); v != "" {
				p.Account = v
			}
			if v := c.String(keyIDFlagName); v != "" {
				p.KeyID = v
			}
			if v := c.String("priv-key-path"); v != "" {
				p.PrivKeyPath = v
			}
			if c.Bool(insecureFlagName) {
				p.Insecure = true
			}

			if _, err := store.Get(p.Name); err == nil {
				return errs.New(errs.KindUsage, "profile %q already exists", p.Name)
			}
			if err := store.Save(p, config.SaveOptions{SetCurrent: c.Bool(currentFlagName)}); err != nil {
				return err
			}
			fmt.Printf("Created profile %q\n", p.Name)
			return nil
		},
	}
}

func profileEdit() cli.Command {
	return cli.Command{
		Name:      "edit",
		Usage:     "edit a profile in $EDITOR",
		ArgsUsage: "NAME",
		Before:    requireNArgs(1, []string{"NAME"}),
		Action: func(c *cli.Context) error {
			store, err := setupStore(c)
			if err != nil {
				return err
			}
			name := c.Args().First()

			res, err := store.Edit(name, config.EnvFromOS().Editor, func(perr error) bool {
				fmt.Println(FormatError(perr, false))
				return confirm("Re-edit?")
			})
			if err != nil {
				return err
			}
			if res.Changed {
				fmt.Printf("Updated profile %q\n", name)
			} else {
				fmt.Printf("No change to profile %q\n", name)
			}
			return nil
		},
	}
}

func profileSetCurrent() cli.Command {
	return cli.Command{
		Name:      "set-current",
		Usage:     "make NAME the current profile",
		ArgsUsage: "NAME",
		Before:    requireNArgs(1, []string{"NAME"}),
		Action: func(c *cli.Context) error {
			store, err := setupStore(c)
			if err != nil {
				return err
			}
			name := c.Args().First()
			if err := store.SetCurrent(name); err != nil {
				return err
			}
			fmt.Printf("Set %q as the current profile\n", name)
			return nil
		},
	}
}

func profileDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Usage:     "delete a profile",
		ArgsUsage: "NAME",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"NAME"}),
		Action: func(c *cli.Context) error {
			store, err := setupStore(c)
			if err != nil {
				return err
			}
			name := c.Args().First()
			if err := store.Delete(name, config.DeleteOptions{Force: c.Bool(forceFlagName)}); err != nil {
				return err
			}
			fmt.Printf("Deleted profile %q\n", name)
			return nil
		},
	}
}
