package operations

import (
	"context"
	"fmt"
	"os"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/urfave/cli"
)

func instanceMetadata() cli.Command {
	return cli.Command{
		Name:  "metadata",
		Usage: "manage instance metadata",
		Subcommands: []cli.Command{
			instanceMetadataList(),
			instanceMetadataGet(),
			instanceMetadataUpdate(),
			instanceMetadataDelete(),
		},
	}
}

func instanceMetadataList() cli.Command {
	const credentialsFlagName = "credentials"

	return cli.Command{
		Name:      "list",
		Usage:     "show all metadata on an instance",
		ArgsUsage: "INST",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  credentialsFlagName,
				Usage: "include generated credentials",
			},
		},
		Before: requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			md, err := client.ListInstanceMetadata(context.Background(), c.Args().First(), c.Bool(credentialsFlagName))
			if err != nil {
				return err
			}
			return printJSON(md)
		},
	}
}

func instanceMetadataGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one metadata value",
		ArgsUsage: "INST KEY",
		Flags:     jsonFlag(),
		Before:    requireNArgs(2, []string{"INST", "KEY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			val, err := client.GetInstanceMetadata(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(val)
			}
			fmt.Printf("%v\n", val)
			return nil
		},
	}
}

func instanceMetadataUpdate() cli.Command {
	const metadataFileFlagName = "metadata-file"

	return cli.Command{
		Name:      "update",
		Usage:     "merge metadata onto an instance",
		ArgsUsage: "INST [KEY=VALUE...]",
		Flags: []cli.Flag{
			cli.StringSliceFlag{
				Name:  metadataFileFlagName + ", M",
				Usage: "metadata KEY=FILE, binding the file contents to KEY; may be repeated",
			},
		},
		Before: requireAtLeastNArgs(1, "INST [KEY=VALUE...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			md, warnings, err := cloudapi.ParseKeyValues(c.Args().Tail())
			if err != nil {
				return err
			}
			fileWarnings, err := cloudapi.ParseMetadataFiles(md, c.StringSlice(metadataFileFlagName))
			if err != nil {
				return err
			}
			cloudapi.WriteWarnings(os.Stderr, append(warnings, fileWarnings...))

			updated, err := client.UpdateInstanceMetadata(context.Background(), c.Args().First(), md)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}

func instanceMetadataDelete() cli.Command {
	const allFlagName = "all"

	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete one metadata key, or all with --all",
		ArgsUsage: "INST [KEY...]",
		Flags: forceFlag(cli.BoolFlag{
			Name:  allFlagName,
			Usage: "delete every metadata key",
		}),
		Before: requireAtLeastNArgs(1, "INST [KEY...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()
			inst := c.Args().First()

			if c.Bool(allFlagName) {
				if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete all metadata on %q?", inst)) {
					return nil
				}
				if err := client.DeleteAllInstanceMetadata(ctx, inst); err != nil {
					return err
				}
				fmt.Printf("Deleted all metadata on instance %s\n", inst)
				return nil
			}

			for _, key := range c.Args().Tail() {
				if err := client.DeleteInstanceMetadata(ctx, inst, key); err != nil {
					return err
				}
				fmt.Printf("Deleted metadata key %q on instance %s\n", key, inst)
			}
			return nil
		},
	}
}

func instanceTag() cli.Command {
	return cli.Command{
		Name:  "tag",
		Usage: "manage instance tags",
		Subcommands: []cli.Command{
			instanceTagList(),
			instanceTagGet(),
			instanceTagSet(),
			instanceTagReplaceAll(),
			instanceTagDelete(),
		},
	}
}

func instanceTagList() cli.Command {
	return cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "show all tags on an instance",
		ArgsUsage: "INST",
		Before:    requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			tags, err := client.ListInstanceTags(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(tags)
		},
	}
}

func instanceTagGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one tag value",
		ArgsUsage: "INST KEY",
		Flags:     jsonFlag(),
		Before:    requireNArgs(2, []string{"INST", "KEY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			val, err := client.GetInstanceTag(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(val)
			}
			fmt.Printf("%v\n", val)
			return nil
		},
	}
}

func instanceTagSet() cli.Command {
	return cli.Command{
		Name:      "set",
		Usage:     "merge tags onto an instance",
		ArgsUsage: "INST KEY=VALUE [KEY=VALUE...]",
		Before:    requireAtLeastNArgs(2, "INST KEY=VALUE [KEY=VALUE...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			tags, warnings, err := cloudapi.ParseKeyValues(c.Args().Tail())
			if err != nil {
				return err
			}
			cloudapi.WriteWarnings(os.Stderr, warnings)

			updated, err := client.SetInstanceTags(context.Background(), c.Args().First(), tags)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}

func instanceTagReplaceAll() cli.Command {
	return cli.Command{
		Name:      "replace-all",
		Usage:     "replace every tag on an instance",
		ArgsUsage: "INST [KEY=VALUE...]",
		Before:    requireAtLeastNArgs(1, "INST [KEY=VALUE...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			tags, warnings, err := cloudapi.ParseKeyValues(c.Args().Tail())
			if err != nil {
				return err
			}
			cloudapi.WriteWarnings(os.Stderr, warnings)

			updated, err := client.ReplaceInstanceTags(context.Background(), c.Args().First(), tags)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}

func instanceTagDelete() cli.Command {
	const allFlagName = "all"

	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete one tag, or all with --all",
		ArgsUsage: "INST [KEY...]",
		Flags: forceFlag(cli.BoolFlag{
			Name:  allFlagName,
			Usage: "delete every tag",
		}),
		Before: requireAtLeastNArgs(1, "INST [KEY...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()
			inst := c.Args().First()

			if c.Bool(allFlagName) {
				if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete all tags on %q?", inst)) {
					return nil
				}
				if err := client.DeleteAllInstanceTags(ctx, inst); err != nil {
					return err
				}
				fmt.Printf("Deleted all tags on instance %s\n", inst)
				return nil
			}

			for _, key := range c.Args().Tail() {
				if err := client.DeleteInstanceTag(ctx, inst, key); err != nil {
					return err
				}
				fmt.Printf("Deleted tag %q on instance %s\n", key, inst)
			}
			return nil
		},
	}
}
