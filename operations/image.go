package operations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func Image() cli.Command {
	return cli.Command{
		Name:    "image",
		Aliases: []string{"img"},
		Usage:   "manage images",
		Subcommands: []cli.Command{
			imageList(),
			imageGet(),
			imageCreate(),
			imageUpdate(),
			imageDelete(),
			imageExport(),
			imageClone(),
			imageCopy(),
			imageShare(),
			imageUnshare(),
			imageWait(),
		},
	}
}

var imageListColumns = []string{"id", "name", "version", "os", "state", "flags", "pubdate"}
var imageListLongColumns = []string{"id", "name", "version", "os", "type", "state", "flags", "pubdate"}

func imageRows(imgs []*cloudapi.Image, long bool) []row {
	rows := make([]row, 0, len(imgs))
	for _, img := range imgs {
		id := img.ID
		if !long {
			id = shortID(id)
		}
		flags := ""
		if img.Public {
			flags += "P"
		}
		pubdate := img.PublishedAt
		if len(pubdate) >= 10 {
			pubdate = pubdate[:10]
		}
		rows = append(rows, row{
			"id":      id,
			"name":    img.Name,
			"version": img.Version,
			"os":      img.OS,
			"type":    img.Type,
			"state":   img.State,
			"flags":   flags,
			"pubdate": pubdate,
		})
	}
	return rows
}

func imageList() cli.Command {
	const (
		nameFlagName   = "name"
		osFlagName     = "os"
		typeFlagName   = "type"
		stateFlagName  = "state"
		publicFlagName = "public"
	)

	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list images (unfiltered listings are cached for an hour)",
		Flags: listOutputFlags(
			cli.StringFlag{
				Name:  nameFlagName,
				Usage: "filter by exact name",
			},
			cli.StringFlag{
				Name:  osFlagName,
				Usage: "filter by OS",
			},
			cli.StringFlag{
				Name:  typeFlagName,
				Usage: "filter by type",
			},
			cli.StringFlag{
				Name:  stateFlagName,
				Usage: "filter by state; 'all' lists every state",
			},
			cli.BoolFlag{
				Name:  publicFlagName,
				Usage: "only public images",
			}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			opts := cloudapi.ListImagesOptions{
				Name:  c.String(nameFlagName),
				OS:    c.String(osFlagName),
				Type:  c.String(typeFlagName),
				State: c.String(stateFlagName),
			}
			if c.Bool(publicFlagName) {
				t := true
				opts.Public = &t
			}

			imgs, err := client.ListImages(context.Background(), opts)
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(imgs)
			}
			return renderList(c, imageListColumns, imageListLongColumns, imageRows(imgs, c.Bool(longFlagName)))
		},
	}
}

func imageGet() cli.Command {
	const allStatesFlagName = "all-states"

	return cli.Command{
		Name:      "get",
		Usage:     "show one image by id, short id, or name (latest published wins a name tie)",
		ArgsUsage: "IMAGE",
		Flags: jsonFlag(cli.BoolFlag{
			Name:  allStatesFlagName,
			Usage: "resolve names against inactive images too",
		}),
		Before: requireNArgs(1, []string{"IMAGE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			img, err := client.GetImage(context.Background(), c.Args().First(), c.Bool(allStatesFlagName))
			if err != nil {
				return err
			}
			return printJSON(img)
		},
	}
}

func imageCreate() cli.Command {
	const (
		nameFlagName        = "name"
		versionFlagName     = "image-version"
		descriptionFlagName = "description"
		homepageFlagName    = "homepage"
		aclFlagName         = "acl"
		tagFlagName         = "tag"
	)

	return cli.Command{
		Name:      "create",
		Usage:     "create a custom image from a stopped instance",
		ArgsUsage: "INST",
		Flags: waitFlags(jsonFlag(
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "image name (required)",
			},
			cli.StringFlag{
				Name:  versionFlagName,
				Usage: "image version (required)",
			},
			cli.StringFlag{
				Name:  descriptionFlagName + ", d",
				Usage: "image description",
			},
			cli.StringFlag{
				Name:  homepageFlagName,
				Usage: "image homepage URL",
			},
			cli.StringSliceFlag{
				Name:  aclFlagName,
				Usage: "account UUID granted access; may be repeated",
			},
			cli.StringSliceFlag{
				Name:  tagFlagName + ", t",
				Usage: "tag as key=value; may be repeated",
			})...),
		Before: requireNArgs(1, []string{"INST"}),
		Action: func(c *cli.Context) error {
			if c.String(nameFlagName) == "" || c.String(versionFlagName) == "" {
				return errs.New(errs.KindUsage, "image create requires --name and --image-version")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			tags, _, err := cloudapi.ParseKeyValues(c.StringSlice(tagFlagName))
			if err != nil {
				return err
			}
			img, err := client.CreateImage(context.Background(), cloudapi.CreateImageOptions{
				Instance:    c.Args().First(),
				Name:        c.String(nameFlagName),
				Version:     c.String(versionFlagName),
				Description: c.String(descriptionFlagName),
				HomePage:    c.String(homepageFlagName),
				ACL:         c.StringSlice(aclFlagName),
				Tags:        tags,
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(img)
			}
			fmt.Printf("Created image %s@%s (%s, state %s)\n", img.Name, img.Version, shortID(img.ID), img.State)
			return nil
		},
	}
}

func imageUpdate() cli.Command {
	return cli.Command{
		Name:      "update",
		Usage:     "update image fields given as key=value arguments",
		ArgsUsage: "IMAGE [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(2, "IMAGE FIELD=VALUE [FIELD=VALUE...]"),
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
			img, err := client.UpdateImage(context.Background(), c.Args().First(), fields)
			if err != nil {
				return err
			}
			return printJSON(img)
		},
	}
}

func imageDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete one or more images",
		ArgsUsage: "IMAGE [IMAGE...]",
		Flags:     forceFlag(),
		Before:    requireAtLeastNArgs(1, "IMAGE [IMAGE...]"),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			var multi errs.Multi
			for _, arg := range c.Args() {
				if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete image %q?", arg)) {
					fmt.Println("Skipping", arg)
					continue
				}
				if err := client.DeleteImage(ctx, arg); err != nil {
					multi.Add(err)
					continue
				}
				fmt.Printf("Deleted image %s\n", arg)
			}
			return multi.Resolve()
		},
	}
}

func imageExport() cli.Command {
	return cli.Command{
		Name:      "export",
		Usage:     "export an image to a Manta path",
		ArgsUsage: "IMAGE MANTA-PATH",
		Before:    requireNArgs(2, []string{"IMAGE", "MANTA-PATH"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			out, err := client.ExportImage(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func imageClone() cli.Command {
	return cli.Command{
		Name:      "clone",
		Usage:     "clone a shared image into this account",
		ArgsUsage: "IMAGE",
		Before:    requireNArgs(1, []string{"IMAGE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			img, err := client.CloneImage(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			fmt.Printf("Cloned image to %s (%s)\n", img.Name, shortID(img.ID))
			return nil
		},
	}
}

func imageCopy() cli.Command {
	return cli.Command{
		Name:      "copy",
		Usage:     "copy one of this account's images from another datacenter",
		ArgsUsage: "IMAGE-UUID FROM-DC",
		Before:    requireNArgs(2, []string{"IMAGE-UUID", "FROM-DC"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			img, err := client.CopyImage(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Printf("Copying image %s from %s (state %s)\n", shortID(img.ID), c.Args().Get(1), img.State)
			return nil
		},
	}
}

func imageShare() cli.Command {
	return cli.Command{
		Name:      "share",
		Usage:     "add an account to an image's ACL",
		ArgsUsage: "IMAGE ACCOUNT-UUID",
		Before:    requireNArgs(2, []string{"IMAGE", "ACCOUNT-UUID"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			img, err := client.ShareImage(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Printf("Shared image %s with %s (acl size %d)\n", c.Args().Get(0), c.Args().Get(1), len(img.ACL))
			return nil
		},
	}
}

func imageUnshare() cli.Command {
	return cli.Command{
		Name:      "unshare",
		Usage:     "remove an account from an image's ACL",
		ArgsUsage: "IMAGE ACCOUNT-UUID",
		Before:    requireNArgs(2, []string{"IMAGE", "ACCOUNT-UUID"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			if _, err := client.UnshareImage(context.Background(), c.Args().Get(0), c.Args().Get(1)); err != nil {
				return err
			}
			fmt.Printf("Unshared image %s with %s\n", c.Args().Get(0), c.Args().Get(1))
			return nil
		},
	}
}

func imageWait() cli.Command {
	const statesFlagName = "states"

	return cli.Command{
		Name:      "wait",
		Usage:     "block until an image reaches a target state",
		ArgsUsage: "IMAGE",
		Flags: waitFlags(cli.StringFlag{
			Name:  statesFlagName,
			Usage: "comma-separated target states",
			Value: "active,failed",
		}),
		Before: requireNArgs(1, []string{"IMAGE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			id, err := client.ResolveID(ctx, cloudapi.KindImage, c.Args().First(),
				cloudapi.ResolveOptions{IncludeInactive: true})
			if err != nil {
				return err
			}
			raw, err := client.WaitForState(ctx, cloudapi.KindImage, id, cloudapi.WaitOptions{
				States:  splitFields(c.String(statesFlagName)),
				Timeout: waitTimeout(c),
			})
			if err != nil {
				return err
			}
			var state struct {
				State string `json:"state"`
			}
			if err := json.Unmarshal(raw, &state); err != nil {
				return errs.Wrap(errs.KindTransport, err, "parsing image")
			}
			fmt.Printf("Image %s reached state %q\n", c.Args().First(), state.State)
			return nil
		},
	}
}
