package main

import (
	"fmt"
	"os"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/send"
	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/errs"
	"github.com/tritoncli/triton/operations"
	"github.com/urfave/cli"
)

// verboseErrors mirrors the parsed --verbose flag for the error path. The
// app Before hook sets it once flag parsing has happened.
var verboseErrors bool

func main() {
	app := buildApp()

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, operations.FormatError(err, verboseErrors))
		os.Exit(errs.ExitCode(err))
	}
}

func buildApp() *cli.App {
	app := cli.NewApp()
	app.Name = "triton"
	app.Usage = "Manage instances and other resources in a Triton cloud"
	app.Version = triton.ClientVersion

	app.Commands = []cli.Command{
		// Profile and environment.
		operations.Profile(),
		operations.Env(),

		// Core resources.
		operations.Instance(),
		operations.Image(),
		operations.Package(),
		operations.Network(),
		operations.VLAN(),
		operations.VPC(),
		operations.Fwrule(),
		operations.Volume(),

		// Account, keys, and access control.
		operations.Account(),
		operations.Key(),
		operations.AccessKey(),
		operations.RBAC(),

		// Cloud topology and health.
		operations.Datacenters(),
		operations.Services(),
		operations.Ping(),
	}

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "profile, p",
			Usage:  "profile name to use instead of the current one",
			EnvVar: triton.EnvProfile,
		},
		cli.StringFlag{
			Name:  "account, a",
			Usage: "account login name, overriding the profile",
		},
		cli.StringFlag{
			Name:  "url, u",
			Usage: "CloudAPI endpoint URL, overriding the profile",
		},
		cli.StringFlag{
			Name:  "J",
			Usage: "Joyent datacenter name, shorthand for --url https://NAME.api.joyent.com",
		},
		cli.StringFlag{
			Name:  "keyId, k",
			Usage: "SSH key fingerprint, overriding the profile",
		},
		cli.StringFlag{
			Name:  "act-as",
			Usage: "masquerade as another account (requires operator access)",
		},
		cli.BoolFlag{
			Name:  "insecure, i",
			Usage: "skip TLS certificate verification",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "include the error cause chain in failure output",
		},
		cli.StringFlag{
			Name:  "level",
			Value: "info",
			Usage: "Specify lowest visible log level as string: 'emergency|alert|critical|error|warning|notice|info|debug|trace'",
		},
	}

	app.Before = func(c *cli.Context) error {
		verboseErrors = c.Bool("verbose")
		if err := loggingSetup(app.Name, c.String("level")); err != nil {
			return err
		}
		return operations.RecordCommand(c)
	}

	return app
}

func loggingSetup(name, l string) error {
	if err := grip.SetSender(send.MakeErrorLogger()); err != nil {
		return err
	}
	grip.SetName(name)

	sender := grip.GetSender()
	info := sender.Level()
	info.Threshold = level.FromString(l)

	return sender.SetLevel(info)
}
