package operations

import (
	"time"

	"github.com/urfave/cli"
)

// Global flag names, read through c.GlobalString and friends.
const (
	profileFlagName  = "profile"
	accountFlagName  = "account"
	urlFlagName      = "url"
	keyIDFlagName    = "keyId"
	insecureFlagName = "insecure"
	actAsFlagName    = "act-as"
	dcNameFlagName   = "J"
	verboseFlagName  = "verbose"
	levelFlagName    = "level"
)

// Per-command flag names shared across resource commands.
const (
	jsonFlagName        = "json"
	noHeaderFlagName    = "no-header"
	outputFieldsName    = "o"
	sortFieldsName      = "s"
	longFlagName        = "long"
	waitFlagName        = "wait"
	waitTimeoutFlagName = "wait-timeout"
	forceFlagName       = "force"
	strictFlagName      = "strict"
)

const defaultWaitTimeoutSecs = 120

func jsonFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.BoolFlag{
		Name:  jsonFlagName + ", j",
		Usage: "output JSON instead of a table",
	})
}

func listOutputFlags(flags ...cli.Flag) []cli.Flag {
	return append(jsonFlag(flags...),
		cli.BoolFlag{
			Name:  noHeaderFlagName + ", H",
			Usage: "omit the table header row",
		},
		cli.StringFlag{
			Name:  outputFieldsName,
			Usage: "comma-separated columns to display",
		},
		cli.StringFlag{
			Name:  sortFieldsName,
			Usage: "comma-separated columns to sort by",
		},
		cli.BoolFlag{
			Name:  longFlagName + ", l",
			Usage: "display full ids and more columns",
		})
}

func waitFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.BoolFlag{
			Name:  waitFlagName + ", w",
			Usage: "block until the operation completes",
		},
		cli.IntFlag{
			Name:  waitTimeoutFlagName,
			Usage: "seconds to wait before timing out",
			Value: defaultWaitTimeoutSecs,
		})
}

func forceFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.BoolFlag{
		Name:  forceFlagName + ", f",
		Usage: "skip confirmation",
	})
}

func waitTimeout(c *cli.Context) time.Duration {
	return time.Duration(c.Int(waitTimeoutFlagName)) * time.Second
}
