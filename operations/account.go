package operations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/urfave/cli"
)

func Account() cli.Command {
	return cli.Command{
		Name:  "account",
		Usage: "view and update the account",
		Subcommands: []cli.Command{
			accountGet(),
			accountUpdate(),
			accountLimits(),
		},
	}
}

func accountGet() cli.Command {
	return cli.Command{
		Name:  "get",
		Usage: "show the account record",
		Flags: jsonFlag(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			acct, err := client.GetAccount(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(acct)
			}
			fmt.Printf("login: %s\n", acct.Login)
			fmt.Printf("email: %s\n", acct.Email)
			fmt.Printf("id: %s\n", acct.ID)
			if acct.CompanyName != "" {
				fmt.Printf("companyName: %s\n", acct.CompanyName)
			}
			if acct.TritonCNSEnabled {
				fmt.Println("triton_cns_enabled: true")
			}
			return nil
		},
	}
}

func accountUpdate() cli.Command {
	return cli.Command{
		Name:      "update",
		Usage:     "update account fields given as key=value arguments",
		ArgsUsage: "FIELD=VALUE [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(1, "FIELD=VALUE [FIELD=VALUE...]"),
		Action: func(c *cli.Context) error {
			fields := cloudapi.AccountFields{}
			for _, arg := range c.Args() {
				key, val, err := splitFieldArg(arg)
				if err != nil {
					return err
				}
				switch key {
				case "email":
					fields.Email = &val
				case "companyName":
					fields.CompanyName = &val
				case "firstName":
					fields.FirstName = &val
				case "lastName":
					fields.LastName = &val
				case "phone":
					fields.Phone = &val
				case "triton_cns_enabled":
					enabled, err := strconv.ParseBool(val)
					if err != nil {
						return usageErrorf("triton_cns_enabled must be true or false, got %q", val)
					}
					fields.TritonCNSEnabled = &enabled
				default:
					return usageErrorf("unknown account field %q", key)
				}
			}

			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			acct, err := client.UpdateAccount(context.Background(), fields)
			if err != nil {
				return err
			}
			return printJSON(acct)
		},
	}
}

func accountLimits() cli.Command {
	return cli.Command{
		Name:  "limits",
		Usage: "show the account's provisioning limits",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			limits, err := client.GetAccountLimits(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(limits)
			}
			rows := make([]row, 0, len(limits))
			for _, l := range limits {
				rows = append(rows, row{
					"by":    l.By,
					"value": strconv.FormatInt(l.Value, 10),
					"used":  strconv.FormatInt(l.Used, 10),
					"check": l.Check,
				})
			}
			return renderList(c, []string{"by", "value", "used", "check"}, nil, rows)
		},
	}
}
