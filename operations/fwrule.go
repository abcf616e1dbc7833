package operations

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/urfave/cli"
)

func Fwrule() cli.Command {
	return cli.Command{
		Name:  "fwrule",
		Usage: "manage cloud firewall rules",
		Subcommands: []cli.Command{
			fwruleList(),
			fwruleGet(),
			fwruleCreate(),
			fwruleUpdate(),
			fwruleEnable(true),
			fwruleEnable(false),
			fwruleDelete(),
			fwruleInstances(),
		},
	}
}

var fwruleListColumns = []string{"id", "enabled", "global", "rule"}

func fwruleRows(rules []*cloudapi.FirewallRule, long bool) []row {
	rows := make([]row, 0, len(rules))
	for _, r := range rules {
		id := r.ID
		if !long {
			id = shortID(id)
		}
		rows = append(rows, row{
			"id":          id,
			"enabled":     strconv.FormatBool(r.Enabled),
			"global":      strconv.FormatBool(r.Global),
			"log":         strconv.FormatBool(r.Log),
			"rule":        r.Rule,
			"description": r.Description,
		})
	}
	return rows
}

func fwruleList() cli.Command {
	return cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "list firewall rules",
		Flags:   listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			rules, err := client.ListFirewallRules(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(rules)
			}
			return renderList(c, fwruleListColumns,
				[]string{"id", "enabled", "global", "log", "rule", "description"},
				fwruleRows(rules, c.Bool(longFlagName)))
		},
	}
}

func fwruleGet() cli.Command {
	return cli.Command{
		Name:      "get",
		Usage:     "show one firewall rule by id or short id",
		ArgsUsage: "FWRULE",
		Before:    requireNArgs(1, []string{"FWRULE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			rule, err := client.GetFirewallRule(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(rule)
		},
	}
}

func fwruleCreate() cli.Command {
	const (
		disabledFlagName = "disabled"
		logFlagName      = "log"
		descFlagName     = "description"
	)

	return cli.Command{
		Name:      "create",
		Usage:     "create a firewall rule from rule text",
		ArgsUsage: "RULE",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  disabledFlagName,
				Usage: "create the rule disabled",
			},
			cli.BoolFlag{
				Name:  logFlagName,
				Usage: "log matching traffic",
			},
			cli.StringFlag{
				Name:  descFlagName + ", d",
				Usage: "rule description",
			},
		},
		Before: requireNArgs(1, []string{"RULE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			rule, err := client.CreateFirewallRule(context.Background(), cloudapi.CreateFirewallRuleOptions{
				Rule:        c.Args().First(),
				Enabled:     !c.Bool(disabledFlagName),
				Log:         c.Bool(logFlagName),
				Description: c.String(descFlagName),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created firewall rule %s (enabled %t)\n", shortID(rule.ID), rule.Enabled)
			return nil
		},
	}
}

func fwruleUpdate() cli.Command {
	return cli.Command{
		Name:      "update",
		Usage:     "update rule fields given as key=value arguments",
		ArgsUsage: "FWRULE [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(2, "FWRULE FIELD=VALUE [FIELD=VALUE...]"),
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
			rule, err := client.UpdateFirewallRule(context.Background(), c.Args().First(), fields)
			if err != nil {
				return err
			}
			return printJSON(rule)
		},
	}
}

func fwruleEnable(enable bool) cli.Command {
	name, usage := "enable", "enable a firewall rule"
	if !enable {
		name, usage = "disable", "disable a firewall rule"
	}

	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "FWRULE",
		Flags:     waitFlags(),
		Before:    requireNArgs(1, []string{"FWRULE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()
			ctx := context.Background()

			opts := cloudapi.FirewallRuleActionOptions{
				Wait:        c.Bool(waitFlagName),
				WaitTimeout: waitTimeout(c),
			}
			var rule *cloudapi.FirewallRule
			if enable {
				rule, err = client.EnableFirewallRule(ctx, c.Args().First(), opts)
			} else {
				rule, err = client.DisableFirewallRule(ctx, c.Args().First(), opts)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Firewall rule %s enabled=%t\n", shortID(rule.ID), rule.Enabled)
			return nil
		},
	}
}

func fwruleDelete() cli.Command {
	return cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "delete a firewall rule",
		ArgsUsage: "FWRULE",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"FWRULE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete firewall rule %q?", arg)) {
				return nil
			}
			if err := client.DeleteFirewallRule(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Deleted firewall rule %s\n", arg)
			return nil
		},
	}
}

func fwruleInstances() cli.Command {
	return cli.Command{
		Name:      "instances",
		Usage:     "list the instances a rule applies to",
		ArgsUsage: "FWRULE",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"FWRULE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			insts, err := client.ListFirewallRuleInstances(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(insts)
			}
			return renderList(c, instanceListColumns, instanceListLongColumns,
				instanceRows(insts, c.Bool(longFlagName)))
		},
	}
}
