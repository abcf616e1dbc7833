package operations

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/errs"
	"github.com/urfave/cli"
)

func RBAC() cli.Command {
	return cli.Command{
		Name:  "rbac",
		Usage: "manage sub-users, roles, and policies",
		Subcommands: []cli.Command{
			rbacUsers(),
			rbacUser(),
			rbacUserCreate(),
			rbacUserUpdate(),
			rbacUserDelete(),
			rbacUserPasswd(),
			rbacUserKeys(),
			rbacUserKey(),
			rbacUserKeyAdd(),
			rbacUserKeyDelete(),
			rbacRoles(),
			rbacRole(),
			rbacRoleCreate(),
			rbacRoleUpdate(),
			rbacRoleDelete(),
			rbacPolicies(),
			rbacPolicy(),
			rbacPolicyCreate(),
			rbacPolicyUpdate(),
			rbacPolicyDelete(),
		},
	}
}

func rbacUsers() cli.Command {
	return cli.Command{
		Name:  "users",
		Usage: "list sub-users",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			users, err := client.ListUsers(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(users)
			}
			rows := make([]row, 0, len(users))
			for _, u := range users {
				rows = append(rows, row{
					"id":    shortID(u.ID),
					"login": u.Login,
					"email": u.Email,
					"age":   shortAge(u.Created),
				})
			}
			return renderList(c, []string{"id", "login", "email", "age"}, nil, rows)
		},
	}
}

func rbacUser() cli.Command {
	return cli.Command{
		Name:      "user",
		Usage:     "show one sub-user by id, short id, or login",
		ArgsUsage: "USER",
		Before:    requireNArgs(1, []string{"USER"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			user, err := client.GetUser(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(user)
		},
	}
}

// userFieldsFromArgs maps FIELD=VALUE positionals onto UserFields.
func userFieldsFromArgs(args []string) (cloudapi.UserFields, error) {
	fields := cloudapi.UserFields{}
	for _, arg := range args {
		key, val, err := splitFieldArg(arg)
		if err != nil {
			return fields, err
		}
		v := val
		switch key {
		case "login":
			fields.Login = &v
		case "email":
			fields.Email = &v
		case "password":
			fields.Password = &v
		case "companyName":
			fields.CompanyName = &v
		case "firstName":
			fields.FirstName = &v
		case "lastName":
			fields.LastName = &v
		case "phone":
			fields.Phone = &v
		default:
			return fields, usageErrorf("unknown user field %q", key)
		}
	}
	return fields, nil
}

func rbacUserCreate() cli.Command {
	return cli.Command{
		Name:      "user-create",
		Usage:     "create a sub-user from FIELD=VALUE arguments (login, email, password required)",
		ArgsUsage: "FIELD=VALUE [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(1, "FIELD=VALUE [FIELD=VALUE...]"),
		Action: func(c *cli.Context) error {
			fields, err := userFieldsFromArgs(c.Args())
			if err != nil {
				return err
			}
			if fields.Login == nil || fields.Email == nil || fields.Password == nil {
				return errs.New(errs.KindUsage, "user-create requires login=, email=, and password=")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			user, err := client.CreateUser(context.Background(), fields)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %q (%s)\n", user.Login, shortID(user.ID))
			return nil
		},
	}
}

func rbacUserUpdate() cli.Command {
	return cli.Command{
		Name:      "user-update",
		Usage:     "update a sub-user from FIELD=VALUE arguments",
		ArgsUsage: "USER FIELD=VALUE [FIELD=VALUE...]",
		Before:    requireAtLeastNArgs(2, "USER FIELD=VALUE [FIELD=VALUE...]"),
		Action: func(c *cli.Context) error {
			fields, err := userFieldsFromArgs(c.Args().Tail())
			if err != nil {
				return err
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			user, err := client.UpdateUser(context.Background(), c.Args().First(), fields)
			if err != nil {
				return err
			}
			return printJSON(user)
		},
	}
}

func rbacUserDelete() cli.Command {
	return cli.Command{
		Name:      "user-delete",
		Usage:     "delete a sub-user",
		ArgsUsage: "USER",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"USER"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete user %q?", arg)) {
				return nil
			}
			if err := client.DeleteUser(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Deleted user %s\n", arg)
			return nil
		},
	}
}

func rbacUserPasswd() cli.Command {
	return cli.Command{
		Name:      "user-passwd",
		Usage:     "change a sub-user's password",
		ArgsUsage: "USER",
		Before:    requireNArgs(1, []string{"USER"}),
		Action: func(c *cli.Context) error {
			password, err := promptLine("New password: ")
			if err != nil {
				return err
			}
			again, err := promptLine("Again: ")
			if err != nil {
				return err
			}
			if password != again {
				return errs.New(errs.KindUsage, "passwords do not match")
			}
			if password == "" {
				return errs.New(errs.KindUsage, "password must not be empty")
			}

			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.ChangeUserPassword(context.Background(), c.Args().First(), password); err != nil {
				return err
			}
			fmt.Printf("Changed password of user %s\n", c.Args().First())
			return nil
		},
	}
}

func rbacUserKeys() cli.Command {
	return cli.Command{
		Name:      "user-keys",
		Usage:     "list a sub-user's SSH keys",
		ArgsUsage: "USER",
		Flags:     listOutputFlags(),
		Before:    requireNArgs(1, []string{"USER"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.ListUserKeys(context.Background(), c.Args().First())
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

func rbacUserKey() cli.Command {
	return cli.Command{
		Name:      "user-key",
		Usage:     "print one of a sub-user's SSH public keys",
		ArgsUsage: "USER KEY",
		Flags:     jsonFlag(),
		Before:    requireNArgs(2, []string{"USER", "KEY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.GetUserKey(context.Background(), c.Args().First(), c.Args().Get(1))
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

func rbacUserKeyAdd() cli.Command {
	const nameFlagName = "name"

	return cli.Command{
		Name:      "user-key-add",
		Usage:     "upload an SSH public key for a sub-user",
		ArgsUsage: "USER FILE",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  nameFlagName + ", n",
				Usage: "key name",
			},
		},
		Before: requireNArgs(2, []string{"USER", "FILE"}),
		Action: func(c *cli.Context) error {
			data, err := os.ReadFile(c.Args().Get(1))
			if err != nil {
				return errs.Wrap(errs.KindUsage, err, "reading public key file")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			key, err := client.AddUserKey(context.Background(), c.Args().First(),
				c.String(nameFlagName), strings.TrimSpace(string(data)))
			if err != nil {
				return err
			}
			fmt.Printf("Added key %q (%s) to user %s\n", key.Name, key.Fingerprint, c.Args().First())
			return nil
		},
	}
}

func rbacUserKeyDelete() cli.Command {
	return cli.Command{
		Name:      "user-key-delete",
		Usage:     "delete a sub-user's SSH key",
		ArgsUsage: "USER KEY",
		Flags:     forceFlag(),
		Before:    requireNArgs(2, []string{"USER", "KEY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete key %q of user %q?", c.Args().Get(1), c.Args().First())) {
				return nil
			}
			if err := client.DeleteUserKey(context.Background(), c.Args().First(), c.Args().Get(1)); err != nil {
				return err
			}
			fmt.Printf("Deleted key %s of user %s\n", c.Args().Get(1), c.Args().First())
			return nil
		},
	}
}

func rbacRoles() cli.Command {
	return cli.Command{
		Name:  "roles",
		Usage: "list roles",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			roles, err := client.ListRoles(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(roles)
			}
			rows := make([]row, 0, len(roles))
			for _, r := range roles {
				rows = append(rows, row{
					"id":       shortID(r.ID),
					"name":     r.Name,
					"policies": strings.Join(r.Policies, ","),
					"members":  strings.Join(r.Members, ","),
				})
			}
			return renderList(c, []string{"id", "name", "policies", "members"}, nil, rows)
		},
	}
}

func rbacRole() cli.Command {
	return cli.Command{
		Name:      "role",
		Usage:     "show one role by id, short id, or name",
		ArgsUsage: "ROLE",
		Before:    requireNArgs(1, []string{"ROLE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			role, err := client.GetRole(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(role)
		},
	}
}

// roleFieldsFromFlags builds RoleFields from the shared role flags.
func roleFieldsFromFlags(c *cli.Context, name string) cloudapi.RoleFields {
	fields := cloudapi.RoleFields{}
	if name != "" {
		fields.Name = &name
	}
	if c.IsSet("policy") {
		policies := c.StringSlice("policy")
		fields.Policies = &policies
	}
	if c.IsSet("member") {
		members := c.StringSlice("member")
		fields.Members = &members
	}
	if c.IsSet("default-member") {
		defaults := c.StringSlice("default-member")
		fields.DefaultMembers = &defaults
	}
	return fields
}

func roleFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringSliceFlag{
			Name:  "policy",
			Usage: "policy granted by the role; may be repeated",
		},
		cli.StringSliceFlag{
			Name:  "member",
			Usage: "sub-user login holding the role; may be repeated",
		},
		cli.StringSliceFlag{
			Name:  "default-member",
			Usage: "sub-user login holding the role by default; may be repeated",
		},
	}
}

func rbacRoleCreate() cli.Command {
	return cli.Command{
		Name:      "role-create",
		Usage:     "create a role",
		ArgsUsage: "NAME",
		Flags:     roleFlags(),
		Before:    requireNArgs(1, []string{"NAME"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			role, err := client.CreateRole(context.Background(), roleFieldsFromFlags(c, c.Args().First()))
			if err != nil {
				return err
			}
			fmt.Printf("Created role %q (%s)\n", role.Name, shortID(role.ID))
			return nil
		},
	}
}

func rbacRoleUpdate() cli.Command {
	return cli.Command{
		Name:      "role-update",
		Usage:     "update a role's policies or members",
		ArgsUsage: "ROLE",
		Flags:     roleFlags(),
		Before:    requireNArgs(1, []string{"ROLE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			role, err := client.UpdateRole(context.Background(), c.Args().First(), roleFieldsFromFlags(c, ""))
			if err != nil {
				return err
			}
			return printJSON(role)
		},
	}
}

func rbacRoleDelete() cli.Command {
	return cli.Command{
		Name:      "role-delete",
		Usage:     "delete a role",
		ArgsUsage: "ROLE",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"ROLE"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete role %q?", arg)) {
				return nil
			}
			if err := client.DeleteRole(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Deleted role %s\n", arg)
			return nil
		},
	}
}

func rbacPolicies() cli.Command {
	return cli.Command{
		Name:  "policies",
		Usage: "list policies",
		Flags: listOutputFlags(),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			policies, err := client.ListPolicies(context.Background())
			if err != nil {
				return err
			}
			if c.Bool(jsonFlagName) {
				return printJSON(policies)
			}
			rows := make([]row, 0, len(policies))
			for _, p := range policies {
				rows = append(rows, row{
					"id":    shortID(p.ID),
					"name":  p.Name,
					"rules": strings.Join(p.Rules, "; "),
				})
			}
			return renderList(c, []string{"id", "name", "rules"}, nil, rows)
		},
	}
}

func rbacPolicy() cli.Command {
	return cli.Command{
		Name:      "policy",
		Usage:     "show one policy by id, short id, or name",
		ArgsUsage: "POLICY",
		Before:    requireNArgs(1, []string{"POLICY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			policy, err := client.GetPolicy(context.Background(), c.Args().First())
			if err != nil {
				return err
			}
			return printJSON(policy)
		},
	}
}

func rbacPolicyCreate() cli.Command {
	const (
		ruleFlagName = "rule"
		descFlagName = "description"
	)

	return cli.Command{
		Name:      "policy-create",
		Usage:     "create a policy from aperture rule sentences",
		ArgsUsage: "NAME",
		Flags: []cli.Flag{
			cli.StringSliceFlag{
				Name:  ruleFlagName + ", r",
				Usage: "aperture rule sentence; may be repeated",
			},
			cli.StringFlag{
				Name:  descFlagName + ", d",
				Usage: "policy description",
			},
		},
		Before: requireNArgs(1, []string{"NAME"}),
		Action: func(c *cli.Context) error {
			if len(c.StringSlice(ruleFlagName)) == 0 {
				return errs.New(errs.KindUsage, "policy-create requires at least one --rule")
			}
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			name := c.Args().First()
			rules := c.StringSlice(ruleFlagName)
			desc := c.String(descFlagName)
			fields := cloudapi.PolicyFields{Name: &name, Rules: &rules}
			if desc != "" {
				fields.Description = &desc
			}
			policy, err := client.CreatePolicy(context.Background(), fields)
			if err != nil {
				return err
			}
			fmt.Printf("Created policy %q (%s)\n", policy.Name, shortID(policy.ID))
			return nil
		},
	}
}

func rbacPolicyUpdate() cli.Command {
	const (
		ruleFlagName = "rule"
		descFlagName = "description"
	)

	return cli.Command{
		Name:      "policy-update",
		Usage:     "replace a policy's rules or description",
		ArgsUsage: "POLICY",
		Flags: []cli.Flag{
			cli.StringSliceFlag{
				Name:  ruleFlagName + ", r",
				Usage: "aperture rule sentence; may be repeated",
			},
			cli.StringFlag{
				Name:  descFlagName + ", d",
				Usage: "policy description",
			},
		},
		Before: requireNArgs(1, []string{"POLICY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			fields := cloudapi.PolicyFields{}
			if c.IsSet(ruleFlagName) {
				rules := c.StringSlice(ruleFlagName)
				fields.Rules = &rules
			}
			if c.IsSet(descFlagName) {
				desc := c.String(descFlagName)
				fields.Description = &desc
			}
			policy, err := client.UpdatePolicy(context.Background(), c.Args().First(), fields)
			if err != nil {
				return err
			}
			return printJSON(policy)
		},
	}
}

func rbacPolicyDelete() cli.Command {
	return cli.Command{
		Name:      "policy-delete",
		Usage:     "delete a policy",
		ArgsUsage: "POLICY",
		Flags:     forceFlag(),
		Before:    requireNArgs(1, []string{"POLICY"}),
		Action: func(c *cli.Context) error {
			_, client, err := setupClient(c)
			if err != nil {
				return err
			}
			defer client.Close()

			arg := c.Args().First()
			if !c.Bool(forceFlagName) && !confirm(fmt.Sprintf("Delete policy %q?", arg)) {
				return nil
			}
			if err := client.DeletePolicy(context.Background(), arg); err != nil {
				return err
			}
			fmt.Printf("Deleted policy %s\n", arg)
			return nil
		},
	}
}
