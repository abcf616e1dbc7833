package operations

import (
	"fmt"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/cloudapi"
	"github.com/tritoncli/triton/config"
	"github.com/urfave/cli"
)

// loadConfig resolves the active profile from the config dir, the
// environment, and global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	dir, err := triton.FindConfigDir()
	if err != nil {
		return nil, err
	}

	env := config.EnvFromOS()
	conf, err := config.Load(dir, env, config.LoadOptions{
		ProfileName: c.GlobalString(profileFlagName),
	})
	if err != nil {
		return nil, err
	}

	applyGlobalOverrides(c, conf.Profile)
	if err := conf.Profile.Validate(); err != nil {
		return nil, err
	}

	grip.Debug(message.Fields{
		"message": "resolved profile",
		"profile": conf.Profile.Name,
		"url":     conf.Profile.URL,
		"account": conf.Profile.Account,
	})
	return conf, nil
}

// applyGlobalOverrides layers the global connection flags over the profile:
// -J selects a Joyent datacenter endpoint by name, and -a, -u, -k, --act-as,
// and -i override individual fields. An explicit -u wins over -J.
func applyGlobalOverrides(c *cli.Context, p *config.Profile) {
	if v := c.GlobalString(accountFlagName); v != "" {
		p.Account = v
	}
	if v := c.GlobalString(dcNameFlagName); v != "" {
		p.URL = fmt.Sprintf("https://%s.api.joyent.com", v)
	}
	if v := c.GlobalString(urlFlagName); v != "" {
		p.URL = v
	}
	if v := c.GlobalString(keyIDFlagName); v != "" {
		p.KeyID = v
	}
	if v := c.GlobalString(actAsFlagName); v != "" {
		p.ActAsAccount = v
	}
	if c.GlobalBool(insecureFlagName) {
		p.Insecure = true
	}
}

// setupClient loads the profile and opens a CloudAPI client against it.
// Callers must Close the client.
func setupClient(c *cli.Context) (*config.Config, *cloudapi.Client, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := cloudapi.NewFromConfig(conf)
	if err != nil {
		return nil, nil, err
	}
	return conf, client, nil
}

// setupStore opens the profile store without requiring a usable profile, for
// the profile management commands.
func setupStore(c *cli.Context) (*config.Store, error) {
	dir, err := triton.FindConfigDir()
	if err != nil {
		return nil, err
	}
	return config.NewStore(dir), nil
}
