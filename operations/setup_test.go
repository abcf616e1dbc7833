package operations

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/tritoncli/triton/config"
)

func globalContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("triton", flag.ContinueOnError)
	set.String(profileFlagName, "", "")
	set.String(accountFlagName, "", "")
	set.String(urlFlagName, "", "")
	set.String(dcNameFlagName, "", "")
	set.String(keyIDFlagName, "", "")
	set.String(actAsFlagName, "", "")
	set.Bool(insecureFlagName, false, "")
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func overriddenProfile(t *testing.T, args ...string) *config.Profile {
	t.Helper()
	p := &config.Profile{
		Name:    "east1",
		URL:     "https://cloudapi.east-1.example.com",
		Account: "admin",
		KeyID:   "2f:13:1a:92:ca:57:59:9e:31:47:21:2e:fc:d3:5a:a5",
	}
	applyGlobalOverrides(globalContext(t, args...), p)
	return p
}

func TestApplyGlobalOverrides(t *testing.T) {
	t.Run("no flags leave the profile alone", func(t *testing.T) {
		p := overriddenProfile(t)
		assert.Equal(t, "https://cloudapi.east-1.example.com", p.URL)
		assert.Equal(t, "admin", p.Account)
		assert.False(t, p.Insecure)
	})

	t.Run("dc name expands to an endpoint URL", func(t *testing.T) {
		p := overriddenProfile(t, "-J", "us-sw-1")
		assert.Equal(t, "https://us-sw-1.api.joyent.com", p.URL)
	})

	t.Run("explicit url wins over dc name", func(t *testing.T) {
		p := overriddenProfile(t, "-J", "us-sw-1", "-url", "https://cloudapi.local.example.com")
		assert.Equal(t, "https://cloudapi.local.example.com", p.URL)
	})

	t.Run("field overrides", func(t *testing.T) {
		p := overriddenProfile(t,
			"-account", "other",
			"-keyId", "SHA256:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"-act-as", "customer",
			"-insecure")
		assert.Equal(t, "other", p.Account)
		assert.Equal(t, "SHA256:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", p.KeyID)
		assert.Equal(t, "customer", p.ActAsAccount)
		assert.True(t, p.Insecure)
	})
}
