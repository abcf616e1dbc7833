package main

import (
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func appContext(t *testing.T, app *cli.App, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet(app.Name, flag.ContinueOnError)
	for _, f := range app.Flags {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	// Mirror urfave/cli's normalizeFlags: app.Run copies a parsed value to a
	// flag's other aliases before Before runs, which set.Parse alone does not.
	parsed := map[string]bool{}
	set.Visit(func(f *flag.Flag) { parsed[f.Name] = true })
	for _, f := range app.Flags {
		names := strings.Split(f.GetName(), ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		for _, name := range names {
			if !parsed[name] {
				continue
			}
			value := set.Lookup(name).Value.String()
			for _, other := range names {
				if other != name && !parsed[other] {
					require.NoError(t, set.Set(other, value))
				}
			}
		}
	}
	return cli.NewContext(app, set, nil)
}

func TestVerboseComesFromParsedFlags(t *testing.T) {
	app := buildApp()

	for _, args := range [][]string{{"--verbose"}, {"-v"}} {
		verboseErrors = false
		require.NoError(t, app.Before(appContext(t, app, args...)))
		assert.True(t, verboseErrors, "args %v", args)
	}

	verboseErrors = true
	require.NoError(t, app.Before(appContext(t, app, "--verbose=false")))
	assert.False(t, verboseErrors)

	verboseErrors = true
	require.NoError(t, app.Before(appContext(t, app)))
	assert.False(t, verboseErrors)
}

func TestGlobalFlagSurface(t *testing.T) {
	app := buildApp()

	names := map[string]bool{}
	for _, f := range app.Flags {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"profile, p", "account, a", "url, u", "J", "keyId, k", "act-as", "insecure, i", "verbose, v", "level",
	} {
		assert.True(t, names[want], "missing global flag %q", want)
	}
}
