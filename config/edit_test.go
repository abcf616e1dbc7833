package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritoncli/triton/errs"
)

func TestProfileTextRoundTrip(t *testing.T) {
	p := validProfile()
	p.ActAsAccount = "customer"
	p.DCs = []string{"east-1=https://cloudapi.east-1.example.com", "https://cloudapi.west-1.example.com"}

	parsed, err := parseProfileText(p.Name, renderProfileText(p))
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestParseProfileText(t *testing.T) {
	text := "url=https://cloudapi.east-1.example.com\n" +
		"# a comment\n\n" +
		"account=admin\n" +
		"keyId=" + testMD5KeyID + "\n" +
		"insecure=true\n"
	p, err := parseProfileText("east1", text)
	require.NoError(t, err)
	assert.True(t, p.Insecure)
	assert.Equal(t, "admin", p.Account)

	for name, bad := range map[string]string{
		"no equals":      "url https://x\n",
		"unknown field":  "color=blue\n",
		"bad insecure":   "insecure=maybe\n",
		"duplicate":      "account=a\naccount=b\n",
		"fails validate": "url=https://x.example.com\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseProfileText("east1", bad)
			require.Error(t, err)
			assert.Equal(t, errs.KindConfig, errs.KindOf(err))
		})
	}
}

func TestEditRejectsEnvProfile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Edit(EnvProfileName, "vi", nil)
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))

	_, err = store.Edit("east1", "", nil)
	assert.Equal(t, errs.KindUsage, errs.KindOf(err))
}
