package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tritoncli/triton/errs"
)

const (
	testMD5KeyID    = "2f:13:1a:92:ca:57:59:9e:31:47:21:2e:fc:d3:5a:a5"
	testSHA256KeyID = "SHA256:yV8GlKTmJYofvZsqXMdtsnfAcDsjh25C7M6kuwnVja8"
)

func validProfile() *Profile {
	return &Profile{
		Name:    "east1",
		URL:     "https://cloudapi.east-1.example.com",
		Account: "admin",
		KeyID:   testMD5KeyID,
	}
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, validProfile().Validate())

	sha := validProfile()
	sha.KeyID = testSHA256KeyID
	assert.NoError(t, sha.Validate())

	md5Prefixed := validProfile()
	md5Prefixed.KeyID = "MD5:" + testMD5KeyID
	assert.NoError(t, md5Prefixed.Validate())

	for name, mutate := range map[string]func(*Profile){
		"no name":        func(p *Profile) { p.Name = "" },
		"bad name":       func(p *Profile) { p.Name = "East 1" },
		"no url":         func(p *Profile) { p.URL = "" },
		"relative url":   func(p *Profile) { p.URL = "cloudapi.example.com" },
		"no account":     func(p *Profile) { p.Account = "" },
		"no key id":      func(p *Profile) { p.KeyID = "" },
		"garbage key id": func(p *Profile) { p.KeyID = "my-laptop-key" },
	} {
		t.Run(name, func(t *testing.T) {
			p := validProfile()
			mutate(p)
			err := p.Validate()
			assert.Error(t, err)
			assert.Equal(t, errs.KindConfig, errs.KindOf(err))
		})
	}
}

func TestEnvApplyTo(t *testing.T) {
	stored := validProfile()
	env := Env{URL: "https://cloudapi.west-1.example.com", TLSInsecure: "1"}

	merged := env.applyTo(stored)
	assert.Equal(t, "https://cloudapi.west-1.example.com", merged.URL)
	assert.Equal(t, "admin", merged.Account)
	assert.True(t, merged.Insecure)

	// the stored profile is not mutated
	assert.Equal(t, "https://cloudapi.east-1.example.com", stored.URL)
	assert.False(t, stored.Insecure)
}

func TestEnvProfile(t *testing.T) {
	env := Env{
		URL:     "https://cloudapi.east-1.example.com",
		Account: "admin",
		KeyID:   testMD5KeyID,
	}
	p := env.envProfile()
	assert.Equal(t, EnvProfileName, p.Name)
	assert.NoError(t, p.Validate())

	incomplete := Env{URL: "https://cloudapi.east-1.example.com"}
	assert.Error(t, incomplete.envProfile().Validate())
}

func TestProfileDigest(t *testing.T) {
	a := validProfile()
	b := validProfile()
	assert.Equal(t, a.Digest(), b.Digest())
	assert.Len(t, a.Digest(), 16)

	b.Account = "other"
	assert.NotEqual(t, a.Digest(), b.Digest())

	// name changes do not move the cache namespace
	c := validProfile()
	c.Name = "renamed"
	assert.Equal(t, a.Digest(), c.Digest())
}
