package config

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"github.com/tritoncli/triton/errs"
)

// EnvProfileName is the reserved name of the synthetic profile assembled
// from TRITON_* environment variables. It is never persisted.
const EnvProfileName = "env"

// Profile is a named bundle of CloudAPI endpoint and caller identity.
type Profile struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Account      string   `json:"account"`
	ActAsAccount string   `json:"actAsAccount,omitempty"`
	KeyID        string   `json:"keyId"`
	PrivKeyPath  string   `json:"privKeyPath,omitempty"`
	Insecure     bool     `json:"insecure,omitempty"`
	DCs          []string `json:"dcs,omitempty"`
}

var profileNameRe = regexp.MustCompile(`^[a-z][a-z0-9._-]*$`)

// md5-style colon-separated hex, or the OpenSSH SHA256 form.
var md5FingerprintRe = regexp.MustCompile(`^(?:md5:)?(?:[0-9a-f]{2}:){15}[0-9a-f]{2}$`)
var sha256FingerprintRe = regexp.MustCompile(`^SHA256:[A-Za-z0-9+/]{43}$`)

// Validate checks the profile's invariants. The synthetic env profile is
// validated with the same rules apart from its reserved name.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return errs.New(errs.KindConfig, "profile has no name")
	}
	if p.Name != EnvProfileName && !profileNameRe.MatchString(p.Name) {
		return errs.New(errs.KindConfig, "invalid profile name %q: must match %s", p.Name, profileNameRe)
	}
	u, err := url.Parse(p.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errs.New(errs.KindConfig, "profile %q: url %q is not an absolute URL", p.Name, p.URL)
	}
	if p.Account == "" {
		return errs.New(errs.KindConfig, "profile %q has no account", p.Name)
	}
	if p.KeyID == "" {
		return errs.New(errs.KindConfig, "profile %q has no keyId", p.Name)
	}
	if !md5FingerprintRe.MatchString(strings.ToLower(p.KeyID)) && !sha256FingerprintRe.MatchString(p.KeyID) {
		return errs.New(errs.KindConfig,
			"profile %q: keyId %q is not an MD5 or SHA256 key fingerprint", p.Name, p.KeyID)
	}
	return nil
}

// Digest returns a short stable hex digest of the profile's identity
// (url+account+keyId), used to namespace the on-disk cache.
func (p *Profile) Digest() string {
	h := sha256.New()
	h.Write([]byte(p.URL))
	h.Write([]byte{0})
	h.Write([]byte(p.Account))
	h.Write([]byte{0})
	h.Write([]byte(p.KeyID))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Env carries the environment values consulted before the named profile.
// Zero values mean unset.
type Env struct {
	URL         string
	Account     string
	KeyID       string
	TLSInsecure string
	Profile     string
	Editor      string
}

func (e Env) isInsecure() bool {
	switch strings.ToLower(e.TLSInsecure) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// envProfile assembles the synthetic env profile. It is incomplete (and
// unusable) unless URL, account, and keyId are all present; Validate on the
// result reports which is missing.
func (e Env) envProfile() *Profile {
	return &Profile{
		Name:     EnvProfileName,
		URL:      e.URL,
		Account:  e.Account,
		KeyID:    e.KeyID,
		Insecure: e.isInsecure(),
	}
}

// applyTo overlays any set env values onto a copy of p.
func (e Env) applyTo(p *Profile) *Profile {
	out := *p
	if e.URL != "" {
		out.URL = e.URL
	}
	if e.Account != "" {
		out.Account = e.Account
	}
	if e.KeyID != "" {
		out.KeyID = e.KeyID
	}
	if e.TLSInsecure != "" {
		out.Insecure = e.isInsecure()
	}
	return &out
}
