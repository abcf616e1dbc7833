package config

import (
	"os"
	"path/filepath"

	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/errs"
)

// Config is the process-wide resolved configuration: the chosen profile and
// the directories the client works out of.
type Config struct {
	Profile  *Profile
	Store    *Store
	CacheDir string
}

// ProfileCacheDir returns the cache directory namespaced to the resolved
// profile's identity digest.
func (c *Config) ProfileCacheDir() string {
	return filepath.Join(c.CacheDir, c.Profile.Digest())
}

// EnvFromOS reads the TRITON_* variables with their legacy SDC_* fallbacks.
func EnvFromOS() Env {
	get := func(name, legacy string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return os.Getenv(legacy)
	}
	return Env{
		URL:         get(triton.EnvURL, triton.EnvLegacyURL),
		Account:     get(triton.EnvAccount, triton.EnvLegacyAccount),
		KeyID:       get(triton.EnvKeyID, triton.EnvLegacyKeyID),
		TLSInsecure: get(triton.EnvTLSInsecure, triton.EnvLegacyInsecure),
		Profile:     os.Getenv(triton.EnvProfile),
		Editor:      os.Getenv("EDITOR"),
	}
}

// LoadOptions selects the profile to resolve.
type LoadOptions struct {
	// ProfileName, when set (e.g. from -p), wins over TRITON_PROFILE and
	// the persisted current-profile pointer.
	ProfileName string
}

// Load resolves the effective configuration from dir, the environment, and
// opts. Environment values override the corresponding fields of the chosen
// profile; the reserved name "env" selects the purely environment-assembled
// profile.
func Load(dir string, env Env, opts LoadOptions) (*Config, error) {
	store := NewStore(dir)

	name := opts.ProfileName
	if name == "" {
		name = env.Profile
	}
	if name == "" {
		var err error
		if name, err = store.CurrentName(); err != nil {
			return nil, err
		}
	}

	var profile *Profile
	if name == EnvProfileName {
		profile = env.envProfile()
	} else {
		stored, err := store.Get(name)
		if err != nil {
			return nil, err
		}
		profile = env.applyTo(stored)
	}
	if err := profile.Validate(); err != nil {
		if profile.Name == EnvProfileName {
			return nil, errs.Wrap(errs.KindConfig, err,
				"no current profile; set TRITON_URL, TRITON_ACCOUNT, and TRITON_KEY_ID or create one with 'triton profile create'")
		}
		return nil, err
	}

	return &Config{
		Profile:  profile,
		Store:    store,
		CacheDir: filepath.Join(dir, triton.CacheDir),
	}, nil
}
