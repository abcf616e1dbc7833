package triton

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
)

// ClientVersion is the version reported in the User-Agent header and by
// "triton --version".
const ClientVersion = "1.0.0"

const (
	// DefaultConfigDir is the per-user configuration root, relative to the
	// user's home directory.
	DefaultConfigDir = ".triton"

	// ProfilesDir holds one JSON file per named profile under the config dir.
	ProfilesDir = "profiles.d"

	// CacheDir holds per-profile cached list payloads under the config dir.
	CacheDir = "cache"

	// ConfigFile holds the current-profile pointer and global defaults.
	ConfigFile = "config.json"
)

const (
	AcceptHeader      = "Accept"
	APIVersionHeader  = "Api-Version"
	AuthzHeader       = "Authorization"
	ContentTypeHeader = "Content-Type"
	DateHeader        = "Date"
	UserAgentHeader   = "User-Agent"

	ContentTypeValue = "application/json"

	// DefaultAPIVersion is sent in the Api-Version header. The wildcard asks
	// CloudAPI for its newest supported version.
	DefaultAPIVersion = "*"
)

// Environment variable names consulted before the named profile. The SDC_*
// names are legacy fallbacks kept for compatibility with older tooling.
const (
	EnvURL         = "TRITON_URL"
	EnvAccount     = "TRITON_ACCOUNT"
	EnvKeyID       = "TRITON_KEY_ID"
	EnvTLSInsecure = "TRITON_TLS_INSECURE"
	EnvProfile     = "TRITON_PROFILE"

	EnvLegacyURL      = "SDC_URL"
	EnvLegacyAccount  = "SDC_ACCOUNT"
	EnvLegacyKeyID    = "SDC_KEY_ID"
	EnvLegacyInsecure = "SDC_TESTING"
)

// UserAgent returns the User-Agent value for outbound CloudAPI requests.
func UserAgent() string {
	return fmt.Sprintf("triton/%s (%s-%s; go)", ClientVersion, runtime.GOOS, runtime.GOARCH)
}

// FindConfigDir returns the configuration root, honoring $HOME before
// falling back to the platform home directory lookup.
func FindConfigDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, DefaultConfigDir), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir), nil
}
