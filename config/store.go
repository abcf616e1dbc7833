package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tritoncli/triton"
	"github.com/tritoncli/triton/errs"
	"github.com/tritoncli/triton/util"
)

// configFile is the shape of <configDir>/config.json.
type configFile struct {
	Profile string `json:"profile,omitempty"`

	// CacheDir overrides the default cache location under the config dir.
	CacheDir string `json:"cacheDir,omitempty"`
}

// Store reads and writes named profiles under a config directory. It is a
// single-user store: saves are atomic per file but there is no cross-process
// locking.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir (typically ~/.triton).
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's config directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) profilePath(name string) string {
	return filepath.Join(s.dir, triton.ProfilesDir, name+".json")
}

func (s *Store) configPath() string {
	return filepath.Join(s.dir, triton.ConfigFile)
}

func (s *Store) readConfigFile() (*configFile, error) {
	cf := &configFile{}
	data, err := os.ReadFile(s.configPath())
	if os.IsNotExist(err) {
		return cf, nil
	} else if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "reading %q", s.configPath())
	}
	if err := json.Unmarshal(data, cf); err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "parsing %q", s.configPath())
	}
	return cf, nil
}

// CurrentName returns the current-profile pointer, or "env" when unset.
func (s *Store) CurrentName() (string, error) {
	cf, err := s.readConfigFile()
	if err != nil {
		return "", err
	}
	if cf.Profile == "" {
		return EnvProfileName, nil
	}
	return cf.Profile, nil
}

// List returns all persisted profiles sorted by name.
func (s *Store) List() ([]*Profile, error) {
	dir := filepath.Join(s.dir, triton.ProfilesDir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "listing %q", dir)
	}

	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p, err := s.Get(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// Get loads the named persisted profile. The synthetic "env" profile is not
// stored here; callers assemble it via Load.
func (s *Store) Get(name string) (*Profile, error) {
	if name == EnvProfileName {
		return nil, errs.New(errs.KindUsage, "the %q profile is synthetic and not stored on disk", EnvProfileName)
	}
	data, err := os.ReadFile(s.profilePath(name))
	if os.IsNotExist(err) {
		return nil, errs.New(errs.KindNotFound, "no profile named %q", name)
	} else if err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "reading profile %q", name)
	}

	p := &Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errs.Wrap(errs.KindConfig, err, "parsing profile file %q", s.profilePath(name))
	}
	if p.Name == "" {
		p.Name = name
	} else if p.Name != name {
		return nil, errs.New(errs.KindConfig,
			"profile file %q contains mismatched name %q", s.profilePath(name), p.Name)
	}
	return p, nil
}

// SaveOptions controls Save behavior.
type SaveOptions struct {
	// SetCurrent also points the current-profile pointer at the saved
	// profile.
	SetCurrent bool
}

// Save validates and persists p, optionally making it current. Writes are
// write-temp + rename.
func (s *Store) Save(p *Profile, opts SaveOptions) error {
	if p.Name == EnvProfileName {
		return errs.New(errs.KindUsage, "cannot save the synthetic %q profile", EnvProfileName)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := util.WriteJSONFileAtomic(s.profilePath(p.Name), p, 0600); err != nil {
		return errs.Wrap(errs.KindConfig, err, "writing profile %q", p.Name)
	}
	if opts.SetCurrent {
		return s.SetCurrent(p.Name)
	}
	return nil
}

// DeleteOptions controls Delete behavior.
type DeleteOptions struct {
	// Force allows deleting the current profile; the current pointer then
	// demotes to "env".
	Force bool
}

// Delete removes the named profile.
func (s *Store) Delete(name string, opts DeleteOptions) error {
	if name == EnvProfileName {
		return errs.New(errs.KindUsage, "the %q profile cannot be deleted", EnvProfileName)
	}
	if _, err := s.Get(name); err != nil {
		return err
	}

	current, err := s.CurrentName()
	if err != nil {
		return err
	}
	if current == name {
		if !opts.Force {
			return errs.New(errs.KindUsage,
				"profile %q is the current profile (use force to delete and revert to %q)",
				name, EnvProfileName)
		}
		if err := s.SetCurrent(""); err != nil {
			return err
		}
	}

	if err := os.Remove(s.profilePath(name)); err != nil {
		return errs.Wrap(errs.KindConfig, err, "deleting profile %q", name)
	}
	return nil
}

// SetCurrent points the current-profile pointer at name. An empty name
// clears the pointer (reverting to "env"). A non-empty name must exist.
func (s *Store) SetCurrent(name string) error {
	if name != "" && name != EnvProfileName {
		if _, err := s.Get(name); err != nil {
			return err
		}
	}
	cf, err := s.readConfigFile()
	if err != nil {
		return err
	}
	if name == EnvProfileName {
		name = ""
	}
	cf.Profile = name
	if err := util.WriteJSONFileAtomic(s.configPath(), cf, 0600); err != nil {
		return errs.Wrap(errs.KindConfig, err, "writing %q", s.configPath())
	}
	return nil
}
