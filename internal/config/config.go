// Package config implements craft's Configuration record: enabled
// architectures, the repository table, and the db/root filesystem roots -
// loaded once at startup from YAML and never hot-reloaded (an explicit
// non-goal), following the teacher's rawX/X marshal-split pattern (see
// golang-dep's registry_config.go) but against gopkg.in/yaml.v3 instead of
// TOML, since spec.md §6 fixes the configuration file format as YAML.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// Repository is one entry of the configuration's repository table.
type Repository struct {
	Name    string
	Target  string
	Handler string
	Env     map[string]string
}

// Architectures is the enabled-architecture section of the configuration.
type Architectures struct {
	Default string
	Enabled []string
}

// Configuration is craft's immutable runtime configuration.
type Configuration struct {
	Architectures Architectures
	Repositories  map[string]Repository
	Groups        []string
	DB            string
	Root          string
}

// rawConfiguration mirrors the YAML schema of spec.md §6 exactly; the
// public Configuration type reshapes it into friendlier Go structures
// (e.g. Repositories keyed by name, with Name copied in for convenience).
type rawConfiguration struct {
	Repositories  map[string]rawRepository `yaml:"repositories"`
	Architectures rawArchitectures          `yaml:"architectures"`
	Groups        []string                  `yaml:"groups"`
	DB            string                    `yaml:"db"`
	Root          string                    `yaml:"root"`
}

type rawRepository struct {
	Target  string            `yaml:"target"`
	Handler string            `yaml:"handler"`
	Env     map[string]string `yaml:"env"`
}

type rawArchitectures struct {
	Default string   `yaml:"default"`
	Enabled []string `yaml:"enabled"`
}

// Parse decodes and validates a Configuration from YAML bytes.
func Parse(b []byte) (*Configuration, error) {
	var raw rawConfiguration
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrap(err, "unable to parse configuration as YAML")
	}

	cfg := &Configuration{
		Architectures: Architectures{
			Default: raw.Architectures.Default,
			Enabled: raw.Architectures.Enabled,
		},
		Repositories: make(map[string]Repository, len(raw.Repositories)),
		Groups:       raw.Groups,
		DB:           raw.DB,
		Root:         raw.Root,
	}
	for name, r := range raw.Repositories {
		cfg.Repositories[name] = Repository{
			Name:    name,
			Target:  r.Target,
			Handler: r.Handler,
			Env:     r.Env,
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a Configuration from r.
func Load(r io.Reader) (*Configuration, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read configuration")
	}
	return Parse(b)
}

// LoadFile reads and parses a Configuration from a file path.
func LoadFile(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open configuration file %q", path)
	}
	defer f.Close()
	return Load(f)
}

// IsUnitAllowed implements spec.md §3's derived predicate: a Package is
// allowed iff its architecture is enabled; every other unit kind is
// unconditionally allowed.
func (c *Configuration) IsUnitAllowed(u *unit.Unit) bool {
	if u.Kind != unit.KindPackage {
		return true
	}
	for _, a := range c.Architectures.Enabled {
		if a == u.Architecture {
			return true
		}
	}
	return false
}

// AvailableGlob returns the glob pattern for repository metadata files.
func (c *Configuration) AvailableGlob() string {
	return c.DB + "/available/*/*.yml"
}

// InstalledGlob returns the glob pattern for installed metadata files.
func (c *Configuration) InstalledGlob() string {
	return c.DB + "/installed/*/*/*/metadata.yml"
}

// LockPath returns the path to the advisory lock file.
func (c *Configuration) LockPath() string {
	return c.DB + "/.lock"
}
