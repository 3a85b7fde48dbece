package unit

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// PackageData is the on-disk shape of a single package's metadata, as
// nested under name -> version -> architecture in both repository
// metadata files and installed metadata.yml files (spec.md §6).
type PackageData struct {
	Checksums   map[string]string `yaml:"checksums,omitempty"`
	Files       FilesSection      `yaml:"files,omitempty"`
	Depends     []string          `yaml:"depends,omitempty"`
	Conflicts   []string          `yaml:"conflicts,omitempty"`
	Replaces    []string          `yaml:"replaces,omitempty"`
	Provides    []string          `yaml:"provides,omitempty"`
	Groups      []string          `yaml:"groups,omitempty"`
	Flags       []string          `yaml:"flags,omitempty"`
	Information InformationSection `yaml:"information,omitempty"`
}

// FilesSection holds the `files.static` list.
type FilesSection struct {
	Static []string `yaml:"static,omitempty"`
}

// InformationSection holds the free-form `information.*` fields.
type InformationSection struct {
	Maintainers []string          `yaml:"maintainers,omitempty"`
	Tags        []string          `yaml:"tags,omitempty"`
	Misc        map[string]string `yaml:"misc,omitempty"`
}

// Document is the top-level shape of both repository metadata files
// (`<db>/available/<repo>/<arch>.yml`, one document per architecture per
// repository, many packages) and installed metadata files
// (`<db>/installed/<name>/<version>/<arch>/metadata.yml`, one document per
// package): name -> version -> architecture -> PackageData.
type Document map[string]map[string]map[string]PackageData

// ParseDocument decodes a Document from YAML bytes.
func ParseDocument(b []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Bytes re-encodes the Document as YAML.
func (d Document) Bytes() ([]byte, error) {
	return yaml.Marshal(map[string]map[string]map[string]PackageData(d))
}

// ToPackageData converts a Package unit's Metadata and persistent flags
// into the on-disk PackageData shape - the write side of the round-trip
// property, grounded on the original craft-package-manager's
// craft/dump.py (which serializes a single unit back to this same
// name->version->arch->data nesting).
func (u *Unit) ToPackageData() PackageData {
	pd := PackageData{
		Checksums: u.Metadata.Checksums,
		Files:     FilesSection{Static: u.Metadata.StaticFiles},
		Depends:   u.Metadata.Depends,
		Conflicts: u.Metadata.Conflicts,
		Replaces:  u.Metadata.Replaces,
		Provides:  u.Metadata.Provides,
		Groups:    u.Metadata.Groups,
		Information: InformationSection{
			Maintainers: u.Metadata.Maintainers,
			Tags:        u.Metadata.Tags,
			Misc:        u.Metadata.Misc,
		},
	}

	flags := make([]string, 0, len(u.PersistentFlags))
	for f, set := range u.PersistentFlags {
		if set {
			flags = append(flags, f)
		}
	}
	sort.Strings(flags)
	pd.Flags = flags

	return pd
}

// ToDocument wraps a single Package's PackageData in the full nested
// document shape, as craft/dump.py does when writing one package to its
// own metadata.yml.
func (u *Unit) ToDocument() Document {
	return Document{
		u.Name: {
			u.Version: {
				u.Architecture: u.ToPackageData(),
			},
		},
	}
}

// PackageFromData constructs a Package Unit from a decoded PackageData
// triple - the read side of the round-trip property.
func PackageFromData(name, version, arch, repository string, pd PackageData) *Unit {
	flags := map[string]bool{}
	for _, f := range pd.Flags {
		flags[f] = true
	}

	u := NewPackage(name, version, arch, repository, Metadata{
		Checksums:   pd.Checksums,
		StaticFiles: pd.Files.Static,
		Depends:     pd.Depends,
		Conflicts:   pd.Conflicts,
		Provides:    pd.Provides,
		Replaces:    pd.Replaces,
		Groups:      pd.Groups,
		Maintainers: pd.Information.Maintainers,
		Tags:        pd.Information.Tags,
		Misc:        pd.Information.Misc,
	})
	u.PersistentFlags = flags
	return u
}
