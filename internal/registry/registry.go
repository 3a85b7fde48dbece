// Package registry implements spec.md §4.4's Loader: it ingests the YAML
// metadata files under `<db>/available/*/*.yml` and
// `<db>/installed/*/*/*/metadata.yml`, builds the available/installed
// unit.Sets, and enforces the registry's three-namespace conflict rules by
// skipping and warning rather than failing - following the original
// craft-package-manager's craft/load.py shape of returning warnings
// alongside the built Set instead of writing them to a stream directly.
package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/martinjungblut/craft-package-manager/internal/unit"
	"github.com/martinjungblut/craft-package-manager/internal/validate"
)

// Warning reports a non-fatal registry conflict: one of the four skip-and-
// warn rules spec.md §4.4 assigns to the Loader.
type Warning struct {
	File    string
	Name    string
	Version string
	Arch    string
	Reason  string
}

func (w Warning) String() string {
	if w.Version == "" {
		return w.File + ": " + w.Name + ": " + w.Reason
	}
	return w.File + ": " + w.Name + " " + w.Version + " " + w.Arch + ": " + w.Reason
}

// LoadAvailable reads every repository metadata file matched by glob
// (spec.md §6: `<db>/available/<repo>/<arch>.yml`) and returns the
// available unit.Set plus any collision warnings. cache may be nil.
func LoadAvailable(glob string, cache *Cache) (*unit.Set, []Warning, error) {
	files, err := expandGlob(glob)
	if err != nil {
		return nil, nil, err
	}

	set := unit.NewSet()
	var warnings []Warning
	for _, f := range files {
		repository := repositoryNameFromAvailablePath(f)
		b, err := readFile(f, cache)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading %q", f)
		}
		doc, err := unit.ParseDocument(b)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parsing %q", f)
		}
		w, err := ingest(set, f, repository, doc)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
	}
	return set, warnings, nil
}

// LoadInstalled reads every installed metadata file matched by glob
// (spec.md §6: `<db>/installed/<name>/<version>/<arch>/metadata.yml`) and
// returns the installed unit.Set plus any collision warnings.
func LoadInstalled(glob string) (*unit.Set, []Warning, error) {
	files, err := expandGlob(glob)
	if err != nil {
		return nil, nil, err
	}

	set := unit.NewSet()
	var warnings []Warning
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading %q", f)
		}
		doc, err := unit.ParseDocument(b)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parsing %q", f)
		}
		w, err := ingest(set, f, "", doc)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
	}
	return set, warnings, nil
}

// repositoryNameFromAvailablePath extracts <repo> from a path of shape
// <db>/available/<repo>/<arch>.yml.
func repositoryNameFromAvailablePath(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// ingest registers every package in doc into set, applying spec.md
// §4.4's conflict rules and lazily materializing the Groups/VirtualPackages
// named by `provides`/`groups`. Before a package is registered, its
// identifiers and identifier-valued fields are shape-checked by the
// Validator (spec.md §4.3); any violation is a SemanticError and aborts
// the whole load, unlike the namespace collisions below, which are
// skip-and-warn.
func ingest(set *unit.Set, file, repository string, doc unit.Document) ([]Warning, error) {
	var warnings []Warning

	for name, versions := range doc {
		for version, arches := range versions {
			for arch, pd := range arches {
				location := file + ": " + name + " " + version + " " + arch
				if err := validate.MetadataTriple(location, name, version, arch); err != nil {
					return nil, err
				}
				if err := validate.MetadataFields(location, pd.Groups, pd.Provides); err != nil {
					return nil, err
				}

				p := unit.PackageFromData(name, version, arch, repository, pd)

				switch set.AddPackage(p) {
				case unit.NameIsGroup:
					warnings = append(warnings, Warning{file, name, version, arch, "name is already a group"})
					continue
				case unit.NameIsVirtual:
					warnings = append(warnings, Warning{file, name, version, arch, "name is already a virtual package"})
					continue
				case unit.DuplicateTriple:
					warnings = append(warnings, Warning{file, name, version, arch, "duplicate package triple, keeping first seen"})
					continue
				}

				for _, provided := range p.Metadata.Provides {
					v, collision := set.GetOrCreateVirtual(provided)
					if collision != unit.NoCollision {
						warnings = append(warnings, Warning{file, provided, "", "", "provides a name already used by a package or group"})
						continue
					}
					v.Providers = append(v.Providers, p)
				}

				for _, group := range p.Metadata.Groups {
					g, collision := set.GetOrCreateGroup(group)
					if collision != unit.NoCollision {
						warnings = append(warnings, Warning{file, group, "", "", "groups a name already used by a package or virtual package"})
						continue
					}
					g.Members = append(g.Members, p)
				}
			}
		}
	}

	return warnings, nil
}

// expandGlob resolves pattern, which may itself contain a glob in its
// final-but-one segment (`<repo>` in `<db>/available/*/*.yml`), and returns
// matches sorted for deterministic iteration. godirwalk is used over a
// plain filepath.Glob so that a large `<db>/installed` tree is scanned with
// a single readdir pass per directory instead of filepath.Glob's repeated
// stat calls.
func expandGlob(pattern string) ([]string, error) {
	root, rest := globRoot(pattern)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var matches []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			ok, err := filepath.Match(rest, filepath.ToSlash(rel))
			if err != nil {
				return err
			}
			if ok {
				matches = append(matches, path)
			}
			return nil
		},
		ErrorCallback: func(_ string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// globRoot splits a glob pattern into the longest literal directory prefix
// and the remaining pattern relative to it, so that godirwalk only has to
// scan the subtree the pattern can possibly match.
func globRoot(pattern string) (root, rest string) {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	i := 0
	for i < len(parts) && !strings.ContainsAny(parts[i], "*?[") {
		i++
	}
	root = strings.Join(parts[:i], "/")
	if root == "" {
		root = "."
	}
	rest = strings.Join(parts[i:], "/")
	return root, rest
}

func readFile(path string, cache *Cache) ([]byte, error) {
	if cache == nil {
		return os.ReadFile(path)
	}
	return cache.Bytes(path)
}
