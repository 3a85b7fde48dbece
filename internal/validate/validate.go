// Package validate implements the shape- and type-checking rules spec.md
// §4.3 assigns to the Validator: identifier shape, and the
// writable+traversable directory checks the Configuration's db/root
// fields require. It is deliberately a leaf package (no dependency on
// config, unit, or registry) so that every layer above it can validate
// without risking an import cycle.
package validate

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/pkg/errors"

	"github.com/martinjungblut/craft-package-manager/internal/errs"
)

// IdentifierRx is the shape every name-like identifier (package name,
// architecture, repository name, group/virtual name) must match entirely.
var IdentifierRx = regexp.MustCompile(`^[a-z0-9.\-]+$`)

// ValidIdentifier reports whether s is a non-empty string matching
// IdentifierRx in full.
func ValidIdentifier(s string) bool {
	return s != "" && IdentifierRx.MatchString(s)
}

// WritableTraversableDir verifies that path exists, is a directory, can be
// traversed (its entries listed), and is writable (a file can be created
// and removed inside it). It is used to validate the configuration's `db`
// and `root` fields per spec.md §4.3.
func WritableTraversableDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "%q is not accessible", path)
	}
	if !fi.IsDir() {
		return errors.Errorf("%q is not a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "%q is not traversable", path)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		// An empty directory's Readdirnames(1) returns io.EOF, which is
		// expected and not a traversal failure.
		return errors.Wrapf(err, "%q is not traversable", path)
	}

	probe, err := os.CreateTemp(path, ".craft-write-test-*")
	if err != nil {
		return errors.Wrapf(err, "%q is not writable", path)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return errors.Wrapf(err, "could not clean up write probe in %q", path)
	}

	return nil
}

// MetadataTriple validates a single name/version/architecture triple
// decoded from a metadata document, following the original
// craft-package-manager's craft/validate.py `set()`, which rejects any
// name, version or architecture that isn't a valid identifier before the
// package itself is ever inspected.
func MetadataTriple(location, name, version, arch string) error {
	if !ValidIdentifier(name) {
		return semanticErrorf(location, "package name %q is not a valid identifier", name)
	}
	if !ValidIdentifier(version) {
		return semanticErrorf(location, "package version %q is not a valid identifier", version)
	}
	if !ValidIdentifier(arch) {
		return semanticErrorf(location, "architecture %q is not a valid identifier", arch)
	}
	return nil
}

// MetadataFields validates the parts of a decoded package's fields that
// Go's static typing can't already guarantee: the `groups` and `provides`
// lists must themselves be valid identifiers, per craft/validate.py
// `package()`'s `must_be_valid_identifiers` check. The remaining fields
// `package()` checks (list-of-string, dict-of-string shape) are enforced
// by PackageData's field types at decode time and need no further runtime
// check here.
func MetadataFields(location string, groups, provides []string) error {
	for _, g := range groups {
		if !ValidIdentifier(g) {
			return semanticErrorf(location, "group %q is not a valid identifier", g)
		}
	}
	for _, p := range provides {
		if !ValidIdentifier(p) {
			return semanticErrorf(location, "provided name %q is not a valid identifier", p)
		}
	}
	return nil
}

func semanticErrorf(location, format string, args ...interface{}) error {
	return &errs.SemanticError{Location: location, Reason: fmt.Sprintf(format, args...)}
}
