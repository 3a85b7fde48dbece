// Package errs defines the typed error values spec.md §7 assigns to craft's
// failure modes, one struct per kind with a formatted Error() string -
// following golang-dep's gps/errors.go convention of a dedicated type per
// failure rather than sentinel values or bare fmt.Errorf strings.
package errs

import "fmt"

// SemanticError reports a configuration or metadata document that
// violates spec.md §6's schema, with enough location context to find it.
type SemanticError struct {
	Location string
	Reason   string
}

func (e *SemanticError) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("semantic error: %s", e.Reason)
	}
	return fmt.Sprintf("semantic error at %s: %s", e.Location, e.Reason)
}

// BrokenDependency reports that the resolver could not locate a provider
// for a dependency target string of some unit.
type BrokenDependency struct {
	Unit   string
	Target string
}

func (e *BrokenDependency) Error() string {
	return fmt.Sprintf("%s depends on %q, but nothing provides it", e.Unit, e.Target)
}

// Conflict reports that two units in installed∪to_install declare a
// conflict with one another.
type Conflict struct {
	A, B string
}

func (e *Conflict) Error() string {
	return fmt.Sprintf("%s conflicts with %s", e.A, e.B)
}

// PackageNotAllowed reports that a Package's architecture is not in the
// configuration's enabled set.
type PackageNotAllowed struct {
	Unit string
}

func (e *PackageNotAllowed) Error() string {
	return fmt.Sprintf("%s is not allowed by the current architecture configuration", e.Unit)
}

// InstallError reports an executor failure while installing a package.
type InstallError struct {
	Package string
	Reason  string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %s: %s", e.Package, e.Reason)
}

// UninstallError reports an executor failure while uninstalling a package.
type UninstallError struct {
	Package string
	Reason  string
}

func (e *UninstallError) Error() string {
	return fmt.Sprintf("failed to uninstall %s: %s", e.Package, e.Reason)
}

// DownloadError reports a repository fetch handler that failed (for
// example with a non-zero exit status) or that exited without leaving the
// expected package.tar.gz behind.
type DownloadError struct {
	Package string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s", e.Package)
}

// RepositoryError reports an operation against an unknown repository name.
type RepositoryError struct {
	Name string
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("unknown repository %q", e.Name)
}

// ClearError reports a failure clearing the available-set cache.
type ClearError struct {
	Reason string
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("failed to clear: %s", e.Reason)
}

// SyncError reports a failure synchronizing repository metadata.
type SyncError struct {
	Reason string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("failed to sync: %s", e.Reason)
}

// EnableError reports a failure enabling a local cached repository
// archive.
type EnableError struct {
	Path string
}

func (e *EnableError) Error() string {
	return fmt.Sprintf("failed to enable local repository from %q", e.Path)
}
