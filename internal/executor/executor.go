// Package executor implements spec.md §4.6's two low-level, per-package
// disk operations: install_one and uninstall_one. Both work strictly
// against a single package's own directory under the managed db tree, and
// both clean up after themselves on failure - the same "attempt, and
// restore on any exit path" discipline the teacher applies to its
// monitoredCmd (cmd.go) and renameWithFallback (fs.go), adapted here from
// process supervision and directory renaming to archive extraction and
// file removal.
package executor

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	shutil "github.com/termie/go-shutil"

	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// controlPrefix is the archive-internal directory whose entries are
// extracted like any other file but excluded from the file manifest,
// per spec.md §6. Archive entry names are filepath.Clean'd before this
// comparison, which strips the "./" prefix a real archive's entries carry.
const controlPrefix = ".craft/"

// Executor materializes resolver plans against a managed root and db
// directory, one package at a time.
type Executor struct {
	Root string
	DB   string
}

// New returns an Executor rooted at root/db.
func New(root, db string) *Executor {
	return &Executor{Root: root, DB: db}
}

func (e *Executor) packageDir(name, version, arch string) string {
	return filepath.Join(e.DB, "installed", name, version, arch)
}

// InstallOne installs p from the archive at archivePath (empty if p
// declares no checksum) into the managed root, per spec.md §4.6's six-step
// install_one.
func (e *Executor) InstallOne(p *unit.Unit, archivePath string, installed *unit.Set) error {
	versionDir := filepath.Join(e.DB, "installed", p.Name, p.Version)
	if err := os.MkdirAll(versionDir, 0o755); err != nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	archDir := e.packageDir(p.Name, p.Version, p.Architecture)
	if _, err := os.Stat(archDir); err == nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: "already installed"}
	}
	if err := os.Mkdir(archDir, 0o755); err != nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	if digest, ok := p.Metadata.Checksums["sha1"]; ok {
		if archivePath == "" {
			os.RemoveAll(archDir)
			return &errs.InstallError{Package: p.DisplayIdentity(), Reason: "checksum declared but no archive given"}
		}
		if err := e.installFromArchive(p, archivePath, digest, archDir); err != nil {
			os.RemoveAll(archDir)
			return err
		}
	}

	doc := p.ToDocument()
	b, err := doc.Bytes()
	if err != nil {
		os.RemoveAll(archDir)
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}
	if err := os.WriteFile(filepath.Join(archDir, "metadata.yml"), b, 0o644); err != nil {
		os.RemoveAll(archDir)
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	installed.AddPackage(p)
	return nil
}

// installFromArchive verifies the archive's SHA-1 digest, writes the
// reverse-order file manifest, and extracts it into the root.
func (e *Executor) installFromArchive(p *unit.Unit, archivePath, digest, archDir string) error {
	sum, err := sha1sum(archivePath)
	if err != nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}
	if !strings.EqualFold(sum, digest) {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: "checksum mismatch"}
	}

	entries, err := listEntriesReversed(archivePath)
	if err != nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	manifest := filterControlEntries(entries)
	if err := os.WriteFile(filepath.Join(archDir, "files"), []byte(strings.Join(manifest, "\n")+"\n"), 0o644); err != nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	if err := extractArchive(archivePath, e.Root); err != nil {
		return &errs.InstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}
	return nil
}

func filterControlEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "." || e == ".craft" || strings.HasPrefix(e, controlPrefix) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func sha1sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// listEntriesReversed returns every archive entry name in reverse
// iteration order, so that a directory's children precede the directory
// itself - required so uninstall_one can remove directories only once
// they're already empty.
func listEntriesReversed(archivePath string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, filepath.ToSlash(filepath.Clean(hdr.Name)))
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names, nil
}

// ExtractInto extracts a gzip-compressed tar archive into dest. Exported
// so internal/repository's EnableLocal can reuse the same primitive
// install_one uses, rather than duplicating archive handling.
func ExtractInto(archivePath, dest string) error {
	return extractArchive(archivePath, dest)
}

func extractArchive(archivePath, root string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		target := filepath.Join(root, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		case tar.TypeSymlink:
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
	return nil
}

// UninstallOne removes p's tracked files from root and its metadata from
// db, per spec.md §4.6's six-step uninstall_one.
func (e *Executor) UninstallOne(p *unit.Unit, keepStatic bool, installed *unit.Set) error {
	archDir := e.packageDir(p.Name, p.Version, p.Architecture)

	manifest, err := readManifest(filepath.Join(archDir, "files"))
	if err != nil {
		return &errs.UninstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	if err := e.checkWriteAccess(manifest, archDir); err != nil {
		return &errs.UninstallError{Package: p.DisplayIdentity(), Reason: err.Error()}
	}

	if keepStatic {
		e.preserveStaticFiles(p)
	}

	for _, rel := range manifest {
		target := filepath.Join(e.Root, rel)
		fi, err := os.Lstat(target)
		if err != nil {
			continue
		}
		if fi.IsDir() {
			os.Remove(target) // best-effort: rmdir only succeeds once empty
		} else {
			os.Remove(target)
		}
	}

	os.Remove(filepath.Join(archDir, "metadata.yml"))
	os.Remove(filepath.Join(archDir, "files"))
	os.Remove(archDir)
	os.Remove(filepath.Join(e.DB, "installed", p.Name, p.Version))
	os.Remove(filepath.Join(e.DB, "installed", p.Name))

	installed.RemovePackage(p)
	return nil
}

// checkWriteAccess verifies every manifest path under root, plus the
// package's own db files, are writable before any deletion begins - the
// whole operation must fail atomically, before mutating anything.
func (e *Executor) checkWriteAccess(manifest []string, archDir string) error {
	for _, rel := range manifest {
		target := filepath.Join(e.Root, rel)
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			continue
		}
		if err := godirwalk.Walk(target, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				return writable(path)
			},
			ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
				return godirwalk.Halt
			},
		}); err != nil {
			if !os.IsNotExist(err) {
				return errors.Wrapf(err, "no write access to %q", target)
			}
		}
	}
	for _, f := range []string{"metadata.yml", "files"} {
		if err := writable(filepath.Join(archDir, f)); err != nil {
			return err
		}
	}
	return nil
}

func writable(path string) error {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode().Perm()&0o200 == 0 {
		return errors.Errorf("%q is not writable", path)
	}
	return nil
}

// preserveStaticFiles renames each of p's declared static files to a
// ".craft-old" sibling, falling back to a copy-then-remove (via go-shutil,
// since a straight os.Rename fails across devices) when the rename itself
// fails. Failures here are best-effort: a warning, not an aborted
// uninstall.
func (e *Executor) preserveStaticFiles(p *unit.Unit) []string {
	var warnings []string
	for _, rel := range p.Metadata.StaticFiles {
		src := filepath.Join(e.Root, rel)
		dst := src + ".craft-old"
		if err := os.Rename(src, dst); err != nil {
			if _, copyErr := shutil.Copy(src, dst, false); copyErr != nil {
				warnings = append(warnings, "could not preserve "+rel+": "+copyErr.Error())
				continue
			}
			os.Remove(src)
		}
	}
	return warnings
}

func readManifest(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(b), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}
