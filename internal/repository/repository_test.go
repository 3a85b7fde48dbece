package repository

import (
	"archive/tar"
	"compress/gzip"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martinjungblut/craft-package-manager/internal/config"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// fakeHandlerScript writes a fixed payload to the basename of its sole
// URL argument, in the current working directory - standing in for a
// real network fetch handler, which spec.md §1 scopes out of the core as
// an external collaborator invoked as `<handler> <url>` against a
// working directory the fetcher has already chdir'd into.
func fakeHandlerScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake handler script is a POSIX shell script")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "handler.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nname=$(basename \"$1\")\necho fetched > \"$name\"\n"), 0o755))
	return path
}

func TestDownloadPopulatesCache(t *testing.T) {
	handler := fakeHandlerScript(t)
	dir := t.TempDir()
	cfg := &config.Configuration{
		DB: dir,
		Repositories: map[string]config.Repository{
			"main": {Name: "main", Target: "http://example.invalid/main", Handler: handler},
		},
	}

	p := unit.NewPackage("foo", "1.0", "amd64", "main", unit.Metadata{})
	f := New(cfg)
	require.NoError(t, f.Download([]*unit.Unit{p}))
	require.FileExists(t, f.CachePath(p))
}

func TestDownloadUnknownRepository(t *testing.T) {
	cfg := &config.Configuration{DB: t.TempDir(), Repositories: map[string]config.Repository{}}
	p := unit.NewPackage("foo", "1.0", "amd64", "ghost", unit.Metadata{})

	f := New(cfg)
	err := f.Download([]*unit.Unit{p})
	require.Error(t, err)
}

func TestSyncWritesArchitectureMetadata(t *testing.T) {
	handler := fakeHandlerScript(t)
	dir := t.TempDir()
	cfg := &config.Configuration{
		DB:            dir,
		Architectures: config.Architectures{Default: "amd64", Enabled: []string{"amd64"}},
		Repositories: map[string]config.Repository{
			"main": {Name: "main", Target: "http://example.invalid/main", Handler: handler},
		},
	}

	f := New(cfg)
	warnings, err := f.Sync()
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.FileExists(t, filepath.Join(dir, "available", "main", "amd64.yml"))
}

func TestSyncFatalWhenAvailableDirCannotBeCreated(t *testing.T) {
	handler := fakeHandlerScript(t)
	dir := t.TempDir()

	// A regular file in place of the "available" path component makes
	// MkdirAll fail regardless of the running user's privileges.
	blocker := filepath.Join(dir, "available")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := &config.Configuration{
		DB:            dir,
		Architectures: config.Architectures{Default: "amd64", Enabled: []string{"amd64"}},
		Repositories: map[string]config.Repository{
			"main": {Name: "main", Target: "http://example.invalid/main", Handler: handler},
		},
	}

	f := New(cfg)
	_, err := f.Sync()
	require.Error(t, err)
}

func TestClearRemovesMetadataOnly(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Configuration{
		DB:            dir,
		Architectures: config.Architectures{Enabled: []string{"amd64"}},
		Repositories:  map[string]config.Repository{"main": {Name: "main"}},
	}
	metaPath := filepath.Join(dir, "available", "main", "amd64.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(metaPath), 0o755))
	require.NoError(t, os.WriteFile(metaPath, []byte("{}"), 0o644))
	cachePath := filepath.Join(dir, "available", "main", "cache", "marker")
	require.NoError(t, os.MkdirAll(filepath.Dir(cachePath), 0o755))
	require.NoError(t, os.WriteFile(cachePath, []byte("x"), 0o644))

	f := New(cfg)
	require.NoError(t, f.Clear(false))

	_, err := os.Stat(metaPath)
	require.True(t, os.IsNotExist(err))
	require.FileExists(t, cachePath)
}

func TestEnableLocalExtractsSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Configuration{DB: dir}

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "main/amd64.yml", Mode: 0o644, Size: 2, Typeflag: tar.TypeReg}))
	_, err := tw.Write([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	archivePath := filepath.Join(t.TempDir(), "snapshot.tar.gz")
	out, err := os.Create(archivePath)
	require.NoError(t, err)
	gz := gzip.NewWriter(out)
	_, err = gz.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())

	f := New(cfg)
	require.NoError(t, f.EnableLocal(archivePath))
	require.FileExists(t, filepath.Join(dir, "available", "main", "amd64.yml"))
}
