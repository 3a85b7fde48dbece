package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

func writeYAML(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadAvailableBuildsSetAndWarns(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, filepath.Join(dir, "available", "main", "amd64.yml"), `
foo:
  "1.0":
    amd64:
      depends: ["bar:amd64 >= 1.0"]
      provides: ["foo-virtual"]
      groups: ["base"]
bar:
  "1.0":
    amd64:
      tags: ["utility"]
`)
	// Second repository (loaded after "main", since files are read in sorted
	// order) re-declares foo 1.0 amd64: duplicate triple, skipped.
	writeYAML(t, filepath.Join(dir, "available", "other", "amd64.yml"), `
foo:
  "1.0":
    amd64: {}
`)

	set, warnings, err := LoadAvailable(filepath.Join(dir, "available", "*", "*.yml"), nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Reason, "duplicate")

	require.Len(t, set.Packages(), 2)
	require.Len(t, set.Virtuals(), 1)
	require.Len(t, set.Groups(), 1)

	v := set.Virtuals()[0]
	require.Equal(t, "foo-virtual", v.Name)
	require.Len(t, v.Providers, 1)
	require.Equal(t, "foo", v.Providers[0].Name)

	g := set.Groups()[0]
	require.Equal(t, "base", g.Name)
	require.Len(t, g.Members, 1)
}

func TestLoadInstalledRoundTrips(t *testing.T) {
	dir := t.TempDir()
	u := unit.NewPackage("foo", "1.0", "amd64", "main", unit.Metadata{
		Checksums: map[string]string{"sha1": "abc"},
	})
	u.PersistentFlags[unit.FlagInstalledByUser] = true
	doc := u.ToDocument()
	b, err := doc.Bytes()
	require.NoError(t, err)

	path := filepath.Join(dir, "installed", "foo", "1.0", "amd64", "metadata.yml")
	writeYAML(t, path, string(b))

	set, warnings, err := LoadInstalled(filepath.Join(dir, "installed", "*", "*", "*", "metadata.yml"))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, set.Packages(), 1)
	require.True(t, set.Packages()[0].HasFlag(unit.FlagInstalledByUser))
}

func TestLoadAvailableRejectsInvalidIdentifier(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, filepath.Join(dir, "available", "main", "amd64.yml"), `
Foo:
  "1.0":
    amd64: {}
`)

	_, _, err := LoadAvailable(filepath.Join(dir, "available", "*", "*.yml"), nil)
	require.Error(t, err)
}

func TestLoadAvailableRejectsInvalidProvides(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, filepath.Join(dir, "available", "main", "amd64.yml"), `
foo:
  "1.0":
    amd64:
      provides: ["Not_Valid"]
`)

	_, _, err := LoadAvailable(filepath.Join(dir, "available", "*", "*.yml"), nil)
	require.Error(t, err)
}

func TestLoadAvailableMissingDirIsEmpty(t *testing.T) {
	dir := t.TempDir()
	set, warnings, err := LoadAvailable(filepath.Join(dir, "available", "*", "*.yml"), nil)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Empty(t, set.Packages())
}

func TestCacheServesUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yml")
	require.NoError(t, os.WriteFile(path, []byte("foo: {}"), 0o644))

	cache, err := OpenCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	b1, err := cache.Bytes(path)
	require.NoError(t, err)
	require.Equal(t, "foo: {}", string(b1))

	b2, err := cache.Bytes(path)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
