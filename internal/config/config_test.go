package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "craft.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileValidConfiguration(t *testing.T) {
	db := t.TempDir()
	root := t.TempDir()

	body := `
repositories:
  main:
    target: http://example.test/main
    handler: /usr/bin/curl-handler
architectures:
  default: amd64
  enabled: [amd64, i386]
groups: [base]
db: ` + db + `
root: ` + root + `
`
	cfg, err := LoadFile(writeConfig(t, body))
	require.NoError(t, err)
	require.Equal(t, "amd64", cfg.Architectures.Default)
	require.Equal(t, []string{"amd64", "i386"}, cfg.Architectures.Enabled)
	require.Equal(t, db, cfg.DB)
	require.Equal(t, root, cfg.Root)
	require.Equal(t, "http://example.test/main", cfg.Repositories["main"].Target)
}

func TestLoadFileRejectsDefaultNotInEnabled(t *testing.T) {
	db := t.TempDir()
	root := t.TempDir()

	body := `
architectures:
  default: sparc
  enabled: [amd64]
db: ` + db + `
root: ` + root + `
`
	_, err := LoadFile(writeConfig(t, body))
	require.Error(t, err)
}

func TestLoadFileRejectsMissingDB(t *testing.T) {
	root := t.TempDir()
	body := `
architectures:
  default: amd64
  enabled: [amd64]
db: /does/not/exist
root: ` + root + `
`
	_, err := LoadFile(writeConfig(t, body))
	require.Error(t, err)
}

func TestIsUnitAllowed(t *testing.T) {
	cfg := &Configuration{Architectures: Architectures{Default: "amd64", Enabled: []string{"amd64"}}}

	allowed := unit.NewPackage("foo", "1.0", "amd64", "main", unit.Metadata{})
	require.True(t, cfg.IsUnitAllowed(allowed))

	disallowed := unit.NewPackage("foo", "1.0", "sparc", "main", unit.Metadata{})
	require.False(t, cfg.IsUnitAllowed(disallowed))

	group := unit.NewGroup("base")
	require.True(t, cfg.IsUnitAllowed(group))
}
