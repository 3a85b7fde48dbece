package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martinjungblut/craft-package-manager/internal/config"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

func testConfig(t *testing.T) *config.Configuration {
	t.Helper()
	dir := t.TempDir()
	return &config.Configuration{
		Architectures: config.Architectures{Default: "amd64", Enabled: []string{"amd64", "i386"}},
		DB:            dir,
		Root:          dir,
	}
}

func pkg(name, version, arch string, md unit.Metadata) *unit.Unit {
	return unit.NewPackage(name, version, arch, "main", md)
}

// Scenario 1 from spec.md §8: foo depends on bar, both available, nothing
// installed -> both end up in the plan with the right provenance flags.
func TestInstallResolvesDependency(t *testing.T) {
	available := unit.NewSet()
	foo := pkg("foo", "1.0", "amd64", unit.Metadata{Depends: []string{"bar:amd64"}})
	bar := pkg("bar", "1.0", "amd64", unit.Metadata{})
	available.AddPackage(foo)
	available.AddPackage(bar)

	r := New(testConfig(t), unit.NewSet(), available, nil)
	plan, err := r.Install([]*unit.Unit{foo})
	require.NoError(t, err)

	require.Len(t, plan.ToInstall.Packages(), 2)
	require.True(t, foo.HasFlag(unit.FlagInstalledByUser))
	require.True(t, bar.HasFlag(unit.FlagInstalledAsDependency))
}

// Scenario 2: bar absent from available -> BrokenDependency.
func TestInstallBrokenDependency(t *testing.T) {
	available := unit.NewSet()
	foo := pkg("foo", "1.0", "amd64", unit.Metadata{Depends: []string{"bar:amd64"}})
	available.AddPackage(foo)

	r := New(testConfig(t), unit.NewSet(), available, nil)
	_, err := r.Install([]*unit.Unit{foo})
	require.Error(t, err)
	var broken *errs.BrokenDependency
	require.ErrorAs(t, err, &broken)
}

// Scenario 3: installing a declares conflicts with already-installed b.
func TestInstallConflict(t *testing.T) {
	installed := unit.NewSet()
	b := pkg("b", "1", "amd64", unit.Metadata{})
	installed.AddPackage(b)

	available := unit.NewSet()
	a := pkg("a", "1", "amd64", unit.Metadata{Conflicts: []string{"b"}})
	available.AddPackage(a)

	r := New(testConfig(t), installed, available, nil)
	_, err := r.Install([]*unit.Unit{a})
	require.Error(t, err)
	var conflict *errs.Conflict
	require.ErrorAs(t, err, &conflict)
}

func TestInstallIdempotentNoOp(t *testing.T) {
	installed := unit.NewSet()
	foo := pkg("foo", "1.0", "amd64", unit.Metadata{})
	installed.AddPackage(foo)

	r := New(testConfig(t), installed, unit.NewSet(), nil)
	plan, err := r.Install([]*unit.Unit{foo})
	require.NoError(t, err)
	require.Empty(t, plan.ToInstall.Packages())
	require.Len(t, plan.Notes, 1)
}

func TestInstallDisallowedArchitecture(t *testing.T) {
	available := unit.NewSet()
	foo := pkg("foo", "1.0", "sparc", unit.Metadata{})
	available.AddPackage(foo)

	r := New(testConfig(t), unit.NewSet(), available, nil)
	_, err := r.Install([]*unit.Unit{foo})
	require.Error(t, err)
	var notAllowed *errs.PackageNotAllowed
	require.ErrorAs(t, err, &notAllowed)
}

func TestInstallGroupUnfoldsMembers(t *testing.T) {
	available := unit.NewSet()
	g, _ := available.GetOrCreateGroup("base")
	a := pkg("a", "1", "amd64", unit.Metadata{})
	available.AddPackage(a)
	g.Members = append(g.Members, a)

	r := New(testConfig(t), unit.NewSet(), available, nil)
	plan, err := r.Install([]*unit.Unit{g})
	require.NoError(t, err)
	require.Len(t, plan.ToInstall.Packages(), 1)
	require.True(t, a.HasFlag(unit.FlagInstalledByUser))
}

func TestInstallVirtualChoosesProvider(t *testing.T) {
	available := unit.NewSet()
	v, _ := available.GetOrCreateVirtual("editor")
	nano := pkg("nano", "1", "amd64", unit.Metadata{Provides: []string{"editor"}})
	available.AddPackage(nano)
	v.Providers = append(v.Providers, nano)

	r := New(testConfig(t), unit.NewSet(), available, nil)
	plan, err := r.Install([]*unit.Unit{v})
	require.NoError(t, err)
	require.Len(t, plan.ToInstall.Packages(), 1)
	require.Equal(t, "nano", plan.ToInstall.Packages()[0].Name)
}

// Uninstall safety: a depends on b; uninstalling b alone must be blocked.
func TestUninstallReverseDependencyGuard(t *testing.T) {
	installed := unit.NewSet()
	a := pkg("a", "1", "amd64", unit.Metadata{Depends: []string{"b"}})
	b := pkg("b", "1", "amd64", unit.Metadata{})
	installed.AddPackage(a)
	installed.AddPackage(b)

	r := New(testConfig(t), installed, unit.NewSet(), nil)
	plan, err := r.Uninstall([]*unit.Unit{b})
	require.NoError(t, err)
	require.Empty(t, plan.ToUninstall.Packages())
	require.Len(t, plan.Notes, 1)
}

func TestUninstallCascadesAutoremoval(t *testing.T) {
	installed := unit.NewSet()
	a := pkg("a", "1", "amd64", unit.Metadata{Depends: []string{"b"}})
	b := pkg("b", "1", "amd64", unit.Metadata{})
	installed.AddPackage(a)
	installed.AddPackage(b)

	r := New(testConfig(t), installed, unit.NewSet(), nil)
	plan, err := r.Uninstall([]*unit.Unit{a})
	require.NoError(t, err)
	require.Len(t, plan.ToUninstall.Packages(), 2)
}

func TestUninstallVirtualReverseDependencyViaProvides(t *testing.T) {
	installed := unit.NewSet()
	consumer := pkg("consumer", "1", "amd64", unit.Metadata{Depends: []string{"editor"}})
	nano := pkg("nano", "1", "amd64", unit.Metadata{Provides: []string{"editor"}})
	installed.AddPackage(consumer)
	installed.AddPackage(nano)

	r := New(testConfig(t), installed, unit.NewSet(), nil)
	plan, err := r.Uninstall([]*unit.Unit{nano})
	require.NoError(t, err)
	require.Empty(t, plan.ToUninstall.Packages())
}

// Scenario 4: lib 1.0 installed, lib 1.1 available -> upgrade replaces it
// and carries over persistent flags.
func TestUpgradeInheritsFlags(t *testing.T) {
	installed := unit.NewSet()
	lib10 := pkg("lib", "1.0", "amd64", unit.Metadata{})
	lib10.PersistentFlags[unit.FlagInstalledByUser] = true
	installed.AddPackage(lib10)

	available := unit.NewSet()
	lib11 := pkg("lib", "1.1", "amd64", unit.Metadata{})
	available.AddPackage(lib11)

	r := New(testConfig(t), installed, available, nil)
	plan, err := r.Upgrade([]*unit.Unit{lib10})
	require.NoError(t, err)

	require.Len(t, plan.ToInstall.Packages(), 1)
	require.Len(t, plan.ToUninstall.Packages(), 1)
	require.Equal(t, "1.1", plan.ToInstall.Packages()[0].Version)
	require.True(t, plan.ToInstall.Packages()[0].HasFlag(unit.FlagInstalledByUser))
}

func TestDowngradePicksLowerVersion(t *testing.T) {
	installed := unit.NewSet()
	lib20 := pkg("lib", "2.0", "amd64", unit.Metadata{})
	installed.AddPackage(lib20)

	available := unit.NewSet()
	available.AddPackage(pkg("lib", "1.0", "amd64", unit.Metadata{}))
	available.AddPackage(pkg("lib", "3.0", "amd64", unit.Metadata{}))

	r := New(testConfig(t), installed, available, nil)
	plan, err := r.Downgrade([]*unit.Unit{lib20})
	require.NoError(t, err)
	require.Equal(t, "1.0", plan.ToInstall.Packages()[0].Version)
}

func TestDependencyCycleTerminates(t *testing.T) {
	available := unit.NewSet()
	a := pkg("a", "1", "amd64", unit.Metadata{Depends: []string{"b"}})
	b := pkg("b", "1", "amd64", unit.Metadata{Depends: []string{"a"}})
	available.AddPackage(a)
	available.AddPackage(b)

	r := New(testConfig(t), unit.NewSet(), available, nil)
	plan, err := r.Install([]*unit.Unit{a})
	require.NoError(t, err)
	require.Len(t, plan.ToInstall.Packages(), 2)
}
