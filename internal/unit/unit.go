// Package unit implements craft's core data model: the closed Package /
// VirtualPackage / Group sum type, and Set, the unique-by-identity
// container the rest of the engine (registry, resolver, executor) plans
// and mutates against.
//
// Unit is modeled as a single struct discriminated by Kind, per the
// "tagged variant" option the design favors when the universe of kinds is
// closed - rather than as an interface with three concrete
// implementations, so that capability dispatch (installable,
// uninstallable, ...) is a plain switch instead of a type assertion.
package unit

// Kind discriminates the three unit variants.
type Kind int

const (
	KindPackage Kind = iota
	KindVirtualPackage
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindVirtualPackage:
		return "virtual"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Metadata holds everything a Package carries beyond name/version/arch.
type Metadata struct {
	Checksums    map[string]string
	StaticFiles  []string
	Depends      []string
	Conflicts    []string
	Provides     []string
	Replaces     []string
	Groups       []string
	Maintainers  []string
	Tags         []string
	Misc         map[string]string
}

// Unit is the sum of Package, VirtualPackage and Group.
type Unit struct {
	Kind Kind
	Name string

	// Package-only fields.
	Architecture string
	Version      string
	Repository   string
	Metadata     Metadata

	// Flags: persistent ones are serialized to metadata.yml; temporary
	// ones exist only for the lifetime of a resolver run, until Commit
	// promotes them.
	PersistentFlags map[string]bool
	TemporaryFlags  map[string]bool

	// VirtualPackage-only: the Packages that provide this virtual name.
	Providers []*Unit

	// Group-only: the Packages that are members of this group.
	Members []*Unit
}

// Flag names the resolver sets on Packages it plans to install.
const (
	FlagInstalledByUser      = "installed-by-user"
	FlagInstalledAsDependency = "installed-as-dependency"
)

// NewPackage constructs a Package unit with initialized flag maps.
func NewPackage(name, version, arch, repository string, md Metadata) *Unit {
	return &Unit{
		Kind:            KindPackage,
		Name:            name,
		Version:         version,
		Architecture:    arch,
		Repository:      repository,
		Metadata:        md,
		PersistentFlags: map[string]bool{},
		TemporaryFlags:  map[string]bool{},
	}
}

// NewVirtualPackage constructs an empty VirtualPackage; providers are
// appended as packages declaring it via `provides` are registered.
func NewVirtualPackage(name string) *Unit {
	return &Unit{Kind: KindVirtualPackage, Name: name}
}

// NewGroup constructs an empty Group; members are appended as packages
// declaring it via `groups` are registered.
func NewGroup(name string) *Unit {
	return &Unit{Kind: KindGroup, Name: name}
}

// DisplayIdentity is the key Set uses for uniqueness: "name:arch version"
// for Packages, "name" for Groups/Virtuals.
func (u *Unit) DisplayIdentity() string {
	if u.Kind == KindPackage {
		return u.Name + ":" + u.Architecture + " " + u.Version
	}
	return u.Name
}

// Equal implements spec.md's identity/equality rule: same name and, for
// Packages, the same architecture/version triple.
func (u *Unit) Equal(o *Unit) bool {
	if u == nil || o == nil {
		return u == o
	}
	if u.Kind != o.Kind || u.Name != o.Name {
		return false
	}
	if u.Kind == KindPackage {
		return u.Architecture == o.Architecture && u.Version == o.Version
	}
	return true
}

// Installable reports whether this unit kind participates directly in
// resolver.install's traversal. Packages and Groups are; a VirtualPackage
// is only ever installed by way of one of its Providers.
func (u *Unit) Installable() bool {
	return u.Kind == KindPackage || u.Kind == KindGroup
}

// Uninstallable mirrors Installable for the uninstall traversal.
func (u *Unit) Uninstallable() bool {
	return u.Kind == KindPackage || u.Kind == KindGroup
}

// Upgradeable/Downgradeable: only concrete Packages carry a version to
// move away from.
func (u *Unit) Upgradeable() bool   { return u.Kind == KindPackage }
func (u *Unit) Downgradeable() bool { return u.Kind == KindPackage }

// Conflictable reports whether this unit's conflicts list should be
// checked during planning - only Packages declare conflicts.
func (u *Unit) Conflictable() bool { return u.Kind == KindPackage }

// HasFlag reports whether a flag is set, persistent or temporary.
func (u *Unit) HasFlag(name string) bool {
	return u.PersistentFlags[name] || u.TemporaryFlags[name]
}

// SetTemporaryFlag sets a temporary (in-memory only) flag.
func (u *Unit) SetTemporaryFlag(name string) {
	if u.TemporaryFlags == nil {
		u.TemporaryFlags = map[string]bool{}
	}
	u.TemporaryFlags[name] = true
}

// Commit promotes every temporary flag to persistent, clearing the
// temporary set. Called once a plan involving this unit has been
// materialized to disk by the executor.
func (u *Unit) Commit() {
	if u.PersistentFlags == nil {
		u.PersistentFlags = map[string]bool{}
	}
	for f := range u.TemporaryFlags {
		u.PersistentFlags[f] = true
	}
	u.TemporaryFlags = map[string]bool{}
}

// AsTarget returns the identifier this unit is referred to by when it
// appears on the right-hand side of another unit's dependency/conflict
// list: its bare name (VirtualPackage/Group matches are by name only;
// Packages are matched by name, with arch/version filtered separately by
// Set.Target).
func (u *Unit) AsTarget() string {
	return u.Name
}

// ProvidesName reports whether this Package declares `name` via its
// `provides` list.
func (u *Unit) ProvidesName(name string) bool {
	for _, p := range u.Metadata.Provides {
		if p == name {
			return true
		}
	}
	return false
}
