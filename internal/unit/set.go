package unit

import (
	"sort"
	"strings"

	"github.com/martinjungblut/craft-package-manager/internal/dsl"
)

// Collision describes why Set rejected an addition - one of the four
// conflict rules spec.md §4.4 assigns to the registry (duplicate triple,
// or a name crossing the package/group/virtual namespaces). Set centralizes
// the three namespaces in one place since it is the structure that can see
// all of them at once; the loader turns a non-zero Collision into a
// warning and skips the addition, as spec.md requires.
type Collision int

const (
	NoCollision Collision = iota
	DuplicateTriple
	NameIsGroup
	NameIsVirtual
	NameIsPackage
)

// Set is a unique-by-display-identity container of Units, with a `target`
// lookup by parsed relationship and a `search` over names/tags.
type Set struct {
	packages     map[string]*Unit // DisplayIdentity -> Unit
	packageNames map[string]bool  // any name currently used by >=1 package
	virtuals     map[string]*Unit // name -> Unit
	groups       map[string]*Unit // name -> Unit
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		packages:     map[string]*Unit{},
		packageNames: map[string]bool{},
		virtuals:     map[string]*Unit{},
		groups:       map[string]*Unit{},
	}
}

// AddPackage inserts a Package, enforcing invariant 1 (no duplicate
// (name,version,arch) triple) and invariant 2 (a name can't denote both a
// Package and a Group/Virtual).
func (s *Set) AddPackage(p *Unit) Collision {
	if _, exists := s.groups[p.Name]; exists {
		return NameIsGroup
	}
	if _, exists := s.virtuals[p.Name]; exists {
		return NameIsVirtual
	}
	if _, exists := s.packages[p.DisplayIdentity()]; exists {
		return DuplicateTriple
	}
	s.packages[p.DisplayIdentity()] = p
	s.packageNames[p.Name] = true
	return NoCollision
}

// GetOrCreateVirtual returns the existing VirtualPackage named name, or
// lazily creates it - unless that name is already a Group or a Package, in
// which case it signals the collision instead.
func (s *Set) GetOrCreateVirtual(name string) (*Unit, Collision) {
	if _, exists := s.groups[name]; exists {
		return nil, NameIsGroup
	}
	if s.packageNames[name] {
		return nil, NameIsPackage
	}
	if v, exists := s.virtuals[name]; exists {
		return v, NoCollision
	}
	v := NewVirtualPackage(name)
	s.virtuals[name] = v
	return v, NoCollision
}

// GetOrCreateGroup mirrors GetOrCreateVirtual for Groups.
func (s *Set) GetOrCreateGroup(name string) (*Unit, Collision) {
	if _, exists := s.virtuals[name]; exists {
		return nil, NameIsVirtual
	}
	if s.packageNames[name] {
		return nil, NameIsPackage
	}
	if g, exists := s.groups[name]; exists {
		return g, NoCollision
	}
	g := NewGroup(name)
	s.groups[name] = g
	return g, NoCollision
}

// RemovePackage removes a Package from the Set by display identity. Used by
// the executor after a successful uninstall_one.
func (s *Set) RemovePackage(p *Unit) {
	delete(s.packages, p.DisplayIdentity())
	// packageNames is a coarse any-version-installed index; only drop the
	// name if no other triple for it remains.
	for _, q := range s.packages {
		if q.Name == p.Name {
			return
		}
	}
	delete(s.packageNames, p.Name)
}

// Packages returns every Package in the Set, sorted for deterministic
// iteration.
func (s *Set) Packages() []*Unit {
	out := make([]*Unit, 0, len(s.packages))
	for _, p := range s.packages {
		out = append(out, p)
	}
	sortUnits(out)
	return out
}

// Virtuals returns every VirtualPackage in the Set.
func (s *Set) Virtuals() []*Unit {
	out := make([]*Unit, 0, len(s.virtuals))
	for _, v := range s.virtuals {
		out = append(out, v)
	}
	sortUnits(out)
	return out
}

// Groups returns every Group in the Set.
func (s *Set) Groups() []*Unit {
	out := make([]*Unit, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	sortUnits(out)
	return out
}

func sortUnits(us []*Unit) {
	sort.Slice(us, func(i, j int) bool {
		if us[i].Name != us[j].Name {
			return us[i].Name < us[j].Name
		}
		return us[i].DisplayIdentity() < us[j].DisplayIdentity()
	})
}

// PackagesNamed returns every Package triple in the Set sharing name,
// regardless of architecture/version, sorted for deterministic iteration.
func (s *Set) PackagesNamed(name string) []*Unit {
	var out []*Unit
	for _, p := range s.packages {
		if p.Name == name {
			out = append(out, p)
		}
	}
	sortUnits(out)
	return out
}

// Target finds the unit satisfying a parsed relationship: exact name match
// for Groups/Virtuals (arch/version on a relationship naming a Group or
// Virtual are meaningless and ignored), or the Package with matching name,
// optional arch, and op/version constraint satisfied (highest version
// wins when more than one Package matches).
func (s *Set) Target(rel dsl.Relationship) (*Unit, bool) {
	if g, ok := s.groups[rel.Name]; ok {
		return g, true
	}
	if v, ok := s.virtuals[rel.Name]; ok {
		return v, true
	}

	var best *Unit
	for _, p := range s.packages {
		if p.Name != rel.Name {
			continue
		}
		if rel.Arch != "" && p.Architecture != rel.Arch {
			continue
		}
		if !rel.Satisfies(p.Version) {
			continue
		}
		if best == nil || dsl.Compare(p.Version, best.Version) > 0 {
			best = p
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Search returns every unit whose name, or (for Packages) tags, contain
// term as a case-insensitive substring.
func (s *Set) Search(term string) []*Unit {
	term = strings.ToLower(term)
	var out []*Unit

	for _, p := range s.packages {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
			continue
		}
		for _, tag := range p.Metadata.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				out = append(out, p)
				break
			}
		}
	}
	for _, v := range s.virtuals {
		if strings.Contains(strings.ToLower(v.Name), term) {
			out = append(out, v)
		}
	}
	for _, g := range s.groups {
		if strings.Contains(strings.ToLower(g.Name), term) {
			out = append(out, g)
		}
	}

	sortUnits(out)
	return out
}

// NameKind reports what kind of unit (if any) currently owns name in this
// Set, across all three namespaces.
func (s *Set) NameKind(name string) (Kind, bool) {
	if s.packageNames[name] {
		return KindPackage, true
	}
	if _, ok := s.virtuals[name]; ok {
		return KindVirtualPackage, true
	}
	if _, ok := s.groups[name]; ok {
		return KindGroup, true
	}
	return 0, false
}
