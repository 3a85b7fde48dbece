// Package resolver implements spec.md §4.5's four planning operations:
// install, uninstall, upgrade, downgrade. Every operation is a pure
// function of (configuration, installed set, available set, user-supplied
// units) - no I/O, no mutation of the Sets it's handed. Grounded on
// golang-dep's solver.go for the general shape of a recursive
// dependency-graph traversal with a visited-set cycle guard, generalized
// here from a backtracking SAT-style search (the teacher's actual
// algorithm, which this system deliberately does not need - see
// DESIGN.md) down to the deterministic traversal spec.md §4.5 describes.
package resolver

import (
	"fmt"

	"github.com/martinjungblut/craft-package-manager/internal/config"
	"github.com/martinjungblut/craft-package-manager/internal/dsl"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// Plan is the output of a resolver operation: the units to install and/or
// uninstall, plus any non-fatal notes (idempotent no-ops, autoremoval
// guards that kept a package installed).
type Plan struct {
	ToInstall   *unit.Set
	ToUninstall *unit.Set
	Notes       []string
}

// Resolver plans transactions against a fixed (configuration, installed,
// available) triple.
type Resolver struct {
	Configuration *config.Configuration
	Installed     *unit.Set
	Available     *unit.Set
	Chooser       Chooser
}

// New returns a Resolver. chooser may be nil, in which case a
// FirstProviderChooser is used (deterministic, non-interactive).
func New(cfg *config.Configuration, installed, available *unit.Set, chooser Chooser) *Resolver {
	if chooser == nil {
		chooser = FirstProviderChooser{}
	}
	return &Resolver{Configuration: cfg, Installed: installed, Available: available, Chooser: chooser}
}

// Install plans installation of attempt and its transitive dependencies,
// per spec.md §4.5's install().
func (r *Resolver) Install(attempt []*unit.Unit) (*Plan, error) {
	plan := unit.NewSet()
	visited := map[*unit.Unit]bool{}
	var notes []string

	for _, u := range attempt {
		if u.Kind == unit.KindPackage && r.installedContains(u) {
			notes = append(notes, fmt.Sprintf("%s is already installed", u.DisplayIdentity()))
			continue
		}
		if err := r.targetInstall(u, true, plan, visited, &notes); err != nil {
			return nil, err
		}
	}

	for _, p := range plan.Packages() {
		if !r.Configuration.IsUnitAllowed(p) {
			return nil, &errs.PackageNotAllowed{Unit: p.DisplayIdentity()}
		}
	}

	for _, p := range plan.Packages() {
		if other, ok := r.conflicting(p, plan); ok {
			return nil, &errs.Conflict{A: p.DisplayIdentity(), B: other.DisplayIdentity()}
		}
	}

	return &Plan{ToInstall: plan, ToUninstall: unit.NewSet(), Notes: notes}, nil
}

// targetInstall recursively targets u for installation into plan. Groups
// unfold into their members; VirtualPackages resolve to a chosen provider;
// Packages are added to plan and have their own dependencies recursively
// targeted. userNamed controls whether the resulting Package is flagged
// installed-by-user or installed-as-dependency.
func (r *Resolver) targetInstall(u *unit.Unit, userNamed bool, plan *unit.Set, visited map[*unit.Unit]bool, notes *[]string) error {
	if visited[u] {
		return nil
	}
	visited[u] = true

	switch u.Kind {
	case unit.KindGroup:
		for _, m := range u.Members {
			if err := r.targetInstall(m, userNamed, plan, visited, notes); err != nil {
				return err
			}
		}
		return nil
	case unit.KindVirtualPackage:
		provider, err := r.Chooser.Choose(u)
		if err != nil {
			return err
		}
		return r.targetInstall(provider, userNamed, plan, visited, notes)
	}

	if userNamed {
		u.SetTemporaryFlag(unit.FlagInstalledByUser)
	} else {
		u.SetTemporaryFlag(unit.FlagInstalledAsDependency)
	}
	plan.AddPackage(u)

	for _, depStr := range u.Metadata.Depends {
		rel, ok := dsl.ParseRelationship(depStr)
		if !ok {
			continue
		}
		if _, ok := r.Installed.Target(rel); ok {
			continue
		}
		target, ok := r.Available.Target(rel)
		if !ok {
			return &errs.BrokenDependency{Unit: u.DisplayIdentity(), Target: rel.String()}
		}
		if err := r.targetInstall(target, false, plan, visited, notes); err != nil {
			return err
		}
	}
	return nil
}

// conflicting reports a unit in installed∪plan (other than p itself) that
// p's conflicts list matches.
func (r *Resolver) conflicting(p *unit.Unit, plan *unit.Set) (*unit.Unit, bool) {
	if !p.Conflictable() {
		return nil, false
	}
	candidates := append(append([]*unit.Unit{}, r.Installed.Packages()...), plan.Packages()...)
	for _, c := range p.Metadata.Conflicts {
		rel, ok := dsl.ParseRelationship(c)
		if !ok {
			continue
		}
		for _, other := range candidates {
			if other == p {
				continue
			}
			if other.Name != rel.Name {
				continue
			}
			if rel.Arch != "" && other.Architecture != rel.Arch {
				continue
			}
			if !rel.Satisfies(other.Version) {
				continue
			}
			return other, true
		}
	}
	return nil, false
}

// Uninstall plans removal of attempt and any dependency that becomes
// autoremovable as a result, per spec.md §4.5's uninstall().
func (r *Resolver) Uninstall(attempt []*unit.Unit) (*Plan, error) {
	toUninstall := unit.NewSet()
	visited := map[*unit.Unit]bool{}
	var notes []string

	for _, u := range attempt {
		if u.Kind == unit.KindPackage && !r.installedContains(u) {
			notes = append(notes, fmt.Sprintf("%s is not installed", u.DisplayIdentity()))
			continue
		}
		r.targetUninstall(u, visited, toUninstall, &notes)
	}

	return &Plan{ToInstall: unit.NewSet(), ToUninstall: toUninstall, Notes: notes}, nil
}

// targetUninstall recursively targets u for removal. Groups unfold into
// members, Virtuals recurse into every provider. A Package is untargeted
// (and a note emitted) if another installed Package not already in
// toUninstall still depends on it, directly or via a provided virtual
// name - otherwise it commits to toUninstall and its own dependencies are
// considered for cascading autoremoval.
func (r *Resolver) targetUninstall(u *unit.Unit, visited map[*unit.Unit]bool, toUninstall *unit.Set, notes *[]string) {
	if visited[u] {
		return
	}
	visited[u] = true

	switch u.Kind {
	case unit.KindGroup:
		for _, m := range u.Members {
			r.targetUninstall(m, visited, toUninstall, notes)
		}
		return
	case unit.KindVirtualPackage:
		for _, p := range u.Providers {
			r.targetUninstall(p, visited, toUninstall, notes)
		}
		return
	}

	if blocker, ok := r.reverseDependency(u, toUninstall); ok {
		*notes = append(*notes, fmt.Sprintf("keeping %s: required by %s", u.DisplayIdentity(), blocker.DisplayIdentity()))
		delete(visited, u)
		return
	}

	toUninstall.AddPackage(u)

	for _, depStr := range u.Metadata.Depends {
		rel, ok := dsl.ParseRelationship(depStr)
		if !ok {
			continue
		}
		if target, ok := r.Installed.Target(rel); ok {
			r.targetUninstall(target, visited, toUninstall, notes)
		}
	}
}

// reverseDependency reports an installed Package (other than self, and not
// already committed to toUninstall) whose dependencies name self.AsTarget()
// or any name self provides.
func (r *Resolver) reverseDependency(self *unit.Unit, toUninstall *unit.Set) (*unit.Unit, bool) {
	names := append([]string{self.AsTarget()}, self.Metadata.Provides...)

	for _, p := range r.Installed.Packages() {
		if p == self || containsPointer(toUninstall, p) {
			continue
		}
		for _, depStr := range p.Metadata.Depends {
			rel, ok := dsl.ParseRelationship(depStr)
			if !ok {
				continue
			}
			for _, n := range names {
				if rel.Name == n {
					return p, true
				}
			}
		}
	}
	return nil, false
}

// Upgrade plans replacing every installed, user-named, upgradeable unit in
// attempt with the best available substitute of a strictly greater
// version, per spec.md §4.5's upgrade().
func (r *Resolver) Upgrade(attempt []*unit.Unit) (*Plan, error) {
	return r.substitute(attempt, true)
}

// Downgrade is symmetric to Upgrade: the substitute's version must be
// strictly less than the installed unit's.
func (r *Resolver) Downgrade(attempt []*unit.Unit) (*Plan, error) {
	return r.substitute(attempt, false)
}

func (r *Resolver) substitute(attempt []*unit.Unit, up bool) (*Plan, error) {
	toInstall := unit.NewSet()
	toUninstall := unit.NewSet()
	visited := map[*unit.Unit]bool{}
	var notes []string

	for _, self := range attempt {
		if self.Kind != unit.KindPackage || !r.installedContains(self) {
			continue
		}
		if !self.Upgradeable() {
			continue
		}
		if err := r.substituteOne(self, up, toInstall, toUninstall, visited, &notes); err != nil {
			return nil, err
		}
	}

	return &Plan{ToInstall: toInstall, ToUninstall: toUninstall, Notes: notes}, nil
}

func (r *Resolver) substituteOne(self *unit.Unit, up bool, toInstall, toUninstall *unit.Set, visited map[*unit.Unit]bool, notes *[]string) error {
	if visited[self] {
		return nil
	}
	visited[self] = true

	sub := r.findSubstitute(self, up)
	if sub == nil {
		*notes = append(*notes, fmt.Sprintf("no %s candidate for %s", direction(up), self.DisplayIdentity()))
		return nil
	}

	for f, set := range self.PersistentFlags {
		if set {
			sub.PersistentFlags[f] = true
		}
	}

	toUninstall.AddPackage(self)
	toInstall.AddPackage(sub)

	for _, depStr := range sub.Metadata.Depends {
		rel, ok := dsl.ParseRelationship(depStr)
		if !ok {
			continue
		}
		if installedTarget, ok := r.Installed.Target(rel); ok {
			if err := r.substituteOne(installedTarget, up, toInstall, toUninstall, visited, notes); err != nil {
				return err
			}
			continue
		}
		availTarget, ok := r.Available.Target(rel)
		if !ok {
			return &errs.BrokenDependency{Unit: sub.DisplayIdentity(), Target: rel.String()}
		}
		if err := r.targetInstall(availTarget, false, toInstall, visited, notes); err != nil {
			return err
		}
	}
	return nil
}

// findSubstitute picks the Package self should move to: first, any
// available Package whose replaces list names self (the highest version
// if several do); otherwise the highest-version available Package of the
// same (name, arch) on the requested side of self's version (greater for
// upgrade, lesser for downgrade).
func (r *Resolver) findSubstitute(self *unit.Unit, up bool) *unit.Unit {
	var best *unit.Unit
	for _, p := range r.Available.Packages() {
		for _, replaced := range p.Metadata.Replaces {
			if replaced == self.Name && (best == nil || dsl.Compare(p.Version, best.Version) > 0) {
				best = p
			}
		}
	}
	if best != nil {
		return best
	}

	for _, p := range r.Available.Packages() {
		if p.Name != self.Name || p.Architecture != self.Architecture {
			continue
		}
		cmp := dsl.Compare(p.Version, self.Version)
		if up && cmp <= 0 {
			continue
		}
		if !up && cmp >= 0 {
			continue
		}
		if best == nil {
			best = p
			continue
		}
		if up && dsl.Compare(p.Version, best.Version) > 0 {
			best = p
		}
		if !up && dsl.Compare(p.Version, best.Version) > 0 {
			best = p
		}
	}
	return best
}

func direction(up bool) string {
	if up {
		return "upgrade"
	}
	return "downgrade"
}

func (r *Resolver) installedContains(u *unit.Unit) bool {
	for _, p := range r.Installed.Packages() {
		if p.Name == u.Name && p.Architecture == u.Architecture && p.Version == u.Version {
			return true
		}
	}
	return false
}

func containsPointer(s *unit.Set, u *unit.Unit) bool {
	for _, p := range s.Packages() {
		if p == u {
			return true
		}
	}
	return false
}

// InstallOrder returns ToInstall's packages ordered so that every
// package's dependencies precede it, per spec.md §5's execution-ordering
// guarantee. Cycles (permitted by the data model) are broken arbitrarily
// rather than causing non-termination.
func (p *Plan) InstallOrder() []*unit.Unit {
	return topoOrder(p.ToInstall.Packages())
}

// UninstallOrder returns ToUninstall's packages in the reverse of
// InstallOrder - dependents before the dependencies they required.
func (p *Plan) UninstallOrder() []*unit.Unit {
	order := topoOrder(p.ToUninstall.Packages())
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// topoOrder returns units in dependency-first order, considering only
// edges whose target is also present in units. visiting/done is a
// standard DFS postorder with a permitted-cycle guard: a unit already on
// the current path is simply skipped rather than revisited.
func topoOrder(units []*unit.Unit) []*unit.Unit {
	byName := make(map[string]*unit.Unit, len(units))
	for _, u := range units {
		byName[u.Name] = u
	}

	var out []*unit.Unit
	visiting := map[*unit.Unit]bool{}
	done := map[*unit.Unit]bool{}

	var visit func(u *unit.Unit)
	visit = func(u *unit.Unit) {
		if done[u] || visiting[u] {
			return
		}
		visiting[u] = true
		for _, depStr := range u.Metadata.Depends {
			rel, ok := dsl.ParseRelationship(depStr)
			if !ok {
				continue
			}
			if target, ok := byName[rel.Name]; ok {
				visit(target)
			}
		}
		visiting[u] = false
		done[u] = true
		out = append(out, u)
	}

	for _, u := range units {
		visit(u)
	}
	return out
}
