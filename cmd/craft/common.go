package main

import (
	"github.com/martinjungblut/craft-package-manager/internal/dsl"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// targetAll parses every relationship string in args and resolves it
// against set. The first argument that fails to parse surfaces as a
// SemanticError; the first that parses but matches nothing surfaces as a
// BrokenDependency - the same error kind the resolver itself raises for an
// unresolvable dependency, since a user-named unit that can't be found is
// the same failure from the operator's point of view.
func targetAll(set *unit.Set, args []string) ([]*unit.Unit, error) {
	out := make([]*unit.Unit, 0, len(args))
	for _, a := range args {
		rel, ok := dsl.ParseRelationship(a)
		if !ok {
			return nil, &errs.SemanticError{Location: "argument", Reason: "not a valid relationship: " + a}
		}
		u, ok := set.Target(rel)
		if !ok {
			return nil, &errs.BrokenDependency{Unit: "command line", Target: rel.String()}
		}
		out = append(out, u)
	}
	return out, nil
}
