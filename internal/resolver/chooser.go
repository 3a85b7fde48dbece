package resolver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// Chooser selects a provider Package when a VirtualPackage with more than
// one provider must be installed. Lifted behind an interface, per
// spec.md §9's design note, so tests can inject a deterministic policy
// instead of an interactive prompt.
type Chooser interface {
	Choose(virtual *unit.Unit) (*unit.Unit, error)
}

// FirstProviderChooser always picks the first provider in declaration
// order. Used as the default non-interactive policy and in tests.
type FirstProviderChooser struct{}

// Choose implements Chooser.
func (FirstProviderChooser) Choose(v *unit.Unit) (*unit.Unit, error) {
	if len(v.Providers) == 0 {
		return nil, &errs.BrokenDependency{Unit: v.Name, Target: v.Name}
	}
	return v.Providers[0], nil
}

// logger is the minimal interface InteractiveChooser needs from
// craftlog.Logger, kept local so this package doesn't import craftlog just
// for a prompt line.
type logger interface {
	Logf(format string, args ...interface{})
}

// InteractiveChooser implements spec.md §4.5's prompt: when a virtual
// package with more than one provider must be installed, it lists the
// providers and reads a chosen index from In. Used as cmd/craft's default
// policy; tests should inject FirstProviderChooser or a stub instead.
type InteractiveChooser struct {
	In  io.Reader
	Out logger
}

// Choose implements Chooser.
func (c InteractiveChooser) Choose(v *unit.Unit) (*unit.Unit, error) {
	if len(v.Providers) == 0 {
		return nil, &errs.BrokenDependency{Unit: v.Name, Target: v.Name}
	}
	if len(v.Providers) == 1 {
		return v.Providers[0], nil
	}

	c.Out.Logf("multiple packages provide %q:\n", v.Name)
	for i, p := range v.Providers {
		c.Out.Logf("  %d) %s\n", i+1, p.DisplayIdentity())
	}
	c.Out.Logf("select one [1-%d]: ", len(v.Providers))

	scanner := bufio.NewScanner(c.In)
	if !scanner.Scan() {
		return nil, fmt.Errorf("no selection made for %q", v.Name)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || idx < 1 || idx > len(v.Providers) {
		return nil, fmt.Errorf("invalid selection for %q", v.Name)
	}
	return v.Providers[idx-1], nil
}
