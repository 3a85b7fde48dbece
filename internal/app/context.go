// Package app carries the supporting context threaded through every
// cmd/craft command, directly modeled on golang-dep's dep.Ctx
// (context.go): a small struct built once in main and passed by pointer
// into each command's Run.
package app

import (
	"github.com/martinjungblut/craft-package-manager/internal/config"
	"github.com/martinjungblut/craft-package-manager/internal/craftlock"
	"github.com/martinjungblut/craft-package-manager/internal/craftlog"
	"github.com/martinjungblut/craft-package-manager/internal/registry"
	"github.com/martinjungblut/craft-package-manager/internal/resolver"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

// Context defines the supporting context of the tool: the loaded
// configuration, the two output loggers (matching cmd/dep/main.go's
// outLogger/errLogger split), and a Chooser for interactive virtual
// package resolution.
type Context struct {
	Config  *config.Configuration
	Out     *craftlog.Logger
	Err     *craftlog.Logger
	Verbose bool
	Chooser resolver.Chooser
}

// LoadSets loads the available and installed Sets named by ctx.Config,
// logging any non-fatal registry warnings to Err.
func (ctx *Context) LoadSets(cache *registry.Cache) (available, installed *unit.Set, err error) {
	available, warnings, err := registry.LoadAvailable(ctx.Config.AvailableGlob(), cache)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		ctx.Err.LogCraftfln("warning: %s", w.String())
	}

	installed, warnings, err = registry.LoadInstalled(ctx.Config.InstalledGlob())
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		ctx.Err.LogCraftfln("warning: %s", w.String())
	}

	return available, installed, nil
}

// Resolver builds a resolver.Resolver over the given sets, using ctx's
// configured Chooser.
func (ctx *Context) Resolver(installed, available *unit.Set) *resolver.Resolver {
	return resolver.New(ctx.Config, installed, available, ctx.Chooser)
}

// Lock acquires the advisory lock on ctx.Config's db for the duration of
// a mutating operation, per spec.md §5.
func (ctx *Context) Lock() (*craftlock.Lock, error) {
	l := craftlock.New(ctx.Config.LockPath())
	if err := l.Acquire(); err != nil {
		return nil, err
	}
	return l, nil
}
