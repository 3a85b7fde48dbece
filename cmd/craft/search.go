package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

const searchShortHelp = `Search the available set by name or tag`
const searchLongHelp = `
Search prints every available package, group or virtual package whose name
(or, for packages, declared tags) contains the given term.
`

type searchCommand struct {
	installed bool
}

func (cmd *searchCommand) Name() string      { return "search" }
func (cmd *searchCommand) Args() string      { return "<term>" }
func (cmd *searchCommand) ShortHelp() string { return searchShortHelp }
func (cmd *searchCommand) LongHelp() string  { return searchLongHelp }
func (cmd *searchCommand) Hidden() bool      { return false }

func (cmd *searchCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.installed, "installed", false, "search the installed set instead of the available one")
}

func (cmd *searchCommand) Run(ctx *app.Context, args []string) error {
	if len(args) != 1 {
		return &errs.SemanticError{Location: "search", Reason: "exactly one search term must be given"}
	}

	available, installed, err := ctx.LoadSets(nil)
	if err != nil {
		return err
	}

	set := available
	if cmd.installed {
		set = installed
	}

	for _, u := range set.Search(args[0]) {
		ctx.Out.LogCraftfln("%s", describe(u))
	}
	return nil
}

func describe(u *unit.Unit) string {
	switch u.Kind {
	case unit.KindPackage:
		return u.DisplayIdentity()
	default:
		return u.Name + " (" + u.Kind.String() + ")"
	}
}
