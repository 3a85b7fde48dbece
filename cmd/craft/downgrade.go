package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
)

const downgradeShortHelp = `Downgrade installed units to an older available version`
const downgradeLongHelp = `
Downgrade is symmetric to upgrade: it replaces each named, installed unit
with the best available substitute of a strictly lesser version.
`

type downgradeCommand struct {
	cache bool
}

func (cmd *downgradeCommand) Name() string      { return "downgrade" }
func (cmd *downgradeCommand) Args() string      { return "<unit> [unit...]" }
func (cmd *downgradeCommand) ShortHelp() string { return downgradeShortHelp }
func (cmd *downgradeCommand) LongHelp() string  { return downgradeLongHelp }
func (cmd *downgradeCommand) Hidden() bool      { return false }

func (cmd *downgradeCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.cache, "cache", false, "reuse the registry's bolt metadata cache")
}

func (cmd *downgradeCommand) Run(ctx *app.Context, args []string) error {
	return runSubstitute(ctx, args, cmd.cache, false)
}
