package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
)

const versionShortHelp = `Display version`
const versionLongHelp = `
Display version of this application.
`

// Version is craft's own release version, not to be confused with any
// unit's version string.
const Version = "0.1.0"

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return versionShortHelp }
func (cmd *versionCommand) LongHelp() string  { return versionLongHelp }
func (cmd *versionCommand) Hidden() bool      { return false }

func (cmd *versionCommand) Register(fs *pflag.FlagSet) {}

func (cmd *versionCommand) Run(ctx *app.Context, args []string) error {
	ctx.Out.Logln(Version)
	return nil
}
