package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/repository"
)

const syncShortHelp = `Refresh available metadata from every configured repository`
const syncLongHelp = `
Sync invokes every enabled repository's handler once per enabled
architecture, refreshing <db>/available/<repo>/<arch>.yml. A single
architecture's failure is a warning, not a fatal error.
`

type syncCommand struct{}

func (cmd *syncCommand) Name() string      { return "sync" }
func (cmd *syncCommand) Args() string      { return "" }
func (cmd *syncCommand) ShortHelp() string { return syncShortHelp }
func (cmd *syncCommand) LongHelp() string  { return syncLongHelp }
func (cmd *syncCommand) Hidden() bool      { return false }

func (cmd *syncCommand) Register(fs *pflag.FlagSet) {}

func (cmd *syncCommand) Run(ctx *app.Context, args []string) error {
	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	warnings, err := repository.New(ctx.Config).Sync()
	for _, w := range warnings {
		ctx.Err.LogCraftfln("warning: %s", w)
	}
	if err != nil {
		return err
	}
	return nil
}
