package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/repository"
)

const clearShortHelp = `Clear available-set state`
const clearLongHelp = `
Clear removes the available-set metadata for every configured repository.
With --cache, the whole <db>/available tree (metadata and downloaded
archives) is removed instead of just the *.yml metadata files.
`

type clearCommand struct {
	cache bool
}

func (cmd *clearCommand) Name() string      { return "clear" }
func (cmd *clearCommand) Args() string      { return "" }
func (cmd *clearCommand) ShortHelp() string { return clearShortHelp }
func (cmd *clearCommand) LongHelp() string  { return clearLongHelp }
func (cmd *clearCommand) Hidden() bool      { return false }

func (cmd *clearCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.cache, "cache", false, "also remove downloaded archives, not just metadata")
}

func (cmd *clearCommand) Run(ctx *app.Context, args []string) error {
	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := repository.New(ctx.Config).Clear(cmd.cache); err != nil {
		return err
	}
	ctx.Out.LogCraftfln("cleared available-set state")
	return nil
}
