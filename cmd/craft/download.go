package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/repository"
)

const downloadShortHelp = `Download an archive into the repository cache`
const downloadLongHelp = `
Download ensures package.tar.gz is present in the cache directory of each
named unit's repository, without installing it.
`

type downloadCommand struct{}

func (cmd *downloadCommand) Name() string      { return "download" }
func (cmd *downloadCommand) Args() string      { return "<unit> [unit...]" }
func (cmd *downloadCommand) ShortHelp() string { return downloadShortHelp }
func (cmd *downloadCommand) LongHelp() string  { return downloadLongHelp }
func (cmd *downloadCommand) Hidden() bool      { return false }

func (cmd *downloadCommand) Register(fs *pflag.FlagSet) {}

func (cmd *downloadCommand) Run(ctx *app.Context, args []string) error {
	if len(args) == 0 {
		return &errs.SemanticError{Location: "download", Reason: "at least one unit must be named"}
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	available, _, err := ctx.LoadSets(nil)
	if err != nil {
		return err
	}

	units, err := targetAll(available, args)
	if err != nil {
		return err
	}

	for _, u := range units {
		ctx.Out.Verbosef(ctx.Verbose, "craft: fetching %s from repository %q\n", u.DisplayIdentity(), u.Repository)
	}
	if err := repository.New(ctx.Config).Download(units); err != nil {
		return err
	}
	for _, u := range units {
		ctx.Out.LogCraftfln("downloaded %s", u.DisplayIdentity())
	}
	return nil
}
