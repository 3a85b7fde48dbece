package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/repository"
)

const enableLocalShortHelp = `Enable a pre-built repository snapshot archive`
const enableLocalLongHelp = `
Enable-local extracts a pre-built repository snapshot archive directly into
<db>/available, for use when metadata was prepared offline rather than
synced from a live repository.
`

type enableLocalCommand struct{}

func (cmd *enableLocalCommand) Name() string      { return "enable-local" }
func (cmd *enableLocalCommand) Args() string      { return "<archive>" }
func (cmd *enableLocalCommand) ShortHelp() string { return enableLocalShortHelp }
func (cmd *enableLocalCommand) LongHelp() string  { return enableLocalLongHelp }
func (cmd *enableLocalCommand) Hidden() bool      { return false }

func (cmd *enableLocalCommand) Register(fs *pflag.FlagSet) {}

func (cmd *enableLocalCommand) Run(ctx *app.Context, args []string) error {
	if len(args) != 1 {
		return &errs.SemanticError{Location: "enable-local", Reason: "exactly one archive path must be given"}
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := repository.New(ctx.Config).EnableLocal(args[0]); err != nil {
		return err
	}
	ctx.Out.LogCraftfln("enabled local repository snapshot %s", args[0])
	return nil
}
