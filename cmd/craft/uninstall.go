package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/executor"
)

const uninstallShortHelp = `Uninstall one or more installed units`
const uninstallLongHelp = `
Uninstall removes the named units and cascades to any dependency that
becomes autoremovable as a result, refusing to remove a package still
required by another installed package.
`

type uninstallCommand struct {
	keepStatic bool
}

func (cmd *uninstallCommand) Name() string      { return "uninstall" }
func (cmd *uninstallCommand) Args() string      { return "<unit> [unit...]" }
func (cmd *uninstallCommand) ShortHelp() string { return uninstallShortHelp }
func (cmd *uninstallCommand) LongHelp() string  { return uninstallLongHelp }
func (cmd *uninstallCommand) Hidden() bool      { return false }

func (cmd *uninstallCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.keepStatic, "keep-static", false, "preserve files the package marked static, renamed to *.craft-old")
}

func (cmd *uninstallCommand) Run(ctx *app.Context, args []string) error {
	if len(args) == 0 {
		return &errs.SemanticError{Location: "uninstall", Reason: "at least one unit must be named"}
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	available, installed, err := ctx.LoadSets(nil)
	if err != nil {
		return err
	}

	attempt, err := targetAll(installed, args)
	if err != nil {
		return err
	}

	plan, err := ctx.Resolver(installed, available).Uninstall(attempt)
	if err != nil {
		return err
	}
	for _, note := range plan.Notes {
		ctx.Out.LogCraftfln("%s", note)
	}

	exec := executor.New(ctx.Config.Root, ctx.Config.DB)
	for _, p := range plan.UninstallOrder() {
		if err := exec.UninstallOne(p, cmd.keepStatic, installed); err != nil {
			return err
		}
		ctx.Out.LogCraftfln("uninstalled %s", p.DisplayIdentity())
	}

	return nil
}
