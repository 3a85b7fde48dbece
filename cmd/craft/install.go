package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/executor"
	"github.com/martinjungblut/craft-package-manager/internal/registry"
	"github.com/martinjungblut/craft-package-manager/internal/repository"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

const installShortHelp = `Install one or more units`
const installLongHelp = `
Install resolves and installs the named units (packages, groups or virtual
packages) and their transitive dependencies, downloading any missing
archives from the unit's repository first.
`

type installCommand struct {
	cache bool
}

func (cmd *installCommand) Name() string      { return "install" }
func (cmd *installCommand) Args() string      { return "<unit> [unit...]" }
func (cmd *installCommand) ShortHelp() string { return installShortHelp }
func (cmd *installCommand) LongHelp() string  { return installLongHelp }
func (cmd *installCommand) Hidden() bool      { return false }

func (cmd *installCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.cache, "cache", false, "reuse the registry's bolt metadata cache")
}

func (cmd *installCommand) Run(ctx *app.Context, args []string) error {
	if len(args) == 0 {
		return &errs.SemanticError{Location: "install", Reason: "at least one unit must be named"}
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	var cache *registry.Cache
	if cmd.cache {
		cache, err = registry.OpenCache(ctx.Config.DB + "/.cache.bolt")
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	available, installed, err := ctx.LoadSets(cache)
	if err != nil {
		return err
	}

	attempt, err := targetAll(available, args)
	if err != nil {
		return err
	}

	plan, err := ctx.Resolver(installed, available).Install(attempt)
	if err != nil {
		return err
	}
	for _, note := range plan.Notes {
		ctx.Out.LogCraftfln("%s", note)
	}

	fetcher := repository.New(ctx.Config)
	exec := executor.New(ctx.Config.Root, ctx.Config.DB)

	for _, p := range plan.InstallOrder() {
		archivePath := ""
		if _, hasChecksum := p.Metadata.Checksums["sha1"]; hasChecksum {
			if err := fetcher.Download([]*unit.Unit{p}); err != nil {
				return err
			}
			archivePath = fetcher.CachePath(p)
		}
		if err := exec.InstallOne(p, archivePath, installed); err != nil {
			return err
		}
		p.Commit()
		ctx.Out.LogCraftfln("installed %s", p.DisplayIdentity())
	}

	return nil
}
