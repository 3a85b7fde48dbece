package main

import (
	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/executor"
	"github.com/martinjungblut/craft-package-manager/internal/registry"
	"github.com/martinjungblut/craft-package-manager/internal/repository"
	"github.com/martinjungblut/craft-package-manager/internal/resolver"
	"github.com/martinjungblut/craft-package-manager/internal/unit"
)

const upgradeShortHelp = `Upgrade installed units to a newer available version`
const upgradeLongHelp = `
Upgrade replaces each named, installed unit with the best available
substitute of a strictly greater version (preferring a package that
declares it replaces the installed one), carrying over its persistent
flags and resolving any new dependency the substitute introduces.
`

type upgradeCommand struct {
	cache bool
}

func (cmd *upgradeCommand) Name() string      { return "upgrade" }
func (cmd *upgradeCommand) Args() string      { return "<unit> [unit...]" }
func (cmd *upgradeCommand) ShortHelp() string { return upgradeShortHelp }
func (cmd *upgradeCommand) LongHelp() string  { return upgradeLongHelp }
func (cmd *upgradeCommand) Hidden() bool      { return false }

func (cmd *upgradeCommand) Register(fs *pflag.FlagSet) {
	fs.BoolVar(&cmd.cache, "cache", false, "reuse the registry's bolt metadata cache")
}

func (cmd *upgradeCommand) Run(ctx *app.Context, args []string) error {
	return runSubstitute(ctx, args, cmd.cache, true)
}

// applyPlan materializes a plan's uninstalls (in reverse-dependency order)
// followed by its installs (dependency-first), the same per-package
// sequencing spec.md §5 requires of any resolver plan.
func applyPlan(ctx *app.Context, plan *resolver.Plan, installed *unit.Set, fetcher *repository.Fetcher) error {
	exec := executor.New(ctx.Config.Root, ctx.Config.DB)

	for _, p := range plan.UninstallOrder() {
		if err := exec.UninstallOne(p, false, installed); err != nil {
			return err
		}
		ctx.Out.LogCraftfln("uninstalled %s", p.DisplayIdentity())
	}

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

func runSubstitute(ctx *app.Context, args []string, useCache, up bool) error {
	if len(args) == 0 {
		return &errs.SemanticError{Location: "upgrade/downgrade", Reason: "at least one unit must be named"}
	}

	lock, err := ctx.Lock()
	if err != nil {
		return err
	}
	defer lock.Release()

	var cache *registry.Cache
	if useCache {
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

	attempt, err := targetAll(installed, args)
	if err != nil {
		return err
	}

	r := ctx.Resolver(installed, available)
	var plan *resolver.Plan
	if up {
		plan, err = r.Upgrade(attempt)
	} else {
		plan, err = r.Downgrade(attempt)
	}
	if err != nil {
		return err
	}
	for _, note := range plan.Notes {
		ctx.Out.LogCraftfln("%s", note)
	}

	return applyPlan(ctx, plan, installed, repository.New(ctx.Config))
}
