package config

import (
	"github.com/martinjungblut/craft-package-manager/internal/errs"
	"github.com/martinjungblut/craft-package-manager/internal/validate"
)

// Validate enforces spec.md §4.3's configuration-specific rules:
// `architectures.default` must be one of `architectures.enabled`, every
// repository/architecture name must be a valid identifier, and `db`/`root`
// must resolve to existing writable+traversable directories.
func Validate(cfg *Configuration) error {
	if cfg.DB == "" {
		return &errs.SemanticError{Location: "db", Reason: "must be set"}
	}
	if cfg.Root == "" {
		return &errs.SemanticError{Location: "root", Reason: "must be set"}
	}

	if !validate.ValidIdentifier(cfg.Architectures.Default) {
		return &errs.SemanticError{Location: "architectures.default", Reason: "not a valid identifier"}
	}
	if len(cfg.Architectures.Enabled) == 0 {
		return &errs.SemanticError{Location: "architectures.enabled", Reason: "must list at least one architecture"}
	}

	found := false
	for _, a := range cfg.Architectures.Enabled {
		if !validate.ValidIdentifier(a) {
			return &errs.SemanticError{Location: "architectures.enabled", Reason: "contains an invalid identifier " + a}
		}
		if a == cfg.Architectures.Default {
			found = true
		}
	}
	if !found {
		return &errs.SemanticError{Location: "architectures.default", Reason: "must be one of architectures.enabled"}
	}

	for name, r := range cfg.Repositories {
		if !validate.ValidIdentifier(name) {
			return &errs.SemanticError{Location: "repositories", Reason: "invalid repository name " + name}
		}
		if r.Target == "" {
			return &errs.SemanticError{Location: "repositories." + name + ".target", Reason: "must be set"}
		}
		if r.Handler == "" {
			return &errs.SemanticError{Location: "repositories." + name + ".handler", Reason: "must be set"}
		}
	}

	for _, g := range cfg.Groups {
		if !validate.ValidIdentifier(g) {
			return &errs.SemanticError{Location: "groups", Reason: "invalid group name " + g}
		}
	}

	if err := validate.WritableTraversableDir(cfg.DB); err != nil {
		return &errs.SemanticError{Location: "db", Reason: err.Error()}
	}
	if err := validate.WritableTraversableDir(cfg.Root); err != nil {
		return &errs.SemanticError{Location: "root", Reason: err.Error()}
	}

	return nil
}
