// Command craft is the CLI driver for the craft package manager: a thin
// dispatcher over one command per resolver operation plus search, sync,
// download, clear and enable-local, directly modeled on
// golang-dep's cmd/dep/main.go (command interface, flag-based dispatch,
// tabwriter usage rendering).
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/martinjungblut/craft-package-manager/internal/app"
	"github.com/martinjungblut/craft-package-manager/internal/config"
	"github.com/martinjungblut/craft-package-manager/internal/craftlog"
	"github.com/martinjungblut/craft-package-manager/internal/resolver"
)

// command is the contract every craft subcommand implements, mirroring the
// teacher's cmd/dep "command" interface with pflag's long-flag support
// layered over the teacher's flag.FlagSet.
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Hidden() bool
	Register(*pflag.FlagSet)
	Run(*app.Context, []string) error
}

func main() {
	c := &Config{
		Args:   os.Args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(c.Run())
}

// Config specifies a full configuration for a craft execution, mirroring
// cmd/dep's Config.
type Config struct {
	Args           []string
	Stdout, Stderr io.Writer
}

func commands() []command {
	return []command{
		&installCommand{},
		&uninstallCommand{},
		&upgradeCommand{},
		&downgradeCommand{},
		&searchCommand{},
		&syncCommand{},
		&downloadCommand{},
		&clearCommand{},
		&enableLocalCommand{},
		&versionCommand{},
	}
}

// Run executes a configuration and returns an exit code.
func (c *Config) Run() (exitCode int) {
	cmds := commands()

	outLogger := craftlog.New(c.Stdout)
	errLogger := craftlog.New(c.Stderr)

	usage := func() {
		errLogger.Logln("craft is a source-agnostic package manager")
		errLogger.Logln()
		errLogger.Logln("Usage: craft <command> [flags] [args]")
		errLogger.Logln()
		errLogger.Logln("Commands:")
		errLogger.Logln()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range cmds {
			if !cmd.Hidden() {
				fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
			}
		}
		w.Flush()
		errLogger.Logln()
		errLogger.Logln(`Use "craft <command> -h" for more information about a command.`)
	}

	cmdName, printCommandHelp, exit := parseArgs(c.Args)
	if exit {
		usage()
		return 1
	}

	for _, cmd := range cmds {
		if cmd.Name() != cmdName {
			continue
		}

		fs := pflag.NewFlagSet(cmdName, pflag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		verbose := fs.BoolP("verbose", "v", false, "enable verbose logging")
		configPath := fs.String("config", defaultConfigPath(), "path to the craft configuration file")

		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if printCommandHelp {
			fs.Usage()
			return 1
		}

		if err := fs.Parse(c.Args[2:]); err != nil {
			return 1
		}

		cfg, err := config.LoadFile(*configPath)
		if err != nil {
			errLogger.LogCraftfln("%v", err)
			return 1
		}

		ctx := &app.Context{
			Config:  cfg,
			Out:     outLogger,
			Err:     errLogger,
			Verbose: *verbose,
			Chooser: resolver.InteractiveChooser{In: os.Stdin, Out: outLogger},
		}

		if err := cmd.Run(ctx, fs.Args()); err != nil {
			errLogger.LogCraftfln("%v", err)
			return 1
		}
		return 0
	}

	errLogger.LogCraftfln("%s: no such command", cmdName)
	usage()
	return 1
}

func defaultConfigPath() string {
	if p := os.Getenv("CRAFT_CONFIG"); p != "" {
		return p
	}
	return "/etc/craft/craft.yml"
}

func resetUsage(logger *craftlog.Logger, fs *pflag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *pflag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t--%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.LogCraftfln("Usage: craft %s %s", name, args)
		logger.Logln()
		logger.Logln(strings.TrimSpace(longHelp))
		logger.Logln()
		if hasFlags {
			logger.Logln("Flags:")
			logger.Logln()
			logger.Logln(flagBlock.String())
		}
	}
}

// parseArgs determines the name of the craft command and whether the user
// asked for help to be printed, mirroring cmd/dep's parseArgs.
func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	isHelpArg := func() bool {
		return strings.Contains(strings.ToLower(args[1]), "help") || strings.ToLower(args[1]) == "-h"
	}

	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if isHelpArg() {
			exit = true
		}
		cmdName = args[1]
	default:
		if isHelpArg() {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}
