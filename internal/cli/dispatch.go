// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskmgr/internal/app"
	"taskmgr/internal/commands"
	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
)

// AppFactory creates the App for a loaded config.
// Used to inject the backend during dispatch.
type AppFactory func(ctx context.Context, cfg *config.Config) (*app.App, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  AppFactory
}

// NewDispatcher creates a new dispatcher with the given registry and app factory.
func NewDispatcher(registry *commands.Registry, factory AppFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut, nil)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	if cmdName == shellCommand {
		return d.runShell(ctx, args[1:], out, errOut)
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut, nil)
}

// dispatch looks up cmdName and runs it. shared is the shell's App, nil for
// a one-shot command.
func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer, shared *app.App) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut, shared)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer, shared *app.App) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return reportFlagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	var cfg *config.Config
	var a *app.App
	if shared == nil {
		var code int
		cfg, a, code = d.setup(ctx, common, errOut)
		if a == nil {
			return code
		}
	} else {
		if common.configDir != "" {
			fmt.Fprintln(errOut, "error: --config cannot be changed inside the shell")
			return exitcode.UserError
		}
		if common.debug && !shared.Config.Debug {
			fmt.Fprintln(errOut, "error: --debug cannot be changed inside the shell (run: taskmgr shell --debug)")
			return exitcode.UserError
		}
		lineCfg := *shared.Config
		lineCfg.Quiet = lineCfg.Quiet || common.quiet
		cfg, a = &lineCfg, shared
	}

	return runCommand(ctx, cmd, cfg, a, positionalArgs, out, errOut)
}

// setup loads the config and builds the App. On failure the App is nil and
// the exit code is returned.
func (d *Dispatcher) setup(ctx context.Context, common commonFlags, errOut io.Writer) (*config.Config, *app.App, int) {
	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, nil, exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	if d.factory == nil {
		fmt.Fprintln(errOut, "error: no backend configured")
		return nil, nil, exitcode.BackendError
	}
	a, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, nil, exitcode.BackendError
	}
	return cfg, a, exitcode.Success
}

// runCommand clears the previous notice, restores the session for commands
// that need one and runs cmd.
func runCommand(ctx context.Context, cmd commands.Command, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	a.Notices.Dismiss()
	a.Log.DebugContextf(ctx, "running %s with %d args", cmd.Name(), len(args))

	if cmd.NeedsAuth() {
		if err := a.Mount(ctx); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		if _, err := a.User(); errors.Is(err, service.ErrNotLoggedIn) {
			fmt.Fprintln(errOut, "error: not logged in (run: taskmgr login)")
			return exitcode.AuthError
		}
	}

	return cmd.Run(ctx, cfg, a, args, out, errOut)
}

func reportFlagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
		// Extract flag name
		parts := strings.Split(errStr, ":")
		if len(parts) > 0 {
			flagPart := strings.TrimSpace(parts[len(parts)-1])
			fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
			return exitcode.UserError
		}
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
