package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/output"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Show the effective configuration" }
func (c *ConfigCmd) Usage() string     { return "taskmgr config" }
func (c *ConfigCmd) NeedsAuth() bool   { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	session := "none"
	if cfg.HasSession() {
		session = cfg.SessionPath()
	}
	token := "not set"
	if cfg.APIToken != "" {
		token = "set"
	}

	output.FormatHeader(out, "Configuration")
	fmt.Fprintf(out, "%-18s %s\n", "Environment:", cfg.Environment)
	fmt.Fprintf(out, "%-18s %s\n", "User service:", cfg.UserServiceURL)
	fmt.Fprintf(out, "%-18s %s\n", "Task service:", cfg.TaskServiceURL)
	fmt.Fprintf(out, "%-18s %s\n", "Request timeout:", cfg.Timeout)
	fmt.Fprintf(out, "%-18s %s\n", "Log level:", cfg.LogLevel)
	fmt.Fprintf(out, "%-18s %s\n", "API token:", token)
	fmt.Fprintf(out, "%-18s %s\n", "Config dir:", cfg.Dir)
	fmt.Fprintf(out, "%-18s %s\n", "Session:", session)
	return exitcode.Success
}
