package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskmgr help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText)
	return exitcode.Success
}

// HelpText is the usage summary printed by help and on usage errors.
const HelpText = `Usage:
  taskmgr                                   List tasks
  taskmgr list [common flags] [--filter all|<status>] [--summary]
  taskmgr add [common flags] [--description <text>] [--priority <p>]
              [--status <s>] [--due YYYY-MM-DD] <title...>
  taskmgr edit [common flags] [--title <t>] [--description <text>]
               [--priority <p>] [--status <s>] [--due YYYY-MM-DD|none] <ref>
  taskmgr toggle [common flags] <ref>
  taskmgr done [common flags] <ref>
  taskmgr rm [common flags] [--yes] <ref>
  taskmgr stats [common flags]
  taskmgr register [common flags] [--username <u>] [--email <e>] [--password <p>]
  taskmgr login [common flags] [--username <u>] [--password <p>]
  taskmgr logout [common flags]
  taskmgr whoami [common flags]
  taskmgr config [common flags]
  taskmgr health [common flags]
  taskmgr shell [common flags]
  taskmgr help
  taskmgr version

Refs:
  <n>    Task number as shown by list
  #<id>  Task ID as stored by the task service

Priorities: low, medium, high, urgent
Statuses:   pending, in_progress, completed, cancelled

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
