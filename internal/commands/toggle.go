package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task completed, or reopen it" }
func (c *ToggleCmd) Usage() string     { return "taskmgr toggle <ref>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(ctx, a, args)
	if err != nil {
		return fail(errOut, a, err)
	}

	next, err := a.Tasks.Toggle(ctx, task)
	code, ok := finish(errOut, a, err)
	if ok && !cfg.Quiet {
		fmt.Fprintf(out, "#%d %s\n", task.ID, next)
	}
	return code
}
