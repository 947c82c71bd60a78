package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/taskview"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskmgr rm [--yes] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(ctx, a, args)
	if err != nil {
		return fail(errOut, a, err)
	}

	var confirm taskview.Confirmer = a.Prompt
	if c.yes {
		confirm = taskview.ConfirmFunc(func(string) (bool, error) { return true, nil })
	}

	issued, err := a.Tasks.Delete(ctx, task.ID, confirm)
	if !issued && err == nil {
		if !cfg.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}

	code, ok := finish(errOut, a, err)
	if ok && !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return code
}
