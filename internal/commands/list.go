package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/output"
	"taskmgr/internal/taskview"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskmgr` (no args) and `taskmgr list --filter <status>`.
type ListCmd struct {
	filter  string
	summary bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskmgr list [--filter " + filterNames("|") + "] [--summary]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", string(taskview.FilterAll), "")
	fs.StringVar(&c.filter, "f", string(taskview.FilterAll), "")
	fs.BoolVar(&c.summary, "summary", false, "")
	fs.BoolVar(&c.summary, "s", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := taskview.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v (filters: %s)\n", err, filterNames(", "))
		return exitcode.UserError
	}

	// Stats are only needed for the summary line.
	load := a.Tasks.Load
	if c.summary {
		load = a.Tasks.Refresh
	}
	if err := load(ctx); err != nil {
		return fail(errOut, a, err)
	}

	if c.summary {
		output.FormatSummary(out, a.Tasks.Stats())
	}

	// Numbers are positions in the unfiltered list so they stay valid refs.
	shown := 0
	for i, task := range a.Tasks.Tasks() {
		if !filter.Match(task) {
			continue
		}
		output.FormatTask(out, i+1, task)
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}

// filterNames joins the accepted --filter values with sep.
func filterNames(sep string) string {
	var names []string
	for _, f := range taskview.Filters() {
		names = append(names, string(f))
	}
	return strings.Join(names, sep)
}
