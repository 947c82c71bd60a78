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
	"taskmgr/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// clearDue is the --due value that removes a due date.
const clearDue = "none"

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optString
	description optString
	priority    optString
	status      optString
	due         optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskmgr edit [--title <t>] [--description <text>] [--priority <p>] [--status <s>] [--due YYYY-MM-DD|none] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	patch, err := c.patch()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := resolveTask(ctx, a, args)
	if err != nil {
		return fail(errOut, a, err)
	}

	code, ok := finish(errOut, a, a.Tasks.Update(ctx, task.ID, patch))
	if ok && !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return code
}

// patch builds the update from the flags that were given.
func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch
	if c.title.set {
		p.Title = &c.title.value
	}
	if c.description.set {
		p.Description = &c.description.value
	}
	if c.priority.set {
		pr, err := service.ParsePriority(c.priority.value)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if c.status.set {
		st, err := service.ParseStatus(c.status.value)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if c.due.set {
		due := strings.TrimSpace(c.due.value)
		if due == "" || strings.EqualFold(due, clearDue) {
			p.ClearDueDate = true
		} else {
			p.DueDate = &due
		}
	}
	if p.Empty() {
		return p, fmt.Errorf("nothing to update (give at least one of --title, --description, --priority, --status, --due)")
	}
	return p, nil
}
