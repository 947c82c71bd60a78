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
	Register(&HealthCmd{})
}

// HealthCmd implements the health command.
type HealthCmd struct{}

func (c *HealthCmd) Name() string      { return "health" }
func (c *HealthCmd) Aliases() []string { return nil }
func (c *HealthCmd) Synopsis() string  { return "Check that both services respond" }
func (c *HealthCmd) Usage() string     { return "taskmgr health" }
func (c *HealthCmd) NeedsAuth() bool   { return false }

func (c *HealthCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HealthCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	checks := []struct {
		name string
		call func(context.Context) error
	}{
		{"user service", a.Backend.UserServiceHealth},
		{"task service", a.Backend.TaskServiceHealth},
	}

	code := exitcode.Success
	for _, check := range checks {
		if err := check.call(ctx); err != nil {
			a.Log.WarnContextf(ctx, "%s health check failed: %v", check.name, err)
			fmt.Fprintf(out, "%s: down (%v)\n", check.name, err)
			code = exitcode.BackendError
			continue
		}
		fmt.Fprintf(out, "%s: ok\n", check.name)
	}
	return code
}
