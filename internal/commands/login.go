package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/output"
	"taskmgr/internal/prompt"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
	"taskmgr/internal/taskview"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in to the user service" }
func (c *LoginCmd) Usage() string {
	return "taskmgr login [--username <name>] [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	creds := service.Credentials{Username: c.username, Password: c.password}
	return authenticate(ctx, cfg, a, creds, session.ModeLogin, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "taskmgr register [--username <name>] [--email <email>] [--password <password>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.username, "u", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.password, "p", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	creds := service.Credentials{Username: c.username, Email: c.email, Password: c.password}
	return authenticate(ctx, cfg, a, creds, session.ModeRegister, out, errOut)
}

// authenticate fills missing credentials from the prompter, submits them and,
// on success, loads the task view the way the authenticated screen does.
func authenticate(ctx context.Context, cfg *config.Config, a *app.App, creds service.Credentials, mode session.Mode, out, errOut io.Writer) int {
	if err := fillCredentials(a, &creds, mode); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	user, err := a.Session.Authenticate(ctx, creds, mode)
	if err != nil {
		return fail(errOut, a, err)
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	if mode == session.ModeRegister {
		fmt.Fprintf(out, "registered %s\n", user.Username)
	} else {
		fmt.Fprintf(out, "logged in as %s\n", user.Username)
	}

	if err := a.Tasks.Refresh(ctx); err != nil {
		fmt.Fprintf(errOut, "warning: %v\n", fmt.Errorf("%w: %w", taskview.ErrStale, err))
		return exitcode.Success
	}
	output.FormatSummary(out, a.Tasks.Stats())
	return exitcode.Success
}

func fillCredentials(a *app.App, creds *service.Credentials, mode session.Mode) error {
	var err error
	if creds.Username == "" {
		if creds.Username, err = a.Prompt.Field("Username"); err != nil {
			return promptError(err)
		}
	}
	if mode == session.ModeRegister && creds.Email == "" {
		if creds.Email, err = a.Prompt.Field("Email"); err != nil {
			return promptError(err)
		}
	}
	if creds.Password == "" {
		if creds.Password, err = a.Prompt.Password("Password"); err != nil {
			return promptError(err)
		}
	}
	return nil
}

func promptError(err error) error {
	if errors.Is(err, prompt.ErrNoInput) {
		return session.ErrMissingFields
	}
	return err
}
