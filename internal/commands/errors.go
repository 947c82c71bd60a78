package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskmgr/internal/app"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
	"taskmgr/internal/taskview"
)

// fail reports err on errOut and returns the matching exit code.
// The posted notice is preferred over the raw error text since it carries
// the server's message or the operation's fallback. A notice printed here
// is dismissed so it is not shown twice.
func fail(errOut io.Writer, a *app.App, err error) int {
	if errors.Is(err, service.ErrNotLoggedIn) {
		fmt.Fprintln(errOut, "error: not logged in (run: taskmgr login)")
		return exitcode.AuthError
	}
	msg := a.Notices.Current()
	if msg == "" {
		msg = err.Error()
	} else {
		a.Notices.Dismiss()
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)
	return exitCodeFor(err)
}

// finish reports the outcome of a mutation. A stale refresh is only a
// warning: the mutation itself went through.
func finish(errOut io.Writer, a *app.App, err error) (int, bool) {
	if err == nil {
		return exitcode.Success, true
	}
	if errors.Is(err, taskview.ErrStale) {
		fmt.Fprintf(errOut, "warning: %v\n", err)
		return exitcode.Success, true
	}
	return fail(errOut, a, err), false
}

func exitCodeFor(err error) int {
	var apiErr *service.APIError
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		return exitcode.AuthError
	case errors.Is(err, service.ErrUnavailable), errors.Is(err, service.ErrBadResponse):
		return exitcode.BackendError
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			return exitcode.AuthError
		case apiErr.StatusCode >= 500:
			return exitcode.BackendError
		default:
			return exitcode.UserError
		}
	default:
		return exitcode.UserError
	}
}
