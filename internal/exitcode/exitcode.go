// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion (including a declined delete).
	Success = 0

	// UserError indicates a user error (bad args, invalid fields, unknown task,
	// rejected request).
	UserError = 1

	// AuthError indicates a missing session or rejected credentials.
	AuthError = 2

	// BackendError indicates a service failure or an unreachable service.
	BackendError = 3
)
