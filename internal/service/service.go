package service

import "context"

// Accounts is the user-account service.
// Commands never talk HTTP directly; they go through this interface.
type Accounts interface {
	// Register creates an account and returns the new user.
	Register(ctx context.Context, creds Credentials) (User, error)

	// Login checks credentials and returns the user.
	Login(ctx context.Context, creds Credentials) (User, error)

	// Profile looks up a user by ID.
	// Returns an error matching ErrNotFound if the user no longer exists.
	Profile(ctx context.Context, id int64) (User, error)
}

// Tasks is the task service.
type Tasks interface {
	// ListTasks returns the user's tasks in service order (newest first).
	ListTasks(ctx context.Context, userID int64) ([]Task, error)

	// Stats returns aggregate counts over the user's tasks.
	Stats(ctx context.Context, userID int64) (Stats, error)

	// CreateTask creates a task and returns it.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask applies a partial update.
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error
}

