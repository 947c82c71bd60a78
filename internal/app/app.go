// Package app wires the session store, the task view-model and the notice
// board into one explicitly owned object.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"taskmgr/internal/config"
	"taskmgr/internal/logger"
	"taskmgr/internal/notice"
	"taskmgr/internal/prompt"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
	"taskmgr/internal/taskview"
)

// Backend is everything the app needs from the two services.
type Backend interface {
	service.Accounts
	service.Tasks

	UserServiceHealth(ctx context.Context) error
	TaskServiceHealth(ctx context.Context) error
}

// App owns the client state for one process (a single command, or a whole
// shell session).
//
// Lifecycle: Mount restores the persisted session once; Teardown clears it
// along with the task state that depends on it.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Notices *notice.Board
	Session *session.Store
	Tasks   *taskview.ViewModel
	Backend Backend
	Prompt  *prompt.Prompter

	mountOnce sync.Once
	mountErr  error
}

// Option configures an App.
type Option func(*options)

type options struct {
	notices *notice.Board
	storage session.Storage
	prompt  *prompt.Prompter
}

// WithNotices replaces the default notice board (for a fake clock in tests).
func WithNotices(b *notice.Board) Option {
	return func(o *options) { o.notices = b }
}

// WithStorage replaces the session file in cfg.Dir.
func WithStorage(s session.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithPrompter replaces the stdin/stderr prompter.
func WithPrompter(p *prompt.Prompter) Option {
	return func(o *options) { o.prompt = p }
}

// New creates an App. Nothing is read or fetched until Mount.
func New(cfg *config.Config, backend Backend, log *logger.Logger, opts ...Option) *App {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.notices == nil {
		o.notices = notice.NewBoard()
	}
	if o.storage == nil {
		o.storage = session.NewFileStorage(cfg.SessionPath())
	}
	if o.prompt == nil {
		o.prompt = prompt.New(os.Stdin, os.Stderr)
	}
	if log == nil {
		log = logger.Discard()
	}

	store := session.NewStore(backend, o.storage, o.notices, log)
	tasks := taskview.New(backend, store, o.notices, log)
	store.OnClear(tasks.Reset)

	return &App{
		Config:  cfg,
		Log:     log,
		Notices: o.notices,
		Session: store,
		Tasks:   tasks,
		Backend: backend,
		Prompt:  o.prompt,
	}
}

// Mount restores the persisted session. Later calls are no-ops returning
// the first result.
func (a *App) Mount(ctx context.Context) error {
	a.mountOnce.Do(func() {
		if _, _, err := a.Session.Restore(ctx); err != nil {
			a.mountErr = fmt.Errorf("restoring session: %w", err)
		}
	})
	return a.mountErr
}

// User returns the current user or service.ErrNotLoggedIn.
func (a *App) User() (service.User, error) {
	user, ok := a.Session.User()
	if !ok {
		return service.User{}, service.ErrNotLoggedIn
	}
	return user, nil
}

// Teardown clears the session and all state that depends on it.
func (a *App) Teardown() error {
	a.Notices.Dismiss()
	return a.Session.Clear()
}
