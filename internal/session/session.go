// Package session holds the authenticated user and keeps it in sync with
// the persisted session record and the account service.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"taskmgr/internal/logger"
	"taskmgr/internal/notice"
	"taskmgr/internal/service"
)

// Mode selects between the login and register forms.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// ErrMissingFields is returned when a required credential is empty.
var ErrMissingFields = errors.New("missing required fields")

// authFailed is shown when the account service rejects a request without a message.
const authFailed = "Authentication failed"

// Store owns the current user.
type Store struct {
	accounts service.Accounts
	storage  Storage
	notices  *notice.Board
	log      *logger.Logger

	mu      sync.Mutex
	user    *service.User
	onClear []func()
}

// NewStore creates a Store. No user is held until Authenticate or Restore succeeds.
func NewStore(accounts service.Accounts, storage Storage, notices *notice.Board, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		accounts: accounts,
		storage:  storage,
		notices:  notices,
		log:      log,
	}
}

// User returns the current user, if any.
func (s *Store) User() (service.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return service.User{}, false
	}
	return *s.user, true
}

// OnClear registers fn to run whenever the session is cleared.
// State that depends on the user (the task list) hooks in here.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Authenticate logs in or registers, then persists and holds the returned user.
// Failures are posted to the notice board and returned.
func (s *Store) Authenticate(ctx context.Context, creds service.Credentials, mode Mode) (service.User, error) {
	if err := validate(creds, mode); err != nil {
		s.notices.Post(err.Error())
		return service.User{}, err
	}

	var (
		user service.User
		err  error
	)
	if mode == ModeRegister {
		user, err = s.accounts.Register(ctx, creds)
	} else {
		user, err = s.accounts.Login(ctx, creds)
	}
	if err != nil {
		s.notices.PostError(err, authFailed)
		return service.User{}, fmt.Errorf("%s: %w", mode, err)
	}

	if err := s.persist(user); err != nil {
		s.notices.Post("unable to save session")
		return service.User{}, fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.log.DebugContext(ctx, "authenticated", "mode", mode.String(), "user_id", user.ID)
	return user, nil
}

// Restore loads the persisted user and verifies it against the account service.
//
// A missing or unreadable record leaves the store unauthenticated; an
// unreadable one is also removed. If the service rejects the profile lookup
// the session is cleared. If the service cannot be reached the stale
// session is kept.
func (s *Store) Restore(ctx context.Context) (service.User, bool, error) {
	data, err := s.storage.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return service.User{}, false, nil
	}
	if err != nil {
		return service.User{}, false, fmt.Errorf("reading session: %w", err)
	}

	var user service.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == 0 {
		s.log.DebugContext(ctx, "discarding corrupt session", "error", err)
		if err := s.storage.Remove(); err != nil {
			return service.User{}, false, fmt.Errorf("removing session: %w", err)
		}
		return service.User{}, false, nil
	}

	_, err = s.accounts.Profile(ctx, user.ID)
	var apiErr *service.APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr):
		s.log.DebugContext(ctx, "session rejected", "user_id", user.ID, "status", apiErr.StatusCode)
		if err := s.Clear(); err != nil {
			return service.User{}, false, err
		}
		return service.User{}, false, nil
	case errors.Is(err, service.ErrUnavailable):
		s.log.WarnContext(ctx, "could not verify session, keeping it", "user_id", user.ID, "error", err)
	default:
		// 2xx with an unexpected body: the account still exists.
		s.log.DebugContext(ctx, "unexpected profile response", "error", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, true, nil
}

// Clear removes the persisted session, drops the user and runs the clear hooks.
func (s *Store) Clear() error {
	err := s.storage.Remove()

	s.mu.Lock()
	s.user = nil
	hooks := make([]func(), len(s.onClear))
	copy(hooks, s.onClear)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	if err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

func (s *Store) persist(user service.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.Save(data)
}

func validate(creds service.Credentials, mode Mode) error {
	missing := strings.TrimSpace(creds.Username) == "" || creds.Password == ""
	if mode == ModeRegister && strings.TrimSpace(creds.Email) == "" {
		missing = true
	}
	if missing {
		return ErrMissingFields
	}
	return nil
}
