// Package taskview holds the current user's task list and stats and keeps
// them in step with the task service.
//
// Every successful mutation is followed by a full list and stats refetch.
// The cache is never patched locally.
package taskview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskmgr/internal/logger"
	"taskmgr/internal/notice"
	"taskmgr/internal/service"
)

// Messages shown when the task service gives no reason of its own.
const (
	msgLoadTasks  = "Failed to load tasks"
	msgLoadStats  = "Failed to load stats"
	msgSaveTask   = "Failed to save task"
	msgDeleteTask = "Failed to delete task"
	msgUpdateTask = "Failed to update task"
)

// DeletePrompt is the question asked before a task is deleted.
const DeletePrompt = "Are you sure you want to delete this task?"

var (
	// ErrStale wraps a refresh failure that followed a successful mutation.
	// The mutation took effect; the cached list may be out of date.
	ErrStale = errors.New("task list may be out of date")

	// ErrNothingToUpdate is returned for an empty patch.
	ErrNothingToUpdate = errors.New("nothing to update")

	// ErrTitleRequired is returned when a task has no title.
	ErrTitleRequired = errors.New("title is required")
)

// UserSource provides the current user. *session.Store implements it.
type UserSource interface {
	User() (service.User, bool)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// ViewModel caches the task list and stats of the current user.
type ViewModel struct {
	tasks   service.Tasks
	users   UserSource
	notices *notice.Board
	log     *logger.Logger

	mu    sync.Mutex
	list  []service.Task
	stats service.Stats
}

// New creates an empty ViewModel.
func New(tasks service.Tasks, users UserSource, notices *notice.Board, log *logger.Logger) *ViewModel {
	if log == nil {
		log = logger.Discard()
	}
	return &ViewModel{
		tasks:   tasks,
		users:   users,
		notices: notices,
		log:     log,
		stats:   emptyStats(),
	}
}

// Tasks returns a copy of the cached list in service order.
func (vm *ViewModel) Tasks() []service.Task {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	out := make([]service.Task, len(vm.list))
	copy(out, vm.list)
	return out
}

// Stats returns the cached stats.
func (vm *ViewModel) Stats() service.Stats {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.stats
}

// Find returns the cached task with the given ID.
func (vm *ViewModel) Find(id int64) (service.Task, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, t := range vm.list {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Reset drops the cached list and zeroes the stats.
func (vm *ViewModel) Reset() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.list = nil
	vm.stats = emptyStats()
}

// Load refetches the list only. Stats are left as they were, so a stats
// outage does not get in the way of finding a task.
func (vm *ViewModel) Load(ctx context.Context) error {
	user, ok := vm.users.User()
	if !ok {
		return service.ErrNotLoggedIn
	}

	list, err := vm.tasks.ListTasks(ctx, user.ID)
	if err != nil {
		vm.notices.PostError(err, msgLoadTasks)
		return fmt.Errorf("loading tasks: %w", err)
	}
	vm.mu.Lock()
	vm.list = list
	vm.mu.Unlock()
	return nil
}

// Refresh refetches the list and the stats. Both are attempted; a failure of
// either is posted and returned, and leaves that part of the cache as it was.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	user, ok := vm.users.User()
	if !ok {
		return service.ErrNotLoggedIn
	}

	var errs []error

	list, err := vm.tasks.ListTasks(ctx, user.ID)
	if err != nil {
		vm.notices.PostError(err, msgLoadTasks)
		errs = append(errs, fmt.Errorf("loading tasks: %w", err))
	} else {
		vm.mu.Lock()
		vm.list = list
		vm.mu.Unlock()
	}

	stats, err := vm.tasks.Stats(ctx, user.ID)
	if err != nil {
		vm.notices.PostError(err, msgLoadStats)
		errs = append(errs, fmt.Errorf("loading stats: %w", err))
	} else {
		vm.mu.Lock()
		vm.stats = stats
		vm.mu.Unlock()
	}

	return errors.Join(errs...)
}

// Create validates in, creates the task for the current user and refreshes.
// Empty priority and status default to medium and pending.
func (vm *ViewModel) Create(ctx context.Context, in service.TaskInput) (service.Task, error) {
	user, ok := vm.users.User()
	if !ok {
		return service.Task{}, service.ErrNotLoggedIn
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = service.PriorityMedium
	}
	if in.Status == "" {
		in.Status = service.StatusPending
	}
	if err := validateInput(in); err != nil {
		vm.notices.Post(err.Error())
		return service.Task{}, err
	}
	in.UserID = user.ID

	task, err := vm.tasks.CreateTask(ctx, in)
	if err != nil {
		vm.notices.PostError(err, msgSaveTask)
		return service.Task{}, fmt.Errorf("creating task: %w", err)
	}
	vm.log.DebugContext(ctx, "task created", "task_id", task.ID)

	return task, vm.refreshAfterMutation(ctx)
}

// Update applies patch to task id and refreshes.
func (vm *ViewModel) Update(ctx context.Context, id int64, patch service.TaskPatch) error {
	if _, ok := vm.users.User(); !ok {
		return service.ErrNotLoggedIn
	}
	if err := validatePatch(patch); err != nil {
		vm.notices.Post(err.Error())
		return err
	}
	return vm.update(ctx, id, patch, msgSaveTask)
}

// Toggle flips a task between pending and completed: a completed task
// becomes pending, any other status becomes completed. It returns the new
// status, also alongside ErrStale.
func (vm *ViewModel) Toggle(ctx context.Context, task service.Task) (service.Status, error) {
	if _, ok := vm.users.User(); !ok {
		return "", service.ErrNotLoggedIn
	}
	next := NextStatus(task.Status)
	err := vm.update(ctx, task.ID, service.TaskPatch{Status: &next}, msgUpdateTask)
	if err != nil && !errors.Is(err, ErrStale) {
		return "", err
	}
	return next, err
}

// Delete asks c for confirmation and, only if granted, deletes the task and
// refreshes. It reports whether the delete request was issued.
func (vm *ViewModel) Delete(ctx context.Context, id int64, c Confirmer) (bool, error) {
	if _, ok := vm.users.User(); !ok {
		return false, service.ErrNotLoggedIn
	}

	ok, err := c.Confirm(DeletePrompt)
	if err != nil {
		return false, fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := vm.tasks.DeleteTask(ctx, id); err != nil {
		vm.notices.PostError(err, msgDeleteTask)
		return true, fmt.Errorf("deleting task: %w", err)
	}
	vm.log.DebugContext(ctx, "task deleted", "task_id", id)

	return true, vm.refreshAfterMutation(ctx)
}

func (vm *ViewModel) update(ctx context.Context, id int64, patch service.TaskPatch, fallback string) error {
	if err := vm.tasks.UpdateTask(ctx, id, patch); err != nil {
		vm.notices.PostError(err, fallback)
		return fmt.Errorf("updating task: %w", err)
	}
	vm.log.DebugContext(ctx, "task updated", "task_id", id)
	return vm.refreshAfterMutation(ctx)
}

func (vm *ViewModel) refreshAfterMutation(ctx context.Context) error {
	if err := vm.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStale, err)
	}
	return nil
}

// NextStatus is the status a toggle moves to.
func NextStatus(s service.Status) service.Status {
	if s == service.StatusCompleted {
		return service.StatusPending
	}
	return service.StatusCompleted
}

func validateInput(in service.TaskInput) error {
	if in.Title == "" {
		return ErrTitleRequired
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("invalid priority: %s", in.Priority)
	}
	if !in.Status.Valid() {
		return fmt.Errorf("invalid status: %s", in.Status)
	}
	return validateDueDate(in.DueDate)
}

func validatePatch(p service.TaskPatch) error {
	if p.Empty() {
		return ErrNothingToUpdate
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("invalid priority: %s", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("invalid status: %s", *p.Status)
	}
	if p.DueDate != nil && !p.ClearDueDate {
		return validateDueDate(*p.DueDate)
	}
	return nil
}

func validateDueDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(service.DateLayout, s); err != nil {
		return fmt.Errorf("invalid due date (want YYYY-MM-DD): %s", s)
	}
	return nil
}

func emptyStats() service.Stats {
	return service.Stats{ByStatus: map[string]int{}}
}
