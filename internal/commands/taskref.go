package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskmgr/internal/app"
	"taskmgr/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num  int   // 1-based position in list output, 0 if ByID
	ID   int64 // service task ID, 0 unless ByID
	ByID bool  // true for the #<id> form
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
//  1. <digits>   → position in `taskmgr list` output (e.g. 3)
//  2. #<digits>  → service task ID (e.g. #42)
//  3. anything else, or extra arguments → error
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	arg := args[0]

	if rest, ok := strings.CutPrefix(arg, "#"); ok {
		if !isAllDigits(rest) {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id < 1 {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{ID: id, ByID: true}, nil
	}

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
}

// String renders the reference the way the user typed it.
func (r TaskRef) String() string {
	if r.ByID {
		return fmt.Sprintf("#%d", r.ID)
	}
	return strconv.Itoa(r.Num)
}

// resolveTask parses args, reloads the task list and returns the
// referenced task. Positions count over the unfiltered list.
func resolveTask(ctx context.Context, a *app.App, args []string) (service.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, err
	}

	if err := a.Tasks.Load(ctx); err != nil {
		return service.Task{}, err
	}

	if ref.ByID {
		task, ok := a.Tasks.Find(ref.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("task not found: %s", ref)
		}
		return task, nil
	}

	tasks := a.Tasks.Tasks()
	if ref.Num < 1 || ref.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
	}
	return tasks[ref.Num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
