// Package service defines the backend-agnostic types and interfaces for the
// account and task services.
package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Priority is a task priority tag.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePriority parses a priority name (case-insensitive, trimmed).
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Status is a task status tag. Statuses carry no transition graph.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus parses a status name (case-insensitive, trimmed).
// "in-progress" is accepted as a spelling of in_progress.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return st, nil
}

// User is the authenticated account record. It is persisted verbatim as the session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Credentials are the fields submitted by the login and register forms.
// Email is only sent on registration.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// Task is a single task owned by the task service.
type Task struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	DueDate     string   `json:"due_date"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// Due returns the parsed due date, if the task has one.
func (t Task) Due() (time.Time, bool) {
	return ParseTimestamp(t.DueDate)
}

// DueDay returns the due date as YYYY-MM-DD, or "" when unset.
func (t Task) DueDay() string {
	if t.DueDate == "" {
		return ""
	}
	if d, ok := t.Due(); ok {
		return d.Format(DateLayout)
	}
	day, _, _ := strings.Cut(t.DueDate, "T")
	return day
}

// Stats are the aggregate counts reported by the task service.
type Stats struct {
	TotalTasks   int            `json:"total_tasks"`
	ByStatus     map[string]int `json:"by_status"`
	OverdueTasks int            `json:"overdue_tasks"`
}

// Count returns the number of tasks reported for status.
func (s Stats) Count(status Status) int {
	return s.ByStatus[string(status)]
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	UserID      int64
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     string // YYYY-MM-DD, empty for none
}

// MarshalJSON encodes an empty due date as null.
func (in TaskInput) MarshalJSON() ([]byte, error) {
	var due *string
	if in.DueDate != "" {
		due = &in.DueDate
	}
	return json.Marshal(struct {
		UserID      int64    `json:"user_id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Priority    Priority `json:"priority"`
		Status      Status   `json:"status"`
		DueDate     *string  `json:"due_date"`
	}{in.UserID, in.Title, in.Description, in.Priority, in.Status, due})
}

// TaskPatch is a partial task update. Only non-nil fields are sent.
// ClearDueDate sends an explicit null for due_date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	DueDate      *string
	ClearDueDate bool
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.DueDate == nil && !p.ClearDueDate
}

// MarshalJSON encodes only the fields that are set.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Priority != nil {
		m["priority"] = *p.Priority
	}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	if p.ClearDueDate {
		m["due_date"] = nil
	} else if p.DueDate != nil {
		m["due_date"] = *p.DueDate
	}
	return json.Marshal(m)
}

// DateLayout is the layout of due dates entered by the user.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTimestamp parses the timestamp formats the services emit
// (RFC 3339, ISO 8601 without zone, plain dates).
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
