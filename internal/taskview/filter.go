package taskview

import (
	"strings"

	"taskmgr/internal/service"
)

// Filter selects tasks by status. FilterAll selects every task.
type Filter string

// FilterAll matches every task regardless of status.
const FilterAll Filter = "all"

// Filters lists the filters in display order.
func Filters() []Filter {
	out := []Filter{FilterAll}
	for _, s := range service.Statuses {
		out = append(out, Filter(s))
	}
	return out
}

// ParseFilter parses "all" or a status name. Empty means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(FilterAll)) {
		return FilterAll, nil
	}
	st, err := service.ParseStatus(s)
	if err != nil {
		return "", err
	}
	return Filter(st), nil
}

// Match reports whether t passes the filter. Status filters match exactly.
func (f Filter) Match(t service.Task) bool {
	return f == FilterAll || service.Status(f) == t.Status
}

// Apply returns the tasks that pass the filter, keeping their order.
func (f Filter) Apply(tasks []service.Task) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
