package taskview

import (
	"testing"

	"taskmgr/internal/service"
)

func TestFilter_Apply(t *testing.T) {
	tasks := []service.Task{
		{ID: 1, Status: service.StatusPending},
		{ID: 2, Status: service.StatusCompleted},
		{ID: 3, Status: service.StatusInProgress},
		{ID: 4, Status: service.StatusCompleted},
		{ID: 5, Status: service.StatusCancelled},
	}

	completed := Filter(service.StatusCompleted).Apply(tasks)
	if len(completed) != 2 || completed[0].ID != 2 || completed[1].ID != 4 {
		t.Errorf("expected tasks 2 and 4, got %+v", completed)
	}

	all := FilterAll.Apply(tasks)
	if len(all) != len(tasks) {
		t.Errorf("expected all %d tasks, got %d", len(tasks), len(all))
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"ALL", FilterAll, false},
		{"completed", Filter(service.StatusCompleted), false},
		{"in-progress", Filter(service.StatusInProgress), false},
		{"done", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilters(t *testing.T) {
	got := Filters()
	if len(got) != 5 || got[0] != FilterAll || got[4] != Filter(service.StatusCancelled) {
		t.Errorf("unexpected filters %v", got)
	}
}
