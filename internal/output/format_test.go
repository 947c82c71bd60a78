package output

import (
	"bytes"
	"testing"

	"taskmgr/internal/service"
	"taskmgr/internal/testutil"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task service.Task
		want string
	}{
		{
			name: "pending without due date",
			num:  1,
			task: service.Task{ID: 12, Title: "Buy milk", Priority: service.PriorityHigh, Status: service.StatusPending},
			want: "   1  [ ] Buy milk  (#12, high)\n",
		},
		{
			name: "completed with due timestamp",
			num:  10,
			task: service.Task{ID: 3, Title: "File taxes", Priority: service.PriorityUrgent, Status: service.StatusCompleted, DueDate: "2026-04-15T00:00:00"},
			want: "  10  [x] File taxes  (#3, urgent, due 2026-04-15)\n",
		},
		{
			name: "multiline description and empty title",
			num:  2,
			task: service.Task{ID: 5, Title: "  ", Description: "line one\nline two", Priority: service.PriorityLow, Status: service.StatusInProgress},
			want: "   2  [~] (untitled)  (#5, low)\n          line one line two\n",
		},
		{
			name: "unknown status",
			num:  3,
			task: service.Task{ID: 6, Title: "Odd", Priority: service.PriorityMedium, Status: "archived"},
			want: "   3  [?] Odd  (#6, medium)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.num, tt.task)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	FormatStats(&buf, service.Stats{
		TotalTasks:   6,
		ByStatus:     map[string]int{"pending": 2, "completed": 3, "archived": 1},
		OverdueTasks: 1,
	})
	testutil.GoldenString(t, "stats", buf.String())
}

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(&buf, service.Stats{
		TotalTasks:   4,
		ByStatus:     map[string]int{"pending": 3, "completed": 1},
		OverdueTasks: 2,
	})
	want := "4 total, 3 pending, 1 completed, 2 overdue\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatUser(t *testing.T) {
	var buf bytes.Buffer
	FormatUser(&buf, service.User{ID: 1, Username: "alice", Email: "alice@example.com"})
	want := "alice <alice@example.com> (id 1)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
