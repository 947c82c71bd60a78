package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskmgr/internal/backend/httpapi"
	"taskmgr/internal/config"
	"taskmgr/internal/service"
	"taskmgr/internal/testutil"
)

// recorder answers every request with a fixed response and keeps the last
// request's headers and path.
type recorder struct {
	mu      sync.Mutex
	status  int
	body    string
	headers http.Header
	path    string
}

func newRecorder(t *testing.T, status int, body string) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{status: status, body: body}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.headers = r.Header.Clone()
		rec.path = r.URL.RequestURI()
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rec.status)
		w.Write([]byte(rec.body))
	}))
	t.Cleanup(srv.Close)
	return rec, srv
}

func (r *recorder) last() (http.Header, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headers, r.path
}

func TestClient_LoginAndProfile(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	alice := fake.AddUser("alice", "alice@example.com", "secret1")
	c := fake.Client()
	ctx := context.Background()

	user, err := c.Login(ctx, service.Credentials{Username: "alice", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != alice {
		t.Errorf("expected %+v, got %+v", alice, user)
	}

	if _, err := c.Profile(ctx, alice.ID); err != nil {
		t.Errorf("unexpected profile error: %v", err)
	}
	_, err = c.Profile(ctx, 99)
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err == nil || err.Error() != "User not found" {
		t.Errorf("expected server message, got %v", err)
	}
}

func TestClient_TaskLifecycle(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	alice := fake.AddUser("alice", "alice@example.com", "secret1")
	c := fake.Client()
	ctx := context.Background()

	created, err := c.CreateTask(ctx, service.TaskInput{
		UserID:   alice.ID,
		Title:    "write tests",
		Priority: service.PriorityHigh,
		Status:   service.StatusPending,
		DueDate:  "2030-05-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Title != "write tests" || created.DueDate != "2030-05-01" {
		t.Errorf("unexpected created task %+v", created)
	}

	done := service.StatusCompleted
	if err := c.UpdateTask(ctx, created.ID, service.TaskPatch{Status: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks, err := c.ListTasks(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != service.StatusCompleted {
		t.Errorf("unexpected tasks %+v", tasks)
	}

	stats, err := c.Stats(ctx, alice.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTasks != 1 || stats.Count(service.StatusCompleted) != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeleteTask(ctx, created.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClient_ListEmptyIsNotNil(t *testing.T) {
	_, srv := newRecorder(t, http.StatusOK, `{"tasks":null}`)
	c := httpapi.NewWithHTTPClient(srv.Client(), srv.URL+"/api", srv.URL+"/api", time.Second, nil)

	tasks, err := c.ListTasks(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty slice, got %#v", tasks)
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	rec, srv := newRecorder(t, http.StatusOK, `{"user":{"id":1,"username":"a","email":"a@x"}}`)
	c := httpapi.NewWithHTTPClient(srv.Client(), srv.URL+"/api", srv.URL+"/api", time.Second, nil)

	if _, err := c.Login(context.Background(), service.Credentials{Username: "a", Password: "b"}); err != nil {
		t.Fatal(err)
	}

	headers, path := rec.last()
	if _, err := uuid.Parse(headers.Get(httpapi.RequestIDHeader)); err != nil {
		t.Errorf("expected a UUID request id, got %q", headers.Get(httpapi.RequestIDHeader))
	}
	if ct := headers.Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if auth := headers.Get("Authorization"); auth != "" {
		t.Errorf("expected no Authorization header, got %q", auth)
	}
	if path != "/api/users/login" {
		t.Errorf("unexpected path %s", path)
	}
}

func TestClient_BearerToken(t *testing.T) {
	rec, srv := newRecorder(t, http.StatusOK, `{"tasks":[]}`)
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.UserServiceURL = srv.URL + "/api"
	cfg.TaskServiceURL = srv.URL + "/api"
	cfg.APIToken = "s3cret"

	c := httpapi.New(cfg, nil)
	if _, err := c.ListTasks(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	headers, path := rec.last()

	if auth := headers.Get("Authorization"); auth != "Bearer s3cret" {
		t.Errorf("expected bearer token, got %q", auth)
	}
	if path != "/api/tasks?user_id=4" {
		t.Errorf("unexpected path %s", path)
	}
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusBadRequest, `{"error":"bad password"}`, "bad password"},
		{"message field", http.StatusNotFound, `{"message":"gone"}`, "gone"},
		{"not json", http.StatusBadGateway, `<html>oops</html>`, "unexpected status 502"},
		{"empty", http.StatusInternalServerError, ``, "unexpected status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newRecorder(t, tt.status, tt.body)
			c := httpapi.NewWithHTTPClient(srv.Client(), srv.URL+"/api", srv.URL+"/api", time.Second, nil)

			err := c.DeleteTask(context.Background(), 1)

			var apiErr *service.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestClient_BadResponse(t *testing.T) {
	_, srv := newRecorder(t, http.StatusOK, `{"tasks": "nope"}`)
	c := httpapi.NewWithHTTPClient(srv.Client(), srv.URL+"/api", srv.URL+"/api", time.Second, nil)

	_, err := c.ListTasks(context.Background(), 1)
	if !errors.Is(err, service.ErrBadResponse) {
		t.Errorf("expected ErrBadResponse, got %v", err)
	}
}

func TestClient_ConnectionFailure(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	fake.StopTaskService()
	c := fake.Client()

	_, err := c.ListTasks(context.Background(), 1)

	if !errors.Is(err, service.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err.Error() != "unable to connect to task service" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := httpapi.NewWithHTTPClient(srv.Client(), srv.URL+"/api", srv.URL+"/api", 50*time.Millisecond, nil)

	_, err := c.Stats(context.Background(), 1)

	if !errors.Is(err, service.ErrUnavailable) {
		t.Errorf("expected timeout reported as ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline, got %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	fake := testutil.NewFakeServer(t)
	c := fake.Client()
	ctx := context.Background()

	if err := c.UserServiceHealth(ctx); err != nil {
		t.Errorf("user service: %v", err)
	}
	if err := c.TaskServiceHealth(ctx); err != nil {
		t.Errorf("task service: %v", err)
	}
	var paths []string
	for _, r := range fake.Requests() {
		paths = append(paths, r.Path)
	}
	if strings.Join(paths, ",") != "/health,/health" {
		t.Errorf("expected /health requests, got %v", paths)
	}

	fake.Fail(testutil.RouteHealth, http.StatusServiceUnavailable, "db down")
	if err := c.TaskServiceHealth(ctx); err == nil || err.Error() != "db down" {
		t.Errorf("expected injected failure, got %v", err)
	}
}
