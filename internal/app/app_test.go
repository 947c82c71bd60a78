package app_test

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"taskmgr/internal/app"
	"taskmgr/internal/config"
	"taskmgr/internal/prompt"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
	"taskmgr/internal/testutil"
)

func newApp(t *testing.T, srv *testutil.FakeServer) *app.App {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return app.New(cfg, srv.Client(), nil, app.WithPrompter(prompt.New(strings.NewReader(""), io.Discard)))
}

func TestMount_RestoresOnce(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.AddUser("alice", "alice@example.com", "secret1")
	a := newApp(t, srv)

	storage := session.NewFileStorage(filepath.Join(a.Config.Dir, config.SessionFile))
	if err := storage.Save([]byte(`{"id":1,"username":"alice","email":"alice@example.com"}`)); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := a.Mount(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := srv.CountRequests(http.MethodGet, "/api/users/profile/"); n != 1 {
		t.Errorf("expected one verification, got %d", n)
	}
	user, err := a.User()
	if err != nil || user.Username != "alice" {
		t.Errorf("expected alice, got %+v (%v)", user, err)
	}
}

func TestTeardown_ClearsDependentState(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	alice := srv.AddUser("alice", "alice@example.com", "secret1")
	srv.AddTask(service.Task{UserID: alice.ID, Title: "t"})
	a := newApp(t, srv)
	ctx := context.Background()

	if _, err := a.Session.Authenticate(ctx, service.Credentials{Username: "alice", Password: "secret1"}, session.ModeLogin); err != nil {
		t.Fatal(err)
	}
	if err := a.Tasks.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if len(a.Tasks.Tasks()) != 1 {
		t.Fatal("expected one cached task")
	}
	a.Notices.Post("something")

	if err := a.Teardown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.User(); err != service.ErrNotLoggedIn {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}
	if len(a.Tasks.Tasks()) != 0 || a.Tasks.Stats().TotalTasks != 0 {
		t.Error("expected task state to be reset")
	}
	if a.Notices.Current() != "" {
		t.Error("expected notice dismissed")
	}
	if a.Config.HasSession() {
		t.Error("expected session file removed")
	}
}
