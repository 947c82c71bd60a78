// Package testutil provides testing utilities.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"taskmgr/internal/backend/httpapi"
	"taskmgr/internal/service"
)

// Route keys accepted by FakeServer.Fail.
const (
	RouteRegister = "register"
	RouteLogin    = "login"
	RouteProfile  = "profile"
	RouteList     = "list"
	RouteStats    = "stats"
	RouteCreate   = "create"
	RouteUpdate   = "update"
	RouteDelete   = "delete"
	RouteHealth   = "health"
)

// Failure is an injected error response.
type Failure struct {
	Status  int
	Message string
}

// Request is one recorded request.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeUser struct {
	user     service.User
	password string
}

// FakeServer is an in-memory implementation of the user-account and task
// REST surfaces, served by two httptest servers.
type FakeServer struct {
	mu         sync.Mutex
	users      []fakeUser
	tasks      []service.Task // insertion order; listed newest first
	nextUserID int64
	nextTaskID int64
	failures   map[string]Failure
	requests   []Request

	// Now is the clock used for timestamps and overdue counting.
	Now func() time.Time

	UserServer *httptest.Server
	TaskServer *httptest.Server
}

// NewFakeServer starts both services. They are closed when the test ends.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	f := &FakeServer{
		nextUserID: 1,
		nextTaskID: 1,
		failures:   make(map[string]Failure),
		Now:        time.Now,
	}
	f.UserServer = httptest.NewServer(f.userRouter())
	f.TaskServer = httptest.NewServer(f.taskRouter())
	t.Cleanup(func() {
		f.UserServer.Close()
		f.TaskServer.Close()
	})
	return f
}

// UserURL returns the user service base URL (including /api).
func (f *FakeServer) UserURL() string { return f.UserServer.URL + "/api" }

// TaskURL returns the task service base URL (including /api).
func (f *FakeServer) TaskURL() string { return f.TaskServer.URL + "/api" }

// Client returns an httpapi client pointed at both fake services.
func (f *FakeServer) Client() *httpapi.Client {
	return httpapi.NewWithHTTPClient(http.DefaultClient, f.UserURL(), f.TaskURL(), 5*time.Second, nil)
}

// StopUserService closes the user service so that requests fail to connect.
func (f *FakeServer) StopUserService() { f.UserServer.Close() }

// StopTaskService closes the task service so that requests fail to connect.
func (f *FakeServer) StopTaskService() { f.TaskServer.Close() }

// Fail makes route answer with the given status and error message until
// Recover is called.
func (f *FakeServer) Fail(route string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = Failure{Status: status, Message: message}
}

// Recover removes an injected failure.
func (f *FakeServer) Recover(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, route)
}

// AddUser registers a user directly.
func (f *FakeServer) AddUser(username, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(username, email, password)
}

func (f *FakeServer) addUserLocked(username, email, password string) service.User {
	u := service.User{ID: f.nextUserID, Username: username, Email: email}
	f.nextUserID++
	f.users = append(f.users, fakeUser{user: u, password: password})
	return u
}

// AddTask stores a task directly. A zero ID is assigned; defaults fill empty
// priority, status and created_at.
func (f *FakeServer) AddTask(task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTaskLocked(task)
}

func (f *FakeServer) addTaskLocked(task service.Task) service.Task {
	if task.ID == 0 {
		task.ID = f.nextTaskID
	}
	if task.ID >= f.nextTaskID {
		f.nextTaskID = task.ID + 1
	}
	if task.Priority == "" {
		task.Priority = service.PriorityMedium
	}
	if task.Status == "" {
		task.Status = service.StatusPending
	}
	if task.CreatedAt == "" {
		task.CreatedAt = f.Now().Format("2006-01-02T15:04:05.000000")
	}
	if task.UpdatedAt == "" {
		task.UpdatedAt = task.CreatedAt
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Task returns a stored task by ID.
func (f *FakeServer) Task(id int64) (service.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Requests returns a copy of the request log.
func (f *FakeServer) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// CountRequests counts logged requests with the given method whose path
// starts with pathPrefix.
func (f *FakeServer) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (f *FakeServer) ResetRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

func (f *FakeServer) userRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(f.record)
	r.HandleFunc("/health", f.handleHealth).Methods("GET")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users/register", f.handleRegister).Methods("POST")
	api.HandleFunc("/users/login", f.handleLogin).Methods("POST")
	api.HandleFunc("/users/profile/{id:[0-9]+}", f.handleProfile).Methods("GET")
	return r
}

func (f *FakeServer) taskRouter() http.Handler {
	r := mux.NewRouter()
	r.Use(f.record)
	r.HandleFunc("/health", f.handleHealth).Methods("GET")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tasks", f.handleListTasks).Methods("GET")
	api.HandleFunc("/tasks", f.handleCreateTask).Methods("POST")
	api.HandleFunc("/tasks/stats/{user_id:[0-9]+}", f.handleStats).Methods("GET")
	api.HandleFunc("/tasks/{id:[0-9]+}", f.handleUpdateTask).Methods("PUT")
	api.HandleFunc("/tasks/{id:[0-9]+}", f.handleDeleteTask).Methods("DELETE")
	return r
}

func (f *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// injected writes an injected failure for route, if any.
func (f *FakeServer) injected(w http.ResponseWriter, route string) bool {
	f.mu.Lock()
	failure, ok := f.failures[route]
	f.mu.Unlock()
	if !ok {
		return false
	}
	if failure.Message == "" {
		w.WriteHeader(failure.Status)
		return true
	}
	writeJSON(w, failure.Status, map[string]string{"error": failure.Message})
	return true
}

func (f *FakeServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteHealth) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (f *FakeServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteRegister) {
		return
	}
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil || body.Username == "" || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.user.Username == body.Username || u.user.Email == body.Email {
			writeError(w, http.StatusConflict, "Username or email already exists")
			return
		}
	}
	user := f.addUserLocked(body.Username, body.Email, body.Password)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (f *FakeServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteLogin) {
		return
	}
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil || body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.user.Username == body.Username && u.password == body.Password {
			writeJSON(w, http.StatusOK, map[string]any{
				"message": "Login successful",
				"user":    u.user,
			})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid username or password")
}

func (f *FakeServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteProfile) {
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.user.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"user": u.user})
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}

func (f *FakeServer) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteList) {
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []service.Task{}
	for i := len(f.tasks) - 1; i >= 0; i-- {
		if f.tasks[i].UserID == userID {
			out = append(out, f.tasks[i])
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

func (f *FakeServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteCreate) {
		return
	}
	var body struct {
		UserID      int64            `json:"user_id"`
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Priority    service.Priority `json:"priority"`
		Status      service.Status   `json:"status"`
		DueDate     *string          `json:"due_date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}
	if body.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if body.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	task := service.Task{
		UserID:      body.UserID,
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Status:      body.Status,
	}
	if body.DueDate != nil {
		task.DueDate = *body.DueDate
	}

	f.mu.Lock()
	task = f.addTaskLocked(task)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (f *FakeServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteUpdate) {
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil || len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if v, ok := fields["title"].(string); ok {
			t.Title = v
		}
		if v, ok := fields["description"].(string); ok {
			t.Description = v
		}
		if v, ok := fields["priority"].(string); ok {
			t.Priority = service.Priority(v)
		}
		if v, ok := fields["status"].(string); ok {
			t.Status = service.Status(v)
		}
		if v, ok := fields["due_date"]; ok {
			s, _ := v.(string)
			t.DueDate = s
		}
		t.UpdatedAt = f.Now().Format("2006-01-02T15:04:05.000000")
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated successfully"})
		return
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (f *FakeServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteDelete) {
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Task not found")
}

func (f *FakeServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if f.injected(w, RouteStats) {
		return
	}
	userID, _ := strconv.ParseInt(mux.Vars(r)["user_id"], 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.Now()
	stats := service.Stats{ByStatus: map[string]int{}}
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		stats.TotalTasks++
		stats.ByStatus[string(t.Status)]++
		if due, ok := t.Due(); ok && due.Before(now) && t.Status != service.StatusCompleted {
			stats.OverdueTasks++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
