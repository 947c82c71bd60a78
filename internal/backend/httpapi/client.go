// Package httpapi implements the service interfaces over the REST/JSON
// surfaces of the user-account and task services.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"taskmgr/internal/config"
	"taskmgr/internal/logger"
	"taskmgr/internal/service"
)

const (
	// RequestIDHeader carries a per-request UUID for correlating service logs.
	RequestIDHeader = "X-Request-ID"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 1 << 20

	userService = "user"
	taskService = "task"
)

// Client implements service.Accounts and service.Tasks.
type Client struct {
	users *endpoint
	tasks *endpoint
}

var (
	_ service.Accounts = (*Client)(nil)
	_ service.Tasks    = (*Client)(nil)
)

// New creates a client for the services named in cfg.
// When cfg.APIToken is set every request carries it as a bearer token.
func New(cfg *config.Config, log *logger.Logger) *Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.APIToken != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cfg.APIToken,
				TokenType:   "Bearer",
			}),
			Base: transport,
		}
	}
	return NewWithHTTPClient(&http.Client{Transport: transport}, cfg.UserServiceURL, cfg.TaskServiceURL, cfg.Timeout, log)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(httpClient *http.Client, userURL, taskURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		users: newEndpoint(httpClient, userService, userURL, timeout, log),
		tasks: newEndpoint(httpClient, taskService, taskURL, timeout, log),
	}
}

type userEnvelope struct {
	User service.User `json:"user"`
}

// Register implements service.Accounts.
func (c *Client) Register(ctx context.Context, creds service.Credentials) (service.User, error) {
	body := map[string]string{
		"username": creds.Username,
		"email":    creds.Email,
		"password": creds.Password,
	}
	var resp userEnvelope
	if err := c.users.do(ctx, http.MethodPost, "/users/register", nil, body, &resp); err != nil {
		return service.User{}, err
	}
	return resp.User, nil
}

// Login implements service.Accounts.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.User, error) {
	body := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	}
	var resp userEnvelope
	if err := c.users.do(ctx, http.MethodPost, "/users/login", nil, body, &resp); err != nil {
		return service.User{}, err
	}
	return resp.User, nil
}

// Profile implements service.Accounts.
func (c *Client) Profile(ctx context.Context, id int64) (service.User, error) {
	var resp userEnvelope
	if err := c.users.do(ctx, http.MethodGet, "/users/profile/"+formatID(id), nil, nil, &resp); err != nil {
		return service.User{}, err
	}
	return resp.User, nil
}

// ListTasks implements service.Tasks.
func (c *Client) ListTasks(ctx context.Context, userID int64) ([]service.Task, error) {
	query := url.Values{"user_id": {formatID(userID)}}
	var resp struct {
		Tasks []service.Task `json:"tasks"`
	}
	if err := c.tasks.do(ctx, http.MethodGet, "/tasks", query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		return []service.Task{}, nil
	}
	return resp.Tasks, nil
}

// Stats implements service.Tasks.
func (c *Client) Stats(ctx context.Context, userID int64) (service.Stats, error) {
	var stats service.Stats
	if err := c.tasks.do(ctx, http.MethodGet, "/tasks/stats/"+formatID(userID), nil, nil, &stats); err != nil {
		return service.Stats{}, err
	}
	if stats.ByStatus == nil {
		stats.ByStatus = map[string]int{}
	}
	return stats, nil
}

// CreateTask implements service.Tasks.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	var resp struct {
		Task service.Task `json:"task"`
	}
	if err := c.tasks.do(ctx, http.MethodPost, "/tasks", nil, in, &resp); err != nil {
		return service.Task{}, err
	}
	return resp.Task, nil
}

// UpdateTask implements service.Tasks.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch service.TaskPatch) error {
	return c.tasks.do(ctx, http.MethodPut, "/tasks/"+formatID(id), nil, patch, nil)
}

// DeleteTask implements service.Tasks.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.tasks.do(ctx, http.MethodDelete, "/tasks/"+formatID(id), nil, nil, nil)
}

// UserServiceHealth calls the user service's health endpoint.
func (c *Client) UserServiceHealth(ctx context.Context) error {
	return c.users.health(ctx)
}

// TaskServiceHealth calls the task service's health endpoint.
func (c *Client) TaskServiceHealth(ctx context.Context) error {
	return c.tasks.health(ctx)
}

// endpoint is one service's base URL plus the shared HTTP plumbing.
type endpoint struct {
	http    *http.Client
	name    string
	base    string
	timeout time.Duration
	log     *logger.Logger
}

func newEndpoint(httpClient *http.Client, name, base string, timeout time.Duration, log *logger.Logger) *endpoint {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &endpoint{
		http:    httpClient,
		name:    name,
		base:    strings.TrimRight(base, "/"),
		timeout: timeout,
		log:     log,
	}
}

// do sends a JSON request and decodes a 2xx JSON response into out.
// Non-2xx responses become *service.APIError; transport failures become
// *service.ConnError.
func (e *endpoint) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := e.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return e.send(ctx, method, target, body, out)
}

// health GETs /health at the service root (the base URL without its /api suffix).
func (e *endpoint) health(ctx context.Context) error {
	root := strings.TrimSuffix(e.base, "/api")
	return e.send(ctx, http.MethodGet, root+"/health", nil, nil)
}

func (e *endpoint) send(ctx context.Context, method, target string, body, out any) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := e.http.Do(req)
	if err != nil {
		e.log.DebugContext(ctx, "request failed",
			"service", e.name, "method", method, "url", target, "request_id", requestID, "error", err)
		return &service.ConnError{Service: e.name, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &service.ConnError{Service: e.name, Err: err}
	}

	e.log.DebugContext(ctx, "request",
		"service", e.name, "method", method, "url", target, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w from %s service: %w", service.ErrBadResponse, e.name, err)
	}
	return nil
}

// decodeError builds an APIError from an {"error": "..."} body.
// Bodies that are not JSON leave Message empty.
func decodeError(status int, data []byte) error {
	apiErr := &service.APIError{StatusCode: status}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

