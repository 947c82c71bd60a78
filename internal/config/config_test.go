package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
}

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"USER_SERVICE_URL", "TASK_SERVICE_URL", "ENVIRONMENT", "TIMEOUT", "LOG_LEVEL", "API_TOKEN"} {
		t.Setenv(envKey(key), "")
	}
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %s, got %s", dir, cfg.Dir)
	}
	if cfg.UserServiceURL != DefaultUserServiceURL || cfg.TaskServiceURL != DefaultTaskServiceURL {
		t.Errorf("unexpected URLs %s %s", cfg.UserServiceURL, cfg.TaskServiceURL)
	}
	if cfg.Timeout != DefaultTimeout || cfg.Environment != DefaultEnvironment || !cfg.IsDevelopment() {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.SessionPath() != filepath.Join(dir, SessionFile) {
		t.Errorf("unexpected session path %s", cfg.SessionPath())
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), `
user_service_url: http://users:6001/api
task_service_url: http://tasks:6002/api
environment: production
request_timeout: 3s
log_level: info
api_token: abc
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UserServiceURL != "http://users:6001/api" || cfg.TaskServiceURL != "http://tasks:6002/api" {
		t.Errorf("unexpected URLs %s %s", cfg.UserServiceURL, cfg.TaskServiceURL)
	}
	if cfg.Environment != "production" || cfg.IsDevelopment() {
		t.Errorf("unexpected environment %s", cfg.Environment)
	}
	if cfg.Timeout != 3*time.Second || cfg.LogLevel != "info" || cfg.APIToken != "abc" {
		t.Errorf("unexpected settings %+v", cfg)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), "request_timeout: soon\n")

	if _, err := Load(dir); err == nil {
		t.Error("expected error for bad timeout")
	}

	writeFile(t, filepath.Join(dir, ConfigFile), "user_service_url: [unclosed\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected error for bad YAML")
	}
}

func TestLoad_DotEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), "user_service_url: http://from-file/api\n")
	writeFile(t, filepath.Join(dir, ".env"), "TASKMGR_USER_SERVICE_URL=http://from-dotenv/api\nTASKMGR_TASK_SERVICE_URL=http://generic/api\n")
	writeFile(t, filepath.Join(dir, ".env.development"), "TASKMGR_TASK_SERVICE_URL=http://dev/api\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UserServiceURL != "http://from-dotenv/api" {
		t.Errorf(".env should override config.yaml, got %s", cfg.UserServiceURL)
	}
	if cfg.TaskServiceURL != "http://dev/api" {
		t.Errorf(".env.<environment> should override .env, got %s", cfg.TaskServiceURL)
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "TASKMGR_TIMEOUT=2s\n")
	t.Setenv("TASKMGR_TIMEOUT", "7s")
	t.Setenv("TASKMGR_API_TOKEN", "tok")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("expected 7s, got %s", cfg.Timeout)
	}
	if cfg.APIToken != "tok" {
		t.Errorf("expected token from environment, got %q", cfg.APIToken)
	}
}

func TestLoad_EnvironmentSelectsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env.staging"), "TASKMGR_LOG_LEVEL=debug\n")
	t.Setenv("TASKMGR_ENVIRONMENT", "staging")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Environment != "staging" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_InvalidTimeoutEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKMGR_TIMEOUT", "-1s")

	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for non-positive timeout")
	}
}

func TestHasSession(t *testing.T) {
	cfg, _ := New(t.TempDir())
	if cfg.HasSession() {
		t.Error("expected no session")
	}
	writeFile(t, cfg.SessionPath(), "{}")
	if !cfg.HasSession() {
		t.Error("expected session")
	}
}
