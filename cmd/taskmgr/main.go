// Package main is the entry point for the taskmgr CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskmgr/internal/app"
	"taskmgr/internal/backend/httpapi"
	"taskmgr/internal/cli"
	"taskmgr/internal/commands"
	"taskmgr/internal/config"
	"taskmgr/internal/logger"
	"taskmgr/internal/prompt"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create app factory
	factory := func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		level := cfg.LogLevel
		if cfg.Debug {
			level = "DEBUG"
		}
		format := "text"
		if !cfg.IsDevelopment() {
			format = "json"
		}
		log := logger.New(os.Stderr, logger.WithLevel(level), logger.WithFormat(format))
		log.DebugContext(ctx, "config loaded",
			"dir", cfg.Dir,
			"environment", cfg.Environment,
			"user_service", cfg.UserServiceURL,
			"task_service", cfg.TaskServiceURL)

		backend := httpapi.New(cfg, log)
		return app.New(cfg, backend, log, app.WithPrompter(prompt.New(os.Stdin, os.Stderr))), nil
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
