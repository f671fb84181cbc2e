package main

import (
	"context"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/di"
	"desktop-agent/internal/infrastructure/env"
)

// app builds the container lazily so that commands which only parse text
// never launch a browser.
type app struct {
	config    output.ConfigPort
	headless  bool
	timeout   time.Duration
	maxSteps  int
	container func(ctx context.Context, cfg di.Config) (*di.Container, error)
}

func newApp() *app {
	return &app{
		config:    env.NewEnvService(),
		container: di.NewContainer,
	}
}

func (a *app) build(ctx context.Context) (*di.Container, error) {
	cfg := di.ConfigFromEnv(a.config)
	if a.headless {
		cfg.BrowserHeadless = true
	}
	if a.maxSteps > 0 {
		cfg.AgentMaxSteps = a.maxSteps
	}
	return a.container(ctx, cfg)
}

func (a *app) context(parent context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.timeout)
}
