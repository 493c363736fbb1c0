package container

import (
	"context"
	"fmt"
	"time"

	"trendspotter/adapters/llm"
	"trendspotter/adapters/report"
	"trendspotter/app"
	"trendspotter/internal"
	"trendspotter/internal/config"
	"trendspotter/internal/session"
	"trendspotter/ports"

	"github.com/robfig/cron/v3"
)

// defaultIdleTimeout applies when the config leaves SessionIdleTimeout unset
const defaultIdleTimeout = 2 * time.Hour

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// LLMClient is nil in demo mode
	LLMClient ports.LLMClient

	Reports  *app.ReportService
	Sessions *session.Store

	cron *cron.Cron
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Sessions: session.NewStore(logger),
	}

	if cfg.AI.DemoMode() {
		logger.Warn("[Container] no API key for %s, running in demo mode", cfg.AI.Provider)
	} else {
		client, err := llm.NewClient(llm.ConfigFromApp(cfg.AI))
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		c.LLMClient = client
	}

	c.Reports = app.NewReportService(cfg, c.LLMClient, logger)
	return c, nil
}

// StartJanitor schedules the sweep of idle sessions and expired exports.
// It runs until Shutdown is called.
func (c *Container) StartJanitor(schedule string) error {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.cron = cron.New()
	c.cron.Schedule(sched, cron.FuncJob(c.Sweep))
	c.cron.Start()
	c.Logger.Info("[Container] janitor scheduled (%s)", schedule)
	return nil
}

// Sweep drops idle sessions and prunes exports past their retention
func (c *Container) Sweep() {
	timeout := c.Config.Server.SessionIdleTimeout
	if timeout <= 0 {
		timeout = defaultIdleTimeout
	}
	if n := c.Sessions.CleanupIdle(timeout); n > 0 {
		c.Logger.Info("[Container] dropped %d idle sessions", n)
	}

	retention := c.Config.Reports.Retention
	if retention <= 0 {
		return
	}
	n, err := report.Prune(c.Config.Reports.OutputDir, time.Now().Add(-retention))
	if err != nil {
		c.Logger.Warn("[Container] pruning %s failed: %v", c.Config.Reports.OutputDir, err)
		return
	}
	if n > 0 {
		c.Logger.Info("[Container] pruned %d expired exports", n)
	}
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.cron != nil {
		select {
		case <-c.cron.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// stderr sync errors are expected on some platforms
	_ = c.Logger.Sync()
	return nil
}
