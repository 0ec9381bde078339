package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/cb-sentinel/internal/health"
	"github.com/yourusername/cb-sentinel/internal/models"
	"github.com/yourusername/cb-sentinel/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled scans and premium sweeps with health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sched, err := newScheduler()
		if err != nil {
			return err
		}

		healthCfg := health.Config{
			ServiceName: app.cfg.App.Name,
			Version:     Version,
			Port:        app.cfg.Metrics.Port,
			Logger:      app.logger,
			Scheduler:   sched,
		}
		if app.cfg.Metrics.Enabled {
			healthCfg.MetricsPath = app.cfg.Metrics.Path
		}
		if app.db != nil {
			healthCfg.DB = app.db
		}
		server := health.NewServer(healthCfg)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return err
		}
		server.SetReady(true)
		app.logger.WithField("next_run", sched.GetNextRun()).Info("Monitor running")

		<-ctx.Done()
		server.SetReady(false)
		return sched.Stop()
	},
}

// runScanJob adapts the scan command's id resolution to the scheduler
type runScanJob struct{}

func (runScanJob) ScanUniverse(ctx context.Context) (models.ScanReport, error) {
	s, err := newScanner()
	if err != nil {
		return models.ScanReport{}, err
	}
	return runScan(ctx, s, nil)
}

func newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.NewScheduler(app.logger)
	if spec := app.cfg.Schedule.ScanCron; spec != "" {
		if err := sched.ScheduleScan(spec, runScanJob{}); err != nil {
			return nil, err
		}
	}
	if spec := app.cfg.Schedule.PremiumCron; spec != "" {
		if err := sched.SchedulePremium(spec, newPremiumService()); err != nil {
			return nil, err
		}
	}
	return sched, nil
}
