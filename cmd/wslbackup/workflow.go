// workflow.go contains CLI-specific orchestration logic for backup flows.
// If reuse is needed outside cmd/wslbackup, consider moving RunBackupWorkflow to backup.
package main

import (
	"context"
	"log/slog"

	"github.com/juju/errors"

	"github.com/valvemist/wslbackup/backup"
)

// RunBackupWorkflow executes the full backup workflow based on the provided configuration.
func RunBackupWorkflow(ctx context.Context, logger *slog.Logger, b *backup.Backup, cfg backup.Config) error {
	dir := cfg.DistributionDir()
	dest := backup.ArchivePath(cfg, b.Now())
	logger.Debug("Starting backup workflow", "dest", dest)

	if err := StopRunningInstance(ctx, logger, b, cfg); err != nil {
		return err
	}

	if err := backup.EnsureDir(dir); err != nil {
		logger.Error("Cannot prepare destination", "error", err)
		return errors.Trace(err)
	}

	res, err := b.RunBackup(ctx, cfg, dest)
	if err != nil {
		return err
	}

	if cfg.Manifest {
		if _, err := b.WriteManifest(backup.NewManifest(cfg, res)); err != nil {
			logger.Error("Manifest not written", "error", err)
		}
	}
	if cfg.Explorer {
		b.OpenExplorer(ctx, dir)
	}
	return nil
}

// StopRunningInstance terminates the distribution when the wsl.exe front-end
// is running, then waits for it to settle.
func StopRunningInstance(ctx context.Context, logger *slog.Logger, b *backup.Backup, cfg backup.Config) error {
	frontend := b.Settings().Frontend
	if !b.IsRunning(ctx, frontend) {
		logger.Debug("No running front-end", "name", frontend)
		return nil
	}
	logger.Info("Shutting down the instance", "distribution", cfg.Distribution)
	if err := b.ShutdownInstance(ctx, cfg.Distribution); err != nil {
		logger.Error("Shutdown failed", "error", err)
		return err
	}
	if err := b.WaitForShutdown(ctx); err != nil {
		return err
	}
	if cfg.KillFrontend {
		b.FindAndKillByName(ctx, frontend)
	}
	return nil
}
