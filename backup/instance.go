// instance.go contains operations on the running distribution: terminate,
// the settle delay that follows it, and opening the backup folder.

package backup

import (
	"context"

	"github.com/juju/errors"
)

// ErrShutdown marks a failed wsl --terminate.
const ErrShutdown = errors.ConstError("instance shutdown failed")

// ErrInterrupted marks a run stopped by the user.
const ErrInterrupted = errors.ConstError("interrupted")

// ShutdownInstance terminates the named distribution and waits for wsl.exe
// to return. A non-zero exit is reported as ErrShutdown.
func (b *Backup) ShutdownInstance(ctx context.Context, distro string) error {
	c := b.cmd(ctx, b.settings.WSL, "--terminate", distro)
	out, err := b.runAndLog(c)
	if err != nil && ctx.Err() != nil {
		return errors.WithType(errors.Annotatef(err, "terminating %s", distro), ErrInterrupted)
	}
	if err != nil {
		return errors.WithType(
			errors.Annotatef(err, "terminating %s (exit code %d): %s", distro, exitCode(c), out),
			ErrShutdown)
	}
	b.log.Info("Instance terminated", "distribution", distro)
	return nil
}

// WaitForShutdown sleeps for the configured delay so the instance's backing
// process can exit. It returns early with ErrInterrupted when ctx is done.
func (b *Backup) WaitForShutdown(ctx context.Context) error {
	if b.settings.ShutdownDelay <= 0 {
		return nil
	}
	b.log.Info("Waiting for a moment...", "delay", b.settings.ShutdownDelay)
	select {
	case <-b.clock.After(b.settings.ShutdownDelay):
		return nil
	case <-ctx.Done():
		return errors.WithType(ctx.Err(), ErrInterrupted)
	}
}

// OpenExplorer opens a file browser on dir. explorer.exe exits non-zero even
// when the window opened, so failures are only logged.
func (b *Backup) OpenExplorer(ctx context.Context, dir string) {
	b.log.Info("Opening explorer", "dir", dir)
	c := b.cmd(ctx, b.settings.Explorer, dir)
	if _, err := b.runAndLog(c); err != nil {
		b.log.Debug("explorer returned an error", "error", err)
	}
}
