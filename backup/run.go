package backup

import (
	"context"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
)

// Result describes a finished backup run.
type Result struct {
	Archive  string
	OK       bool
	ExitCode int
	Size     int64
	Started  time.Time
	Finished time.Time
}

// RunBackup exports cfg.Distribution to dest, compressed or not.
//
// On failure or interruption the partial file at dest is removed and the
// error returned; interruptions carry ErrInterrupted.
func (b *Backup) RunBackup(ctx context.Context, cfg Config, dest string) (Result, error) {
	b.log.Info("Making a backup", "distribution", cfg.Distribution, "dest", dest)
	res := Result{Archive: dest, Started: b.clock.Now()}

	var err error
	if cfg.Compress {
		res.ExitCode, err = b.CreateArchiveCompress(ctx, cfg.Distribution, dest, cfg.VHDX)
	} else {
		res.ExitCode, err = b.CreateArchive(ctx, cfg.Distribution, dest, cfg.VHDX)
	}
	res.Finished = b.clock.Now()

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		b.log.Info("Interrupted by user.")
		b.DeleteGarbageFile(dest)
		if err == nil {
			err = ctxErr
		}
		return res, errors.WithType(err, ErrInterrupted)
	}
	if err != nil {
		b.log.Error("Backup failed", "distribution", cfg.Distribution, "error", err)
		b.DeleteGarbageFile(dest)
		return res, err
	}

	if fi, statErr := os.Stat(dest); statErr == nil {
		res.Size = fi.Size()
	}
	res.OK = true
	b.log.Info("Backup succeeded",
		"distribution", cfg.Distribution,
		"size", humanize.Bytes(uint64(res.Size)),
		"took", res.Finished.Sub(res.Started).Round(time.Second))
	return res, nil
}

// DeleteGarbageFile removes a partial archive. Failures are logged at debug
// level only since the file may never have been created.
func (b *Backup) DeleteGarbageFile(path string) {
	if err := os.Remove(path); err != nil {
		b.log.Debug("Deletion of garbage file failed", "path", path, "error", err)
		return
	}
	b.log.Info("Removed partial archive", "path", path)
}
