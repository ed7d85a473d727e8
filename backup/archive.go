package backup

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/sync/errgroup"
)

// exportArgs builds the wsl.exe arguments; dest "-" streams to stdout.
func exportArgs(distro, dest string, vhdx bool) []string {
	args := []string{"--export"}
	if vhdx {
		args = append(args, "--vhd")
	}
	return append(args, distro, dest)
}

// CreateArchive exports the distribution straight to dest and returns the
// exit code of wsl.exe. A non-zero exit is an error.
func (b *Backup) CreateArchive(ctx context.Context, distro, dest string, vhdx bool) (int, error) {
	c := b.cmd(ctx, b.settings.WSL, exportArgs(distro, dest, vhdx)...)
	out, err := b.runAndLog(c)
	code := exitCode(c)
	if err != nil {
		return code, errors.Annotatef(err, "exporting %s (exit code %d): %s", distro, code, out)
	}
	return code, nil
}

// CreateArchiveCompress streams the export through zstd into dest and returns
// the exit code of zstd.
//
// Both processes share one context bounded by Settings.Timeout: when either
// fails, times out or ctx is cancelled, the other is killed as well and both
// are reaped before returning. zstd's output is logged in every case. A
// timeout is reported as errors.Timeout.
func (b *Backup) CreateArchiveCompress(ctx context.Context, distro, dest string, vhdx bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, b.settings.Timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	pr, pw, err := os.Pipe()
	if err != nil {
		return -1, errors.Annotate(err, "creating pipe")
	}

	var exportErr, zstdOut bytes.Buffer
	export := b.cmd(gctx, b.settings.WSL, exportArgs(distro, "-", vhdx)...)
	export.Stdout = pw
	export.Stderr = &exportErr

	zstdArgs := append(append([]string{}, b.settings.ZstdArgs...), "-o", dest)
	compress := b.cmd(gctx, b.settings.Zstd, zstdArgs...)
	compress.Stdin = pr
	compress.Stdout = &zstdOut
	compress.Stderr = &zstdOut

	b.log.Debug("running", "cmd", strings.Join(export.Args, " ")+" | "+strings.Join(compress.Args, " "))
	if err := export.Start(); err != nil {
		pr.Close()
		pw.Close()
		return -1, errors.Annotatef(err, "starting %s", b.settings.WSL)
	}
	if err := compress.Start(); err != nil {
		pr.Close()
		pw.Close()
		cancel()
		_ = export.Wait()
		return -1, errors.Annotatef(err, "starting %s", b.settings.Zstd)
	}
	// The children hold their own copies; zstd sees EOF once wsl.exe exits.
	pr.Close()
	pw.Close()

	b.log.Info("Compressing the archive...", "dest", dest)
	g.Go(func() error {
		if err := export.Wait(); err != nil {
			return errors.Annotatef(err, "exporting %s: %s", distro, decodeToolOutput(exportErr.Bytes()))
		}
		return nil
	})
	g.Go(func() error {
		if err := compress.Wait(); err != nil {
			return errors.Annotatef(err, "compressing to %s", dest)
		}
		return nil
	})
	err = g.Wait()

	if out := decodeToolOutput(zstdOut.Bytes()); out != "" {
		b.log.Info("zstd output", "text", out)
	}
	code := exitCode(compress)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return code, errors.Timeoutf("compressed export of %s after %s", distro, b.settings.Timeout)
	}
	if err != nil {
		return code, err
	}
	return code, nil
}
