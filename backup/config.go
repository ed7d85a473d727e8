package backup

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/errors"
)

// Config holds configuration of backup operation
type Config struct {
	ParentDir    string
	Distribution string
	Compress     bool
	VHDX         bool
	Explorer     bool
	KillFrontend bool
	Manifest     bool
	LogLevel     string
}

// DistributionDir is the folder holding every archive of the distribution.
func (c Config) DistributionDir() string {
	return filepath.Join(c.ParentDir, c.Distribution)
}

// Format names the export format, "vhdx" or "tar".
func (c Config) Format() string {
	if c.VHDX {
		return "vhdx"
	}
	return "tar"
}

// ResolveExtension returns the archive extension for the export format and
// compression flags: .tar, .tar.zst, .vhdx or .vhdx.zst.
func ResolveExtension(vhdx, compress bool) string {
	ext := ".tar"
	if vhdx {
		ext = ".vhdx"
	}
	if compress {
		ext += ".zst"
	}
	return ext
}

// timestampLayout is ISO-8601 with microseconds, before colons are replaced.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Timestamp formats t as a filesystem-safe ISO-8601 string.
func Timestamp(t time.Time) string {
	return strings.ReplaceAll(t.Format(timestampLayout), ":", "-")
}

// ArchivePath builds <parent>/<distribution>/<timestamp><ext>.
func ArchivePath(cfg Config, now time.Time) string {
	return filepath.Join(cfg.DistributionDir(), Timestamp(now)+ResolveExtension(cfg.VHDX, cfg.Compress))
}

// EnsureDir creates dir and its parents when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Annotatef(err, "creating %s", dir)
	}
	return nil
}
