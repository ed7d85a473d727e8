package backup

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/juju/clock"
	"golang.org/x/text/encoding/unicode"
)

// Commander builds the command for an external tool. It matches
// exec.CommandContext so tests can substitute fake processes.
type Commander func(ctx context.Context, name string, args ...string) *exec.Cmd

// waitDelay bounds how long Wait keeps draining output after a kill.
const waitDelay = 5 * time.Second

// Backup drives wsl.exe, zstd and explorer.exe for one run.
type Backup struct {
	log      *slog.Logger
	settings Settings
	command  Commander
	procs    ProcessLister
	clock    clock.Clock
}

// Option customises a Backup.
type Option func(*Backup)

// WithCommander replaces exec.CommandContext.
func WithCommander(c Commander) Option {
	return func(b *Backup) { b.command = c }
}

// WithProcessLister replaces the system process table.
func WithProcessLister(l ProcessLister) Option {
	return func(b *Backup) { b.procs = l }
}

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(b *Backup) { b.clock = c }
}

// New returns a Backup logging to logger. A nil logger discards output.
func New(logger *slog.Logger, settings Settings, opts ...Option) *Backup {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Backup{
		log:      logger,
		settings: settings,
		command:  exec.CommandContext,
		procs:    SystemProcesses(),
		clock:    clock.WallClock,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the tool settings in use.
func (b *Backup) Settings() Settings { return b.settings }

// Now reads the configured clock.
func (b *Backup) Now() time.Time { return b.clock.Now() }

// cmd builds a command with the wait delay applied.
func (b *Backup) cmd(ctx context.Context, name string, args ...string) *exec.Cmd {
	c := b.command(ctx, name, args...)
	c.WaitDelay = waitDelay
	return c
}

// runAndLog runs a command to completion and logs its combined output.
func (b *Backup) runAndLog(c *exec.Cmd) (string, error) {
	b.log.Debug("running", "cmd", strings.Join(c.Args, " "))
	raw, err := c.CombinedOutput()
	out := decodeToolOutput(raw)
	if out != "" {
		b.log.Debug("output", "cmd", c.Args[0], "text", out)
	}
	return out, err
}

// exitCode reports the exit status of a finished command, -1 if it never ran
// or was killed by a signal.
func exitCode(c *exec.Cmd) int {
	if c.ProcessState == nil {
		return -1
	}
	return c.ProcessState.ExitCode()
}

// decodeToolOutput turns tool output into trimmed text. wsl.exe writes
// UTF-16LE, recognised by NUL high bytes.
func decodeToolOutput(raw []byte) string {
	if looksUTF16LE(raw) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if text, err := dec.Bytes(raw); err == nil {
			raw = text
		}
	}
	return strings.TrimSpace(string(raw))
}

func looksUTF16LE(raw []byte) bool {
	if len(raw) < 2 || len(raw)%2 != 0 {
		return false
	}
	if bytes.HasPrefix(raw, []byte{0xff, 0xfe}) {
		return true
	}
	for i := 1; i < len(raw); i += 2 {
		if raw[i] != 0 {
			return false
		}
	}
	return true
}
