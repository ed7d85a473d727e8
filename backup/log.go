package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/juju/errors"
)

// LevelCritical sits above slog.LevelError and is used for failures that are
// reported loudly but do not stop the program.
const LevelCritical = slog.Level(12)

// ParseLevel converts a log level name to a slog.Level. Names are
// case-insensitive; "warn" and "fatal" are accepted as aliases.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	}
	return 0, errors.NotValidf("log level %q", name)
}

func levelName(lvl slog.Level) string {
	switch {
	case lvl >= LevelCritical:
		return "CRITICAL"
	case lvl >= slog.LevelError:
		return "ERROR"
	case lvl >= slog.LevelWarn:
		return "WARNING"
	case lvl >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

var levelColors = map[string]*color.Color{
	"CRITICAL": color.New(color.FgHiRed, color.Bold),
	"ERROR":    color.New(color.FgRed),
	"WARNING":  color.New(color.FgYellow),
	"INFO":     color.New(color.FgCyan),
	"DEBUG":    color.New(color.FgHiBlack),
}

// ConsoleHandler prints records as "[LEVEL] message key=value (file:line)".
type ConsoleHandler struct {
	// AddSource appends the caller's file and line.
	AddSource bool

	mu    *sync.Mutex
	out   io.Writer
	level slog.Leveler
	attrs []slog.Attr
}

// NewConsoleHandler returns a handler writing to out. A nil out means color.Output.
func NewConsoleHandler(out io.Writer, level slog.Leveler) *ConsoleHandler {
	if out == nil {
		out = color.Output
	}
	return &ConsoleHandler{mu: &sync.Mutex{}, out: out, level: level}
}

// Enabled determines whether the handler should log messages at the given level.
func (h *ConsoleHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return lvl >= h.level.Level()
}

// Handle formats and writes a single record.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	name := levelName(r.Level)
	sb.WriteString(levelColors[name].Sprintf("[%s]", name))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)
	// Include file and line number
	if src := r.Source(); h.AddSource && src != nil && src.File != "" {
		fmt.Fprintf(&sb, " (%s:%d)", filepath.Base(src.File), src.Line)
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// WithAttrs returns a new handler with the given attributes appended.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

// WithGroup returns the handler unchanged; groups are flattened.
func (h *ConsoleHandler) WithGroup(_ string) slog.Handler { return h }

// NewLogger builds a console logger for the named level.
func NewLogger(out io.Writer, levelName string) (*slog.Logger, error) {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	h := NewConsoleHandler(out, lvl)
	h.AddSource = lvl <= slog.LevelDebug
	return slog.New(h), nil
}
