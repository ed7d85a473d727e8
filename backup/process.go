package backup

import (
	"context"
	"os"
	"syscall"

	"github.com/juju/errors"
	"github.com/shirou/gopsutil/v4/process"
)

// Process is a live entry of the process table.
type Process interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	Kill(ctx context.Context) error
}

// ProcessLister takes snapshots of the process table.
type ProcessLister interface {
	Processes(ctx context.Context) ([]Process, error)
}

type systemProcesses struct{}

// SystemProcesses lists processes of the host through gopsutil.
func SystemProcesses() ProcessLister { return systemProcesses{} }

func (systemProcesses) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "listing processes")
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		out = append(out, osProcess{p})
	}
	return out, nil
}

type osProcess struct{ p *process.Process }

func (o osProcess) PID() int32 { return o.p.Pid }

func (o osProcess) Name(ctx context.Context) (string, error) { return o.p.NameWithContext(ctx) }

func (o osProcess) Kill(ctx context.Context) error { return o.p.KillWithContext(ctx) }

// findByName returns the first process named exactly name, or nil.
// Processes that vanish while being inspected are skipped.
func (b *Backup) findByName(ctx context.Context, name string) Process {
	procs, err := b.procs.Processes(ctx)
	if err != nil {
		b.log.Error("Cannot list processes", "error", err)
		return nil
	}
	for _, p := range procs {
		n, err := p.Name(ctx)
		if err != nil {
			continue
		}
		if n == name {
			return p
		}
	}
	return nil
}

// IsRunning reports whether a process named name exists.
func (b *Backup) IsRunning(ctx context.Context, name string) bool {
	return b.findByName(ctx, name) != nil
}

// FindAndKillByName kills the first process named name. It reports whether a
// process was killed; failures are logged at critical level and not returned.
func (b *Backup) FindAndKillByName(ctx context.Context, name string) bool {
	p := b.findByName(ctx, name)
	if p == nil {
		b.log.Debug("No process to kill", "name", name)
		return false
	}
	err := p.Kill(ctx)
	switch {
	case err == nil:
		b.log.Info("Process killed successfully", "name", name, "pid", p.PID())
		return true
	case errors.Is(err, os.ErrPermission), errors.Is(err, process.ErrorNotPermitted):
		b.log.Log(ctx, LevelCritical, "Access denied when trying to kill process", "name", name, "pid", p.PID())
	case processGone(err):
		b.log.Log(ctx, LevelCritical, "No such process", "name", name, "pid", p.PID())
	default:
		b.log.Log(ctx, LevelCritical, "An error occurred while killing process", "name", name, "error", err)
	}
	return false
}

func processGone(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) ||
		errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH)
}
