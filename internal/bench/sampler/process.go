package sampler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessNotFound is returned when the target process does not exist,
// either because no process matched a lookup or because it has exited.
var ErrProcessNotFound = errors.New("process not found")

// Process is a handle to the process whose memory is sampled.
type Process interface {
	// ResidentMemoryBytes returns the current resident set size in bytes.
	// It fails with ErrProcessNotFound once the process has exited.
	ResidentMemoryBytes(ctx context.Context) (float64, error)

	// PID returns the process id.
	PID() int32

	// Name returns the process name as reported by the OS.
	Name() string
}

// osProcess is a Process backed by gopsutil.
type osProcess struct {
	proc *process.Process
	name string
}

// FindByPID returns a handle to the process with the given pid.
func FindByPID(ctx context.Context, pid int32) (Process, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil, fmt.Errorf("pid %d: %w", pid, ErrProcessNotFound)
		}
		return nil, fmt.Errorf("pid %d: %w", pid, err)
	}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		name = ""
	}
	return &osProcess{proc: p, name: name}, nil
}

// FindByName returns the first process whose name contains substr,
// compared case-insensitively. The calling process itself is never matched.
func FindByName(ctx context.Context, substr string) (Process, error) {
	if substr == "" {
		return nil, fmt.Errorf("empty process name: %w", ErrProcessNotFound)
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	self := int32(os.Getpid())
	want := strings.ToLower(substr)

	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// The process may have exited while listing.
			continue
		}
		if strings.Contains(strings.ToLower(name), want) {
			return &osProcess{proc: p, name: name}, nil
		}
	}

	return nil, fmt.Errorf("no process matching %q: %w", substr, ErrProcessNotFound)
}

// ResidentMemoryBytes implements Process.
func (p *osProcess) ResidentMemoryBytes(ctx context.Context) (float64, error) {
	info, err := p.proc.MemoryInfoWithContext(ctx)
	if err == nil {
		return float64(info.RSS), nil
	}

	if errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, os.ErrNotExist) {
		return 0, ErrProcessNotFound
	}
	if running, rerr := p.proc.IsRunningWithContext(ctx); rerr == nil && !running {
		return 0, ErrProcessNotFound
	}
	return 0, err
}

// PID implements Process.
func (p *osProcess) PID() int32 {
	return p.proc.Pid
}

// Name implements Process.
func (p *osProcess) Name() string {
	return p.name
}

// Describe returns a printable label for a process handle.
func Describe(p Process) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s (pid %d)", p.Name(), p.PID())
}
