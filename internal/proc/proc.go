// Package proc answers process questions for the supervisor: name lookup
// (pgrep-style), liveness probes, and stop/continue signalling for helper
// processes.
package proc

import (
	"fmt"
	"os"
	"regexp"

	"github.com/shirou/gopsutil/v4/process"
)

// FindByName returns the pids of running processes whose executable name or
// first command-line argument matches the regular expression. The calling
// process is never included.
func FindByName(pattern string) ([]int32, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid process pattern %q: %w", pattern, err)
	}

	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	self := int32(os.Getpid())
	var pids []int32
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		if name, err := p.Name(); err == nil && re.MatchString(name) {
			pids = append(pids, p.Pid)
			continue
		}
		if argv, err := p.CmdlineSlice(); err == nil && len(argv) > 0 && re.MatchString(argv[0]) {
			pids = append(pids, p.Pid)
		}
	}
	return pids, nil
}

// Alive reports whether the process still exists.
func Alive(pid int32) bool {
	exists, err := process.PidExists(pid)
	return err == nil && exists
}

// Suspend delivers SIGSTOP to the process.
func Suspend(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return err
	}
	return p.Suspend()
}

// Resume delivers SIGCONT to the process.
func Resume(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return err
	}
	return p.Resume()
}
