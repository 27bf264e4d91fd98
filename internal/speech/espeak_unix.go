//go:build unix

package speech

import (
	"os"

	"golang.org/x/sys/unix"
)

func pauseProcess(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGSTOP)
}

func resumeProcess(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGCONT)
}
