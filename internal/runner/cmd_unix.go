//go:build !windows
// +build !windows

package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// cmdResult carries one command's full outcome.
type cmdResult struct {
	Stdout   string
	Stderr   string
	Code     int
	TimedOut bool
}

// runCmd executes name with args in dir, killing the whole process
// group on timeout so children do not outlive the command.
func runCmd(ctx context.Context, dir, name string, args []string, timeout time.Duration) (cmdResult, error) {
	if timeout <= 0 {
		timeout = cmdTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		return cmdResult{}, err
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-cctx.Done():
			if cmd.Process != nil {
				syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
			}
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)

	res := cmdResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
	}
	if waitErr != nil {
		res.Code = 1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.Code = exitErr.ExitCode()
		}
		return res, waitErr
	}
	return res, nil
}
