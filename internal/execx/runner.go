// Package execx wraps external process invocation behind a small interface
// so provisioning logic can be exercised with scripted runners in tests.
package execx

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// RunOptions configures a single invocation.
type RunOptions struct {
	Dir    string
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
	// AutoYes feeds an endless stream of "y" answers on stdin, matching the
	// auto-accept behavior sdkmanager license prompts expect.
	AutoYes bool
}

// RunResult carries the captured output of an invocation.
type RunResult struct {
	Stdout []byte
	Stderr []byte
}

// Runner invokes an external process. A missing executable and a non-zero
// exit both surface as a non-nil error; call sites treat them as the same
// failure, though the underlying cause stays wrapped for inspection.
type Runner interface {
	Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error)
}

// CmdRunner executes commands with os/exec.
type CmdRunner struct{}

func (CmdRunner) Run(ctx context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	if opts.AutoYes {
		cmd.Stdin = yesReader{}
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriter := io.Writer(&stdoutBuf)
	if opts.Stdout != nil {
		stdoutWriter = io.MultiWriter(&stdoutBuf, opts.Stdout)
	}
	stderrWriter := io.Writer(&stderrBuf)
	if opts.Stderr != nil {
		stderrWriter = io.MultiWriter(&stderrBuf, opts.Stderr)
	}

	cmd.Stdout = stdoutWriter
	cmd.Stderr = stderrWriter

	err := cmd.Run()
	return RunResult{Stdout: stdoutBuf.Bytes(), Stderr: stderrBuf.Bytes()}, err
}

var _ Runner = CmdRunner{}

// yesReader produces "y\n" forever.
type yesReader struct{}

func (yesReader) Read(p []byte) (int, error) {
	const answer = "y\n"
	n := 0
	for n+len(answer) <= len(p) {
		n += copy(p[n:], answer)
	}
	if n == 0 && len(p) > 0 {
		p[0] = 'y'
		n = 1
	}
	return n, nil
}
