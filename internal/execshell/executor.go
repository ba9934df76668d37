// Package execshell implements the default Executor capability: it runs
// each command of a resolved alias in turn via a subshell, inheriting env.
package execshell

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/nullstream-dev/runbook/internal/errs"
)

// Executor runs a list of resolved command strings, each receiving the
// full env, sequentially, returning the first nonzero exit code it
// encounters (or 0 if every command succeeded).
type Executor struct {
	// Shell overrides $SHELL / /bin/sh for command invocation.
	Shell  string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Executor wired to the process's standard streams.
func New() *Executor {
	return &Executor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Exec runs every command in commands, in order, each with env merged onto
// the current process environment. It stops at the first nonzero exit and
// returns that code wrapped in ErrExecutor; a spawn failure (not found,
// permission, parse error) also returns ErrExecutor.
func (e *Executor) Exec(ctx context.Context, commands []string, env map[string]string) (int, error) {
	for _, c := range commands {
		code, err := e.execOne(ctx, c, env)
		if err != nil {
			return code, err
		}
		if code != 0 {
			return code, fmt.Errorf("%w: %q exited %d", errs.ErrExecutor, c, code)
		}
	}
	return 0, nil
}

func (e *Executor) execOne(ctx context.Context, command string, env map[string]string) (int, error) {
	shell := e.Shell
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	// Validate the command splits into a sane argv before handing it to the
	// shell, surfacing quoting mistakes early instead of as a shell syntax
	// error.
	if _, err := shellwords.Parse(command); err != nil {
		return -1, fmt.Errorf("%w: %q: %v", errs.ErrExecutor, command, err)
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	cmd.Env = mergeEnv(os.Environ(), env)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if ok := asExitError(err, &exitErr); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("%w: %q: %v", errs.ErrExecutor, command, err)
	}
	return 0, nil
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}

func mergeEnv(base []string, overrides map[string]string) []string {
	out := append([]string(nil), base...)
	for k, v := range overrides {
		out = append(out, k+"="+v)
	}
	return out
}
