// Package tmux implements a second Executor backend that sends resolved
// commands to panes of a running tmux session instead of spawning
// subshells directly.
package tmux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nullstream-dev/runbook/internal/errs"
)

// Executor targets one tmux session, opening a new window per Exec call.
type Executor struct {
	Session string
}

// CurrentSession returns the name of the tmux session the current process
// is attached to, failing if not run inside tmux.
func CurrentSession() (string, error) {
	out, err := exec.Command("tmux", "display-message", "-p", "#S").Output()
	if err != nil {
		return "", fmt.Errorf("%w: not inside a tmux session: %v", errs.ErrExecutor, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// New targets an explicit tmux session name.
func New(session string) *Executor {
	return &Executor{Session: session}
}

// Exec opens one new tmux window per command, in order, each running the
// command via the session's default shell. Env is exported into the
// window by prefixing the command with export statements rather than via
// exec's Env, since tmux windows inherit the server's environment, not the
// caller's.
func (e *Executor) Exec(ctx context.Context, commands []string, env map[string]string) (int, error) {
	for i, c := range commands {
		windowName := fmt.Sprintf("runbook-%d", i)
		full := exportPrefix(env) + c
		if err := e.newWindow(ctx, windowName, full); err != nil {
			return -1, err
		}
	}
	// tmux panes run detached from this process; success here means the
	// commands were dispatched, not that they exited zero.
	return 0, nil
}

func (e *Executor) newWindow(ctx context.Context, windowName, command string) error {
	cmd := exec.CommandContext(ctx, "tmux", "new-window",
		"-t", e.Session,
		"-n", windowName,
		command,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: tmux new-window: %v: %s", errs.ErrExecutor, err, stderr.String())
	}
	return nil
}

func exportPrefix(env map[string]string) string {
	if len(env) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range env {
		fmt.Fprintf(&b, "export %s=%q; ", k, v)
	}
	return b.String()
}
