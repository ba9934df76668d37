package execshell_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/execshell"
)

func TestExecRunsEveryCommand(t *testing.T) {
	var out bytes.Buffer
	e := &execshell.Executor{Shell: "/bin/sh", Stdout: &out}
	code, err := e.Exec(context.Background(), []string{"echo one", "echo two"}, nil)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
	if out.String() != "one\ntwo\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestExecStopsAtFirstNonzeroExit(t *testing.T) {
	var out bytes.Buffer
	e := &execshell.Executor{Shell: "/bin/sh", Stdout: &out}
	code, err := e.Exec(context.Background(), []string{"echo one", "exit 3", "echo three"}, nil)
	if !errors.Is(err, errs.ErrExecutor) {
		t.Fatalf("err = %v, want ErrExecutor", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
	if out.String() != "one\n" {
		t.Errorf("output = %q, want only the first command's output", out.String())
	}
}

func TestExecPassesEnv(t *testing.T) {
	var out bytes.Buffer
	e := &execshell.Executor{Shell: "/bin/sh", Stdout: &out}
	_, err := e.Exec(context.Background(), []string{"echo $GREETING"}, map[string]string{"GREETING": "hi"})
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if out.String() != "hi\n" {
		t.Errorf("output = %q, want env to be passed through", out.String())
	}
}
