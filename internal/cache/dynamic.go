package cache

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/envsubst"
	"github.com/nullstream-dev/runbook/internal/errs"
)

// Resolve turns one Dynamic-variable command string into Choices: it
// env-substitutes the command, consults store for a cache hit, and on a
// miss spawns a subshell and caches the stdout. The caller (a Resolver
// implementation) is responsible for presenting the choices and returning
// the user's selection.
func Resolve(ctx context.Context, store Store, command string, env map[string]string, shell string) ([]choice.Choice, error) {
	key := envsubst.Substitute(command, env)

	stdout, ok := store.Get(key)
	if !ok {
		out, cacheable, err := run(ctx, shell, key, env)
		if err != nil {
			return nil, err
		}
		stdout = out
		if cacheable {
			if err := store.Put(key, stdout); err != nil {
				return nil, err
			}
		}
	}

	choices := parseLines(stdout)
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrDynamicResolveEmpty, key)
	}
	return choices, nil
}

// run spawns shell (or $SHELL, or /bin/sh) -c command, inheriting the
// process environment plus env. A nonzero exit is a hard failure. On exit 0,
// stdout is always returned for parsing; the second return reports whether
// the result is cacheable, which requires stderr to have been empty too.
func run(ctx context.Context, shell, command string, env map[string]string) (string, bool, error) {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Env = mergeEnv(os.Environ(), env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("%w: %q: %v: %s", errs.ErrDynamicResolveFailure, command, err, stderr.String())
	}
	return stdout.String(), stderr.Len() == 0, nil
}

func mergeEnv(base []string, overrides map[string]string) []string {
	out := append([]string(nil), base...)
	for k, v := range overrides {
		out = append(out, k+"="+v)
	}
	return out
}

// parseLines turns "value<TAB>desc" lines into Choices, dropping empty
// lines. A line with no tab is treated as value-only.
func parseLines(stdout string) []choice.Choice {
	var out []choice.Choice
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) == 2 {
			out = append(out, choice.New(parts[0], parts[1]))
		} else {
			out = append(out, choice.New(parts[0], ""))
		}
	}
	return out
}
