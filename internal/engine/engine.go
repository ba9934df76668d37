// Package engine implements Engine, the orchestrator tying planner, resolve,
// tmpl, history, cache and executor together into the operations exposed to
// the CLI: PickAndRun, RunById, ShowLast, RunLast, ModifyLast and
// ShowHistory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/cache"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/history"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/planner"
	"github.com/nullstream-dev/runbook/internal/resolve"
	"github.com/nullstream-dev/runbook/internal/store"
	"github.com/nullstream-dev/runbook/internal/tmpl"
)

// Executor is the capability through which a resolved alias's commands are
// actually run. execshell.Executor and execshell/tmux.Executor both satisfy
// it.
type Executor interface {
	Exec(ctx context.Context, commands []string, env map[string]string) (int, error)
}

// Engine wires the core pipeline together. All fields are populated once at
// startup by cmd/runbook/main.go.
type Engine struct {
	Aliases  map[ids.Identifier]*alias.Alias
	VarStore *store.Store
	Resolver resolve.Resolver
	History  *history.History
	Cache    cache.Store
	Executor Executor
	Env      map[string]string
	Log      *logrus.Logger

	Dry     bool
	NoCache bool
}

// Result summarizes a completed (or dry-run) pipeline execution, returned to
// the CLI layer for display.
type Result struct {
	Resolved history.Resolved
	ExitCode int
	Entry    history.Entry
}

// PickAndRun lets the resolver choose among every known alias, then runs it.
func (e *Engine) PickAndRun(ctx context.Context) (*Result, error) {
	previews := e.aliasPreviews()
	a, err := e.Resolver.PickAlias(ctx, previews, "pick an alias to run")
	if err != nil {
		return nil, err
	}
	return e.runAlias(ctx, a)
}

// RunById resolves and runs a single named alias.
func (e *Engine) RunById(ctx context.Context, id ids.Identifier) (*Result, error) {
	a, ok := e.Aliases[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown alias %s", errs.ErrLoad, id)
	}
	return e.runAlias(ctx, a)
}

// ShowLast returns the most recently appended history entry without
// executing anything.
func (e *Engine) ShowLast() (*history.Entry, error) {
	return e.History.GetLast()
}

// ShowHistory returns the n most recent history entries, most-recent first.
// n <= 0 returns everything.
func (e *Engine) ShowHistory(n int) ([]history.Entry, error) {
	return e.History.GetLastN(n)
}

// RunLast re-executes the commands recorded in the most recent history
// entry verbatim, without re-resolving any variable.
func (e *Engine) RunLast(ctx context.Context) (*Result, error) {
	last, err := e.History.GetLast()
	if err != nil {
		return nil, err
	}
	code, err := e.execute(ctx, last.Resolved.Commands)
	if err != nil && !errors.Is(err, errs.ErrExecutor) {
		return nil, err
	}
	return &Result{Resolved: last.Resolved, ExitCode: code, Entry: *last}, nil
}

// ModifyLast re-runs the most recently executed alias, overriding one
// identifier's choice: everything strictly after the override's plan
// position is re-seeded from the historical choices, and everything at or
// before it is asked fresh (the override itself included). When override is the zero
// Identifier (none pre-supplied, e.g. no CLI arg given), the resolver is
// asked to pick one out of the last run's plan instead.
func (e *Engine) ModifyLast(ctx context.Context, override ids.Identifier) (*Result, error) {
	last, err := e.History.GetLast()
	if err != nil {
		return nil, err
	}
	a, ok := e.Aliases[last.Resolved.ID]
	if !ok {
		return nil, fmt.Errorf("%w: alias %s no longer exists", errs.ErrLoad, last.Resolved.ID)
	}

	plan, err := planner.Plan(a, e.VarStore)
	if err != nil {
		return nil, err
	}

	if override == (ids.Identifier{}) {
		override, err = e.Resolver.PickIdentifier(ctx, plan, "pick an identifier to change")
		if err != nil {
			return nil, err
		}
	}

	overrideIdx := -1
	for i, id := range plan {
		if id == override {
			overrideIdx = i
			break
		}
	}
	if overrideIdx < 0 {
		return nil, fmt.Errorf("%w: %s is not part of %s's current plan", errs.ErrLoad, override, a.ID)
	}

	defaults := make(map[ids.Identifier][]choice.Choice)
	for i, id := range plan {
		if i <= overrideIdx {
			continue
		}
		if cs, ok := last.Resolved.Choices[id]; ok {
			defaults[id] = cs
		}
	}
	e.VarStore.SetDefaults(defaults)
	defer e.VarStore.SetDefaults(nil)

	return e.runAliasWithPlan(ctx, a, plan)
}

func (e *Engine) runAlias(ctx context.Context, a *alias.Alias) (*Result, error) {
	plan, err := planner.Plan(a, e.VarStore)
	if err != nil {
		return nil, err
	}
	return e.runAliasWithPlan(ctx, a, plan)
}

func (e *Engine) runAliasWithPlan(ctx context.Context, a *alias.Alias, plan []ids.Identifier) (*Result, error) {
	choices, err := resolve.Gather(ctx, plan, e.VarStore, e.Resolver, a)
	if err != nil {
		if errors.Is(err, errs.ErrAborted) {
			if e.Log != nil {
				e.Log.Info("run aborted by user")
			}
			return nil, err
		}
		return nil, err
	}

	deps := a.Dependencies()
	commands, err := tmpl.SubstituteComplete(a.Template, deps, choices)
	if err != nil {
		return nil, err
	}

	resolved := history.Resolved{
		ID:               a.ID,
		Desc:             a.Desc,
		OriginalTemplate: a.OriginalTemplate,
		Commands:         commands,
		Plan:             plan,
		Choices:          choices,
	}

	pwd, _ := os.Getwd()
	entry, err := e.History.Append(resolved, pwd)
	if err != nil {
		return nil, err
	}

	if e.Dry {
		return &Result{Resolved: resolved, ExitCode: 0, Entry: entry}, nil
	}

	code, err := e.execute(ctx, commands)
	if err != nil && !errors.Is(err, errs.ErrExecutor) {
		return nil, err
	}
	return &Result{Resolved: resolved, ExitCode: code, Entry: entry}, nil
}

func (e *Engine) execute(ctx context.Context, commands []string) (int, error) {
	return e.Executor.Exec(ctx, commands, e.Env)
}

func (e *Engine) aliasPreviews() []resolve.AliasPreview {
	out := make([]resolve.AliasPreview, 0, len(e.Aliases))
	for _, a := range e.Aliases {
		plan, err := planner.Plan(a, e.VarStore)
		if err != nil {
			plan = nil
		}
		out = append(out, resolve.AliasPreview{Alias: a, Plan: plan})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Alias.ID.String() < out[j].Alias.ID.String()
	})
	return out
}
