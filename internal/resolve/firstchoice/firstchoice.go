// Package firstchoice implements a non-interactive Resolver: every pick
// returns the first available option without blocking on human input. It
// backs dry runs, scripted invocations, and the test suite.
package firstchoice

import (
	"context"
	"fmt"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/cache"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/resolve"
	"github.com/nullstream-dev/runbook/internal/vars"
)

// Resolver always picks the first Choice presented. Dynamic resolution
// still executes the real shell command (through the shared cache helper)
// since there is no other way to produce choices to pick from.
type Resolver struct {
	Cache cache.Store
	Env   map[string]string
	Shell string
}

// New returns a Resolver backed by store for Dynamic-variable caching.
func New(store cache.Store, env map[string]string, shell string) *Resolver {
	return &Resolver{Cache: store, Env: env, Shell: shell}
}

func (r *Resolver) PickAlias(_ context.Context, aliases []resolve.AliasPreview, _ string) (*alias.Alias, error) {
	if len(aliases) == 0 {
		return nil, fmt.Errorf("%w: no aliases to pick from", errs.ErrNoChoiceAvailable)
	}
	return aliases[0].Alias, nil
}

func (r *Resolver) PickIdentifier(_ context.Context, candidates []ids.Identifier, _ string) (ids.Identifier, error) {
	if len(candidates) == 0 {
		return ids.Identifier{}, fmt.Errorf("%w: no identifiers to pick from", errs.ErrNoChoiceAvailable)
	}
	return candidates[0], nil
}

func (r *Resolver) PickFromList(_ context.Context, _ *vars.Variable, choices []choice.Choice, _ resolve.Context) ([]choice.Choice, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: list empty", errs.ErrNoChoiceSelected)
	}
	return choices[:1], nil
}

func (r *Resolver) PickFromDynamic(ctx context.Context, v *vars.Variable, commands []string, _ resolve.Context) ([]choice.Choice, error) {
	var first []choice.Choice
	for _, cmd := range commands {
		choices, err := cache.Resolve(ctx, r.Cache, cmd, r.Env, r.Shell)
		if err != nil {
			return nil, err
		}
		first = append(first, choices[0])
	}
	if len(first) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoChoiceSelected, v.ID)
	}
	return first, nil
}

func (r *Resolver) PickFreeText(_ context.Context, v *vars.Variable, prompt string, _ resolve.Context) (choice.Choice, error) {
	return choice.New("", prompt), nil
}
