// Package resolve implements ChoiceEngine: iteration over an execution
// plan, dispatching to a pluggable Resolver per variable and accumulating
// the resulting choice map.
package resolve

import (
	"context"
	"fmt"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/store"
	"github.com/nullstream-dev/runbook/internal/tmpl"
	"github.com/nullstream-dev/runbook/internal/vars"
)

// AliasPreview pairs an Alias with the plan that would be required to
// resolve it, for pickAlias's listing.
type AliasPreview struct {
	Alias *alias.Alias
	Plan  []ids.Identifier
}

// Context is the opaque preview snapshot passed to resolver implementations
// alongside each variable: (alias, qualified name, choices-so-far,
// remaining plan). The core never inspects it.
type Context struct {
	Alias         *alias.Alias
	FullName      string
	ChoicesSoFar  map[ids.Identifier][]choice.Choice
	RemainingPlan []ids.Identifier
}

// Resolver is the capability through which the core obtains user choices.
// It is the single boundary across which interactivity enters the core;
// implementations live outside this package (internal/tui, internal/resolve/firstchoice).
type Resolver interface {
	PickAlias(ctx context.Context, aliases []AliasPreview, prompt string) (*alias.Alias, error)
	PickIdentifier(ctx context.Context, candidates []ids.Identifier, prompt string) (ids.Identifier, error)
	PickFromList(ctx context.Context, v *vars.Variable, choices []choice.Choice, pctx Context) ([]choice.Choice, error)
	PickFromDynamic(ctx context.Context, v *vars.Variable, commands []string, pctx Context) ([]choice.Choice, error)
	PickFreeText(ctx context.Context, v *vars.Variable, prompt string, pctx Context) (choice.Choice, error)
}

// Gather iterates plan in order, consulting defaults first and otherwise
// dispatching to resolver by variable kind, and returns the accumulated
// choice map.
func Gather(ctx context.Context, plan []ids.Identifier, vstore *store.Store, resolver Resolver, a *alias.Alias) (map[ids.Identifier][]choice.Choice, error) {
	choices := make(map[ids.Identifier][]choice.Choice, len(plan))

	for i, vid := range plan {
		v, ok := vstore.Get(vid)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errs.ErrMissingDependencies, vid)
		}

		if defaults, ok := vstore.Default(vid); ok {
			choices[vid] = defaults
			continue
		}

		pctx := Context{
			Alias:         a,
			FullName:      vid.String(),
			ChoicesSoFar:  choices,
			RemainingPlan: plan[i+1:],
		}

		chosen, err := resolveOne(ctx, v, choices, resolver, pctx)
		if err != nil {
			return nil, err
		}
		choices[vid] = chosen
	}

	return choices, nil
}

func resolveOne(ctx context.Context, v *vars.Variable, soFar map[ids.Identifier][]choice.Choice, resolver Resolver, pctx Context) ([]choice.Choice, error) {
	switch v.Kind {
	case vars.Static:
		if len(v.Choices) == 0 {
			return nil, fmt.Errorf("%w: %s", errs.ErrNoChoiceAvailable, v.ID)
		}
		if len(v.Choices) == 1 {
			return []choice.Choice{v.Choices[0]}, nil
		}
		chosen, err := resolver.PickFromList(ctx, v, v.Choices, pctx)
		if err != nil {
			return nil, err
		}
		if len(chosen) == 0 {
			return nil, fmt.Errorf("%w: %s", errs.ErrNoChoiceSelected, v.ID)
		}
		return chosen, nil

	case vars.Input:
		c, err := resolver.PickFreeText(ctx, v, v.Prompt, pctx)
		if err != nil {
			return nil, err
		}
		return []choice.Choice{c}, nil

	case vars.Dynamic:
		deps := v.Dependencies()
		commands, err := tmpl.SubstituteComplete(v.Command, deps, soFar)
		if err != nil {
			return nil, err
		}
		chosen, err := resolver.PickFromDynamic(ctx, v, commands, pctx)
		if err != nil {
			return nil, err
		}
		if len(chosen) == 0 {
			return nil, fmt.Errorf("%w: %s", errs.ErrNoChoiceSelected, v.ID)
		}
		return chosen, nil

	default:
		return nil, fmt.Errorf("resolve: unknown variable kind for %s", v.ID)
	}
}
