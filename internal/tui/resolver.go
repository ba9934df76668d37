package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/cache"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/resolve"
	"github.com/nullstream-dev/runbook/internal/tmpl"
	"github.com/nullstream-dev/runbook/internal/vars"
)

// Resolver is the interactive resolve.Resolver backed by bubbletea. It is
// only safe to use when Available reports true; callers otherwise fall back
// to firstchoice.Resolver.
type Resolver struct {
	Cache cache.Store
	Env   map[string]string
	Shell string
	In    io.Reader
	Out   io.Writer
}

// New returns a Resolver backed by store for Dynamic-variable caching.
func New(store cache.Store, env map[string]string, shell string) *Resolver {
	return &Resolver{Cache: store, Env: env, Shell: shell, In: os.Stdin, Out: os.Stdout}
}

// Available reports whether stdout is attached to a terminal, per
// SPEC_FULL.md §3's "fall back to a non-interactive resolver otherwise"
// guidance. Callers should check this before constructing a Resolver for
// real use.
func Available() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func previewLine(pctx resolve.Context) string {
	var b strings.Builder
	if pctx.Alias != nil {
		b.WriteString(pctx.Alias.ID.String())
		b.WriteString(": ")
		b.WriteString(tmpl.SubstitutePartial(pctx.Alias.Template, pctx.Alias.ID.Namespace, pctx.ChoicesSoFar))
	}
	if pctx.FullName != "" {
		b.WriteString(" · next: " + pctx.FullName)
	}
	if len(pctx.RemainingPlan) > 0 {
		var names []string
		for _, id := range pctx.RemainingPlan {
			names = append(names, id.String())
		}
		b.WriteString(" · remaining: " + strings.Join(names, ", "))
	}
	return b.String()
}

func (r *Resolver) run(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithInput(r.In), tea.WithOutput(r.Out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	return final, nil
}

func (r *Resolver) PickAlias(_ context.Context, aliases []resolve.AliasPreview, prompt string) (*alias.Alias, error) {
	if len(aliases) == 0 {
		return nil, fmt.Errorf("%w: no aliases to pick from", errs.ErrNoChoiceAvailable)
	}
	items := make([]listItem, len(aliases))
	for i, ap := range aliases {
		desc := ap.Alias.Desc
		if len(ap.Plan) > 0 {
			var names []string
			for _, id := range ap.Plan {
				names = append(names, id.String())
			}
			desc += " [" + strings.Join(names, ", ") + "]"
		}
		items[i] = listItem{Label: ap.Alias.ID.String(), Desc: desc}
	}
	final, err := r.run(newListModel(prompt, "", items, false))
	if err != nil {
		return nil, err
	}
	lm := final.(listModel)
	if lm.aborted {
		return nil, errs.ErrAborted
	}
	sel := lm.Selection()
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: no alias selected", errs.ErrNoChoiceSelected)
	}
	return aliases[sel[0]].Alias, nil
}

func (r *Resolver) PickIdentifier(_ context.Context, candidates []ids.Identifier, prompt string) (ids.Identifier, error) {
	if len(candidates) == 0 {
		return ids.Identifier{}, fmt.Errorf("%w: no identifiers to pick from", errs.ErrNoChoiceAvailable)
	}
	items := make([]listItem, len(candidates))
	for i, id := range candidates {
		items[i] = listItem{Label: id.String()}
	}
	final, err := r.run(newListModel(prompt, "", items, false))
	if err != nil {
		return ids.Identifier{}, err
	}
	lm := final.(listModel)
	if lm.aborted {
		return ids.Identifier{}, errs.ErrAborted
	}
	sel := lm.Selection()
	if len(sel) == 0 {
		return ids.Identifier{}, fmt.Errorf("%w: no identifier selected", errs.ErrNoChoiceSelected)
	}
	return candidates[sel[0]], nil
}

func (r *Resolver) PickFromList(_ context.Context, v *vars.Variable, choices []choice.Choice, pctx resolve.Context) ([]choice.Choice, error) {
	return r.pickChoices(v, choices, pctx)
}

func (r *Resolver) PickFromDynamic(ctx context.Context, v *vars.Variable, commands []string, pctx resolve.Context) ([]choice.Choice, error) {
	var all []choice.Choice
	for _, cmd := range commands {
		choices, err := cache.Resolve(ctx, r.Cache, cmd, r.Env, r.Shell)
		if err != nil {
			return nil, err
		}
		all = append(all, choices...)
	}
	return r.pickChoices(v, all, pctx)
}

func (r *Resolver) pickChoices(v *vars.Variable, choices []choice.Choice, pctx resolve.Context) ([]choice.Choice, error) {
	if len(choices) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoChoiceAvailable, v.ID)
	}
	items := make([]listItem, len(choices))
	for i, c := range choices {
		items[i] = listItem{Label: c.Value, Desc: c.Desc}
	}
	final, err := r.run(newListModel(v.ID.String(), previewLine(pctx), items, true))
	if err != nil {
		return nil, err
	}
	lm := final.(listModel)
	if lm.aborted {
		return nil, errs.ErrAborted
	}
	sel := lm.Selection()
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoChoiceSelected, v.ID)
	}
	out := make([]choice.Choice, len(sel))
	for i, idx := range sel {
		out[i] = choices[idx]
	}
	return out, nil
}

func (r *Resolver) PickFreeText(_ context.Context, v *vars.Variable, prompt string, pctx resolve.Context) (choice.Choice, error) {
	final, err := r.run(newTextModel(v.ID.String(), previewLine(pctx), prompt))
	if err != nil {
		return choice.Choice{}, err
	}
	tm := final.(textModel)
	if tm.aborted {
		return choice.Choice{}, errs.ErrAborted
	}
	return choice.New(tm.value, ""), nil
}
