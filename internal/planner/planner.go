// Package planner implements ExecutionPlanner: a topological sort over
// variable dependencies.
package planner

import (
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/store"
)

// Dependent is anything whose Dependencies() drives planning: an Alias or a
// Variable.
type Dependent interface {
	Dependencies() []ids.Identifier
}

// Plan returns a topological order over the transitive closure of root's
// dependencies: every identifier appears after all identifiers it itself
// depends on. If a reachable identifier is absent from store, Plan fails
// with an aggregated ErrMissingDependencies covering every such identifier.
func Plan(root Dependent, vstore *store.Store) ([]ids.Identifier, error) {
	seen := make(map[ids.Identifier]bool)
	inserted := make(map[ids.Identifier]bool)
	missingSeen := make(map[ids.Identifier]bool)
	var missing []ids.Identifier
	var out []ids.Identifier

	work := append([]ids.Identifier(nil), root.Dependencies()...)

	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]

		switch {
		case seen[cur] && inserted[cur]:
			continue
		case seen[cur] && !inserted[cur]:
			// Second visit: every dependency of cur has already been
			// emitted, so cur can now be appended.
			out = append(out, cur)
			inserted[cur] = true
		default:
			v, ok := vstore.Get(cur)
			if !ok {
				if !missingSeen[cur] {
					missingSeen[cur] = true
					missing = append(missing, cur)
				}
				continue
			}
			deps := v.Dependencies()
			seen[cur] = true
			if len(deps) == 0 {
				out = append([]ids.Identifier{cur}, out...)
				inserted[cur] = true
				continue
			}
			work = append(work, cur)
			work = append(work, deps...)
		}
	}

	if len(missing) > 0 {
		return nil, errs.MissingDependencies(missing)
	}
	return out, nil
}
