// Package tmpl implements variable-placeholder substitution over a template
// string given a map of identifier -> chosen values.
package tmpl

import (
	"fmt"
	"regexp"

	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
)

// SubstituteComplete expands template into the Cartesian product of
// concrete strings, one dependency at a time in the order given by deps.
// Each dependency must have a non-empty entry in choices; a missing entry
// fails with ErrMissingChoicesForVar. The result is deterministic: the
// cross-product follows dependency order x choice order.
func SubstituteComplete(template string, deps []ids.Identifier, choices map[ids.Identifier][]choice.Choice) ([]string, error) {
	out := []string{template}
	for _, d := range deps {
		cs, ok := choices[d]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errs.ErrMissingChoicesForVar, d)
		}
		re := placeholderRegexFor(d)
		next := make([]string, 0, len(out)*len(cs))
		for _, s := range out {
			for _, c := range cs {
				next = append(next, re.ReplaceAllLiteralString(s, c.Value))
			}
		}
		out = next
	}
	return out, nil
}

// SubstitutePartial performs a single-pass substitution, leaving any
// dependency absent from choices as a literal placeholder. Used for live
// preview rendering by resolver implementations; unqualified placeholders
// are resolved against defaultNamespace, same as Dependencies.
func SubstitutePartial(template, defaultNamespace string, choices map[ids.Identifier][]choice.Choice) string {
	return ids.Placeholder.ReplaceAllStringFunc(template, func(match string) string {
		sub := ids.Placeholder.FindStringSubmatch(match)
		id, err := ids.Sanitize(sub[1])
		if err != nil {
			return match
		}
		id = id.WithDefaultNamespace(defaultNamespace)
		cs, ok := choices[id]
		if !ok || len(cs) == 0 {
			return match
		}
		return cs[0].Value
	})
}

// placeholderRegexFor matches both the unqualified {{name}} form and the
// qualified {{namespace::name}} form for one identifier, since alias
// reference expansion only re-namespaces placeholders that originated from
// the referenced alias, leaving an alias's own placeholders unqualified.
func placeholderRegexFor(id ids.Identifier) *regexp.Regexp {
	alt := regexp.QuoteMeta(id.Name)
	if id.Namespace != "" {
		alt = regexp.QuoteMeta(id.Name) + "|" + regexp.QuoteMeta(id.Namespace+"::"+id.Name)
	}
	return regexp.MustCompile(`\{\{\s*(?:` + alt + `)\s*\}\}`)
}
