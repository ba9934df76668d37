// Package alias implements the Alias record and the one-level
// alias-reference pre-expansion pass. Template substitution lives in
// internal/tmpl.
package alias

import (
	"fmt"

	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
)

// Alias is (id, desc, template). Template is the fully alias-reference-
// expanded form; OriginalTemplate preserves what was written in the source
// file, for display and for ResolvedAlias.
type Alias struct {
	ID               ids.Identifier
	Desc             string
	Template         string
	OriginalTemplate string
}

// Dependencies returns, in placeholder textual order, the variable
// identifiers this alias's (expanded) template references.
func (a *Alias) Dependencies() []ids.Identifier {
	return ids.Dependencies(a.Template, a.ID.Namespace)
}

// Raw is an alias as read from a source file, before reference expansion.
type Raw struct {
	ID       ids.Identifier
	Desc     string
	Template string
}

// Expand builds the final Alias set from raw records, splicing [[ref]]
// occurrences exactly one level deep. Expansion order within a template
// follows [[...]] occurrence order. A reference to a name absent from raws
// fails the whole build with ErrMissingAliasDependency.
func Expand(raws []Raw) (map[ids.Identifier]*Alias, error) {
	prelim := make(map[ids.Identifier]string, len(raws))
	meta := make(map[ids.Identifier]Raw, len(raws))
	for _, r := range raws {
		prelim[r.ID] = r.Template
		meta[r.ID] = r
	}

	out := make(map[ids.Identifier]*Alias, len(raws))
	for _, r := range raws {
		expanded, err := expandOne(r, prelim)
		if err != nil {
			return nil, err
		}
		out[r.ID] = &Alias{
			ID:               r.ID,
			Desc:             r.Desc,
			Template:         expanded,
			OriginalTemplate: r.Template,
		}
	}
	return out, nil
}

// expandOne splices every [[ref]] in r.Template with the sanitized,
// re-namespaced template of the alias it references.
func expandOne(r Raw, prelim map[ids.Identifier]string) (string, error) {
	result := ""
	rest := r.Template
	for {
		loc := ids.AliasRef.FindStringSubmatchIndex(rest)
		if loc == nil {
			result += rest
			break
		}
		result += rest[:loc[0]]
		capture := rest[loc[2]:loc[3]]
		rest = rest[loc[1]:]

		refID, err := ids.Sanitize(capture)
		if err != nil {
			return "", fmt.Errorf("%w: alias %s: %v", errs.ErrLoad, r.ID, err)
		}
		refID = refID.WithDefaultNamespace(r.ID.Namespace)

		refTemplate, ok := prelim[refID]
		if !ok {
			return "", fmt.Errorf("%w: alias %s references %s", errs.ErrMissingAliasDependency, r.ID, refID)
		}
		result += renamespace(refTemplate, refID.Namespace)
	}
	return result, nil
}

// renamespace rewrites every unqualified {{x}} placeholder in template to
// {{ns::x}}; qualified placeholders are left untouched.
func renamespace(template, ns string) string {
	return ids.Placeholder.ReplaceAllStringFunc(template, func(match string) string {
		sub := ids.Placeholder.FindStringSubmatch(match)
		id, err := ids.Sanitize(sub[1])
		if err != nil {
			return match
		}
		if id.HasNamespace() {
			return match
		}
		return "{{" + ns + "::" + id.Name + "}}"
	})
}
