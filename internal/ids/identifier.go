// Package ids implements the qualified-name identifier model and the two
// placeholder grammars (variable placeholders and alias references) that
// the template language is built on.
package ids

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern is the character class a bare identifier name must match.
const namePattern = `[A-Za-z0-9_]+`

var (
	nameRe = regexp.MustCompile(`^` + namePattern + `$`)

	// Placeholder matches {{name}}, {{ name }}, {{ns::name}}, {{ ns::name }}.
	Placeholder = regexp.MustCompile(`\{\{\s*(` + namePattern + `(?:::` + namePattern + `)?)\s*\}\}`)

	// AliasRef matches [[name]], [[ name ]], [[ns::name]], [[ ns::name ]].
	AliasRef = regexp.MustCompile(`\[\[\s*(` + namePattern + `(?:::` + namePattern + `)?)\s*\]\]`)
)

// Identifier is a (name, namespace?) pair. The zero value is not a valid
// identifier; Name is never empty once produced by Sanitize.
type Identifier struct {
	Name      string
	Namespace string
}

// New builds an Identifier directly, skipping parsing. Useful when the
// namespace is already known (e.g. file-based namespace injection).
func New(name, namespace string) Identifier {
	return Identifier{Name: name, Namespace: namespace}
}

// HasNamespace reports whether the identifier carries an explicit namespace.
func (id Identifier) HasNamespace() bool {
	return id.Namespace != ""
}

// String renders the qualified form "ns::name", or bare "name" when there is
// no namespace.
func (id Identifier) String() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "::" + id.Name
}

// WithDefaultNamespace returns id unchanged if it already carries a
// namespace, otherwise returns a copy namespaced to ns. Used both for
// file-based namespace injection and for alias-reference re-namespacing.
func (id Identifier) WithDefaultNamespace(ns string) Identifier {
	if id.Namespace != "" {
		return id
	}
	return Identifier{Name: id.Name, Namespace: ns}
}

// MarshalText implements encoding.TextMarshaler, rendering the qualified
// form. It lets Identifier serve directly as a JSON object/map key and as a
// YAML scalar.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := Sanitize(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (id Identifier) MarshalYAML() (interface{}, error) {
	return id.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (id *Identifier) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Sanitize(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Sanitize turns a raw capture (with or without surrounding {{ }} / [[ ]]
// delimiters) into an Identifier: strip the delimiters and whitespace, then
// split on "::" at most once. An empty namespace component ("::foo") yields
// (foo, none).
func Sanitize(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "{}[]")
	s = strings.TrimSpace(s)

	var name, namespace string
	if idx := strings.Index(s, "::"); idx >= 0 {
		namespace = strings.TrimSpace(s[:idx])
		name = strings.TrimSpace(s[idx+2:])
	} else {
		name = s
	}

	if name == "" || !nameRe.MatchString(name) {
		return Identifier{}, fmt.Errorf("ids: invalid identifier %q", raw)
	}
	if namespace != "" && !nameRe.MatchString(namespace) {
		return Identifier{}, fmt.Errorf("ids: invalid namespace in %q", raw)
	}
	return Identifier{Name: name, Namespace: namespace}, nil
}

// ParsePlaceholder sanitizes a single regex capture group from Placeholder
// or AliasRef (the inner NAME(::NAME)? text, without delimiters).
func ParsePlaceholder(capture string) (Identifier, error) {
	return Sanitize(capture)
}

// Dependencies returns, in first-occurrence textual order, the distinct
// identifiers referenced by {{...}} placeholders in template. Unqualified
// placeholders are namespaced to defaultNamespace.
func Dependencies(template, defaultNamespace string) []Identifier {
	matches := Placeholder.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[Identifier]bool, len(matches))
	out := make([]Identifier, 0, len(matches))
	for _, m := range matches {
		id, err := Sanitize(m[1])
		if err != nil {
			continue
		}
		id = id.WithDefaultNamespace(defaultNamespace)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
