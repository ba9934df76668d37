// Package source implements the default Alias and Variable source file
// readers: YAML files, with namespace injection from the parent directory's
// final path segment. File discovery and parsing is treated as a
// swappable external collaborator elsewhere in this repo, but a real
// binary needs a default implementation of it.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/vars"
)

var nameHasWhitespace = regexp.MustCompile(`\s`)

// aliasYAML mirrors the on-disk shape of one aliases.yaml entry.
type aliasYAML struct {
	Name  string `yaml:"name"`
	Desc  string `yaml:"desc"`
	Alias string `yaml:"alias"`
}

// varYAML mirrors the on-disk shape of one vars.yaml entry. Exactly one of
// Choices, FromCommand, FromInput should be set; ReadVars rejects ambiguous
// records, and a record with none of them loads as a Static variable with no
// choices.
type varYAML struct {
	Name        string          `yaml:"name"`
	Desc        string          `yaml:"desc"`
	Choices     []choice.Choice `yaml:"choices,omitempty"`
	FromCommand string          `yaml:"from_command,omitempty"`
	FromInput   string          `yaml:"from_input,omitempty"`
}

// namespaceOf returns the final path segment of path's parent directory,
// used to namespace every unqualified identifier defined in that file.
func namespaceOf(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// ReadAliases parses path as a list of alias records. Names must not
// contain whitespace; unqualified names are namespaced to the parent
// directory's final path segment.
func ReadAliases(path string) ([]alias.Raw, error) {
	ns := namespaceOf(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrLoad, path, err)
	}

	var raw []aliasYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", errs.ErrLoad, path, err)
	}

	out := make([]alias.Raw, 0, len(raw))
	for _, a := range raw {
		if nameHasWhitespace.MatchString(a.Name) {
			return nil, fmt.Errorf("%w: %s: alias name %q contains whitespace", errs.ErrLoad, path, a.Name)
		}
		id, err := ids.Sanitize(a.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrLoad, path, err)
		}
		id = id.WithDefaultNamespace(ns)
		out = append(out, alias.Raw{ID: id, Desc: a.Desc, Template: a.Alias})
	}
	return out, nil
}

// ReadVars parses path as a list of variable records, same namespace rule
// as ReadAliases.
func ReadVars(path string) ([]*vars.Variable, error) {
	ns := namespaceOf(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrLoad, path, err)
	}

	var raw []varYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", errs.ErrLoad, path, err)
	}

	out := make([]*vars.Variable, 0, len(raw))
	for _, v := range raw {
		if nameHasWhitespace.MatchString(v.Name) {
			return nil, fmt.Errorf("%w: %s: variable name %q contains whitespace", errs.ErrLoad, path, v.Name)
		}
		id, err := ids.Sanitize(v.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrLoad, path, err)
		}
		id = id.WithDefaultNamespace(ns)

		variable, err := classify(path, id, v)
		if err != nil {
			return nil, err
		}
		out = append(out, variable)
	}
	return out, nil
}

func classify(path string, id ids.Identifier, v varYAML) (*vars.Variable, error) {
	kinds := 0
	if len(v.Choices) > 0 {
		kinds++
	}
	if v.FromCommand != "" {
		kinds++
	}
	if v.FromInput != "" {
		kinds++
	}
	if kinds > 1 {
		return nil, fmt.Errorf("%w: %s: variable %s specifies more than one of choices/from_command/from_input", errs.ErrLoad, path, id)
	}

	switch {
	case v.FromCommand != "":
		return &vars.Variable{ID: id, Desc: v.Desc, Kind: vars.Dynamic, Command: v.FromCommand}, nil
	case v.FromInput != "":
		return &vars.Variable{ID: id, Desc: v.Desc, Kind: vars.Input, Prompt: v.FromInput}, nil
	default:
		return &vars.Variable{ID: id, Desc: v.Desc, Kind: vars.Static, Choices: v.Choices}, nil
	}
}

// Discover walks each root_dir entry and every directory beneath it,
// returning every aliases.yaml|yml and vars.yaml|yml it finds. Each
// directory's pair of files contributes to one namespace.
func Discover(roots []string) (aliasFiles, varFiles []string, err error) {
	for _, root := range roots {
		walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch d.Name() {
			case "aliases.yaml", "aliases.yml":
				aliasFiles = append(aliasFiles, path)
			case "vars.yaml", "vars.yml":
				varFiles = append(varFiles, path)
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, fmt.Errorf("%w: scanning %s: %v", errs.ErrLoad, root, walkErr)
		}
	}
	return aliasFiles, varFiles, nil
}
