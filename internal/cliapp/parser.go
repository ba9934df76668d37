package cliapp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseArgs parses raw command-line arguments into positional args and flag values.
// It supports --flag=value, --flag value, -flag=value, -flag value syntax,
// and the -- bare separator to stop flag parsing.
// When allowUnknown is false, any flag not defined on the command returns ErrUnknownFlag.
func parseArgs(cmd *Command, raw []string, allowUnknown bool) ([]string, map[string]string, error) {
	var positional []string
	flags := make(map[string]string)
	stopFlags := false

	i := 0
	for i < len(raw) {
		arg := raw[i]

		// After --, everything is positional.
		if arg == "--" {
			stopFlags = true
			i++
			continue
		}

		if stopFlags || !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			i++
			continue
		}

		name, value, consumed, _, err := parseFlag(cmd, raw, i, allowUnknown)
		if err != nil {
			return nil, nil, err
		}
		flags[name] = value
		i += consumed
	}

	// Apply environment variables for flags not provided on the command line.
	// runbook's global --dry/--silent/--no-cache flags each carry a RUNBOOK_
	// env fallback so a shell profile or CI job can set them once instead of
	// repeating the flag on every invocation.
	for _, f := range cmd.Flags {
		if _, ok := flags[f.Name]; !ok && f.Env != "" {
			if envVal, exists := os.LookupEnv(f.Env); exists {
				if err := validateFlagValue(&f, envVal); err != nil {
					return nil, nil, err
				}
				flags[f.Name] = envVal
			}
		}
	}

	// Apply defaults for flags not provided.
	for _, f := range cmd.Flags {
		if _, ok := flags[f.Name]; !ok && f.Default != "" {
			flags[f.Name] = f.Default
		}
	}

	// Check required flags.
	for _, f := range cmd.Flags {
		if f.Required {
			if _, ok := flags[f.Name]; !ok {
				return nil, nil, fmt.Errorf("%w: --%s", ErrRequiredFlag, f.Name)
			}
		}
	}

	return positional, flags, nil
}

// parseFlag parses a single flag starting at raw[i].
// It returns the canonical flag name, value, number of consumed arguments,
// the matched *Flag (nil for unknown flags), and any error.
// Short flags (e.g. -v) are resolved to their long name (e.g. "verbose").
// When allowUnknown is false, unrecognized flags return ErrUnknownFlag.
func parseFlag(cmd *Command, raw []string, i int, allowUnknown bool) (string, string, int, *Flag, error) {
	arg := raw[i]

	// Reject args with 3+ leading dashes (e.g. ---flag).
	if strings.HasPrefix(arg, "---") {
		return "", "", 0, nil, fmt.Errorf("%w: %s", ErrInvalidFlagValue, arg)
	}

	// Strip leading dashes.
	name := strings.TrimLeft(arg, "-")

	// Handle --flag=value or -flag=value syntax.
	if eqIdx := strings.IndexByte(name, '='); eqIdx >= 0 {
		flagName := name[:eqIdx]
		flagValue := name[eqIdx+1:]

		f := findFlag(cmd, flagName)
		if f == nil {
			if !allowUnknown {
				return "", "", 0, nil, fmt.Errorf("%w: --%s", ErrUnknownFlag, flagName)
			}
			return flagName, flagValue, 1, nil, nil
		}
		if err := validateFlagValue(f, flagValue); err != nil {
			return "", "", 0, nil, err
		}
		return f.Name, flagValue, 1, f, nil
	}

	// Resolve short/long name via findFlag.
	f := findFlag(cmd, name)

	if f == nil && !allowUnknown {
		return "", "", 0, nil, fmt.Errorf("%w: --%s", ErrUnknownFlag, name)
	}

	// Handle boolean flags that don't require a value.
	if f != nil && f.Type == FlagBool {
		// If next arg looks like a bool value, consume it.
		if i+1 < len(raw) {
			next := strings.ToLower(raw[i+1])
			if next == "true" || next == "false" || next == "1" || next == "0" {
				return f.Name, raw[i+1], 2, f, nil
			}
		}
		return f.Name, "true", 1, f, nil
	}

	// Handle --flag value syntax: next arg is the value.
	if i+1 >= len(raw) {
		return "", "", 0, nil, fmt.Errorf("%w: flag --%s requires a value", ErrInvalidFlagValue, name)
	}
	value := raw[i+1]

	if f != nil {
		if err := validateFlagValue(f, value); err != nil {
			return "", "", 0, nil, err
		}
		return f.Name, value, 2, f, nil
	}
	return name, value, 2, nil, nil
}

// findFlag looks up a flag definition by name or short alias in the command.
func findFlag(cmd *Command, name string) *Flag {
	for idx := range cmd.Flags {
		if cmd.Flags[idx].Name == name {
			return &cmd.Flags[idx]
		}
		if cmd.Flags[idx].Short != 0 && len(name) == 1 && rune(name[0]) == cmd.Flags[idx].Short {
			return &cmd.Flags[idx]
		}
	}
	return nil
}

// validateFlagValue checks that value is valid for the given flag type.
func validateFlagValue(f *Flag, value string) error {
	switch f.Type {
	case FlagBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: flag --%s: expected bool, got %q", ErrInvalidFlagValue, f.Name, value)
		}
	case FlagInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("%w: flag --%s: expected int, got %q", ErrInvalidFlagValue, f.Name, value)
		}
	case FlagString:
		// All values are valid strings.
	}
	return nil
}
