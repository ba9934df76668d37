// Package errs declares the sentinel errors shared across the runbook core.
// Components wrap these with fmt.Errorf("%w: ...") so callers can compare
// with errors.Is without depending on the component that raised them.
package errs

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrLoad covers configuration and source-file load failures: absent
	// or unreadable files, malformed records, invalid names.
	ErrLoad = errors.New("load error")

	// ErrMissingAliasDependency is returned when an alias reference
	// ([[name]]) targets an alias that does not exist in the preliminary
	// alias map.
	ErrMissingAliasDependency = errors.New("missing alias dependency")

	// ErrMissingDependencies is returned by the planner when one or more
	// identifiers reachable from a root are absent from the VarStore.
	ErrMissingDependencies = errors.New("missing dependencies")

	// ErrMissingChoicesForVar is returned by template substitution when a
	// dependency has no entry in the choice map.
	ErrMissingChoicesForVar = errors.New("missing choices for variable")

	// ErrNoChoiceAvailable is returned when a Static variable's choice
	// list is empty.
	ErrNoChoiceAvailable = errors.New("no choice available")

	// ErrNoChoiceSelected is returned when a resolver produced zero
	// choices without aborting.
	ErrNoChoiceSelected = errors.New("no choice selected")

	// ErrDynamicResolveFailure covers shell spawn / I/O errors while
	// resolving a Dynamic variable.
	ErrDynamicResolveFailure = errors.New("dynamic resolve failure")

	// ErrDynamicResolveEmpty is returned when a Dynamic subcommand
	// succeeds but yields no parseable choice.
	ErrDynamicResolveEmpty = errors.New("dynamic resolve produced no choices")

	// ErrCache covers DynamicCache persistence failures.
	ErrCache = errors.New("cache error")

	// ErrHistory covers History persistence failures.
	ErrHistory = errors.New("history error")

	// ErrExecutor covers executor spawn failures and propagated nonzero
	// exit codes.
	ErrExecutor = errors.New("executor error")

	// ErrAborted is returned when the user cancels a resolver prompt. It
	// is reported quietly by the engine, distinct from a real error.
	ErrAborted = errors.New("aborted")
)

// Identifiable is anything that can be rendered for error aggregation; it is
// satisfied by ids.Identifier without this package importing ids, which
// would otherwise create an import cycle (ids has no need of errs).
type Identifiable interface {
	String() string
}

// MissingDependencies aggregates one error per identifier absent from the
// store, preserving each as an independently-matchable cause so callers can
// still errors.Is(err, ErrMissingDependencies) against the whole.
func MissingDependencies[T Identifiable](missing []T) error {
	if len(missing) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, id := range missing {
		merr = multierror.Append(merr, fmt.Errorf("%w: %s", ErrMissingDependencies, id.String()))
	}
	return merr.ErrorOrNil()
}
