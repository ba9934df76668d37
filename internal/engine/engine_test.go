package engine_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/cache"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/engine"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/history"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/resolve"
	"github.com/nullstream-dev/runbook/internal/store"
	"github.com/nullstream-dev/runbook/internal/vars"
)

// fixedResolver always answers with a preconfigured choice per identifier,
// letting tests drive Gather deterministically without a real TUI.
type fixedResolver struct {
	answers map[string]choice.Choice
	// pick, when set, is returned by PickIdentifier instead of erroring.
	pick ids.Identifier
}

func (f *fixedResolver) PickAlias(context.Context, []resolve.AliasPreview, string) (*alias.Alias, error) {
	return nil, errors.New("not used")
}
func (f *fixedResolver) PickIdentifier(_ context.Context, candidates []ids.Identifier, _ string) (ids.Identifier, error) {
	if f.pick == (ids.Identifier{}) {
		return ids.Identifier{}, errors.New("not used")
	}
	for _, c := range candidates {
		if c == f.pick {
			return f.pick, nil
		}
	}
	return ids.Identifier{}, fmt.Errorf("%s not in candidates", f.pick)
}
func (f *fixedResolver) PickFromList(_ context.Context, v *vars.Variable, choices []choice.Choice, _ resolve.Context) ([]choice.Choice, error) {
	if a, ok := f.answers[v.ID.String()]; ok {
		return []choice.Choice{a}, nil
	}
	return choices[:1], nil
}
func (f *fixedResolver) PickFromDynamic(_ context.Context, v *vars.Variable, _ []string, _ resolve.Context) ([]choice.Choice, error) {
	return []choice.Choice{f.answers[v.ID.String()]}, nil
}
func (f *fixedResolver) PickFreeText(_ context.Context, v *vars.Variable, _ string, _ resolve.Context) (choice.Choice, error) {
	return f.answers[v.ID.String()], nil
}

type recordingExecutor struct {
	ran  [][]string
	code int
	err  error
}

func (e *recordingExecutor) Exec(_ context.Context, commands []string, _ map[string]string) (int, error) {
	e.ran = append(e.ran, commands)
	return e.code, e.err
}

func newTestEngine(t *testing.T) (*engine.Engine, *recordingExecutor) {
	t.Helper()
	vstore := store.New()
	envID := ids.New("env", "app")
	vstore.Add(&vars.Variable{ID: envID, Kind: vars.Static, Choices: []choice.Choice{
		choice.New("staging", ""), choice.New("prod", ""),
	}})
	regionID := ids.New("region", "app")
	vstore.Add(&vars.Variable{ID: regionID, Kind: vars.Static, Choices: []choice.Choice{
		choice.New("us-east", ""), choice.New("eu-west", ""),
	}})

	raws := []alias.Raw{{ID: ids.New("deploy", "app"), Template: "deploy.sh {{env}} {{region}}"}}
	aliases, err := alias.Expand(raws)
	if err != nil {
		t.Fatalf("alias.Expand: %v", err)
	}

	exec := &recordingExecutor{}
	eng := &engine.Engine{
		Aliases:  aliases,
		VarStore: vstore,
		Resolver: &fixedResolver{answers: map[string]choice.Choice{
			"app::env":    choice.New("prod", ""),
			"app::region": choice.New("us-east", ""),
		}},
		History:  history.New(filepath.Join(t.TempDir(), "history.json"), 0),
		Cache:    cache.NoopStore{},
		Executor: exec,
	}
	return eng, exec
}

func TestRunByIdExecutesResolvedCommand(t *testing.T) {
	eng, exec := newTestEngine(t)
	res, err := eng.RunById(context.Background(), ids.New("deploy", "app"))
	if err != nil {
		t.Fatalf("RunById: %v", err)
	}
	if len(res.Resolved.Commands) != 1 || res.Resolved.Commands[0] != "deploy.sh prod us-east" {
		t.Fatalf("Resolved.Commands = %v", res.Resolved.Commands)
	}
	if len(exec.ran) != 1 {
		t.Fatalf("executor ran %d times, want 1", len(exec.ran))
	}
}

func TestRunByIdUnknownAlias(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := eng.RunById(context.Background(), ids.New("missing", "app"))
	if !errors.Is(err, errs.ErrLoad) {
		t.Fatalf("err = %v, want ErrLoad", err)
	}
}

func TestDryRunDoesNotExecute(t *testing.T) {
	eng, exec := newTestEngine(t)
	eng.Dry = true
	res, err := eng.RunById(context.Background(), ids.New("deploy", "app"))
	if err != nil {
		t.Fatalf("RunById: %v", err)
	}
	if len(exec.ran) != 0 {
		t.Error("dry run should not invoke the executor")
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
}

func TestRunByIdRecordsHistory(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := eng.RunById(context.Background(), ids.New("deploy", "app")); err != nil {
		t.Fatalf("RunById: %v", err)
	}
	last, err := eng.ShowLast()
	if err != nil {
		t.Fatalf("ShowLast: %v", err)
	}
	if last.Resolved.ID != ids.New("deploy", "app") {
		t.Errorf("history ID = %v", last.Resolved.ID)
	}
}

func TestRunLastReplaysRecordedCommands(t *testing.T) {
	eng, exec := newTestEngine(t)
	if _, err := eng.RunById(context.Background(), ids.New("deploy", "app")); err != nil {
		t.Fatalf("RunById: %v", err)
	}
	exec.ran = nil

	if _, err := eng.RunLast(context.Background()); err != nil {
		t.Fatalf("RunLast: %v", err)
	}
	if len(exec.ran) != 1 || exec.ran[0][0] != "deploy.sh prod us-east" {
		t.Fatalf("RunLast did not replay the recorded command: %v", exec.ran)
	}
}

func TestModifyLastOverridesOneVarAndKeepsDownstreamHistorical(t *testing.T) {
	eng, exec := newTestEngine(t)
	if _, err := eng.RunById(context.Background(), ids.New("deploy", "app")); err != nil {
		t.Fatalf("RunById: %v", err)
	}
	exec.ran = nil

	resolver := eng.Resolver.(*fixedResolver)
	resolver.answers["app::env"] = choice.New("staging", "")
	// If region were re-asked instead of seeded from history, this would leak
	// into the result; it should never be consulted for region here.
	resolver.answers["app::region"] = choice.New("eu-west", "")

	if _, err := eng.ModifyLast(context.Background(), ids.New("env", "app")); err != nil {
		t.Fatalf("ModifyLast: %v", err)
	}
	if len(exec.ran) != 1 || exec.ran[0][0] != "deploy.sh staging us-east" {
		t.Fatalf("ModifyLast = %v, want the new env with the historical region preserved", exec.ran)
	}
}

func TestModifyLastWithoutOverrideAsksResolverToPick(t *testing.T) {
	eng, exec := newTestEngine(t)
	if _, err := eng.RunById(context.Background(), ids.New("deploy", "app")); err != nil {
		t.Fatalf("RunById: %v", err)
	}
	exec.ran = nil

	resolver := eng.Resolver.(*fixedResolver)
	resolver.pick = ids.New("region", "app")
	resolver.answers["app::region"] = choice.New("eu-west", "")

	if _, err := eng.ModifyLast(context.Background(), ids.Identifier{}); err != nil {
		t.Fatalf("ModifyLast: %v", err)
	}
	if len(exec.ran) != 1 || exec.ran[0][0] != "deploy.sh prod eu-west" {
		t.Fatalf("ModifyLast = %v, want the resolver-picked region overridden", exec.ran)
	}
}

func TestExecutorNonzeroExitDoesNotAbortResult(t *testing.T) {
	eng, exec := newTestEngine(t)
	exec.code = 7
	exec.err = errs.ErrExecutor
	res, err := eng.RunById(context.Background(), ids.New("deploy", "app"))
	if err != nil {
		t.Fatalf("RunById: %v", err)
	}
	if res.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", res.ExitCode)
	}
}
