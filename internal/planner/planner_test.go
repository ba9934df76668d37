package planner_test

import (
	"errors"
	"testing"

	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/planner"
	"github.com/nullstream-dev/runbook/internal/store"
	"github.com/nullstream-dev/runbook/internal/vars"
)

type root struct {
	deps []ids.Identifier
}

func (r root) Dependencies() []ids.Identifier { return r.deps }

func indexOf(plan []ids.Identifier, id ids.Identifier) int {
	for i, p := range plan {
		if p == id {
			return i
		}
	}
	return -1
}

func TestPlanOrdersDependenciesBeforeDependents(t *testing.T) {
	s := store.New()
	region := ids.New("region", "app")
	env := ids.New("env", "app")
	pod := ids.New("pod", "app")

	s.Add(&vars.Variable{ID: region, Kind: vars.Static})
	s.Add(&vars.Variable{ID: env, Kind: vars.Static})
	s.Add(&vars.Variable{ID: pod, Kind: vars.Dynamic, Command: "kubectl get pods -n {{env}} -r {{region}}"})

	plan, err := planner.Plan(root{deps: []ids.Identifier{pod}}, s)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if indexOf(plan, env) > indexOf(plan, pod) {
		t.Errorf("env should come before pod in %v", plan)
	}
	if indexOf(plan, region) > indexOf(plan, pod) {
		t.Errorf("region should come before pod in %v", plan)
	}
}

func TestPlanDeduplicatesSharedDependency(t *testing.T) {
	s := store.New()
	ns := ids.New("ns", "app")
	a := ids.New("a", "app")
	b := ids.New("b", "app")

	s.Add(&vars.Variable{ID: ns, Kind: vars.Static})
	s.Add(&vars.Variable{ID: a, Kind: vars.Dynamic, Command: "echo {{ns}}"})
	s.Add(&vars.Variable{ID: b, Kind: vars.Dynamic, Command: "echo {{ns}}"})

	plan, err := planner.Plan(root{deps: []ids.Identifier{a, b}}, s)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	count := 0
	for _, id := range plan {
		if id == ns {
			count++
		}
	}
	if count != 1 {
		t.Errorf("ns appears %d times in %v, want once", count, plan)
	}
}

func TestPlanMissingDependency(t *testing.T) {
	s := store.New()
	missing := ids.New("missing", "app")
	_, err := planner.Plan(root{deps: []ids.Identifier{missing}}, s)
	if !errors.Is(err, errs.ErrMissingDependencies) {
		t.Fatalf("Plan error = %v, want ErrMissingDependencies", err)
	}
}

func TestPlanNoDependencies(t *testing.T) {
	s := store.New()
	plan, err := planner.Plan(root{}, s)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("Plan() = %v, want empty", plan)
	}
}
