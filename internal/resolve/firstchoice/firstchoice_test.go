package firstchoice_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/cache"
	"github.com/nullstream-dev/runbook/internal/choice"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
	"github.com/nullstream-dev/runbook/internal/resolve"
	"github.com/nullstream-dev/runbook/internal/resolve/firstchoice"
	"github.com/nullstream-dev/runbook/internal/vars"
)

func newResolver(t *testing.T) *firstchoice.Resolver {
	t.Helper()
	store := cache.New(filepath.Join(t.TempDir(), "cache.json"), time.Hour)
	return firstchoice.New(store, nil, "/bin/sh")
}

func TestPickAliasReturnsFirst(t *testing.T) {
	r := newResolver(t)
	a1 := &alias.Alias{ID: ids.New("a", "app")}
	a2 := &alias.Alias{ID: ids.New("b", "app")}
	got, err := r.PickAlias(context.Background(), []resolve.AliasPreview{{Alias: a1}, {Alias: a2}}, "")
	if err != nil {
		t.Fatalf("PickAlias: %v", err)
	}
	if got != a1 {
		t.Errorf("PickAlias() = %v, want the first alias", got)
	}
}

func TestPickAliasEmptyFails(t *testing.T) {
	r := newResolver(t)
	_, err := r.PickAlias(context.Background(), nil, "")
	if !errors.Is(err, errs.ErrNoChoiceAvailable) {
		t.Fatalf("err = %v, want ErrNoChoiceAvailable", err)
	}
}

func TestPickFromListReturnsFirst(t *testing.T) {
	r := newResolver(t)
	v := &vars.Variable{ID: ids.New("env", "app")}
	choices := []choice.Choice{choice.New("staging", ""), choice.New("prod", "")}
	got, err := r.PickFromList(context.Background(), v, choices, resolve.Context{})
	if err != nil {
		t.Fatalf("PickFromList: %v", err)
	}
	if len(got) != 1 || got[0].Value != "staging" {
		t.Errorf("PickFromList() = %v, want [staging]", got)
	}
}

func TestPickFromDynamicExecutesRealShell(t *testing.T) {
	r := newResolver(t)
	v := &vars.Variable{ID: ids.New("pod", "app")}
	got, err := r.PickFromDynamic(context.Background(), v, []string{"printf 'pod-a\\npod-b\\n'"}, resolve.Context{})
	if err != nil {
		t.Fatalf("PickFromDynamic: %v", err)
	}
	if len(got) != 1 || got[0].Value != "pod-a" {
		t.Errorf("PickFromDynamic() = %v, want the first line", got)
	}
}
