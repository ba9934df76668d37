package alias_test

import (
	"errors"
	"testing"

	"github.com/nullstream-dev/runbook/internal/alias"
	"github.com/nullstream-dev/runbook/internal/errs"
	"github.com/nullstream-dev/runbook/internal/ids"
)

func TestExpandNoReferences(t *testing.T) {
	raws := []alias.Raw{
		{ID: ids.New("deploy", "app"), Template: "kubectl apply -f {{file}}"},
	}
	out, err := alias.Expand(raws)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := out[ids.New("deploy", "app")]
	if got.Template != got.OriginalTemplate {
		t.Errorf("Template = %q, want unchanged %q", got.Template, got.OriginalTemplate)
	}
}

func TestExpandOneLevelReference(t *testing.T) {
	raws := []alias.Raw{
		{ID: ids.New("base", "app"), Template: "cd {{dir}}"},
		{ID: ids.New("deploy", "app"), Template: "[[base]] && make deploy"},
	}
	out, err := alias.Expand(raws)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	deploy := out[ids.New("deploy", "app")]
	want := "cd {{app::dir}} && make deploy"
	if deploy.Template != want {
		t.Errorf("Template = %q, want %q", deploy.Template, want)
	}
}

func TestExpandCrossNamespaceReference(t *testing.T) {
	raws := []alias.Raw{
		{ID: ids.New("base", "infra"), Template: "ssh {{host}}"},
		{ID: ids.New("deploy", "app"), Template: "[[infra::base]] 'make deploy'"},
	}
	out, err := alias.Expand(raws)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	deploy := out[ids.New("deploy", "app")]
	want := "ssh {{infra::host}} 'make deploy'"
	if deploy.Template != want {
		t.Errorf("Template = %q, want %q", deploy.Template, want)
	}
}

func TestExpandMissingReference(t *testing.T) {
	raws := []alias.Raw{
		{ID: ids.New("deploy", "app"), Template: "[[missing]]"},
	}
	_, err := alias.Expand(raws)
	if !errors.Is(err, errs.ErrMissingAliasDependency) {
		t.Fatalf("Expand error = %v, want ErrMissingAliasDependency", err)
	}
}

func TestDependencies(t *testing.T) {
	raws := []alias.Raw{
		{ID: ids.New("base", "app"), Template: "cd {{dir}}"},
		{ID: ids.New("deploy", "app"), Template: "[[base]] {{env}}"},
	}
	out, err := alias.Expand(raws)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	deps := out[ids.New("deploy", "app")].Dependencies()
	want := []ids.Identifier{ids.New("dir", "app"), ids.New("env", "app")}
	if len(deps) != len(want) {
		t.Fatalf("Dependencies() = %v, want %v", deps, want)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Errorf("Dependencies()[%d] = %v, want %v", i, deps[i], want[i])
		}
	}
}
