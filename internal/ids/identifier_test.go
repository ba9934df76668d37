package ids_test

import (
	"testing"

	"github.com/nullstream-dev/runbook/internal/ids"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ids.Identifier
		wantErr bool
	}{
		{"bare", "foo", ids.New("foo", ""), false},
		{"qualified", "ns::foo", ids.New("foo", "ns"), false},
		{"placeholder form", "{{ foo }}", ids.New("foo", ""), false},
		{"alias ref form", "[[ns::foo]]", ids.New("foo", "ns"), false},
		{"empty namespace prefix", "::foo", ids.New("foo", ""), false},
		{"empty name", "", ids.Identifier{}, true},
		{"invalid chars", "foo bar", ids.Identifier{}, true},
		{"invalid namespace", "f oo::bar", ids.Identifier{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ids.Sanitize(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Sanitize(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Sanitize(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIdentifierString(t *testing.T) {
	if got := ids.New("foo", "").String(); got != "foo" {
		t.Errorf("String() = %q, want %q", got, "foo")
	}
	if got := ids.New("foo", "ns").String(); got != "ns::foo" {
		t.Errorf("String() = %q, want %q", got, "ns::foo")
	}
}

func TestWithDefaultNamespace(t *testing.T) {
	bare := ids.New("foo", "")
	if got := bare.WithDefaultNamespace("ns"); got != ids.New("foo", "ns") {
		t.Errorf("WithDefaultNamespace on bare = %+v", got)
	}
	qualified := ids.New("foo", "other")
	if got := qualified.WithDefaultNamespace("ns"); got != qualified {
		t.Errorf("WithDefaultNamespace on qualified should not change it, got %+v", got)
	}
}

func TestDependencies(t *testing.T) {
	template := "deploy {{env}} to {{ns::region}} as {{env}}"
	got := ids.Dependencies(template, "app")
	want := []ids.Identifier{ids.New("env", "app"), ids.New("region", "ns")}
	if len(got) != len(want) {
		t.Fatalf("Dependencies() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dependencies()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestIdentifierTextMarshalRoundtrip(t *testing.T) {
	id := ids.New("foo", "ns")
	text, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var got ids.Identifier
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if got != id {
		t.Errorf("roundtrip = %+v, want %+v", got, id)
	}
}
