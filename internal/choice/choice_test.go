package choice_test

import (
	"testing"

	"github.com/nullstream-dev/runbook/internal/choice"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		c    choice.Choice
		want string
	}{
		{"value only", choice.New("prod", ""), "prod"},
		{"value and desc", choice.New("prod", "production cluster"), "prod (production cluster)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
