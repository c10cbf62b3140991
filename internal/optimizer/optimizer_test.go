package optimizer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/sakif/promptmaster/internal/apperror"
)

func newDisabled(t *testing.T) *Optimizer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o, err := New(context.Background(), "", "", logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestDisabledOptimizer(t *testing.T) {
	o := newDisabled(t)
	ctx := context.Background()

	if o.Enabled() {
		t.Error("Enabled() = true without an API key")
	}
	if o.model != DefaultModel {
		t.Errorf("model = %q, want default %q", o.model, DefaultModel)
	}

	if _, err := o.Optimize(ctx, "draft"); !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Optimize() error = %v, want ErrUnavailable", err)
	}
	if _, err := o.GenerateIdeas(ctx, "coding"); !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("GenerateIdeas() error = %v, want ErrUnavailable", err)
	}
}

func TestParseIdeas(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain array", `["one", "two"]`, []string{"one", "two"}},
		{"fenced json", "```json\n[\"one\"]\n```", []string{"one"}},
		{"blank entries dropped", `["one", "  ", ""]`, []string{"one"}},
		{"not json", "sorry, I cannot do that", []string{}},
		{"wrong shape", `{"ideas": ["one"]}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseIdeas(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseIdeas(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
