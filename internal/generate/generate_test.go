// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/openkpis/sheetsync/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runFunc       func(dir, name string, args []string, stdout, stderr io.Writer) error

	calls []string
	dirs  []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(ctx context.Context, dir, name string, args []string, stdout, stderr io.Writer) error {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	m.dirs = append(m.dirs, dir)
	if m.runFunc != nil {
		return m.runFunc(dir, name, args, stdout, stderr)
	}
	return nil
}

func TestCommandTriggerRun(t *testing.T) {
	tests := []struct {
		name      string
		exec      *mockExecutor
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "success",
			exec:      &mockExecutor{availableBins: map[string]bool{"node": true}},
			wantCalls: 1,
		},
		{
			name:      "binary missing",
			exec:      &mockExecutor{availableBins: map[string]bool{}},
			wantErr:   true,
			wantCalls: 0,
		},
		{
			name: "non-zero exit",
			exec: &mockExecutor{
				availableBins: map[string]bool{"node": true},
				runFunc: func(string, string, []string, io.Writer, io.Writer) error {
					return errors.New("exit status 1")
				},
			},
			wantErr:   true,
			wantCalls: 1,
		},
	}

	cfg := types.GenerationConfig{
		Command: "node",
		Args:    []string{"scripts/generate-from-yaml.js"},
		WorkDir: "/srv/site",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trig := newCommandTrigger(cfg, nil, nil, tt.exec)
			err := trig.Run(context.Background())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, types.ErrGenerationInvocation) {
					t.Errorf("error %v does not wrap ErrGenerationInvocation", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(tt.exec.calls) != tt.wantCalls {
				t.Fatalf("calls = %v, want %d", tt.exec.calls, tt.wantCalls)
			}
			if tt.wantCalls > 0 {
				if tt.exec.calls[0] != "node scripts/generate-from-yaml.js" {
					t.Errorf("call = %q", tt.exec.calls[0])
				}
				if tt.exec.dirs[0] != "/srv/site" {
					t.Errorf("dir = %q", tt.exec.dirs[0])
				}
			}
		})
	}
}

func TestCommandTriggerStreamsOutput(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"npm": true},
		runFunc: func(_, _ string, _ []string, stdout, stderr io.Writer) error {
			io.WriteString(stdout, "generated 12 pages\n")
			io.WriteString(stderr, "warning: stale cache\n")
			return nil
		},
	}
	var out, errOut strings.Builder
	trig := newCommandTrigger(types.GenerationConfig{Command: "npm", Args: []string{"run", "build"}}, &out, &errOut, exec)

	if err := trig.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "generated 12 pages\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if errOut.String() != "warning: stale cache\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
	if trig.String() != "npm run build" {
		t.Errorf("String() = %q", trig.String())
	}
}

func TestCommandTriggerDefaults(t *testing.T) {
	trig := NewCommandTrigger(types.GenerationConfig{}, nil, nil)
	if trig.String() != "node scripts/generate-from-yaml.js" {
		t.Errorf("String() = %q", trig.String())
	}
}

func TestTriggerFunc(t *testing.T) {
	called := false
	var trig Trigger = TriggerFunc(func(context.Context) error {
		called = true
		return nil
	})
	if err := trig.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("function not called")
	}
}
