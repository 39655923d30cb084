// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate runs the external site generation step once documents and
// index artifacts are in place.
package generate

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/openkpis/sheetsync/pkg/types"
)

// Trigger starts downstream generation.
type Trigger interface {
	Run(ctx context.Context) error
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(ctx context.Context) error

// Run calls f.
func (f TriggerFunc) Run(ctx context.Context) error { return f(ctx) }

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, dir, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// CommandTrigger runs a configured command in a working directory and
// streams its output.
type CommandTrigger struct {
	command string
	args    []string
	dir     string
	stdout  io.Writer
	stderr  io.Writer
	exec    executor
}

// NewCommandTrigger returns a trigger for cfg. An empty command falls back to
// the default generator script.
func NewCommandTrigger(cfg types.GenerationConfig, stdout, stderr io.Writer) *CommandTrigger {
	return newCommandTrigger(cfg, stdout, stderr, defaultExec)
}

func newCommandTrigger(cfg types.GenerationConfig, stdout, stderr io.Writer, exec executor) *CommandTrigger {
	command, args := cfg.Command, cfg.Args
	if command == "" {
		command = types.DefaultGenerator
		if len(args) == 0 {
			args = []string{types.DefaultGenScript}
		}
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &CommandTrigger{
		command: command,
		args:    append([]string(nil), args...),
		dir:     cfg.WorkDir,
		stdout:  stdout,
		stderr:  stderr,
		exec:    exec,
	}
}

// String returns the command line.
func (c *CommandTrigger) String() string {
	return strings.Join(append([]string{c.command}, c.args...), " ")
}

// Run executes the command. A missing binary or a non-zero exit is reported
// as types.ErrGenerationInvocation.
func (c *CommandTrigger) Run(ctx context.Context) error {
	if _, err := c.exec.LookPath(c.command); err != nil {
		return fmt.Errorf("%w: %s not found on PATH: %v", types.ErrGenerationInvocation, c.command, err)
	}
	if err := c.exec.Run(ctx, c.dir, c.command, c.args, c.stdout, c.stderr); err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrGenerationInvocation, c.String(), err)
	}
	return nil
}
