// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package command wraps the invocation of external programs.
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/charmbracelet/log"
)

// Result is what a terminated program left behind
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the program did not exit normally (e.g. killed by a signal)
}

// Success reports whether the program exited with code 0
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Executor runs a command
//
// A program that ran and exited (whatever its exit code) is a Result,
// an error means the program could not be run at all.
type Executor func(ctx context.Context, cmd *Command) (*Result, error)

// Command is an external program invocation
type Command struct {
	program  string
	args     []string
	env      []string
	dir      string
	stdout   io.Writer
	stderr   io.Writer
	executor Executor
}

// New returns a command running program with no arguments
func New(program string) *Command {
	return &Command{
		program:  program,
		executor: Exec,
	}
}

// WithArgs replaces the command's arguments
func (c *Command) WithArgs(args ...string) *Command {
	c.args = slices.Clone(args)
	return c
}

// WithEnv adds KEY=value entries on top of the current process environment
func (c *Command) WithEnv(env ...string) *Command {
	c.env = append(c.env, env...)
	return c
}

// WithDir sets the working directory, empty means the current one
func (c *Command) WithDir(dir string) *Command {
	c.dir = dir
	return c
}

// WithStreams copies the program's output to stdout and stderr while it is being captured
func (c *Command) WithStreams(stdout, stderr io.Writer) *Command {
	c.stdout = stdout
	c.stderr = stderr
	return c
}

// WithExecutor replaces how the command is run
func (c *Command) WithExecutor(fn Executor) *Command {
	if fn == nil {
		fn = Exec
	}
	c.executor = fn
	return c
}

// Program returns the program to run
func (c *Command) Program() string {
	return c.program
}

// Args returns the program's arguments
func (c *Command) Args() []string {
	return slices.Clone(c.args)
}

// Env returns the extra environment entries
func (c *Command) Env() []string {
	return slices.Clone(c.env)
}

// Dir returns the working directory
func (c *Command) Dir() string {
	return c.dir
}

// Execute runs the command and waits for it to terminate
func (c *Command) Execute(ctx context.Context) (*Result, error) {
	logger := log.FromContext(ctx)

	logger.Debug("command", "program", c.program, "args", c.args, "dir", c.dir)

	start := time.Now()
	result, err := c.executor(ctx, c)
	if err != nil {
		logger.Debug("unable to execute", "program", c.program, "error", err)
		return nil, err
	}

	logger.Debug("command terminated", "program", c.program, "code", result.ExitCode, "duration", time.Since(start))
	if result.Stdout != "" {
		logger.Debug("command stdout", "program", c.program, "stdout", result.Stdout)
	}
	if result.Stderr != "" {
		logger.Debug("command stderr", "program", c.program, "stderr", result.Stderr)
	}
	return result, nil
}

// Exec is the default Executor, it starts an operating system process
func Exec(ctx context.Context, c *Command) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}

	cmd.Stdout = &stdout
	if c.stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, c.stdout)
	}
	cmd.Stderr = &stderr
	if c.stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.stderr)
	}

	err := cmd.Run()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}
