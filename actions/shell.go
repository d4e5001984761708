// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package actions provides the concrete actions a workflow file is compiled into
package actions

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cast"

	"github.com/ennio-run/ennio"
	"github.com/ennio-run/ennio/command"
	"github.com/ennio-run/ennio/schema"
)

// Environment variables set for every script
const (
	EnvWorkflow = "ENNIO_WORKFLOW"
	EnvAction   = "ENNIO_ACTION"
	EnvOutput   = "ENNIO_OUTPUT"
)

// DefaultShell runs scripts when no shell is set
const DefaultShell = "bash"

type contextKey struct{ string }

var contextKeyDir = contextKey{"dir"}

// WithWorkDir returns a context whose scripts run relative to dir
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, contextKeyDir, dir)
}

// WorkDirFromContext returns the directory set by WithWorkDir
//
// If none is set, it returns an empty string which means the current directory of the process.
func WorkDirFromContext(ctx context.Context) string {
	if dir, ok := ctx.Value(contextKeyDir).(string); ok {
		return dir
	}
	return ""
}

// ShellAction runs a script through a shell
type ShellAction struct {
	name     string
	script   string
	shell    string
	dir      string
	env      schema.Env
	executor command.Executor
	stdout   io.Writer
	stderr   io.Writer
}

var _ ennio.Action = (*ShellAction)(nil)

// ShellOption configures a ShellAction
type ShellOption func(*ShellAction)

// WithShell sets the shell executing the script, one of bash, sh or pwsh
func WithShell(shell string) ShellOption {
	return func(a *ShellAction) {
		if shell != "" {
			a.shell = shell
		}
	}
}

// WithDir sets the directory the script runs in, relative to WorkDirFromContext
func WithDir(dir string) ShellOption {
	return func(a *ShellAction) {
		a.dir = dir
	}
}

// WithEnv adds environment variables, string values are rendered before the script runs
func WithEnv(env schema.Env) ShellOption {
	return func(a *ShellAction) {
		if a.env == nil {
			a.env = make(schema.Env, len(env))
		}
		maps.Copy(a.env, env)
	}
}

// WithExecutor replaces how the shell process is started
func WithExecutor(fn command.Executor) ShellOption {
	return func(a *ShellAction) {
		a.executor = fn
	}
}

// WithStreams copies the script's output to stdout and stderr while it runs
func WithStreams(stdout, stderr io.Writer) ShellOption {
	return func(a *ShellAction) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// NewShellAction returns an action running script
func NewShellAction(name, script string, opts ...ShellOption) *ShellAction {
	a := &ShellAction{
		name:   name,
		script: script,
		shell:  DefaultShell,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements ennio.Action
func (a *ShellAction) Name() string {
	return a.name
}

// Script returns the unrendered script
func (a *ShellAction) Script() string {
	return a.script
}

// Shell returns the shell executing the script
func (a *ShellAction) Shell() string {
	return a.shell
}

// ShellCommand returns the program and arguments running script with shell
func ShellCommand(shell, script string) (string, []string, error) {
	switch shell {
	case "bash":
		return "bash", []string{"-e", "-o", "pipefail", "-c", script}, nil
	case "sh":
		return "sh", []string{"-e", "-c", script}, nil
	case "pwsh":
		return "pwsh", []string{"-Command", "$ErrorActionPreference = 'Stop';", script, "; if ((Test-Path -LiteralPath variable:\\LASTEXITCODE)) { exit $LASTEXITCODE }"}, nil
	default:
		return "", nil, fmt.Errorf("unsupported shell: %s", shell)
	}
}

// Run renders the script, runs it and reports:
//
//   - changed with stdout, stderr and every variable written to $ENNIO_OUTPUT when the script exits with 0
//   - failed with stdout and stderr when it exits with anything else
//   - failed with the error as stderr when it cannot be rendered or started
func (a *ShellAction) Run(ctx context.Context, rc *ennio.RunContext) ennio.Output {
	logger := log.FromContext(ctx)

	script, err := ennio.Render(ctx, rc, a.script)
	if err != nil {
		return failed(err)
	}

	program, args, err := ShellCommand(a.shell, script)
	if err != nil {
		return failed(err)
	}
	if a.shell == "pwsh" {
		logger.Warn("support for this shell is currently untested", "shell", a.shell)
	}

	env, err := a.environment(ctx, rc)
	if err != nil {
		return failed(err)
	}

	printScript(logger, a.shell, script)

	outFile, err := os.CreateTemp("", "ennio-output-*")
	if err != nil {
		return failed(err)
	}
	defer func() {
		_ = outFile.Close()
		_ = os.Remove(outFile.Name())
	}()

	env = append(env,
		EnvWorkflow+"="+rc.WorkflowName(),
		EnvAction+"="+a.name,
		EnvOutput+"="+outFile.Name(),
	)

	result, err := command.New(program).
		WithArgs(args...).
		WithEnv(env...).
		WithDir(filepath.Join(WorkDirFromContext(ctx), a.dir)).
		WithStreams(a.stdout, a.stderr).
		WithExecutor(a.executor).
		Execute(ctx)
	if err != nil {
		return failed(err)
	}

	if !result.Success() {
		return ennio.NewOutput(ennio.StatusFailed).
			AddVar("stdout", ennio.String(result.Stdout)).
			AddVar("stderr", ennio.String(result.Stderr))
	}

	vars, err := ParseOutput(outFile)
	if err != nil {
		return ennio.NewOutput(ennio.StatusFailed).
			AddVar("stdout", ennio.String(result.Stdout)).
			AddVar("stderr", ennio.String(fmt.Sprintf("parsing $%s: %s", EnvOutput, err)))
	}

	out := ennio.NewOutput(ennio.StatusChanged)
	for k, v := range vars {
		out = out.AddVar(k, ennio.String(v))
	}
	return out.
		AddVar("stdout", ennio.String(result.Stdout)).
		AddVar("stderr", ennio.String(result.Stderr))
}

func (a *ShellAction) environment(ctx context.Context, rc *ennio.RunContext) ([]string, error) {
	env := make([]string, 0, len(a.env)+3)
	for _, k := range slices.Sorted(maps.Keys(a.env)) {
		val, err := cast.ToStringE(a.env[k])
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", k, err)
		}
		val, err = ennio.Render(ctx, rc, val)
		if err != nil {
			return nil, fmt.Errorf("env %s: %w", k, err)
		}
		env = append(env, k+"="+val)
	}
	return env, nil
}

func failed(err error) ennio.Output {
	return ennio.NewOutput(ennio.StatusFailed).AddVar("stderr", ennio.String(err.Error()))
}
