// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"fmt"
	"slices"

	"github.com/ennio-run/ennio"
	v0 "github.com/ennio-run/ennio/schema/v0"
)

// Compile turns a workflow from a workflow file into a runnable workflow
//
// Options apply to every shell action, they are applied before the action's own shell, dir and env.
// Unknown builtins and unsupported shells are reported here, before anything runs.
func Compile(name string, wf v0.Workflow, opts ...ShellOption) (*ennio.Workflow, error) {
	compiled := make([]ennio.Action, 0, len(wf.Actions))

	for i, action := range wf.Actions {
		switch {
		case action.Run != "" && action.Uses != "":
			return nil, fmt.Errorf(".actions[%d] (%s): has both run and uses fields set", i, action.Name)
		case action.Uses != "":
			builtin := action.BuiltinName()
			if builtin == "" {
				return nil, fmt.Errorf(".actions[%d] (%s): %q must start with %q", i, action.Name, action.Uses, v0.BuiltinPrefix)
			}
			a, err := NewBuiltinAction(action.Name, builtin, action.With)
			if err != nil {
				return nil, fmt.Errorf(".actions[%d] (%s): %w", i, action.Name, err)
			}
			compiled = append(compiled, a)
		case action.Run != "":
			shell := action.Shell
			if shell == "" {
				shell = DefaultShell
			}
			if !slices.Contains(v0.SupportedShells(), shell) {
				return nil, fmt.Errorf(".actions[%d] (%s): unsupported shell: %s", i, action.Name, shell)
			}
			all := append(slices.Clone(opts), WithShell(shell), WithDir(action.Dir), WithEnv(action.Env))
			compiled = append(compiled, NewShellAction(action.Name, action.Run, all...))
		default:
			return nil, fmt.Errorf(".actions[%d] (%s): must have one of [run, uses] fields set", i, action.Name)
		}
	}

	return ennio.NewWorkflow(name, compiled...), nil
}
