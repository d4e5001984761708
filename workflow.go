// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package ennio provides a small workflow engine: named actions run in order against a shared run context.
package ennio

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Action is a named unit of work executed once per workflow run
type Action interface {
	// Name returns the action's identifier, it must match ActionNamePattern
	Name() string
	// Run executes the action, it may read the outputs of every action that ran before it
	Run(ctx context.Context, rc *RunContext) Output
}

// ActionFunc adapts a function to an Action
type ActionFunc func(ctx context.Context, rc *RunContext) Output

type funcAction struct {
	name string
	fn   ActionFunc
}

// NewAction returns an action calling fn
func NewAction(name string, fn ActionFunc) Action {
	return &funcAction{name: name, fn: fn}
}

func (a *funcAction) Name() string {
	return a.name
}

func (a *funcAction) Run(ctx context.Context, rc *RunContext) Output {
	return a.fn(ctx, rc)
}

// Workflow is a named, ordered list of actions
type Workflow struct {
	name    string
	actions []Action
}

// NewWorkflow returns a workflow running the given actions in order
func NewWorkflow(name string, actions ...Action) *Workflow {
	return &Workflow{
		name:    name,
		actions: slices.Clone(actions),
	}
}

// Name returns the workflow's name
func (wf *Workflow) Name() string {
	return wf.name
}

// Actions returns the workflow's actions in execution order
func (wf *Workflow) Actions() []Action {
	return slices.Clone(wf.actions)
}

// Run executes every action in order against a fresh run context and returns all of their outputs.
//
// A failed or skipped action does not stop the run, every action always executes.
// Actions reading the output of a failed action are expected to handle it themselves.
func (wf *Workflow) Run(ctx context.Context) *Outputs {
	logger := log.FromContext(ctx).With("workflow", wf.name, "run", uuid.NewString())
	ctx = log.WithContext(ctx, logger)

	rc := NewRunContext(wf.name)

	start := time.Now()
	logger.Debug("run", "actions", len(wf.actions))
	defer func() {
		logger.Debug("ran", "duration", time.Since(start))
	}()

	for _, action := range wf.actions {
		sub := logger.With("action", action.Name())

		sub.Info("executing")
		actionStart := time.Now()

		output := action.Run(log.WithContext(ctx, sub), rc)

		sub.Info("terminated", "status", output.Status(), "duration", time.Since(actionStart))
		rc.Update(action.Name(), output)
	}

	return rc.TakeOutputs()
}
