// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package ennio

import (
	"errors"
	"fmt"
	"regexp"
)

// ActionNamePattern is the character set an action name is made of.
//
// The '.' separator of a variable reference can never appear in an action name.
var ActionNamePattern = regexp.MustCompile("^[A-Za-z0-9_]+$")

// referencePattern splits "<action>.<field>" (or a bare "<action>") into its parts
var referencePattern = regexp.MustCompile(`^([A-Za-z0-9_]+)(?s:(\.)(.*))?$`)

// ErrMissingVarName is returned when a reference names an action but no variable
var ErrMissingVarName = errors.New("missing variable name")

// InvalidSyntaxError is returned when a reference does not start with a valid action name
type InvalidSyntaxError struct {
	Reference string
}

func (e *InvalidSyntaxError) Error() string {
	return fmt.Sprintf("invalid variable reference %q: expected <action>.<variable>", e.Reference)
}

// UnknownActionError is returned when a reference names an action that has not run
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("no output from action %q", e.Action)
}

// UnknownVarError is returned when an action ran but did not produce the referenced variable
type UnknownVarError struct {
	Action string
	Var    string
}

func (e *UnknownVarError) Error() string {
	return fmt.Sprintf("no variable %q in output of action %q", e.Var, e.Action)
}

// RunContext accumulates the outputs of a single workflow run
//
// It is written by the workflow between actions and read by the actions themselves,
// a RunContext is not safe for concurrent use.
type RunContext struct {
	workflowName string
	outputs      *Outputs
	consumed     bool
}

// NewRunContext returns a run context with no recorded outputs
func NewRunContext(workflowName string) *RunContext {
	return &RunContext{
		workflowName: workflowName,
		outputs:      NewOutputs(),
	}
}

func (c *RunContext) mustBeOpen() {
	if c.consumed {
		panic(fmt.Sprintf("ennio: run context for workflow %q used after its outputs were taken", c.workflowName))
	}
}

// WorkflowName returns the name of the workflow being run
func (c *RunContext) WorkflowName() string {
	c.mustBeOpen()
	return c.workflowName
}

// Update records the output of an action, replacing any previous output under the same name
func (c *RunContext) Update(actionName string, output Output) {
	c.mustBeOpen()
	c.outputs.set(actionName, output)
}

// Output returns the output recorded for an action
func (c *RunContext) Output(actionName string) (Output, bool) {
	c.mustBeOpen()
	return c.outputs.Get(actionName)
}

// Outputs returns everything recorded so far, in execution order
func (c *RunContext) Outputs() *Outputs {
	c.mustBeOpen()
	return c.outputs
}

// TakeOutputs hands the recorded outputs over to the caller
//
// Any further use of the run context panics.
func (c *RunContext) TakeOutputs() *Outputs {
	c.mustBeOpen()
	c.consumed = true
	outputs := c.outputs
	c.outputs = nil
	return outputs
}

// Value returns a variable from an action's output
func (c *RunContext) Value(actionName, varName string) (Value, bool) {
	out, ok := c.Output(actionName)
	if !ok {
		return nil, false
	}
	return out.Value(varName)
}

// Resolve looks up a reference of the form "<action>.<variable>".
//
// The action name is checked before the variable name: a reference to an action that has not
// run fails with *UnknownActionError whatever follows it.
// Everything after the first '.' is the variable name, verbatim.
func (c *RunContext) Resolve(reference string) (Value, error) {
	c.mustBeOpen()

	m := referencePattern.FindStringSubmatch(reference)
	if m == nil {
		return nil, &InvalidSyntaxError{Reference: reference}
	}
	actionName, varName := m[1], m[3]

	out, ok := c.outputs.Get(actionName)
	if !ok {
		return nil, &UnknownActionError{Action: actionName}
	}

	if varName == "" {
		return nil, ErrMissingVarName
	}

	v, ok := out.Value(varName)
	if !ok {
		return nil, &UnknownVarError{Action: actionName, Var: varName}
	}
	return v, nil
}
