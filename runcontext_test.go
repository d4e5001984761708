// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package ennio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunContextUpdate(t *testing.T) {
	rc := NewRunContext("wf")
	assert.Equal(t, "wf", rc.WorkflowName())
	assert.Equal(t, 0, rc.Outputs().Len())

	rc.Update("action1", NewOutput(StatusChanged).AddVar("stdout", String("one")))
	rc.Update("action2", NewOutput(StatusFailed))

	out, ok := rc.Output("action1")
	require.True(t, ok)
	assert.Equal(t, StatusChanged, out.Status())

	v, ok := rc.Value("action1", "stdout")
	require.True(t, ok)
	assert.Equal(t, String("one"), v)

	_, ok = rc.Value("action1", "stderr")
	assert.False(t, ok)
	_, ok = rc.Value("nope", "stdout")
	assert.False(t, ok)

	// a second update replaces the first and keeps its position
	rc.Update("action1", NewOutput(StatusUnchanged))
	assert.Equal(t, []string{"action1", "action2"}, rc.Outputs().Names())
	_, ok = rc.Value("action1", "stdout")
	assert.False(t, ok)
}

func TestRunContextResolve(t *testing.T) {
	rc := NewRunContext("wf")
	rc.Update("action1", NewOutput(StatusChanged).
		AddVar("stdout", String("hello")).
		AddVar("with.dot", PositiveInt(3)))

	testCases := []struct {
		name      string
		reference string
		expected  Value
		check     func(t *testing.T, err error)
	}{
		{
			name:      "valid reference",
			reference: "action1.stdout",
			expected:  String("hello"),
		},
		{
			name:      "variable names keep everything after the first dot",
			reference: "action1.with.dot",
			expected:  PositiveInt(3),
		},
		{
			name:      "invalid characters",
			reference: "éè",
			check: func(t *testing.T, err error) {
				var syntaxErr *InvalidSyntaxError
				require.ErrorAs(t, err, &syntaxErr)
				assert.Equal(t, "éè", syntaxErr.Reference)
				assert.EqualError(t, err, `invalid variable reference "éè": expected <action>.<variable>`)
			},
		},
		{
			name:      "empty reference",
			reference: "",
			check: func(t *testing.T, err error) {
				var syntaxErr *InvalidSyntaxError
				require.ErrorAs(t, err, &syntaxErr)
			},
		},
		{
			name:      "leading dot",
			reference: ".stdout",
			check: func(t *testing.T, err error) {
				var syntaxErr *InvalidSyntaxError
				require.ErrorAs(t, err, &syntaxErr)
			},
		},
		{
			name:      "unknown action",
			reference: "unknownaction.x",
			check: func(t *testing.T, err error) {
				var actionErr *UnknownActionError
				require.ErrorAs(t, err, &actionErr)
				assert.Equal(t, "unknownaction", actionErr.Action)
				assert.EqualError(t, err, `no output from action "unknownaction"`)
			},
		},
		{
			name:      "unknown action wins over missing variable",
			reference: "unknownaction",
			check: func(t *testing.T, err error) {
				var actionErr *UnknownActionError
				require.ErrorAs(t, err, &actionErr)
			},
		},
		{
			name:      "missing variable name",
			reference: "action1",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrMissingVarName)
			},
		},
		{
			name:      "trailing dot",
			reference: "action1.",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrMissingVarName)
			},
		},
		{
			name:      "unknown variable",
			reference: "action1.missing",
			check: func(t *testing.T, err error) {
				var varErr *UnknownVarError
				require.ErrorAs(t, err, &varErr)
				assert.Equal(t, "action1", varErr.Action)
				assert.Equal(t, "missing", varErr.Var)
				assert.EqualError(t, err, `no variable "missing" in output of action "action1"`)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := rc.Resolve(tc.reference)
			if tc.check != nil {
				require.Error(t, err)
				assert.Nil(t, v)
				tc.check(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, Equal(tc.expected, v), "expected %s, got %s", tc.expected, v)
		})
	}
}

func TestRunContextResolveSeesUpdates(t *testing.T) {
	rc := NewRunContext("wf")

	_, err := rc.Resolve("action1.stdout")
	var actionErr *UnknownActionError
	require.ErrorAs(t, err, &actionErr)

	rc.Update("action1", NewOutput(StatusChanged).AddVar("stdout", String("first")))
	v, err := rc.Resolve("action1.stdout")
	require.NoError(t, err)
	assert.Equal(t, String("first"), v)

	rc.Update("action1", NewOutput(StatusChanged).AddVar("stdout", String("second")))
	v, err = rc.Resolve("action1.stdout")
	require.NoError(t, err)
	assert.Equal(t, String("second"), v)
}

func TestRunContextTakeOutputs(t *testing.T) {
	rc := NewRunContext("wf")
	rc.Update("a", NewOutput(StatusChanged))

	outputs := rc.TakeOutputs()
	require.NotNil(t, outputs)
	assert.Equal(t, []string{"a"}, outputs.Names())

	assert.PanicsWithValue(t, `ennio: run context for workflow "wf" used after its outputs were taken`, func() {
		rc.Update("b", NewOutput(StatusChanged))
	})
	assert.Panics(t, func() { rc.TakeOutputs() })
	assert.Panics(t, func() { _, _ = rc.Resolve("a.x") })
	assert.Panics(t, func() { _ = rc.WorkflowName() })
	assert.Panics(t, func() { _, _ = rc.Output("a") })

	// the taken outputs are unaffected
	assert.Equal(t, 1, outputs.Len())
}
