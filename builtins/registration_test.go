// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package builtins

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBuiltin struct {
	result string
}

func (s stubBuiltin) Execute(_ context.Context) (map[string]any, error) {
	return map[string]any{"result": s.result}, nil
}

type describedBuiltin struct {
	stubBuiltin
}

func (describedBuiltin) Description() string {
	return "does things"
}

func stub(result string) Factory {
	return func() Builtin { return stubBuiltin{result: result} }
}

func TestRegistryAdd(t *testing.T) {
	testCases := []struct {
		name        string
		builtinName string
		factory     Factory
		expectedErr string
	}{
		{
			name:        "new builtin",
			builtinName: "stub",
			factory:     stub("added"),
		},
		{
			name:        "already registered",
			builtinName: "taken",
			factory:     stub("second"),
			expectedErr: `"taken" is already registered`,
		},
		{
			name:        "empty name",
			builtinName: "",
			factory:     stub("x"),
			expectedErr: "builtin name cannot be empty",
		},
		{
			name:        "nil factory",
			builtinName: "nil-factory",
			expectedErr: "registration function cannot be nil",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := &registry{factories: map[string]Factory{"taken": stub("first")}}

			err := r.add(tc.builtinName, tc.factory)
			if tc.expectedErr != "" {
				require.EqualError(t, err, tc.expectedErr)
				// a failed registration never replaces the existing entry
				if b := r.get(tc.builtinName); b != nil {
					out, err := b.Execute(t.Context())
					require.NoError(t, err)
					assert.Equal(t, "first", out["result"])
				}
				return
			}
			require.NoError(t, err)

			b := r.get(tc.builtinName)
			require.NotNil(t, b)
			out, err := b.Execute(t.Context())
			require.NoError(t, err)
			assert.Equal(t, "added", out["result"])
			assert.Equal(t, []string{"stub", "taken"}, r.names())
		})
	}
}

func TestRegistryGetReturnsFreshInstances(t *testing.T) {
	a, ok := Get("echo").(*echo)
	require.True(t, ok)
	a.Text = "mutated"

	b, ok := Get("echo").(*echo)
	require.True(t, ok)
	assert.Empty(t, b.Text)
	assert.Nil(t, Get("not-registered"))
}

func TestRegistryConcurrentAdd(t *testing.T) {
	r := &registry{factories: map[string]Factory{}}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("concurrent-%d", i)
			assert.NoError(t, r.add(name, stub(name)))
			assert.NotNil(t, r.get(name))
			assert.Contains(t, r.names(), name)
		}()
	}
	wg.Wait()

	assert.Len(t, r.names(), 8)
}

func TestRegisterAndDescribe(t *testing.T) {
	require.NoError(t, Register("described", func() Builtin { return describedBuiltin{} }))
	require.NoError(t, Register("undescribed", stub("plain")))
	t.Cleanup(func() {
		defaultRegistry.mu.Lock()
		delete(defaultRegistry.factories, "described")
		delete(defaultRegistry.factories, "undescribed")
		defaultRegistry.mu.Unlock()
	})

	assert.Equal(t, "does things", Describe("described"))
	assert.Empty(t, Describe("undescribed"))
	assert.Empty(t, Describe("not-registered"))

	require.EqualError(t, Register("echo", stub("x")), `"echo" is already registered`)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.IsNonDecreasing(t, names)
	assert.Subset(t, names, []string{"echo", "fetch"})
}
