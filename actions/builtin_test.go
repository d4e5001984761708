// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ennio-run/ennio"
	"github.com/ennio-run/ennio/builtins"
	"github.com/ennio-run/ennio/schema"
)

type floaty struct{}

func (floaty) Execute(_ context.Context) (map[string]any, error) {
	return map[string]any{"ratio": 0.5}, nil
}

func TestNewBuiltinAction(t *testing.T) {
	a, err := NewBuiltinAction("say", "echo", schema.With{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "say", a.Name())
	assert.Equal(t, "echo", a.Builtin())

	a, err = NewBuiltinAction("say", "nope", nil)
	require.EqualError(t, err, "builtin:nope not found")
	assert.Nil(t, a)
}

func TestBuiltinActionRun(t *testing.T) {
	ctx := log.WithContext(t.Context(), log.New(io.Discard))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	}))
	t.Cleanup(srv.Close)

	if builtins.Get("ennio-test-floaty") == nil {
		require.NoError(t, builtins.Register("ennio-test-floaty", func() builtins.Builtin { return &floaty{} }))
	}

	rc := ennio.NewRunContext("wf")
	rc.Update("greet", ennio.NewOutput(ennio.StatusChanged).AddVar("stdout", ennio.String("hello")))

	testCases := []struct {
		name        string
		builtin     string
		with        schema.With
		expected    map[string]ennio.Value
		expectedErr string
	}{
		{
			name:     "echo",
			builtin:  "echo",
			with:     schema.With{"text": `${{ var "greet.stdout" }} world`},
			expected: map[string]ennio.Value{"stdout": ennio.String("hello world")},
		},
		{
			name:     "echo without with",
			builtin:  "echo",
			expected: map[string]ennio.Value{"stdout": ennio.String("")},
		},
		{
			name:     "weakly typed input",
			builtin:  "echo",
			with:     schema.With{"text": 42},
			expected: map[string]ennio.Value{"stdout": ennio.String("42")},
		},
		{
			name:     "fetch",
			builtin:  "fetch",
			with:     schema.With{"url": srv.URL, "method": "get"},
			expected: map[string]ennio.Value{"body": ennio.String("pong"), "status-code": ennio.PositiveInt(200), "content-type": ennio.String("text/plain")},
		},
		{
			name:        "fetch outside of 2xx",
			builtin:     "fetch",
			with:        schema.With{"url": srv.URL + "/missing"},
			expectedErr: "/missing: expected a 2xx status code got 404",
		},
		{
			name:        "unknown parameter",
			builtin:     "echo",
			with:        schema.With{"text": "hi", "extra": true},
			expectedErr: "extra",
		},
		{
			name:        "bad reference",
			builtin:     "echo",
			with:        schema.With{"text": `${{ var "nope.stdout" }}`},
			expectedErr: `no output from action "nope"`,
		},
		{
			name:        "result that is not a value",
			builtin:     "ennio-test-floaty",
			expectedErr: `builtin:ennio-test-floaty: output "ratio": `,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := NewBuiltinAction(tc.name, tc.builtin, tc.with)
			require.NoError(t, err)

			out := a.Run(ctx, rc)
			if tc.expectedErr != "" {
				assert.Equal(t, ennio.StatusFailed, out.Status())
				v, ok := out.Value("stderr")
				require.True(t, ok)
				assert.Contains(t, ennio.Text(v), tc.expectedErr)
				return
			}
			assert.True(t, ennio.NewOutput(ennio.StatusChanged).WithVars(tc.expected).Equal(out), "got %v", out.Vars())
		})
	}
}
