// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"context"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ennio-run/ennio"
	"github.com/ennio-run/ennio/command"
	"github.com/ennio-run/ennio/schema"
	v0 "github.com/ennio-run/ennio/schema/v0"
)

func TestCompile(t *testing.T) {
	wf, err := Compile("build", v0.Workflow{
		Actions: []v0.Action{
			{Name: "greet", Run: "echo hello", Shell: "sh"},
			{Name: "say", Uses: "builtin:echo", With: schema.With{"text": "hi"}},
			{Name: "plain", Run: "true"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "build", wf.Name())

	compiled := wf.Actions()
	require.Len(t, compiled, 3)

	shell, ok := compiled[0].(*ShellAction)
	require.True(t, ok)
	assert.Equal(t, "greet", shell.Name())
	assert.Equal(t, "sh", shell.Shell())

	builtin, ok := compiled[1].(*BuiltinAction)
	require.True(t, ok)
	assert.Equal(t, "echo", builtin.Builtin())

	shell, ok = compiled[2].(*ShellAction)
	require.True(t, ok)
	assert.Equal(t, DefaultShell, shell.Shell())

	wf, err = Compile("empty", v0.Workflow{})
	require.NoError(t, err)
	assert.Empty(t, wf.Actions())
}

func TestCompileErrors(t *testing.T) {
	testCases := []struct {
		name        string
		action      v0.Action
		expectedErr string
	}{
		{
			name:        "unknown builtin",
			action:      v0.Action{Name: "a", Uses: "builtin:nope"},
			expectedErr: ".actions[0] (a): builtin:nope not found",
		},
		{
			name:        "not a builtin",
			action:      v0.Action{Name: "a", Uses: "pkg:github/x/y"},
			expectedErr: `.actions[0] (a): "pkg:github/x/y" must start with "builtin:"`,
		},
		{
			name:        "unsupported shell",
			action:      v0.Action{Name: "a", Run: "echo", Shell: "fish"},
			expectedErr: ".actions[0] (a): unsupported shell: fish",
		},
		{
			name:        "both run and uses",
			action:      v0.Action{Name: "a", Run: "echo", Uses: "builtin:echo"},
			expectedErr: ".actions[0] (a): has both run and uses fields set",
		},
		{
			name:        "neither run nor uses",
			action:      v0.Action{Name: "a"},
			expectedErr: ".actions[0] (a): must have one of [run, uses] fields set",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wf, err := Compile("wf", v0.Workflow{Actions: []v0.Action{tc.action}})
			require.EqualError(t, err, tc.expectedErr)
			assert.Nil(t, wf)
		})
	}
}

func TestCompileSharedOptions(t *testing.T) {
	ctx := log.WithContext(t.Context(), log.New(io.Discard))

	var programs []string
	stub := func(_ context.Context, c *command.Command) (*command.Result, error) {
		programs = append(programs, c.Program())
		return &command.Result{ExitCode: 1}, nil
	}

	wf, err := Compile("wf", v0.Workflow{Actions: []v0.Action{
		{Name: "one", Run: "echo 1"},
		{Name: "two", Run: "echo 2", Shell: "sh"},
	}}, WithExecutor(stub), WithShell("pwsh"))
	require.NoError(t, err)

	outputs := wf.Run(ctx)
	assert.Equal(t, []string{"bash", "sh"}, programs)
	for _, out := range outputs.All() {
		assert.Equal(t, ennio.StatusFailed, out.Status())
	}
}

func TestCompiledWorkflowRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a posix shell")
	}

	ctx := log.WithContext(t.Context(), log.New(io.Discard))

	f, err := v0.Read(strings.NewReader(`
schema-version: v0
workflows:
  default:
    actions:
      - name: greet
        run: |
          printf hello
          echo "name=ennio" >> "$ENNIO_OUTPUT"
      - name: broken
        run: exit 1
      - name: say
        uses: builtin:echo
        with:
          text: '${{ var "greet.stdout" }} ${{ var "greet.name" }} ${{ status "broken" }}'
`))
	require.NoError(t, err)
	require.NoError(t, v0.Validate(f))

	wf, err := Compile(schema.DefaultWorkflowName, f.Workflows[schema.DefaultWorkflowName])
	require.NoError(t, err)

	outputs := wf.Run(ctx)
	assert.Equal(t, []string{"greet", "broken", "say"}, outputs.Names())

	out, _ := outputs.Get("broken")
	assert.Equal(t, ennio.StatusFailed, out.Status())

	out, _ = outputs.Get("say")
	assert.Equal(t, ennio.StatusChanged, out.Status())
	requireVar(t, out, "stdout", ennio.String("hello ennio failed"))
}
