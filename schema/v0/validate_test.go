// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ennio-run/ennio/schema"
)

func requireLoadError(t *testing.T, err error, kind schema.LoadErrorKind) *schema.LoadError {
	t.Helper()
	var lErr *schema.LoadError
	require.ErrorAs(t, err, &lErr)
	require.Equal(t, kind, lErr.Kind, "unexpected kind for %q", err)
	return lErr
}

func TestRead(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f, err := Read(strings.NewReader(`
schema-version: v0
workflows:
  default:
    description: says hello
    actions:
      - name: greet
        run: echo hello
        env:
          NAME: world
          COUNT: 3
      - name: say
        uses: builtin:echo
        with:
          text: ${{ var "greet.stdout" }}
`))
		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, f.SchemaVersion)

		wf, ok := f.Workflows.Find("default")
		require.True(t, ok)
		assert.Equal(t, "says hello", wf.Description)
		require.Len(t, wf.Actions, 2)
		assert.Equal(t, "greet", wf.Actions[0].Name)
		assert.Equal(t, "echo hello", wf.Actions[0].Run)
		assert.Equal(t, schema.Env{"NAME": "world", "COUNT": uint64(3)}, wf.Actions[0].Env)
		assert.Equal(t, "echo", wf.Actions[1].BuiltinName())
		assert.Equal(t, schema.With{"text": `${{ var "greet.stdout" }}`}, wf.Actions[1].With)
	})

	t.Run("reading error", func(t *testing.T) {
		_, err := Read(iotest.ErrReader(errors.New("disk on fire")))
		lErr := requireLoadError(t, err, schema.Reading)
		assert.Equal(t, []string{"disk on fire"}, lErr.Messages)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Read(strings.NewReader("schema-version: [v0"))
		requireLoadError(t, err, schema.Parsing)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Read(strings.NewReader(`
schema-version: v0
workflows:
  default:
    actions:
      - name: a
        run: echo
        timeout: 5s
`))
		requireLoadError(t, err, schema.Parsing)
		require.ErrorContains(t, err, "timeout")
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := Read(strings.NewReader("schema-version: v9\n"))
		requireLoadError(t, err, schema.Validating)
		require.EqualError(t, err, `unsupported schema version: expected "v0", got "v9"`)
	})

	t.Run("missing version", func(t *testing.T) {
		_, err := Read(strings.NewReader("workflows: {}\n"))
		require.EqualError(t, err, `unsupported schema version: expected "v0", got ""`)
	})

	t.Run("rewinds seekers", func(t *testing.T) {
		r := strings.NewReader("schema-version: v0\nworkflows: {default: {actions: [{name: a, run: echo}]}}\n")
		_, err := r.Seek(10, 0)
		require.NoError(t, err)
		f, err := Read(r)
		require.NoError(t, err)
		assert.Len(t, f.Workflows, 1)
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name        string
		file        File
		expectedErr []string
	}{
		{
			name: "valid",
			file: File{
				SchemaVersion: SchemaVersion,
				Workflows: WorkflowMap{
					"default": {Actions: []Action{
						{Name: "a", Run: "echo hello", Shell: "sh", Dir: "sub", Env: schema.Env{"A": "b", "B": true, "C": 1}},
						{Name: "b", Uses: "builtin:echo", With: schema.With{"text": "hi"}},
						{Name: "c", Uses: "builtin:fetch", With: schema.With{"url": "https://example.com", "timeout": "1s"}},
					}},
					"other_one": {Actions: []Action{}},
				},
			},
		},
		{
			name:        "wrong version",
			file:        File{SchemaVersion: "v1"},
			expectedErr: []string{`unsupported schema version: expected "v0", got "v1"`},
		},
		{
			name:        "no workflows",
			file:        File{SchemaVersion: SchemaVersion},
			expectedErr: []string{"no workflows available"},
		},
		{
			name: "invalid workflow name",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"1bad": {Actions: []Action{{Name: "a", Run: "echo"}}},
			}},
			expectedErr: []string{`workflow name "1bad" does not satisfy "^[_a-zA-Z][a-zA-Z0-9_-]*$"`},
		},
		{
			name: "invalid action name",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "with-dash", Run: "echo"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].name "with-dash" does not satisfy "^[A-Za-z0-9_]+$"`},
		},
		{
			name: "missing action name",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Run: "echo"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].name "" does not satisfy "^[A-Za-z0-9_]+$"`},
		},
		{
			name: "duplicate action names",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Run: "echo"}, {Name: "b", Run: "echo"}, {Name: "a", Run: "echo"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0] and .workflows.default.actions[2] have the same name "a"`},
		},
		{
			name: "both run and uses",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Run: "echo", Uses: "builtin:echo"}}},
			}},
			expectedErr: []string{".workflows.default.actions[0] has both run and uses fields set"},
		},
		{
			name: "neither run nor uses",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a"}}},
			}},
			expectedErr: []string{".workflows.default.actions[0] must have one of [run, uses] fields set"},
		},
		{
			name: "uses is not a builtin",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Uses: "file:other.yaml"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].uses "file:other.yaml" must start with "builtin:"`},
		},
		{
			name: "unknown builtin",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Uses: "builtin:nope"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].uses "nope" is not one of [echo, fetch]`},
		},
		{
			name: "unsupported shell",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Run: "echo", Shell: "zsh"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].shell "zsh" is not one of [bash, sh, pwsh]`},
		},
		{
			name: "absolute dir",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Run: "echo", Dir: "/tmp"}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].dir "/tmp" must not be absolute`},
		},
		{
			name: "invalid env name",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Run: "echo", Env: schema.Env{"1BAD": "x"}}}},
			}},
			expectedErr: []string{`.workflows.default.actions[0].env "1BAD" does not satisfy "^[a-zA-Z_]+[a-zA-Z0-9_]*$"`},
		},
		{
			name: "every structural problem is reported",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a"}, {Name: "a", Run: "echo", Dir: "/abs"}}},
			}},
			expectedErr: []string{
				".workflows.default.actions[0] must have one of [run, uses] fields set",
				`.workflows.default.actions[0] and .workflows.default.actions[1] have the same name "a"`,
				`.workflows.default.actions[1].dir "/abs" must not be absolute`,
			},
		},
		{
			name: "builtin with unknown parameter",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Uses: "builtin:echo", With: schema.With{"txt": "typo"}}}},
			}},
			expectedErr: []string{"Additional property txt is not allowed"},
		},
		{
			name: "builtin missing required parameter",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Uses: "builtin:fetch"}}},
			}},
			expectedErr: []string{"with is required"},
		},
		{
			name: "shell on a builtin",
			file: File{SchemaVersion: SchemaVersion, Workflows: WorkflowMap{
				"default": {Actions: []Action{{Name: "a", Uses: "builtin:echo", Shell: "sh", With: schema.With{"text": "x"}}}},
			}},
			expectedErr: []string{"Must validate one and only one schema (oneOf)"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.file)
			if len(tc.expectedErr) == 0 {
				require.NoError(t, err)
				return
			}

			lErr := requireLoadError(t, err, schema.Validating)
			joined := strings.Join(lErr.Messages, "\n")
			for _, msg := range tc.expectedErr {
				assert.Contains(t, joined, msg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f, err := Load(strings.NewReader(`
schema-version: v0
workflows:
  default:
    actions:
      - name: action1
        run: echo hello
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"default"}, f.Workflows.OrderedNames())
	})

	t.Run("validation errors are joined with a comma", func(t *testing.T) {
		_, err := Load(strings.NewReader(`
schema-version: v0
workflows:
  default:
    actions:
      - name: a
      - name: b
`))
		requireLoadError(t, err, schema.Validating)
		assert.Contains(t, err.Error(),
			".workflows.default.actions[0] must have one of [run, uses] fields set, .workflows.default.actions[1] must have one of [run, uses] fields set")
	})

	t.Run("parse errors stop before validation", func(t *testing.T) {
		_, err := Load(strings.NewReader("{"))
		requireLoadError(t, err, schema.Parsing)
	})
}
