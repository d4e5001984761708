// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/ennio-run/ennio/builtins"
	"github.com/ennio-run/ennio/schema"
)

// Action is a single action in a workflow
//
// Exactly one of Run and Uses must be set, this is enforced by Validate and by JSON schema validation.
type Action struct {
	// Name identifies the action, later actions reference its outputs as <name>.<variable>
	Name string `json:"name"`
	// Run is the script to run
	Run string `json:"run,omitempty"`
	// Uses is the builtin to call (builtin:<name>)
	Uses string `json:"uses,omitempty"`
	// With is a map of parameters for the builtin
	With schema.With `json:"with,omitempty"`
	// Shell executes run (default: bash)
	Shell string `json:"shell,omitempty"`
	// Dir is the directory to run the script in, relative to the working directory
	Dir string `json:"dir,omitempty"`
	// Env is a map of extra environment variables for the script
	Env schema.Env `json:"env,omitempty"`
}

// BuiltinName returns the name of the builtin referenced by Uses, or "" when Uses is not a builtin
func (a Action) BuiltinName() string {
	name, ok := strings.CutPrefix(a.Uses, BuiltinPrefix)
	if !ok {
		return ""
	}
	return name
}

var scalarTypes = []*jsonschema.Schema{
	{Type: "string"},
	{Type: "boolean"},
	{Type: "integer"},
}

// JSONSchemaExtend extends the JSON schema for an action
func (Action) JSONSchemaExtend(schema *jsonschema.Schema) {
	not := &jsonschema.Schema{
		Not: &jsonschema.Schema{},
	}

	props := jsonschema.NewProperties()
	props.Set("name", &jsonschema.Schema{
		Type: "string",
		Description: `Unique name of the action within the workflow

Later actions read its outputs with ${{ var "<name>.<variable>" }}`,
		Pattern: ActionNamePattern.String(),
	})
	props.Set("run", &jsonschema.Schema{
		Type:        "string",
		Description: "Script to run",
	})
	props.Set("uses", &jsonschema.Schema{
		Type:        "string",
		Description: "Builtin to call",
		Examples: []any{
			"builtin:echo",
			"builtin:fetch",
		},
	})
	props.Set("with", &jsonschema.Schema{Type: "object"})
	props.Set("shell", &jsonschema.Schema{
		Type: "string",
		Description: `Shell to execute run with (default: bash)

bash -e -o pipefail -c {}
sh -e -c {}
pwsh -Command $ErrorActionPreference = 'Stop'; {}; if ((Test-Path -LiteralPath variable:\LASTEXITCODE)) { exit $LASTEXITCODE }`,
		Enum: []any{"bash", "sh", "pwsh"},
	})
	props.Set("dir", &jsonschema.Schema{
		Type:        "string",
		Description: "Relative directory to run the script in",
	})
	props.Set("env", &jsonschema.Schema{
		Type:        "object",
		Description: "Extra environment variables for the script",
		PropertyNames: &jsonschema.Schema{
			Pattern: EnvVariablePattern.String(),
		},
		AdditionalProperties: &jsonschema.Schema{
			OneOf: scalarTypes,
		},
	})

	runProps := jsonschema.NewProperties()
	runProps.Set("run", &jsonschema.Schema{Type: "string"})
	runProps.Set("uses", not)
	runProps.Set("with", not)
	oneOfRun := &jsonschema.Schema{
		Required:   []string{"run"},
		Properties: runProps,
	}

	usesProps := jsonschema.NewProperties()
	usesProps.Set("run", not)
	usesProps.Set("shell", not)
	usesProps.Set("dir", not)
	usesProps.Set("env", not)
	usesProps.Set("uses", &jsonschema.Schema{
		Type:    "string",
		Pattern: "^" + BuiltinPrefix + ".+$",
	})
	oneOfUses := &jsonschema.Schema{
		Required:   []string{"uses"},
		Properties: usesProps,
		AllOf:      builtinSchemas(),
	}

	schema.Properties = props
	schema.Required = []string{"name"}
	schema.AdditionalProperties = jsonschema.FalseSchema
	schema.OneOf = []*jsonschema.Schema{
		oneOfRun,
		oneOfUses,
	}
}

// builtinSchemas returns one if/then schema per registered builtin, tying uses: builtin:<name> to the shape of its with map
func builtinSchemas() []*jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}

	var all []*jsonschema.Schema
	for _, name := range builtins.Names() {
		withSchema := reflector.Reflect(builtins.Get(name))
		if withSchema == nil {
			continue
		}

		withSchema.Version = ""
		withSchema.ID = jsonschema.EmptyID
		withSchema.Type = "object"
		withSchema.AdditionalProperties = jsonschema.FalseSchema
		withSchema.Description = fmt.Sprintf("Configuration for %s%s", BuiltinPrefix, name)

		if withSchema.Properties != nil {
			for pair := withSchema.Properties.Oldest(); pair != nil; pair = pair.Next() {
				allowTemplates(pair.Value)
			}
		}

		builtinSchema := &jsonschema.Schema{
			If: &jsonschema.Schema{
				Properties: jsonschema.NewProperties(),
			},
			Then: &jsonschema.Schema{
				Properties: jsonschema.NewProperties(),
			},
		}
		builtinSchema.If.Properties.Set("uses", &jsonschema.Schema{
			Type:  "string",
			Const: BuiltinPrefix + name,
		})
		builtinSchema.Then.Properties.Set("with", withSchema)
		if len(withSchema.Required) > 0 {
			builtinSchema.Then.Required = []string{"with"}
		}

		all = append(all, builtinSchema)
	}
	return all
}

// allowTemplates lets every non-string scalar also be given as a string so ${{ }} expressions can produce it
func allowTemplates(s *jsonschema.Schema) {
	switch s.Type {
	case "", "string":
		return
	case "array":
		if s.Items != nil {
			allowTemplates(s.Items)
		}
	case "object":
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				allowTemplates(pair.Value)
			}
		}
		if s.AdditionalProperties != nil && s.AdditionalProperties != jsonschema.FalseSchema && s.AdditionalProperties != jsonschema.TrueSchema {
			allowTemplates(s.AdditionalProperties)
		}
	default:
		s.OneOf = []*jsonschema.Schema{
			{Type: "string"},
			{Type: s.Type},
		}
		s.Type = ""
	}
}
