// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"cmp"
	"slices"

	"github.com/invopop/jsonschema"

	"github.com/ennio-run/ennio/schema"
)

// Workflow is an ordered list of actions
type Workflow struct {
	// Description is a markdown description of the workflow
	Description string `json:"description,omitempty"`
	// Actions run in the order they are declared
	Actions []Action `json:"actions"`
}

// JSONSchemaExtend extends the JSON schema for a workflow
func (Workflow) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Description = "A workflow definition, aka an ordered list of actions"

	if description, ok := schema.Properties.Get("description"); ok && description != nil {
		description.Description = "Markdown description of the workflow, rendered by --explain"
	}
	if actions, ok := schema.Properties.Get("actions"); ok && actions != nil {
		actions.Description = "Actions to run, in order"
	}
}

// WorkflowMap is a map of workflows, where the key is the workflow name
type WorkflowMap map[string]Workflow

// JSONSchemaExtend extends the JSON schema for a workflow map
func (WorkflowMap) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.PropertyNames = &jsonschema.Schema{
		Pattern: WorkflowNamePattern.String(),
	}
}

// Find returns a workflow by name
func (wm WorkflowMap) Find(name string) (Workflow, bool) {
	wf, ok := wm[name]
	return wf, ok
}

// OrderedNames returns the workflow names in alphabetical order
//
// The default workflow is always first
func (wm WorkflowMap) OrderedNames() []string {
	names := make([]string, 0, len(wm))
	for k := range wm {
		names = append(names, k)
	}
	slices.SortStableFunc(names, func(a, b string) int {
		if a == schema.DefaultWorkflowName {
			return -1
		}
		if b == schema.DefaultWorkflowName {
			return 1
		}
		return cmp.Compare(a, b)
	})
	return names
}
