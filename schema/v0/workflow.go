// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package v0 provides the v0 schema of the ennio workflow file
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"github.com/invopop/jsonschema"
)

// SchemaVersion is the current schema version for workflow files
const SchemaVersion = "v0"

// MediaType identifies a v0 workflow file stored as an OCI layer
const MediaType = "application/vnd.ennio.workflow.v0+yaml"

// File represents an "ennio.yaml" file
type File struct {
	SchemaVersion string      `json:"schema-version"`
	Workflows     WorkflowMap `json:"workflows"`
}

// JSONSchemaExtend extends the JSON schema for a workflow file
func (File) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Workflow file schema version. For v0 breaking changes can be expected without any migration pathway."
		schemaVersion.Enum = []any{SchemaVersion}
	}

	if workflows, ok := schema.Properties.Get("workflows"); ok && workflows != nil {
		workflows.Description = "Map of workflows where the key is the workflow name, the workflow named 'default' is run when no workflow is specified"
	}
}

// WorkFlowSchema returns a JSON schema for an ennio workflow file
func WorkFlowSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	schema := reflector.Reflect(&File{})

	schema.ID = "https://raw.githubusercontent.com/ennio-run/ennio/main/schema/v0/schema.json"

	return schema
}
