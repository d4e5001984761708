// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package schema provides the types shared by every version of the ennio workflow file
package schema

import "regexp"

// Versioned is a tiny struct used to grab the schema version of a file before decoding it fully
type Versioned struct {
	// SchemaVersion is the schema that this file follows
	SchemaVersion string `json:"schema-version"`
}

// DefaultWorkflowName is the workflow run when none is named
const DefaultWorkflowName = "default"

// WorkflowNamePattern is a regular expression for valid workflow names
var WorkflowNamePattern = regexp.MustCompile("^[_a-zA-Z][a-zA-Z0-9_-]*$")

// EnvVariablePattern is a regular expression for valid environment variable names
var EnvVariablePattern = regexp.MustCompile("^[a-zA-Z_]+[a-zA-Z0-9_]*$")
