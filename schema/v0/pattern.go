// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"github.com/ennio-run/ennio"
	"github.com/ennio-run/ennio/schema"
)

// WorkflowNamePattern is a regular expression for valid workflow names
var WorkflowNamePattern = schema.WorkflowNamePattern

// ActionNamePattern is a regular expression for valid action names
var ActionNamePattern = ennio.ActionNamePattern

// EnvVariablePattern is a regular expression for valid environment variable names
var EnvVariablePattern = schema.EnvVariablePattern

// BuiltinPrefix prefixes the uses field of a builtin action
const BuiltinPrefix = "builtin:"

// SupportedShells lists the values accepted by an action's shell field, the first one is the default
func SupportedShells() []string {
	return []string{"bash", "sh", "pwsh"}
}
