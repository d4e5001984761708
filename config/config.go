// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package config provides the pieces of the ennio system configuration shared across its schema versions
package config

import (
	"github.com/invopop/jsonschema"
	"github.com/package-url/packageurl-go"

	"github.com/ennio-run/ennio/schema"
)

// Alias rewrites pkg:<alias>/... workflow locations into a package URL of another type
type Alias struct {
	Type         string `json:"type"`
	Base         string `json:"base,omitempty"`
	TokenFromEnv string `json:"token-from-env,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for an alias
func (Alias) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Description = "A shorthand for a package URL type"

	if typ, ok := s.Properties.Get("type"); ok && typ != nil {
		typ.Description = "Type of the alias, maps to a package URL type"
		typ.Enum = []any{packageurl.TypeGithub, packageurl.TypeGitlab}
	}

	if base, ok := s.Properties.Get("base"); ok && base != nil {
		base.Description = "Base URL for the underlying client (e.g. https://mygitlab.com )"
	}

	if tokenFromEnv, ok := s.Properties.Get("token-from-env"); ok && tokenFromEnv != nil {
		tokenFromEnv.Description = "Environment variable containing the token for authentication"
		tokenFromEnv.Pattern = schema.EnvVariablePattern.String()
	}
}

// AliasMap maps alias names to their definition
type AliasMap map[string]Alias

// JSONSchemaExtend extends the JSON schema for an alias map
func (AliasMap) JSONSchemaExtend(s *jsonschema.Schema) {
	s.Description = `Aliases for package URLs to create shorthand references

pkg:<alias>/owner/repo@ref#path`
	s.PropertyNames = &jsonschema.Schema{
		Pattern: schema.WorkflowNamePattern.String(),
	}
}
