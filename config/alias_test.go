// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasSchema(t *testing.T) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	s := reflector.Reflect(AliasMap{})

	b, err := json.Marshal(s)
	require.NoError(t, err)

	assert.Contains(t, string(b), `"enum":["github","gitlab"]`)
	assert.Contains(t, string(b), `"pattern":"^[a-zA-Z_]+[a-zA-Z0-9_]*$"`)
	assert.Contains(t, string(b), `"propertyNames":{"pattern":"^[_a-zA-Z][a-zA-Z0-9_-]*$"}`)
}
