// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package config

import (
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
	"github.com/spf13/pflag"
)

// FetchPolicy decides when a remote workflow file is fetched from its source instead of the local store
type FetchPolicy string

var _ pflag.Value = (*FetchPolicy)(nil)

const (
	// FetchPolicyAlways fetches from source every time, then stores the result, replacing any stored copy
	FetchPolicyAlways FetchPolicy = "always"
	// FetchPolicyIfNotPresent uses the stored copy if there is one, otherwise fetches from source
	FetchPolicyIfNotPresent FetchPolicy = "if-not-present"
	// FetchPolicyNever only reads the store, a missing entry is an error
	FetchPolicyNever FetchPolicy = "never"
	// DefaultFetchPolicy is the default fetch policy used when none is specified
	DefaultFetchPolicy FetchPolicy = FetchPolicyIfNotPresent
)

// AvailablePolicies returns a list of available fetch policies
func AvailablePolicies() []string {
	return []string{
		string(FetchPolicyAlways),
		string(FetchPolicyIfNotPresent),
		string(FetchPolicyNever),
	}
}

// ParseFetchPolicy returns the policy named s
func ParseFetchPolicy(s string) (FetchPolicy, error) {
	if !slices.Contains(AvailablePolicies(), s) {
		return "", fmt.Errorf("invalid fetch policy: %s", s)
	}
	return FetchPolicy(s), nil
}

// String implements the pflag.Value and fmt.Stringer interfaces
func (f *FetchPolicy) String() string {
	return string(*f)
}

// Set implements the pflag.Value interface
func (f *FetchPolicy) Set(value string) error {
	policy, err := ParseFetchPolicy(value)
	if err != nil {
		return err
	}
	*f = policy
	return nil
}

// Type implements the pflag.Value interface
func (f *FetchPolicy) Type() string {
	return "string"
}

// JSONSchemaExtend extends the JSON schema for FetchPolicy
func (FetchPolicy) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Type = "string"
	all := []any{}
	for _, fp := range AvailablePolicies() {
		all = append(all, fp)
	}
	schema.Enum = all
	schema.Description = "When to fetch remote workflow files from their source instead of the local store"
}
