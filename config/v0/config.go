// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package v0 provides the schema for v0 of the ennio system config file
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ennio-run/ennio/config"
	"github.com/ennio-run/ennio/schema"
)

// SchemaVersion is the current schema version for configs
const SchemaVersion = "v0"

// Config is the system configuration file for ennio
type Config struct {
	SchemaVersion string             `json:"schema-version"`
	Aliases       config.AliasMap    `json:"aliases,omitempty"`
	FetchPolicy   config.FetchPolicy `json:"fetch-policy,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for a config
func (Config) JSONSchemaExtend(s *jsonschema.Schema) {
	if schemaVersion, ok := s.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Config schema version"
		schemaVersion.Enum = []any{SchemaVersion}
	}
}

// Default returns a valid config with no aliases and the default fetch policy
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		Aliases:       config.AliasMap{},
		FetchPolicy:   config.DefaultFetchPolicy,
	}
}

// LoadConfig reads and validates a config
//
// The returned error is always a *schema.LoadError.
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, schema.NewReadingError(fmt.Errorf("failed to read config file: %w", err))
	}

	var versioned schema.Versioned
	if err := yaml.Unmarshal(data, &versioned); err != nil {
		return nil, schema.NewParsingError(err)
	}

	switch version := versioned.SchemaVersion; version {
	case SchemaVersion:
		cfg := Default()
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, schema.NewParsingError(fmt.Errorf("failed to parse config file: %w", err))
		}
		if cfg.Aliases == nil {
			cfg.Aliases = config.AliasMap{}
		}
		if cfg.FetchPolicy == "" {
			cfg.FetchPolicy = config.DefaultFetchPolicy
		}
		if err := Validate(cfg); err != nil {
			return nil, schema.NewValidatingError(err)
		}
		return cfg, nil
	default:
		return nil, schema.NewValidatingError(fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, version))
	}
}

// LoadConfigFile loads the config at path
//
// A missing file is not an error, the default config is returned instead.
func LoadConfigFile(fsys afero.Fs, path string) (*Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, schema.NewReadingError(fmt.Errorf("failed to open config file: %w", err))
	}
	defer f.Close()

	return LoadConfig(f)
}

// Since every validation operation leverages the same schema, only calculate it once
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema
func Validate(cfg *Config) error {
	s, err := schemaOnce()
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(s), gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	return resErr
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	s := reflector.Reflect(&Config{})
	s.ID = "https://raw.githubusercontent.com/ennio-run/ennio/main/config/v0/schema.json"
	return s
}
