// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package main provides the entry point for the application.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	configv0 "github.com/ennio-run/ennio/config/v0"
	v0 "github.com/ennio-run/ennio/schema/v0"
)

var schemas = map[string]func() *jsonschema.Schema{
	"ennio.schema.json":                          v0.WorkFlowSchema,
	filepath.Join("schema", "v0", "schema.json"): v0.WorkFlowSchema,
	filepath.Join("config", "v0", "schema.json"): configv0.Schema,
}

func run(root string) error {
	for name, gen := range schemas {
		b, err := json.MarshalIndent(gen(), "", "  ")
		if err != nil {
			return err
		}

		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, append(b, '\n'), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// main is the entry point for the application
func main() {
	// usage: `go run gen/main.go`
	if err := run(""); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
