// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ennio-run/ennio/builtins"
	"github.com/ennio-run/ennio/schema"
)

// Read reads a workflow file
//
// Failing to read r is a schema.Reading error, invalid YAML or unknown fields a schema.Parsing error
// and an unsupported schema-version a schema.Validating error.
func Read(r io.Reader) (File, error) {
	if rs, ok := r.(io.Seeker); ok {
		_, err := rs.Seek(0, io.SeekStart)
		if err != nil {
			return File{}, schema.NewReadingError(err)
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, schema.NewReadingError(err)
	}

	var versioned schema.Versioned
	if err := yaml.Unmarshal(data, &versioned); err != nil {
		return File{}, schema.NewParsingError(err)
	}

	switch version := versioned.SchemaVersion; version {
	case SchemaVersion:
		var f File
		if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
			return File{}, schema.NewParsingError(err)
		}
		return f, nil
	default:
		return File{}, schema.NewValidatingError(fmt.Errorf("unsupported schema version: expected %q, got %q", SchemaVersion, version))
	}
}

var schemaOnce = sync.OnceValues(func() (string, error) {
	s := WorkFlowSchema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate validates a workflow file, every problem found is returned within a single schema.Validating error
func Validate(f File) error {
	if err := validateStructure(f); err != nil {
		return schema.NewValidatingError(err)
	}

	s, err := schemaOnce()
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(s), gojsonschema.NewGoLoader(f))
	if err != nil {
		return schema.NewValidatingError(err)
	}

	if result.Valid() {
		return nil
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	return schema.NewValidatingError(resErr)
}

func validateStructure(f File) error {
	if f.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema version: expected %q, got %q", SchemaVersion, f.SchemaVersion)
	}

	if len(f.Workflows) == 0 {
		return errors.New("no workflows available")
	}

	var errs []error
	for _, name := range f.Workflows.OrderedNames() {
		wf := f.Workflows[name]

		if !WorkflowNamePattern.MatchString(name) {
			errs = append(errs, fmt.Errorf("workflow name %q does not satisfy %q", name, WorkflowNamePattern.String()))
			continue
		}

		names := make(map[string]int, len(wf.Actions))

		for idx, action := range wf.Actions {
			path := fmt.Sprintf(".workflows.%s.actions[%d]", name, idx)

			if !ActionNamePattern.MatchString(action.Name) {
				errs = append(errs, fmt.Errorf("%s.name %q does not satisfy %q", path, action.Name, ActionNamePattern.String()))
			} else if first, ok := names[action.Name]; ok {
				errs = append(errs, fmt.Errorf(".workflows.%s.actions[%d] and %s have the same name %q", name, first, path, action.Name))
			} else {
				names[action.Name] = idx
			}

			switch {
			case action.Uses != "" && action.Run != "":
				errs = append(errs, fmt.Errorf("%s has both run and uses fields set", path))
			case action.Uses == "" && action.Run == "":
				errs = append(errs, fmt.Errorf("%s must have one of [run, uses] fields set", path))
			}

			if action.Uses != "" {
				builtin := action.BuiltinName()
				switch {
				case builtin == "":
					errs = append(errs, fmt.Errorf("%s.uses %q must start with %q", path, action.Uses, BuiltinPrefix))
				case builtins.Get(builtin) == nil:
					errs = append(errs, fmt.Errorf("%s.uses %q is not one of [%s]", path, builtin, strings.Join(builtins.Names(), ", ")))
				}
			}

			if action.Shell != "" && !slices.Contains(SupportedShells(), action.Shell) {
				errs = append(errs, fmt.Errorf("%s.shell %q is not one of [%s]", path, action.Shell, strings.Join(SupportedShells(), ", ")))
			}

			if action.Dir != "" && filepath.IsAbs(action.Dir) {
				errs = append(errs, fmt.Errorf("%s.dir %q must not be absolute", path, action.Dir))
			}

			for envName := range action.Env {
				if !EnvVariablePattern.MatchString(envName) {
					errs = append(errs, fmt.Errorf("%s.env %q does not satisfy %q", path, envName, EnvVariablePattern.String()))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// Load reads then validates a workflow file
//
// The returned error is always a *schema.LoadError.
func Load(r io.Reader) (File, error) {
	f, err := Read(r)
	if err != nil {
		return File{}, err
	}
	if err := Validate(f); err != nil {
		var lErr *schema.LoadError
		if errors.As(err, &lErr) {
			return File{}, err
		}
		return File{}, schema.NewValidatingError(err)
	}
	return f, nil
}
