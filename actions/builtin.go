// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package actions

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-viper/mapstructure/v2"

	"github.com/ennio-run/ennio"
	"github.com/ennio-run/ennio/builtins"
	"github.com/ennio-run/ennio/schema"
	v0 "github.com/ennio-run/ennio/schema/v0"
)

// BuiltinAction calls a builtin implemented in Go
type BuiltinAction struct {
	name    string
	builtin string
	with    schema.With
}

var _ ennio.Action = (*BuiltinAction)(nil)

// NewBuiltinAction returns an action calling the builtin registered as builtin
//
// It errors if no such builtin is registered.
func NewBuiltinAction(name, builtin string, with schema.With) (*BuiltinAction, error) {
	if builtins.Get(builtin) == nil {
		return nil, fmt.Errorf("%s%s not found", v0.BuiltinPrefix, builtin)
	}
	return &BuiltinAction{name: name, builtin: builtin, with: with}, nil
}

// Name implements ennio.Action
func (a *BuiltinAction) Name() string {
	return a.name
}

// Builtin returns the name of the builtin being called
func (a *BuiltinAction) Builtin() string {
	return a.builtin
}

// Run renders the with map, decodes it into a fresh builtin and executes it
//
// The builtin's results become the output's variables.
func (a *BuiltinAction) Run(ctx context.Context, rc *ennio.RunContext) ennio.Output {
	vars, err := a.execute(ctx, rc)
	if err != nil {
		return failed(fmt.Errorf("%s%s: %w", v0.BuiltinPrefix, a.builtin, err))
	}
	return ennio.NewOutput(ennio.StatusChanged).WithVars(vars)
}

func (a *BuiltinAction) execute(ctx context.Context, rc *ennio.RunContext) (map[string]ennio.Value, error) {
	logger := log.FromContext(ctx)

	builtin := builtins.Get(a.builtin)
	if builtin == nil {
		return nil, fmt.Errorf("not found")
	}

	rendered, err := ennio.RenderWith(ctx, rc, a.with)
	if err != nil {
		return nil, err
	}

	printBuiltin(logger, v0.BuiltinPrefix+a.builtin, rendered)

	if rendered != nil {
		config := &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			TagName:          "json",
			Result:           builtin,
		}
		decoder, err := mapstructure.NewDecoder(config)
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(rendered); err != nil {
			return nil, err
		}
	}

	logger.Debug(">", "builtin", a.builtin, "with", builtin)

	result, err := builtin.Execute(ctx)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]ennio.Value, len(result))
	for k, v := range result {
		val, err := ennio.ValueOf(v)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", k, err)
		}
		vars[k] = val
	}
	return vars, nil
}
