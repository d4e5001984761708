// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package ennio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"text/template"

	"github.com/charmbracelet/log"
)

var shortcuts = sync.Map{}

// RegisterWhichShortcut registers a value to be returned by the "which" template function for key
func RegisterWhichShortcut(key, value string) {
	shortcuts.Store(key, value)
}

func which(key string) (string, error) {
	value, ok := shortcuts.Load(key)
	if !ok {
		return exec.LookPath(key)
	}
	full, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("shortcut %q (%T) is not of type string", key, value)
	}
	return full, nil
}

// Render expands ${{ ... }} expressions in str against the outputs recorded in rc
//
// Available functions:
//
//	var "action.variable"   value resolved with RunContext.Resolve
//	from "action" "variable" value of a single variable
//	status "action"          status of an action that already ran
//	which "program"          path to an executable
func Render(ctx context.Context, rc *RunContext, str string) (string, error) {
	logger := log.FromContext(ctx)

	fm := template.FuncMap{
		"var": func(reference string) (string, error) {
			v, err := rc.Resolve(reference)
			if err != nil {
				return "", err
			}
			return Text(v), nil
		},
		"from": func(actionName, varName string) (string, error) {
			out, ok := rc.Output(actionName)
			if !ok {
				return "", &UnknownActionError{Action: actionName}
			}
			v, ok := out.Value(varName)
			if !ok {
				return "", &UnknownVarError{Action: actionName, Var: varName}
			}
			return Text(v), nil
		},
		"status": func(actionName string) (string, error) {
			out, ok := rc.Output(actionName)
			if !ok {
				return "", &UnknownActionError{Action: actionName}
			}
			return out.Status().String(), nil
		},
		"which": which,
	}

	tmpl, err := template.New("expression evaluator").Funcs(fm).Option("missingkey=error").Delims("${{", "}}").Parse(str)
	if err != nil {
		return "", err
	}

	var result strings.Builder

	if err := tmpl.Execute(&result, struct {
		OS       string
		ARCH     string
		PLATFORM string
		WORKFLOW string
	}{
		OS:       runtime.GOOS,
		ARCH:     runtime.GOARCH,
		PLATFORM: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		WORKFLOW: rc.WorkflowName(),
	}); err != nil {
		return "", err
	}

	out := result.String()
	if out != str {
		logger.Debug("rendered", "template", str)
	}

	return out, nil
}

// RenderWith recursively renders every string inside a with map, other values are copied as is
func RenderWith(ctx context.Context, rc *RunContext, with map[string]any) (map[string]any, error) {
	if len(with) == 0 {
		return nil, nil
	}

	result := make(map[string]any, len(with))
	for k, v := range with {
		rendered, err := renderAny(ctx, rc, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		result[k] = rendered
	}
	return result, nil
}

func renderAny(ctx context.Context, rc *RunContext, v any) (any, error) {
	switch val := v.(type) {
	case string:
		return Render(ctx, rc, val)
	case map[string]any:
		return RenderWith(ctx, rc, val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			rendered, err := renderAny(ctx, rc, item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}
