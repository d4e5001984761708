// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

package mcptools

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ennio-run/ennio/config"
	"github.com/ennio-run/ennio/fetch"
)

// ValidateWorkflowOutput is the result of the validate-workflow tool
type ValidateWorkflowOutput struct {
	IsValid bool `json:"is-valid"`
}

// ValidateWorkflow fetches the workflow file at the location argument and validates it
//
// Invalid files are reported as a tool error carrying the validation messages.
func ValidateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := log.FromContext(ctx)
	args := getArgs(request)

	location, _ := args["location"].(string)
	if location == "" {
		return mcp.NewToolResultError("location parameter is required"), nil
	}
	cwd, _ := args["cwd"].(string)

	uri, err := fetch.Parse(location, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, err := fetch.NewService(
		fetch.WithFetchPolicy(config.FetchPolicyAlways),
		fetch.WithWorkDir(projectRoot(cwd)),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := fetch.LoadFile(ctx, svc, uri); err != nil {
		logger.Error(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	logger.Info("valid workflow", "location", uri)

	return jsonResult(ValidateWorkflowOutput{IsValid: true})
}

// projectRoot turns the client's cwd argument, a path or a file:// URL, into a directory
func projectRoot(cwd string) string {
	if u, err := url.Parse(cwd); err == nil && u.Scheme == "file" {
		return fetch.LocalPath(u)
	}
	return cwd
}
