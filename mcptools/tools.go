// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package mcptools exposes workflow file tooling over the Model Context Protocol
package mcptools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer returns an MCP server with every tool registered
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"ennio",
		version,
		server.WithToolCapabilities(false),
	)
	AddAll(s)
	return s
}

// AddAll registers every tool on s
func AddAll(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("validate-workflow",
		mcp.WithDescription("Validate an ennio workflow file against its JSON schema and structural checks"),
		mcp.WithString("location",
			mcp.Required(),
			mcp.Description("Either a relative path, or a URI detailing the remote location for the workflow file"),
		),
		mcp.WithString("cwd",
			mcp.Description("The calling client's project root (an absolute path or file:// URL), relative locations are resolved against it"),
		),
	), ValidateWorkflow)

	s.AddTool(mcp.NewTool("describe-workflow",
		mcp.WithDescription("Summarize the workflows and actions of an ennio workflow file"),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Either an absolute path, a relative path from CWD, or a URI detailing the remote location for the workflow file"),
		),
	), DescribeWorkflow)

	s.AddTool(mcp.NewTool("workflow-schema",
		mcp.WithDescription("Print the JSON schema of ennio workflow files"),
	), WorkflowSchema)
}

func getArgs(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return make(map[string]any)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
